package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/kmehta-dev/drivehub/internal/api"
	"github.com/kmehta-dev/drivehub/internal/api/handlers"
	"github.com/kmehta-dev/drivehub/internal/blob"
	"github.com/kmehta-dev/drivehub/internal/config"
	"github.com/kmehta-dev/drivehub/internal/notify"
	"github.com/kmehta-dev/drivehub/internal/store"
)

func main() {
	cfg := config.Envs

	st, err := store.New(&store.Config{
		Type: store.DatabaseType(cfg.DBDriver),
		DSN:  cfg.DB_URL,
	})
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}
	defer st.Close()

	blobClient := blob.New(cfg.Blob)
	mailer := notify.FromConfig(cfg.SMTP)

	h := handlers.New(st, blobClient, mailer)
	mux := api.SetupRouter(h)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: mux,
		// Timeouts prevent resource exhaustion from slow clients
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Starting drivehub server on port: %s", cfg.Port)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Could not listen on port %s: %v", cfg.Port, err)
	}
}
