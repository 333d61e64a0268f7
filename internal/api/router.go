package api

import (
	"fmt"
	"log"
	"net/http"

	"github.com/rs/cors"

	"github.com/kmehta-dev/drivehub/internal/api/handlers"
	"github.com/kmehta-dev/drivehub/internal/api/middleware"
	"github.com/kmehta-dev/drivehub/internal/config"
)

func SetupRouter(h *handlers.Handler) http.Handler {
	mainMux := http.NewServeMux()
	c := cors.New(config.Envs.CorsConfig)

	// ---------- PUBLIC ROUTES ----------
	mainMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	authMux := http.NewServeMux()
	authMux.HandleFunc("/sign-up", h.RegisterUser)
	authMux.HandleFunc("/login", h.LoginUser)
	authMux.HandleFunc("POST /password-reset", h.RequestPasswordReset)
	authMux.HandleFunc("POST /password-reset/confirm", h.ConfirmPasswordReset)
	// Logout only clears the cookie, so it lives with the other auth
	// routes; the /api/v1/auth/ mount would shadow it on the protected mux.
	authMux.HandleFunc("POST /logout", h.Logout)
	authMux.HandleFunc("/google/login", h.HandleGoogleLogin)
	authMux.HandleFunc("/google/callback", h.HandleGoogleCallback)

	mainMux.Handle("/api/v1/auth/",
		http.StripPrefix("/api/v1/auth", authMux),
	)

	// Anonymous link access lives outside the auth wall.
	publicShareMux := http.NewServeMux()
	publicShareMux.HandleFunc("GET /{token}", h.ResolveShareLink)
	publicShareMux.HandleFunc("GET /{token}/download/{fileId}", h.DownloadViaShareLink)

	mainMux.Handle("/api/v1/share/",
		http.StripPrefix("/api/v1/share", publicShareMux),
	)

	// ---------- PROTECTED ROUTES ----------
	protectedMux := http.NewServeMux()

	protectedMux.HandleFunc("GET /me", h.Me)

	protectedMux.HandleFunc("POST /folders", h.CreateFolder)
	protectedMux.HandleFunc("GET /folders", h.ListFolderContents)
	protectedMux.HandleFunc("GET /folders/{id}", h.GetFolder)
	protectedMux.HandleFunc("PATCH /folders/{id}", h.RenameFolder)
	protectedMux.HandleFunc("POST /folders/{id}/move", h.MoveFolder)
	protectedMux.HandleFunc("DELETE /folders/{id}", h.DeleteFolder)

	protectedMux.HandleFunc("POST /files", h.UploadFile)
	protectedMux.HandleFunc("GET /files/{id}", h.GetFile)
	protectedMux.HandleFunc("GET /files/{id}/download", h.DownloadFile)
	protectedMux.HandleFunc("PATCH /files/{id}", h.RenameFile)
	protectedMux.HandleFunc("DELETE /files/{id}", h.DeleteFile)

	protectedMux.HandleFunc("POST /shares", h.CreateShare)
	protectedMux.HandleFunc("GET /shares", h.ListShares)
	protectedMux.HandleFunc("PATCH /shares/{id}", h.UpdateShare)
	protectedMux.HandleFunc("DELETE /shares/{id}", h.RevokeShare)

	protectedMux.HandleFunc("POST /share-links", h.CreateShareLink)
	protectedMux.HandleFunc("GET /share-links", h.ListShareLinks)
	protectedMux.HandleFunc("PATCH /share-links/{id}", h.UpdateShareLink)
	protectedMux.HandleFunc("DELETE /share-links/{id}", h.RevokeShareLink)

	protectedMux.HandleFunc("GET /search", h.Search)
	protectedMux.HandleFunc("GET /shared-with-me", h.SharedWithMe)
	protectedMux.HandleFunc("GET /resources/{id}/permission", h.ResourcePermission)

	mainMux.Handle("/api/v1/",
		http.StripPrefix(
			"/api/v1",
			middleware.AuthMiddleware(protectedMux),
		),
	)

	log.Println("Router initialized")
	handler := c.Handler(mainMux)
	handler = middleware.Logger(handler)
	return handler
}
