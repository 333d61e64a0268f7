package handlers

import (
	"github.com/kmehta-dev/drivehub/internal/authz"
	"github.com/kmehta-dev/drivehub/internal/blob"
	"github.com/kmehta-dev/drivehub/internal/notify"
	"github.com/kmehta-dev/drivehub/internal/store"
)

// Handler carries the collaborators every endpoint needs.
type Handler struct {
	Store    *store.Store
	Blob     *blob.Client
	Resolver *authz.Resolver
	Mailer   notify.Mailer
}

func New(s *store.Store, b *blob.Client, mailer notify.Mailer) *Handler {
	return &Handler{
		Store:    s,
		Blob:     b,
		Resolver: authz.New(s),
		Mailer:   mailer,
	}
}
