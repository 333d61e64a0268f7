package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/kmehta-dev/drivehub/internal/api/middleware"
	"github.com/kmehta-dev/drivehub/internal/config"
	"github.com/kmehta-dev/drivehub/internal/models"
	"github.com/kmehta-dev/drivehub/internal/store"
	"github.com/kmehta-dev/drivehub/internal/utils"
)

// POST /share-links
// Mints an anonymous link. Permission is capped at edit; manage by link is
// rejected as invalid.
func (h *Handler) CreateShareLink(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)

	var input struct {
		TargetType models.TargetKind `json:"targetType"`
		TargetID   uuid.UUID         `json:"targetId"`
		Permission models.Permission `json:"permission"`
		ExpiresAt  *time.Time        `json:"expiresAt"`
		Password   *string           `json:"password"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{Success: false, Message: "Invalid input"})
		return
	}
	if input.Permission == "" {
		input.Permission = models.PermissionView
	}

	target := models.Target{Kind: input.TargetType, ID: input.TargetID}
	link, err := h.Store.CreateLink(r.Context(), userID, target, input.Permission, input.ExpiresAt, input.Password)
	if err != nil {
		utils.ErrorResponse(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusCreated, utils.Payload{
		Success: true,
		Message: "Share link created successfully",
		Data: map[string]any{
			"link": link,
			"url":  fmt.Sprintf("%s/api/v1/share/%s", config.Envs.BaseURL, link.ID),
		},
	})
}

// GET /share-links
func (h *Handler) ListShareLinks(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)

	links, err := h.Store.ListLinksBy(r.Context(), userID)
	if err != nil {
		utils.ErrorResponse(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Share links retrieved successfully",
		Data:    links,
	})
}

// PATCH /share-links/{id}
// Mutable fields: permission, expiresAt, password, isActive. Creator only.
func (h *Handler) UpdateShareLink(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)

	id, err := pathUUID(r, "id")
	if err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{Success: false, Message: err.Error()})
		return
	}

	var input struct {
		Permission *models.Permission `json:"permission"`
		ExpiresAt  json.RawMessage    `json:"expiresAt"`
		Password   json.RawMessage    `json:"password"`
		IsActive   *bool              `json:"isActive"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{Success: false, Message: "Invalid input"})
		return
	}
	setExpiry, expiresAt, err := optionalTime(input.ExpiresAt)
	if err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{Success: false, Message: "Invalid expiresAt"})
		return
	}
	setPassword, password, err := optionalString(input.Password)
	if err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{Success: false, Message: "Invalid password"})
		return
	}

	link, err := h.Store.UpdateLink(r.Context(), id, userID, store.LinkUpdate{
		Permission:  input.Permission,
		ExpiresAt:   expiresAt,
		SetExpiry:   setExpiry,
		Password:    password,
		SetPassword: setPassword,
		IsActive:    input.IsActive,
	})
	if err != nil {
		utils.ErrorResponse(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Share link updated successfully",
		Data:    link,
	})
}

// DELETE /share-links/{id}
func (h *Handler) RevokeShareLink(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)

	id, err := pathUUID(r, "id")
	if err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{Success: false, Message: err.Error()})
		return
	}

	if err := h.Store.RevokeLink(r.Context(), id, userID); err != nil {
		utils.ErrorResponse(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Share link revoked successfully",
	})
}
