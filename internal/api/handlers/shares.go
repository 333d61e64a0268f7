package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/kmehta-dev/drivehub/internal/api/middleware"
	"github.com/kmehta-dev/drivehub/internal/config"
	"github.com/kmehta-dev/drivehub/internal/models"
	"github.com/kmehta-dev/drivehub/internal/store"
	"github.com/kmehta-dev/drivehub/internal/utils"
)

// POST /shares
// Grants a direct share on a file or folder. 409 when an active grant for
// the pair already exists.
func (h *Handler) CreateShare(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)

	var input struct {
		TargetType  models.TargetKind `json:"targetType"`
		TargetID    uuid.UUID         `json:"targetId"`
		RecipientID uuid.UUID         `json:"recipientId"`
		Permission  models.Permission `json:"permission"`
		ExpiresAt   *time.Time        `json:"expiresAt"`
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
	share, err := h.Store.CreateShare(r.Context(), userID, target, input.RecipientID, input.Permission, input.ExpiresAt)
	if err != nil {
		utils.ErrorResponse(w, err)
		return
	}

	// Fire-and-forget invitation mail.
	go func() {
		recipient, err := h.Store.GetUser(context.Background(), input.RecipientID)
		if err != nil {
			return
		}
		body := fmt.Sprintf("A %s was shared with you (%s access): %s", target.Kind, share.Permission, config.Envs.BaseURL)
		if err := h.Mailer.Send(recipient.Email, "Something was shared with you", body); err != nil {
			log.Printf("share mail to %s failed: %v", recipient.Email, err)
		}
	}()

	utils.JSONResponse(w, http.StatusCreated, utils.Payload{
		Success: true,
		Message: "Share created successfully",
		Data:    share,
	})
}

// GET /shares
func (h *Handler) ListShares(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)

	shares, err := h.Store.ListSharesBy(r.Context(), userID)
	if err != nil {
		utils.ErrorResponse(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Shares retrieved successfully",
		Data:    shares,
	})
}

// PATCH /shares/{id}
// Mutable fields: permission, expiresAt, isActive. Creator only.
func (h *Handler) UpdateShare(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)

	id, err := pathUUID(r, "id")
	if err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{Success: false, Message: err.Error()})
		return
	}

	var input struct {
		Permission *models.Permission `json:"permission"`
		ExpiresAt  json.RawMessage    `json:"expiresAt"`
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

	share, err := h.Store.UpdateShare(r.Context(), id, userID, store.ShareUpdate{
		Permission: input.Permission,
		ExpiresAt:  expiresAt,
		SetExpiry:  setExpiry,
		IsActive:   input.IsActive,
	})
	if err != nil {
		utils.ErrorResponse(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Share updated successfully",
		Data:    share,
	})
}

// DELETE /shares/{id}
func (h *Handler) RevokeShare(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)

	id, err := pathUUID(r, "id")
	if err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{Success: false, Message: err.Error()})
		return
	}

	if err := h.Store.RevokeShare(r.Context(), id, userID); err != nil {
		utils.ErrorResponse(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Share revoked successfully",
	})
}
