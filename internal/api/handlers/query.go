package handlers

import (
	"net/http"

	"github.com/kmehta-dev/drivehub/internal/api/middleware"
	"github.com/kmehta-dev/drivehub/internal/models"
	"github.com/kmehta-dev/drivehub/internal/utils"
)

// GET /search?q=<query>
// Case-insensitive substring match over the names of the actor's own
// folders and files.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)

	query := r.URL.Query().Get("q")
	if query == "" {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Missing search query",
		})
		return
	}

	folders, files, err := h.Store.Search(r.Context(), userID, query)
	if err != nil {
		utils.ErrorResponse(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Search completed successfully",
		Data: map[string]any{
			"folders": folders,
			"files":   files,
		},
	})
}

// GET /shared-with-me
// Folders and files granted to the actor through live direct shares.
func (h *Handler) SharedWithMe(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)

	folders, files, err := h.Store.SharedWith(r.Context(), userID)
	if err != nil {
		utils.ErrorResponse(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Shared items retrieved successfully",
		Data: map[string]any{
			"folders": folders,
			"files":   files,
		},
	})
}

// GET /resources/{id}/permission
// Reports the actor's effective permission on the resource. The id may name
// a file or a folder; files are tried first.
func (h *Handler) ResourcePermission(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)

	id, err := pathUUID(r, "id")
	if err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{Success: false, Message: err.Error()})
		return
	}

	target := models.FileTarget(id)
	if _, err := h.Store.GetFile(r.Context(), id); err != nil {
		if _, ferr := h.Store.GetFolder(r.Context(), id); ferr != nil {
			utils.ErrorResponse(w, models.ErrFileNotFound)
			return
		}
		target = models.FolderTarget(id)
	}

	level, err := h.Resolver.Resolve(r.Context(), userID, target)
	if err != nil {
		utils.ErrorResponse(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Permission resolved successfully",
		Data: map[string]any{
			"level": level,
			"type":  target.Kind,
		},
	})
}
