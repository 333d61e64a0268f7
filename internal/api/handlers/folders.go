package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kmehta-dev/drivehub/internal/api/middleware"
	"github.com/kmehta-dev/drivehub/internal/models"
	"github.com/kmehta-dev/drivehub/internal/utils"
)

// POST /folders
func (h *Handler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)

	var input struct {
		Name           string     `json:"name"`
		ParentFolderID *uuid.UUID `json:"parentFolderId"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Invalid input",
		})
		return
	}

	folder, err := h.Store.CreateFolder(r.Context(), userID, input.Name, input.ParentFolderID)
	if err != nil {
		utils.ErrorResponse(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusCreated, utils.Payload{
		Success: true,
		Message: "Folder created successfully",
		Data:    folder,
	})
}

// GET /folders?parent=<id>
// Lists the actor's own folders and files under parent, or at the root when
// parent is absent.
func (h *Handler) ListFolderContents(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)

	parentID, err := queryUUID(r, "parent")
	if err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{Success: false, Message: err.Error()})
		return
	}

	folders, err := h.Store.ListFolders(r.Context(), userID, parentID)
	if err != nil {
		utils.ErrorResponse(w, err)
		return
	}
	files, err := h.Store.ListFiles(r.Context(), userID, parentID)
	if err != nil {
		utils.ErrorResponse(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Contents retrieved successfully",
		Data: map[string]any{
			"folders": folders,
			"files":   files,
		},
	})
}

// GET /folders/{id}
// Returns the folder with its direct children. Accessible to anyone whose
// effective permission reaches view, owners included.
func (h *Handler) GetFolder(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)

	id, err := pathUUID(r, "id")
	if err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{Success: false, Message: err.Error()})
		return
	}

	if err := h.Resolver.Require(r.Context(), userID, models.FolderTarget(id), models.PermissionView); err != nil {
		utils.ErrorResponse(w, err)
		return
	}

	folder, err := h.Store.GetFolder(r.Context(), id)
	if err != nil {
		utils.ErrorResponse(w, err)
		return
	}
	folders, err := h.Store.ListFolders(r.Context(), folder.UserID, &folder.ID)
	if err != nil {
		utils.ErrorResponse(w, err)
		return
	}
	files, err := h.Store.ListFiles(r.Context(), folder.UserID, &folder.ID)
	if err != nil {
		utils.ErrorResponse(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Folder retrieved successfully",
		Data: map[string]any{
			"folder":  folder,
			"folders": folders,
			"files":   files,
		},
	})
}

// PATCH /folders/{id}
func (h *Handler) RenameFolder(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)

	id, err := pathUUID(r, "id")
	if err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{Success: false, Message: err.Error()})
		return
	}

	var input struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{Success: false, Message: "Invalid input"})
		return
	}

	if err := h.Resolver.Require(r.Context(), userID, models.FolderTarget(id), models.PermissionEdit); err != nil {
		utils.ErrorResponse(w, err)
		return
	}

	folder, err := h.Store.RenameFolder(r.Context(), id, input.Name)
	if err != nil {
		utils.ErrorResponse(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Folder renamed successfully",
		Data:    folder,
	})
}

// POST /folders/{id}/move
func (h *Handler) MoveFolder(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)

	id, err := pathUUID(r, "id")
	if err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{Success: false, Message: err.Error()})
		return
	}

	var input struct {
		ParentFolderID *uuid.UUID `json:"parentFolderId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{Success: false, Message: "Invalid input"})
		return
	}

	if err := h.Resolver.Require(r.Context(), userID, models.FolderTarget(id), models.PermissionManage); err != nil {
		utils.ErrorResponse(w, err)
		return
	}

	folder, err := h.Store.MoveFolder(r.Context(), id, input.ParentFolderID)
	if err != nil {
		utils.ErrorResponse(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Folder moved successfully",
		Data:    folder,
	})
}

// DELETE /folders/{id}
// Cascades to every descendant folder and file. The metadata delete commits
// first; blob cleanup then runs concurrently and failures are only logged,
// since orphaned blobs are harmless and re-collectable.
func (h *Handler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)

	id, err := pathUUID(r, "id")
	if err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{Success: false, Message: err.Error()})
		return
	}

	if err := h.Resolver.Require(r.Context(), userID, models.FolderTarget(id), models.PermissionManage); err != nil {
		utils.ErrorResponse(w, err)
		return
	}

	keys, err := h.Store.DeleteFolder(r.Context(), id)
	if err != nil {
		utils.ErrorResponse(w, err)
		return
	}

	if len(keys) > 0 {
		go h.cleanupBlobs(keys)
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Folder deleted successfully",
	})
}

func (h *Handler) cleanupBlobs(keys []string) {
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(8)
	for _, key := range keys {
		g.Go(func() error {
			return h.Blob.Delete(ctx, key)
		})
	}
	if err := g.Wait(); err != nil {
		log.Printf("blob cleanup incomplete: %v", err)
	}
}
