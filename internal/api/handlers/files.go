package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/kmehta-dev/drivehub/internal/api/middleware"
	"github.com/kmehta-dev/drivehub/internal/models"
	"github.com/kmehta-dev/drivehub/internal/utils"
)

const maxUploadSize = 100 << 20 // 100 MB

// POST /files
// Accepts a multipart upload, stores the bytes in the blob store and records
// the file. Size and MIME type come from the blob, not the client.
func (h *Handler) UploadFile(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Invalid file upload form",
		})
		return
	}

	src, header, err := r.FormFile("file")
	if err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "No file provided",
		})
		return
	}
	defer src.Close()

	folderID, err := queryUUID(r, "folder")
	if err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{Success: false, Message: err.Error()})
		return
	}

	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}

	user, err := h.Store.GetUser(r.Context(), userID)
	if err != nil {
		utils.ErrorResponse(w, err)
		return
	}

	data, err := io.ReadAll(io.LimitReader(src, maxUploadSize+1))
	if err != nil {
		utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
			Success: false,
			Message: "Failed to read upload",
		})
		return
	}
	if int64(len(data)) > maxUploadSize {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "File exceeds 100 MB limit",
		})
		return
	}

	key, size, mimeType, err := h.Blob.Put(r.Context(), user.Email, header.Filename, data)
	if err != nil {
		utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
			Success: false,
			Message: "Failed to store file",
		})
		return
	}

	file, err := h.Store.CreateFile(r.Context(), userID, folderID, name, key, mimeType, size)
	if err != nil {
		// Metadata failed; the stored blob is unreachable, drop it.
		go h.cleanupBlobs([]string{key})
		utils.ErrorResponse(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusCreated, utils.Payload{
		Success: true,
		Message: "File uploaded successfully",
		Data:    file,
	})
}

// GET /files/{id}
func (h *Handler) GetFile(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)

	id, err := pathUUID(r, "id")
	if err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{Success: false, Message: err.Error()})
		return
	}

	if err := h.Resolver.Require(r.Context(), userID, models.FileTarget(id), models.PermissionView); err != nil {
		utils.ErrorResponse(w, err)
		return
	}

	file, err := h.Store.GetFile(r.Context(), id)
	if err != nil {
		utils.ErrorResponse(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "File retrieved successfully",
		Data:    file,
	})
}

// GET /files/{id}/download
// Returns a presigned URL for the blob; requires view.
func (h *Handler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)

	id, err := pathUUID(r, "id")
	if err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{Success: false, Message: err.Error()})
		return
	}

	if err := h.Resolver.Require(r.Context(), userID, models.FileTarget(id), models.PermissionView); err != nil {
		utils.ErrorResponse(w, err)
		return
	}

	file, err := h.Store.GetFile(r.Context(), id)
	if err != nil {
		utils.ErrorResponse(w, err)
		return
	}

	url, err := h.Blob.PresignGet(r.Context(), file.StorageKey, 15*time.Minute)
	if err != nil {
		utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
			Success: false,
			Message: "Failed to generate download URL",
		})
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Presigned download URL generated successfully",
		Data: map[string]any{
			"url":         url,
			"filename":    file.Name,
			"contentType": file.MimeType,
		},
	})
}

// PATCH /files/{id}
// Renames the display name; requires edit. Size and MIME type stay derived.
func (h *Handler) RenameFile(w http.ResponseWriter, r *http.Request) {
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

	if err := h.Resolver.Require(r.Context(), userID, models.FileTarget(id), models.PermissionEdit); err != nil {
		utils.ErrorResponse(w, err)
		return
	}

	file, err := h.Store.RenameFile(r.Context(), id, input.Name)
	if err != nil {
		utils.ErrorResponse(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "File renamed successfully",
		Data:    file,
	})
}

// DELETE /files/{id}
func (h *Handler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)

	id, err := pathUUID(r, "id")
	if err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{Success: false, Message: err.Error()})
		return
	}

	if err := h.Resolver.Require(r.Context(), userID, models.FileTarget(id), models.PermissionManage); err != nil {
		utils.ErrorResponse(w, err)
		return
	}

	key, err := h.Store.DeleteFile(r.Context(), id)
	if err != nil {
		utils.ErrorResponse(w, err)
		return
	}
	go h.cleanupBlobs([]string{key})

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "File deleted successfully",
	})
}
