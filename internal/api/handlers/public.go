package handlers

import (
	"net/http"
	"time"

	"github.com/kmehta-dev/drivehub/internal/models"
	"github.com/kmehta-dev/drivehub/internal/utils"
)

// GET /share/{token}?password=<p>
// Anonymous link resolution: 404 for unknown or inactive tokens, 410 past
// expiry, 403 on a wrong or missing password. A successful resolution
// increments the download counter once and returns the target's metadata.
func (h *Handler) ResolveShareLink(w http.ResponseWriter, r *http.Request) {
	token, err := pathUUID(r, "token")
	if err != nil {
		utils.JSONResponse(w, http.StatusNotFound, utils.Payload{
			Success: false,
			Message: "Invalid or inactive share link",
		})
		return
	}

	link, err := h.Resolver.ResolveLink(r.Context(), token, r.URL.Query().Get("password"))
	if err != nil {
		utils.ErrorResponse(w, err)
		return
	}

	switch target := link.Target(); target.Kind {
	case models.TargetFile:
		file, err := h.Store.GetFile(r.Context(), target.ID)
		if err != nil {
			utils.ErrorResponse(w, err)
			return
		}
		utils.JSONResponse(w, http.StatusOK, utils.Payload{
			Success: true,
			Message: "Share link resolved successfully",
			Data: map[string]any{
				"type":       "file",
				"permission": link.Permission,
				"file":       file,
			},
		})

	case models.TargetFolder:
		folder, err := h.Store.GetFolder(r.Context(), target.ID)
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
			Message: "Share link resolved successfully",
			Data: map[string]any{
				"type":       "folder",
				"permission": link.Permission,
				"folder":     folder,
				"folders":    folders,
				"files":      files,
			},
		})
	}
}

// GET /share/{token}/download/{fileId}?password=<p>
// Presigns a download for a file reachable through the link: either the
// linked file itself, or any file under a linked folder's subtree.
func (h *Handler) DownloadViaShareLink(w http.ResponseWriter, r *http.Request) {
	token, err := pathUUID(r, "token")
	if err != nil {
		utils.JSONResponse(w, http.StatusNotFound, utils.Payload{
			Success: false,
			Message: "Invalid or inactive share link",
		})
		return
	}
	fileID, err := pathUUID(r, "fileId")
	if err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{Success: false, Message: err.Error()})
		return
	}

	link, err := h.Resolver.ResolveLink(r.Context(), token, r.URL.Query().Get("password"))
	if err != nil {
		utils.ErrorResponse(w, err)
		return
	}

	covered, err := h.Resolver.LinkCovers(r.Context(), link, fileID)
	if err != nil {
		utils.ErrorResponse(w, err)
		return
	}
	if !covered {
		utils.ErrorResponse(w, models.ErrFileNotFound)
		return
	}

	file, err := h.Store.GetFile(r.Context(), fileID)
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
