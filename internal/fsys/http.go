package fsys

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg gin.IRouter) {
	rg.GET("/folders", h.list)
}

func (h *Handler) list(c *gin.Context) {
	listing, err := h.svc.List(c.Request.Context(), c.Query("path"))
	if err != nil {
		c.JSON(StatusFor(err), gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"folders":      listing.Entries,
		"count":        len(listing.Entries),
		"folder_count": listing.FolderCount,
		"file_count":   listing.FileCount,
		"path":         listing.Path,
	})
}

// StatusFor maps listing errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrOutsideRoot), errors.Is(err, ErrNotDir):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
