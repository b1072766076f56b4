package timeparse

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Handler serves the time parsing endpoints.
type Handler struct {
	loc *time.Location
}

func NewHandler(loc *time.Location) *Handler {
	return &Handler{loc: loc}
}

func (h *Handler) RegisterRoutes(rg gin.IRouter) {
	rg.POST("/time/parse", h.parse)
	rg.GET("/time/formats", h.formats)
}

type parseReq struct {
	TimeString string `json:"time_string"`
}

func (h *Handler) parse(c *gin.Context) {
	var req parseReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.TimeString) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	t, err := Parse(req.TimeString, h.loc)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrUnsupportedFormat) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, Describe(req.TimeString, t))
}

func (h *Handler) formats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"formats": Formats()})
}
