// Package http exposes the kouji list and date editing endpoints.
package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/penguin-works/kouji-backend/internal/fsys"
	"github.com/penguin-works/kouji-backend/internal/kouji/domain"
	"github.com/penguin-works/kouji-backend/internal/kouji/service"
	"github.com/penguin-works/kouji-backend/internal/logging"
	"github.com/penguin-works/kouji-backend/internal/timeparse"
)

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the read routes on rg and the write routes on
// writes, which callers usually wrap with a rate limiter.
func (h *Handler) RegisterRoutes(rg gin.IRouter, writes ...gin.HandlerFunc) {
	rg.GET("/kouji-list", h.list)

	w := rg.Group("", writes...)
	w.POST("/kouji-list/save", h.save)
	w.PUT("/kouji-projects/:project_id/dates", h.updateDates)
	w.POST("/kouji-projects/cleanup", h.cleanup)
}

type listResponse struct {
	Entries   []domain.Project  `json:"entries"`
	Count     int               `json:"count"`
	Path      string            `json:"path"`
	TotalSize uint64            `json:"total_size"`
	Folders   []domain.RawEntry `json:"folders,omitempty"`
}

func (h *Handler) list(c *gin.Context) {
	includePlain, _ := strconv.ParseBool(c.Query("include_plain"))

	res, err := h.svc.List(c.Request.Context(), c.Query("path"), service.ListOptions{IncludePlain: includePlain})
	if err != nil {
		h.fail(c, "kouji.list", err)
		return
	}

	c.JSON(http.StatusOK, listResponse{
		Entries:   res.Projects,
		Count:     len(res.Projects),
		Path:      res.Path,
		TotalSize: res.TotalSize,
		Folders:   res.Plain,
	})
}

func (h *Handler) save(c *gin.Context) {
	n, err := h.svc.Snapshot(c.Request.Context(), c.Query("path"))
	if err != nil {
		h.fail(c, "kouji.save", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"message": "工事プロジェクトを保存しました",
		"count":   n,
	})
}

type updateDatesReq struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (h *Handler) updateDates(c *gin.Context) {
	projectID := c.Param("project_id")

	var req updateDatesReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	loc := h.svc.Location()
	start, err := parseDate(req.StartDate, loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "start_date: " + err.Error()})
		return
	}
	end, err := parseDate(req.EndDate, loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "end_date: " + err.Error()})
		return
	}

	p, err := h.svc.UpdateDates(c.Request.Context(), c.Query("path"), projectID, start, end)
	if err != nil {
		h.fail(c, "kouji.update_dates", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":         true,
		"message":    "プロジェクトの日付が更新されました",
		"project_id": projectID,
		"project":    p,
	})
}

func (h *Handler) cleanup(c *gin.Context) {
	report, err := h.svc.Cleanup(c.Request.Context())
	if err != nil {
		h.fail(c, "kouji.cleanup", err)
		return
	}

	removed := report.Removed
	if removed == nil {
		removed = []domain.DatesKey{}
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":              true,
		"message":         "不正な日付のプロジェクトを削除しました",
		"projects_before": report.Before,
		"projects_after":  report.After,
		"removed_count":   len(report.Removed),
		"removed":         removed,
	})
}

func parseDate(s string, loc *time.Location) (domain.Date, error) {
	t, err := timeparse.Parse(s, loc)
	if err != nil {
		return domain.Date{}, err
	}
	return domain.DateOf(t.In(loc)), nil
}

func (h *Handler) fail(c *gin.Context, operation string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logging.New(c.Request.Context()).Error(operation, err)
	}
	c.JSON(status, gin.H{"ok": false, "error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrProjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrOverrideRejected), errors.Is(err, timeparse.ErrUnsupportedFormat):
		return http.StatusBadRequest
	}
	return fsys.StatusFor(err)
}
