package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/reno-ai/reno-backend/internal/calendar"
	"github.com/reno-ai/reno-backend/internal/export"
	"github.com/reno-ai/reno-backend/internal/genai"
	"github.com/reno-ai/reno-backend/internal/images"
	"github.com/reno-ai/reno-backend/internal/projects/domain"
	"github.com/reno-ai/reno-backend/internal/projects/service"
	"github.com/reno-ai/reno-backend/internal/transcribe"
)

var dateFormat = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// maxPhotoBytes bounds a single photo upload.
const maxPhotoBytes = 15 << 20

func validDate(date string) bool {
	if !dateFormat.MatchString(date) {
		return false
	}
	_, err := time.Parse("2006-01-02", date)
	return err == nil
}

func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
	case errors.Is(err, domain.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "checklist item not found"})
	case errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrPastReminder),
		errors.Is(err, domain.ErrEmptyTask):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
	}
}

type createReq struct {
	Title           string `json:"title"`
	Date            string `json:"date"`
	Notes           string `json:"notes"`
	InspirationLink string `json:"inspiration_link"`
	Photo           string `json:"photo"` // optional base64 upload
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	if !validDate(req.Date) {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "date must be YYYY-MM-DD"})
		return
	}

	var photo *domain.Photo
	if req.Photo != "" {
		normalized, err := images.NormalizeBase64(req.Photo)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid photo"})
			return
		}
		photo = normalized
	}

	p := service.NewProject(strings.TrimSpace(req.Title), req.Date, req.InspirationLink, req.Notes, photo)
	h.store.Add(p)

	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p})
}

func (h *Handler) list(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": h.store.List()})
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.store.Get(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p, "budget": p.Budget()})
}

type updateReq struct {
	Title           *string  `json:"title"`
	Date            *string  `json:"date"`
	Notes           *string  `json:"notes"`
	InspirationLink *string  `json:"inspiration_link"`
	Status          *string  `json:"status"`
	EstimatedCost   *float64 `json:"estimated_cost"`
	ActualCost      *float64 `json:"actual_cost"`
}

func (h *Handler) update(c *gin.Context) {
	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	if req.Date != nil && !validDate(*req.Date) {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "date must be YYYY-MM-DD"})
		return
	}

	u := service.FieldUpdate{
		Title:           req.Title,
		Date:            req.Date,
		Notes:           req.Notes,
		InspirationLink: req.InspirationLink,
		EstimatedCost:   req.EstimatedCost,
		ActualCost:      req.ActualCost,
	}
	if req.Status != nil {
		status := domain.Status(*req.Status)
		u.Status = &status
	}

	p, err := h.store.UpdateFields(c.Param("id"), u)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p, "budget": p.Budget()})
}

func (h *Handler) delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.Delete(id); err != nil {
		fail(c, err)
		return
	}
	h.scheduler.CancelProject(id)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) attachPhoto(c *gin.Context) {
	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "photo file missing"})
		return
	}
	if file.Size > maxPhotoBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"ok": false, "error": "photo too large"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "unreadable photo"})
		return
	}
	defer f.Close()
	raw, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "unreadable photo"})
		return
	}

	photo, err := images.Normalize(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid photo"})
		return
	}

	p, err := h.store.SetPhoto(c.Param("id"), photo)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) generateChecklist(c *gin.Context) {
	id := c.Param("id")

	gen, err := h.store.Generation(id)
	if err != nil {
		fail(c, err)
		return
	}
	p, err := h.store.Get(id)
	if err != nil {
		fail(c, err)
		return
	}

	image := ""
	if p.Photo != nil {
		image = p.Photo.Full
	}
	entries, err := h.ai.GenerateChecklist(c.Request.Context(), p.Title, p.Notes, image)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": err.Error()})
		return
	}

	items := make([]domain.ChecklistItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, domain.ChecklistItem{
			ID:      uuid.NewString(),
			Task:    e.Task,
			Details: e.Details,
		})
	}

	updated, applied, err := h.store.ReplaceChecklist(id, gen, items)
	if err != nil {
		fail(c, err)
		return
	}
	if !applied {
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": "project changed during generation"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": updated})
}

func (h *Handler) toggleItem(c *gin.Context) {
	itemID := c.Param("itemID")
	p, err := h.store.ToggleItem(c.Param("id"), itemID)
	if err != nil {
		fail(c, err)
		return
	}
	if item := p.Item(itemID); item != nil && item.Completed {
		h.scheduler.Cancel(itemID)
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

type editItemReq struct {
	Task    *string `json:"task"`
	Details *string `json:"details"`
}

func (h *Handler) editItem(c *gin.Context) {
	var req editItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	p, err := h.store.EditItem(c.Param("id"), c.Param("itemID"), req.Task, req.Details)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) removeItem(c *gin.Context) {
	itemID := c.Param("itemID")
	p, err := h.store.RemoveItem(c.Param("id"), itemID)
	if err != nil {
		fail(c, err)
		return
	}
	h.scheduler.Cancel(itemID)
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

type reminderReq struct {
	At string `json:"at"`
}

func (h *Handler) setReminder(c *gin.Context) {
	var req reminderReq
	if err := c.ShouldBindJSON(&req); err != nil || req.At == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	at, err := time.Parse(time.RFC3339, req.At)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "at must be RFC3339"})
		return
	}

	id, itemID := c.Param("id"), c.Param("itemID")
	p, err := h.store.SetReminder(id, itemID, at)
	if err != nil {
		fail(c, err)
		return
	}
	if item := p.Item(itemID); item != nil {
		h.scheduler.Arm(p.ID, p.Title, *item)
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) clearReminder(c *gin.Context) {
	itemID := c.Param("itemID")
	p, err := h.store.ClearReminder(c.Param("id"), itemID)
	if err != nil {
		fail(c, err)
		return
	}
	h.scheduler.Cancel(itemID)
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) estimate(c *gin.Context) {
	id := c.Param("id")
	p, err := h.store.Get(id)
	if err != nil {
		fail(c, err)
		return
	}

	cost, err := h.ai.EstimateCost(c.Request.Context(), p)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": err.Error()})
		return
	}

	updated, err := h.store.UpdateFields(id, service.FieldUpdate{EstimatedCost: &cost})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": updated, "estimated_cost": cost})
}

type suggestionsReq struct {
	Kind string `json:"kind"`
}

func (h *Handler) suggestions(c *gin.Context) {
	var req suggestionsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	kind := genai.SuggestionKind(req.Kind)
	if kind != genai.SuggestVariations && kind != genai.SuggestMaterials {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "kind must be variations or materials"})
		return
	}

	p, err := h.store.Get(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	item := p.Item(c.Param("itemID"))
	if item == nil {
		fail(c, domain.ErrItemNotFound)
		return
	}

	text, err := h.ai.Suggestions(c.Request.Context(), p, item, kind)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "suggestions": text})
}

func (h *Handler) exportProject(c *gin.Context) {
	p, err := h.store.Get(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	body := export.Render(p)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(p.Title)))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(body))
}

func (h *Handler) calendarSync(c *gin.Context) {
	if h.cal == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "calendar sync not configured"})
		return
	}

	p, err := h.store.Get(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	synced := 0
	for _, item := range p.Checklist {
		ev, err := calendar.FromItem(p, item)
		if err != nil || ev == nil {
			continue
		}
		if _, err := h.cal.SyncEvent(ev); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": err.Error(), "synced": synced})
			return
		}
		synced++
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "synced": synced})
}

// transcribeNotes runs a live session over raw 16-bit PCM streamed in the
// request body and returns the committed transcript plus any extracted
// target date and generated title.
func (h *Handler) transcribeNotes(c *gin.Context) {
	if h.transcriber == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "transcription not configured"})
		return
	}

	source := transcribe.NewReaderSource(c.Request.Body)
	res, err := h.transcriber.Record(c.Request.Context(), source, c.Query("title"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "result": res})
}
