package http

import "github.com/gin-gonic/gin"

// Register attaches project routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("", h.create)
	rg.GET("", h.list)
	rg.GET("/:id", h.get)
	rg.PATCH("/:id", h.update)
	rg.DELETE("/:id", h.delete)

	rg.POST("/:id/photo", h.attachPhoto)
	rg.POST("/:id/checklist/generate", h.generateChecklist)
	rg.POST("/:id/checklist/:itemID/toggle", h.toggleItem)
	rg.PATCH("/:id/checklist/:itemID", h.editItem)
	rg.DELETE("/:id/checklist/:itemID", h.removeItem)
	rg.PUT("/:id/checklist/:itemID/reminder", h.setReminder)
	rg.DELETE("/:id/checklist/:itemID/reminder", h.clearReminder)
	rg.POST("/:id/checklist/:itemID/suggestions", h.suggestions)

	rg.POST("/:id/estimate", h.estimate)
	rg.GET("/:id/export", h.exportProject)
	rg.POST("/:id/calendar/sync", h.calendarSync)
}

// RegisterTranscription attaches the live-notes endpoint at the API root;
// it is not scoped to an existing project.
func (h *Handler) RegisterTranscription(rg *gin.RouterGroup) {
	rg.POST("/transcribe", h.transcribeNotes)
}
