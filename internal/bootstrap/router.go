package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	httpapi "github.com/reno-ai/reno-backend/internal/api/http"
	"github.com/reno-ai/reno-backend/internal/api/http/middleware"
	projecthttp "github.com/reno-ai/reno-backend/internal/projects/http"
	"github.com/reno-ai/reno-backend/internal/projects/service"
	"github.com/reno-ai/reno-backend/internal/reminders"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	APIKey      string

	Store       *service.Store
	RecordStore httpapi.Pinger
	AI          projecthttp.Completer
	Scheduler   *reminders.Scheduler
	Transcriber projecthttp.Transcriber
	Calendar    projecthttp.CalendarSync
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-API-Key", "X-Request-Id"},
		ExposeHeaders:    []string{"Content-Disposition", "X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.RecordStore)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api/v1")
	api.Use(middleware.RequestIDMiddleware())
	api.Use(middleware.APIKeyMiddleware(dep.APIKey))

	handler := projecthttp.New(dep.Store, dep.AI, dep.Scheduler, dep.Transcriber, dep.Calendar)
	handler.Register(api.Group("/projects"))
	handler.RegisterTranscription(api)

	return r
}
