package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/reno-ai/reno-backend/config"
	"github.com/reno-ai/reno-backend/internal/bootstrap"
	"github.com/reno-ai/reno-backend/internal/calendar"
	"github.com/reno-ai/reno-backend/internal/genai"
	projecthttp "github.com/reno-ai/reno-backend/internal/projects/http"
	"github.com/reno-ai/reno-backend/internal/projects/service"
	"github.com/reno-ai/reno-backend/internal/reminders"
	"github.com/reno-ai/reno-backend/internal/transcribe"
)

const serviceName = "reno-backend"

// logNotifier is the default reminder sink: fired reminders land in the
// service log.
type logNotifier struct{}

func (logNotifier) Notify(n reminders.Notification) {
	log.Printf("[notify] tag=%s title=%q body=%q", n.Tag, n.Title, n.Body)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[error] operation=config_load error=%v", err)
	}
	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	recordStore, err := bootstrap.OpenStore(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("[error] operation=store_open error=%v", err)
	}
	defer recordStore.Close()

	mirror := service.NewMirror(recordStore)
	mirror.Start()
	defer mirror.Close()

	store := service.NewStore(mirror)
	persisted, err := recordStore.LoadAll(ctx)
	if err != nil {
		log.Fatalf("[error] operation=store_hydrate error=%v", err)
	}
	store.Hydrate(persisted)
	log.Printf("[info] operation=store_hydrate projects=%d backend=%s", len(persisted), cfg.Store.Backend)

	scheduler := reminders.NewScheduler(logNotifier{})
	defer scheduler.Stop()

	rescanner := reminders.NewRescanner(store, scheduler, cfg.Reminders.Horizon)
	if err := rescanner.Start(); err != nil {
		log.Fatalf("[error] operation=rescan_start error=%v", err)
	}
	defer rescanner.Stop()

	ai := genai.NewClient(cfg.GenAI.BaseURL, cfg.GenAI.APIKey, cfg.GenAI.Model)

	var transcriber projecthttp.Transcriber
	if cfg.GenAI.APIKey != "" {
		dialer := transcribe.NewLiveDialer(cfg.GenAI.APIKey)
		transcriber = transcribe.NewRecorder(dialer, ai, cfg.GenAI.LiveModel, cfg.GenAI.DrainDelay)
	} else {
		log.Println("[warn] operation=startup message=GENAI_API_KEY unset, transcription disabled")
	}

	var calSync projecthttp.CalendarSync
	if cfg.Calendar.CredentialsFile != "" && cfg.Calendar.TokenFile != "" {
		client, err := calendar.New(ctx, cfg.Calendar.CredentialsFile, cfg.Calendar.TokenFile, cfg.Calendar.CalendarID)
		if err != nil {
			log.Printf("[warn] operation=calendar_init error=%v", err)
		} else {
			calSync = client
		}
	}

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: serviceName,
		Version:     cfg.App.Version,
		APIKey:      cfg.Server.APIKey,
		Store:       store,
		RecordStore: recordStore,
		AI:          ai,
		Scheduler:   scheduler,
		Transcriber: transcriber,
		Calendar:    calSync,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Printf("[info] operation=listen addr=%s env=%s", srv.Addr, cfg.App.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[error] operation=listen error=%v", err)
		}
	}()

	<-ctx.Done()
	log.Println("[info] operation=shutdown message=signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[error] operation=shutdown error=%v", err)
		os.Exit(1)
	}
}
