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

	"aether-planner/internal/config"
	"aether-planner/internal/genai"
	"aether-planner/internal/handler"
	"aether-planner/internal/notify"
	"aether-planner/internal/repository"
	"aether-planner/internal/router"
	"aether-planner/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	stateRepo := repository.NewStateRepository(db)

	notifier := buildNotifier(cfg)

	gemini := genai.NewClient(genai.Config{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
	})

	plannerSvc, err := service.NewPlannerService(ctx, stateRepo, gemini, notifier)
	if err != nil {
		log.Fatalf("planner: %v", err)
	}
	alarmSvc := service.NewAlarmService(plannerSvc)

	scheduler := service.NewSchedulerService(time.Local)
	if _, err := scheduler.ScheduleInterval(cfg.TickInterval, func() {
		alarmSvc.Tick(time.Now())
	}); err != nil {
		log.Fatalf("schedule ticks: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	engine := router.New(handler.NewPlannerHandler(plannerSvc))
	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: engine,
	}

	go func() {
		log.Printf("Aether planner listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("Shutdown complete.")
}

func buildNotifier(cfg config.Config) notify.Notifier {
	if cfg.TelegramToken == "" {
		return notify.LogNotifier{}
	}
	telegram, err := notify.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID)
	if err != nil {
		log.Printf("telegram notifier disabled: %v", err)
		return notify.LogNotifier{}
	}
	return notify.Multi{notify.LogNotifier{}, telegram}
}
