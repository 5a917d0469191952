package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/martinszuc/discord-chores-bot/config"
	"github.com/martinszuc/discord-chores-bot/endpoints"
	"github.com/martinszuc/discord-chores-bot/internal/bot"
	"github.com/martinszuc/discord-chores-bot/internal/discord"
	"github.com/martinszuc/discord-chores-bot/internal/roster"
	"github.com/martinszuc/discord-chores-bot/internal/rotation"
	"github.com/martinszuc/discord-chores-bot/internal/session"
	"github.com/martinszuc/discord-chores-bot/internal/storage"
	"github.com/martinszuc/discord-chores-bot/middleware"
	"github.com/martinszuc/discord-chores-bot/utils"
)

const ServiceName = "chores-rotation-service"

func main() {
	configPath := flag.String("config", "config.json", "Path to the bot config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("FATAL: Could not load %s: %v", *configPath, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Println("Initializing Redis connection...")
	redisClient, err := utils.GetRedisClient(ctx, cfg.RedisAddr)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Redis: %v", err)
	}
	log.Println("Redis connected successfully")

	record := storage.NewRedisRecord(redisClient)

	store, err := roster.NewStore(ctx, record)
	if err != nil {
		log.Fatalf("FATAL: Failed to load roster: %v", err)
	}

	// First run: import the config-file roster into the persisted record.
	seedFlatmates := make([]roster.Flatmate, 0, len(cfg.Flatmates))
	for _, f := range cfg.Flatmates {
		seedFlatmates = append(seedFlatmates, roster.Flatmate{Name: f.Name, DiscordID: f.DiscordID})
	}
	seedChores := make([]roster.Chore, 0, len(cfg.Chores))
	for _, c := range cfg.Chores {
		seedChores = append(seedChores, roster.Chore{Name: c.Name, Frequency: c.Frequency, Difficulty: c.Difficulty})
	}
	seedSettings := roster.ScheduleSettings{
		PostingDay:       cfg.PostingDay,
		PostingTime:      cfg.PostingTime,
		Timezone:         cfg.Timezone,
		RemindersEnabled: cfg.RemindersEnabled,
		ReminderDay:      cfg.ReminderDay,
		ReminderTime:     cfg.ReminderTime,
	}
	if err := store.Seed(ctx, seedFlatmates, seedChores, seedSettings); err != nil {
		log.Fatalf("FATAL: Failed to seed roster: %v", err)
	}

	engine, err := rotation.NewEngine(ctx, store, record, rotation.SystemClock{}, rotation.SystemRand{})
	if err != nil {
		log.Fatalf("FATAL: Failed to load rotation state: %v", err)
	}

	cache := session.NewCache()
	discordClient := discord.NewClient(cfg.DiscordURL)
	choreBot := bot.New(cfg, store, engine, cache, discordClient)

	go func() {
		log.Println("Core Event Logic: Starting...")
		if err := RunCoreLogic(ctx, choreBot); err != nil {
			log.Printf("Core Logic Error: %v", err)
			cancel()
		}
		log.Println("Core Event Logic: Stopped")
	}()

	router := mux.NewRouter()

	// /service is public for health checks; everything else requires a
	// known caller.
	router.HandleFunc("/service", endpoints.ServiceHandler(choreBot)).Methods(http.MethodGet)

	auth := middleware.ServiceAuthMiddleware

	router.HandleFunc("/schedule", auth(endpoints.ShowScheduleHandler(choreBot))).Methods(http.MethodGet)
	router.HandleFunc("/schedule/next", auth(endpoints.NextScheduleHandler(choreBot))).Methods(http.MethodPost)
	router.HandleFunc("/schedule/reset", auth(endpoints.ResetScheduleHandler(choreBot))).Methods(http.MethodPost)
	router.HandleFunc("/schedule/remind", auth(endpoints.RemindersHandler(choreBot))).Methods(http.MethodPost)

	router.HandleFunc("/reactions", auth(endpoints.ReactionHandler(choreBot))).Methods(http.MethodPost)

	router.HandleFunc("/flatmates", auth(endpoints.ListFlatmatesHandler(choreBot))).Methods(http.MethodGet)
	router.HandleFunc("/flatmates", auth(endpoints.AddFlatmateHandler(choreBot))).Methods(http.MethodPost)
	router.HandleFunc("/flatmates/{name}", auth(endpoints.RemoveFlatmateHandler(choreBot))).Methods(http.MethodDelete)
	router.HandleFunc("/flatmates/{name}/vacation", auth(endpoints.VacationHandler(choreBot))).Methods(http.MethodPost)
	router.HandleFunc("/flatmates/{name}/exclusion", auth(endpoints.ExclusionHandler(choreBot))).Methods(http.MethodPost)
	router.HandleFunc("/flatmates/{name}/stats", auth(endpoints.StatsHandler(choreBot))).Methods(http.MethodGet)

	router.HandleFunc("/chores", auth(endpoints.ListChoresHandler(choreBot))).Methods(http.MethodGet)
	router.HandleFunc("/chores", auth(endpoints.AddChoreHandler(choreBot))).Methods(http.MethodPost)
	router.HandleFunc("/chores/{name}", auth(endpoints.RemoveChoreHandler(choreBot))).Methods(http.MethodDelete)
	router.HandleFunc("/chores/{name}", auth(endpoints.UpdateChoreHandler(choreBot))).Methods(http.MethodPatch)
	router.HandleFunc("/chores/{name}/vote", auth(endpoints.StartVoteHandler(choreBot))).Methods(http.MethodPost)
	router.HandleFunc("/chores/vote/settle", auth(endpoints.SettleVoteHandler(choreBot))).Methods(http.MethodPost)

	router.HandleFunc("/settings", auth(endpoints.SettingsHandler(choreBot))).Methods(http.MethodGet, http.MethodPut)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ListenPort),
		Handler:      middleware.CorsMiddleware(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		fmt.Printf("Starting %s on :%d\n", ServiceName, cfg.ListenPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server crashed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down service...")

	utils.SetHealthStatus("SHUTTING_DOWN", "Service is shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("Redis close error: %v", err)
	}

	log.Println("Service exited cleanly")
}
