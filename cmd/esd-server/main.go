package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/SkyePiper/esd-tracker-backend/internal/api"
	"github.com/SkyePiper/esd-tracker-backend/internal/auth"
	"github.com/SkyePiper/esd-tracker-backend/internal/config"
	"github.com/SkyePiper/esd-tracker-backend/internal/controller"
	"github.com/SkyePiper/esd-tracker-backend/internal/email"
	"github.com/SkyePiper/esd-tracker-backend/internal/realtime"
	"github.com/SkyePiper/esd-tracker-backend/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

// main is the entry point for the ESD tracker backend server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("INFO: No .env file found, using environment variables from the system.")
	}

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("FATAL: Failed to load application configuration: %v", err)
	}

	if err := os.MkdirAll(cfg.DataPath, 0755); err != nil {
		log.Fatalf("FATAL: Failed to create data directory at %s: %v", cfg.DataPath, err)
	}

	db, err := store.Open(cfg.DatabaseFile)
	if err != nil {
		log.Fatalf("FATAL: Failed to open database: %v", err)
	}
	defer db.Close()

	log.Println("INFO: Database opened.")

	// The admin password is hashed up front so the seed never sees
	// plaintext. The seed only fires when the user table is first created.
	adminHash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		log.Fatalf("FATAL: Failed to hash admin password: %v", err)
	}

	users, err := store.NewUsers(db, store.AdminSeed{Email: cfg.AdminEmail, PasswordHash: adminHash})
	if err != nil {
		log.Fatalf("FATAL: Failed to build user store: %v", err)
	}
	sessions, err := store.NewSessions(db)
	if err != nil {
		log.Fatalf("FATAL: Failed to build training session store: %v", err)
	}
	attendance, err := store.NewAttendanceLinks(db)
	if err != nil {
		log.Fatalf("FATAL: Failed to build attendance store: %v", err)
	}

	ctx := context.Background()
	for _, init := range []interface {
		Init(context.Context) error
		Name() string
	}{users.Table, sessions.Table, attendance.Table} {
		if err := init.Init(ctx); err != nil {
			log.Fatalf("FATAL: Failed to initialize table %s: %v", init.Name(), err)
		}
	}

	log.Println("INFO: Database schema verified.")

	authService := auth.NewService(users, cfg.JwtSecret, cfg.TokenTTL)
	broker := realtime.NewBroker()
	emailService := email.NewService(email.Config{
		Host:     cfg.SmtpHost,
		Port:     cfg.SmtpPort,
		Username: cfg.SmtpUser,
		Password: cfg.SmtpPass,
		Sender:   cfg.SmtpSender,
	})

	serverAPI := api.NewServer(cfg,
		controller.NewUsers(users),
		controller.NewTrainingSessions(sessions, users, attendance),
		authService, broker, emailService)

	router := chi.NewRouter()
	serverAPI.RegisterRoutes(router)

	log.Println("INFO: API routes registered.")
	log.Printf("INFO: ESD tracker server starting on %s", cfg.ServerAddr)

	if err := http.ListenAndServe(cfg.ServerAddr, router); err != nil {
		log.Fatalf("FATAL: Failed to start server: %v", err)
	}
}
