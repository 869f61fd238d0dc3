package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/aoacon/portal-api/internal/auth"
	"github.com/aoacon/portal-api/internal/config"
	"github.com/aoacon/portal-api/internal/database"
	"github.com/aoacon/portal-api/internal/handlers"
	"github.com/aoacon/portal-api/internal/models"
	"github.com/aoacon/portal-api/internal/notifier"
	"github.com/aoacon/portal-api/internal/payment"
	"github.com/bwmarrin/discordgo"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	// Load Configuration
	cfg := config.LoadConfig()

	// Connect to Database
	db := database.Connect(cfg)
	seedAdmin(cfg, db)

	// Organising committee notifications
	var committeeNotifier notifier.Notifier
	if cfg.DiscordBotToken != "" {
		session, err := discordgo.New("Bot " + cfg.DiscordBotToken)
		if err != nil {
			log.Printf("Discord notifier not initialized: %v", err)
		} else {
			committeeNotifier = notifier.NewDiscordNotifier(session, cfg.DiscordNotificationsChannelID)
		}
	}

	// Initialize Handlers
	gateway := payment.NewClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	authHandler := auth.NewAuthHandler(cfg, db)
	registrationHandler := handlers.NewRegistrationHandler(db, committeeNotifier, authHandler)
	paymentHandler := handlers.NewPaymentHandler(db, gateway, cfg.RazorpayKeySecret, committeeNotifier, authHandler)
	attendanceHandler := handlers.NewAttendanceHandler(db, authHandler)
	adminHandler := handlers.NewAdminHandler(db, authHandler)

	// Initialize Router
	r := chi.NewRouter()

	if cfg.EnableCORS {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{cfg.FrontendURL},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
		}))
	}

	// Register Routes
	handlers.RegisterRoutes(r, authHandler, registrationHandler, paymentHandler, attendanceHandler, adminHandler)

	// Start Server
	log.Printf("Starting server on port %s", cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// seedAdmin creates the back-office account from the environment on
// first boot.
func seedAdmin(cfg *config.Config, db *gorm.DB) {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return
	}
	var admin models.User
	if err := db.FirstOrInit(&admin, models.User{Email: cfg.AdminEmail}).Error; err != nil {
		log.Printf("Failed to look up admin account: %v", err)
		return
	}
	if admin.ID != 0 {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Failed to hash admin password: %v", err)
		return
	}
	admin.Name = "Portal Admin"
	admin.Role = models.RoleAdmin
	admin.PasswordHash = string(hash)
	if err := db.Save(&admin).Error; err != nil {
		log.Printf("Failed to seed admin account: %v", err)
	}
}
