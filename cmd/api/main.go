package main

import (
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"dealdesk/internal/auth"
	"dealdesk/internal/contracts"
	"dealdesk/internal/httpserver"
	"dealdesk/internal/logger"
	"dealdesk/internal/models"
	"dealdesk/internal/notify"
	"dealdesk/internal/pdf"
)

func main() {
	_ = godotenv.Load()
	lg := logger.New()
	defer lg.Sync()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		lg.Fatalw("DATABASE_URL is empty")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		lg.Fatalw("db connect failed", "error", err)
	}
	if err := db.AutoMigrate(
		&models.User{}, &models.Session{},
		&models.Contract{}, &models.Deliverable{}, &models.Signature{},
		&models.ContractTemplate{}, &models.Proposal{}, &models.ProposalItem{},
		&models.Invoice{}, &models.InvoiceItem{}, &models.ContractEvent{},
	); err != nil {
		lg.Fatalw("automigrate failed", "error", err)
	}
	seedDefaultOwner(db, lg)

	var sender notify.Sender
	if url := os.Getenv("NOTIFY_WEBHOOK_URL"); url != "" {
		sender = notify.NewWebhook(url)
	} else {
		sender = notify.Nop{Lg: lg}
	}

	renderer := pdf.NewGotenberg(gotenbergURL(), renderTimeout())
	store := contracts.NewGormStore(db)
	svc := contracts.NewService(store, sender, renderer, lg, publicBaseURL())

	router := httpserver.NewRouter(db, svc, lg)
	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}
	lg.Infow("listening", "port", port)
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatal(err)
	}
}

func gotenbergURL() string {
	if u := os.Getenv("GOTENBERG_URL"); u != "" {
		return u
	}
	return "http://gotenberg:3000"
}

func renderTimeout() time.Duration {
	if s := os.Getenv("RENDER_TIMEOUT"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			return d
		}
	}
	return 30 * time.Second
}

func publicBaseURL() string {
	if u := os.Getenv("PUBLIC_BASE_URL"); u != "" {
		return u
	}
	return "http://localhost:8080"
}

func seedDefaultOwner(db *gorm.DB, lg *zap.SugaredLogger) {
	email := strings.ToLower(os.Getenv("SEED_OWNER_EMAIL"))
	if email == "" {
		return
	}
	var count int64
	db.Model(&models.User{}).Where("LOWER(email) = ?", email).Count(&count)
	if count > 0 {
		return
	}
	pw := os.Getenv("SEED_OWNER_PASSWORD")
	if pw == "" {
		lg.Warnw("SEED_OWNER_EMAIL set but SEED_OWNER_PASSWORD empty, skipping seed")
		return
	}
	hash, err := auth.HashPassword(pw)
	if err != nil {
		lg.Warnw("owner seed failed", "error", err)
		return
	}
	u := models.User{Email: email, PasswordHash: hash, IsActive: true, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	if err := db.Create(&u).Error; err != nil {
		lg.Warnw("owner seed failed", "error", err)
		return
	}
	lg.Infow("seeded owner account", "email", email)
}
