package main

import (
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"gagetrack/internal/auth"
	"gagetrack/internal/config"
	"gagetrack/internal/httpserver"
	"gagetrack/internal/logger"
	"gagetrack/internal/models"
)

func main() {
	_ = godotenv.Load()
	lg := logger.New()
	defer lg.Sync()

	cfg := config.Load()
	if cfg.JWTSecret == "" {
		lg.Fatalw("JWT_SECRET_KEY is empty")
	}
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL()), &gorm.Config{})
	if err != nil {
		lg.Fatalw("db connect failed", "error", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Gage{},
		&models.CalibrationRecord{},
		&models.CalibrationMeasurement{},
		&models.IssueLog{},
		&models.Label{},
		&models.LabelTemplate{},
		&models.Session{},
	); err != nil {
		lg.Fatalw("automigrate failed", "error", err)
	}
	seedDefaultAdmin(db, lg)

	router := httpserver.NewRouter(db, cfg, lg)
	lg.Infow("listening", "port", cfg.HTTPPort)
	if err := http.ListenAndServe(":"+cfg.HTTPPort, router); err != nil {
		log.Fatal(err)
	}
}

func seedDefaultAdmin(db *gorm.DB, lg *zap.SugaredLogger) {
	var count int64
	db.Model(&models.User{}).Where("role = ?", auth.RoleAdmin).Count(&count)
	if count > 0 {
		return
	}
	hash, _ := auth.HashPassword("changeme123")
	u := models.User{
		Username:     "admin",
		Email:        "admin@gagetrack.local",
		PasswordHash: hash,
		Role:         auth.RoleAdmin,
		CreatedAt:    time.Now(),
	}
	if err := db.Create(&u).Error; err != nil {
		lg.Warnw("admin seed failed", "error", err)
		return
	}
	lg.Infow("seeded default admin", "username", "admin")
}
