package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gagetrack/internal/auth"
	"gagetrack/internal/config"
	"gagetrack/internal/httpserver/handlers"
	"gagetrack/internal/mail"
	"gagetrack/internal/services/issuance"
	"gagetrack/internal/services/measurement"
	"gagetrack/internal/services/notification"
	"gagetrack/internal/services/report"
)

func NewRouter(db *gorm.DB, cfg config.Config, lg *zap.SugaredLogger) http.Handler {
	ttl, err := time.ParseDuration(cfg.JWTExpiresIn)
	if err != nil {
		ttl = time.Hour
	}
	signer := auth.NewSigner(cfg.JWTSecret, ttl)
	dispatcher := notification.NewDispatcher(db, mail.NewSMTP(cfg.SMTP), cfg.SMTP, lg)
	issues := issuance.New(db)
	measurements := measurement.New(db)
	reports := report.New(db)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, middleware.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Post("/api/auth/register", handlers.Register(db, lg))
	r.Post("/api/auth/login", handlers.Login(db, signer, lg))

	r.Group(func(protected chi.Router) {
		protected.Use(auth.JWTAuth(db, signer))
		protected.Get("/api/auth/me", handlers.Me(db, lg))
		protected.Post("/api/auth/logout", handlers.Logout(db))

		protected.Get("/api/gages", handlers.ListGages(db, lg))
		protected.Post("/api/gages", handlers.CreateGage(db, lg))
		protected.Get("/api/gages/{gage_id}", handlers.GetGage(db, lg))
		protected.Put("/api/gages/{gage_id}", handlers.UpdateGage(db, lg))
		protected.Delete("/api/gages/{gage_id}", handlers.DeleteGage(db, lg))

		protected.Get("/api/calibrations", handlers.ListCalibrations(db, lg))
		protected.Post("/api/calibrations", handlers.CreateCalibration(db, lg))
		protected.Get("/api/calibrations/{calibration_id}", handlers.GetCalibration(db, lg))
		protected.Put("/api/calibrations/{calibration_id}", handlers.UpdateCalibration(db, lg))
		protected.Delete("/api/calibrations/{calibration_id}", handlers.DeleteCalibration(db, lg))

		protected.Post("/api/calibrations/{calibration_id}/notify", handlers.SendNotification(dispatcher, lg))
		protected.Post("/api/calibrations/{calibration_id}/notifications/read", handlers.MarkNotificationRead(dispatcher, lg))
		protected.Get("/api/notifications", handlers.MyNotifications(dispatcher, lg))

		protected.Post("/api/issue-log", handlers.CreateIssueLog(issues, lg))
		protected.Get("/api/issue-log", handlers.ListIssueLogs(db, lg))
		protected.Get("/api/issue-log/{issue_id}", handlers.GetIssueLog(db, lg))
		protected.Put("/api/issue-log/{issue_id}", handlers.UpdateIssueLog(issues, lg))
		protected.Delete("/api/issue-log/{issue_id}", handlers.DeleteIssueLog(db, lg))
		protected.Get("/api/issue-log/user/{user_id}", handlers.UserIssueActivity(issues, lg))

		protected.Get("/api/measurements/unique-gage-calibrations", handlers.UniqueGageCalibrations(measurements, lg))
		protected.Get("/api/measurements", handlers.ListMeasurements(db, lg))
		protected.Post("/api/measurements", handlers.CreateMeasurement(db, lg))
		protected.Put("/api/measurements/{measurement_id}", handlers.UpdateMeasurement(db, lg))
		protected.Delete("/api/measurements/{measurement_id}", handlers.DeleteMeasurement(db, lg))

		protected.Post("/api/labels", handlers.CreateLabel(db, lg))
		protected.Get("/api/labels", handlers.ListLabels(db, lg))
		protected.Get("/api/labels/{label_id}", handlers.GetLabel(db, lg))
		protected.Delete("/api/labels/{label_id}", handlers.DeleteLabel(db, lg))

		protected.Get("/api/label-templates", handlers.ListLabelTemplates(db, lg))
		protected.Get("/api/label-templates/{template_id}", handlers.GetLabelTemplate(db, lg))

		protected.Get("/api/reports/calibration/{gage_id}", handlers.CalibrationReport(reports, lg))
		protected.Get("/api/reports/issue-log/{gage_id}", handlers.IssueLogReport(reports, lg))

		protected.Group(func(admin chi.Router) {
			admin.Use(auth.RequireRole(auth.RoleAdmin))
			admin.Post("/api/label-templates", handlers.CreateLabelTemplate(db, lg))
			admin.Put("/api/label-templates/{template_id}", handlers.UpdateLabelTemplate(db, lg))
			admin.Delete("/api/label-templates/{template_id}", handlers.DeleteLabelTemplate(db, lg))

			admin.Get("/api/admin/users", handlers.ListUsers(db, lg))
			admin.Patch("/api/admin/users/{id}", handlers.UpdateUser(db, lg))
			admin.Delete("/api/admin/users/{id}", handlers.DeleteUser(db, lg))
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	return r
}
