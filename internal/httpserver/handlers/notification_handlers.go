package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"gagetrack/internal/auth"
	"gagetrack/internal/services/notification"
)

// SendNotification triggers the email dispatch for one calibration record.
// Pre-dispatch problems (missing record, no email, incomplete mail config) map
// through the error taxonomy; a transport failure comes back as sent=false.
func SendNotification(d *notification.Dispatcher, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "calibration_id")
		if err != nil {
			respondError(w, err)
			return
		}
		sent, err := d.Send(r.Context(), id)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, map[string]any{"sent": sent})
	}
}

func MarkNotificationRead(d *notification.Dispatcher, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "calibration_id")
		if err != nil {
			respondError(w, err)
			return
		}
		rec, err := d.MarkRead(r.Context(), id)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, rec)
	}
}

// MyNotifications is the caller's inbox: their dispatched calibration
// notifications, newest first.
func MyNotifications(d *notification.Dispatcher, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := d.Inbox(r.Context(), auth.UserID(r.Context()))
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, recs)
	}
}
