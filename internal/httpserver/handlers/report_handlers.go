package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"gagetrack/internal/services/report"
)

func CalibrationReport(svc *report.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gageID, err := urlID(r, "gage_id")
		if err != nil {
			respondError(w, err)
			return
		}
		rep, err := svc.Calibration(r.Context(), gageID)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, rep)
	}
}

func IssueLogReport(svc *report.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gageID, err := urlID(r, "gage_id")
		if err != nil {
			respondError(w, err)
			return
		}
		rep, err := svc.Issues(r.Context(), gageID)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, rep)
	}
}
