package controllers

import (
	"net/http"

	"bizdash/app/analytics"
	"bizdash/app/services"
)

// DataController serves the read-only collections, analytics and
// notifications
type DataController struct {
	dashboard *services.DashboardService
	auth      *services.AuthService
}

func NewDataController(dashboard *services.DashboardService, auth *services.AuthService) *DataController {
	return &DataController{dashboard: dashboard, auth: auth}
}

func (dc *DataController) Users(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, dc.dashboard.State().Users)
}

func (dc *DataController) Comments(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, dc.dashboard.State().Comments)
}

// Analytics returns every chart computed from the current state, plus the
// role split of the local accounts
func (dc *DataController) Analytics(w http.ResponseWriter, r *http.Request) {
	report := analytics.Build(dc.dashboard.State())
	report.AccountsByRole = analytics.AccountsByRole(dc.auth.Accounts())
	sendJSON(w, http.StatusOK, report)
}

func (dc *DataController) Notifications(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, dc.dashboard.Notifications())
}

// DismissNotification removes a notification; unknown ids succeed too
func (dc *DataController) DismissNotification(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "notification")
	if !ok {
		return
	}
	dc.dashboard.DismissNotification(id)
	w.WriteHeader(http.StatusNoContent)
}
