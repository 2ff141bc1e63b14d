package controllers

import (
	"net/http"

	"bizdash/app/models"
	"bizdash/app/services"
	"bizdash/app/session"
)

// AuthController handles registration, login and account management
type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

type tokenResponse struct {
	Token string           `json:"token"`
	User  models.Account   `json:"user"`
	Role  session.RoleInfo `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (ac *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var reg models.Registration
	if !decodeJSON(w, r, &reg) {
		return
	}
	acc, token, err := ac.auth.Register(reg)
	if err != nil {
		sendFailure(w, err)
		return
	}
	sendJSON(w, http.StatusCreated, tokenResponse{Token: token, User: acc, Role: session.LookupRole(acc.Role)})
}

func (ac *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	acc, token, err := ac.auth.Login(req.Email, req.Password)
	if err != nil {
		sendFailure(w, err)
		return
	}
	sendJSON(w, http.StatusOK, tokenResponse{Token: token, User: acc, Role: session.LookupRole(acc.Role)})
}

func (ac *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	if err := ac.auth.Logout(); err != nil {
		sendFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the logged-in account and its role
func (ac *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	acc, ok := ac.auth.Current()
	if !ok {
		sendError(w, "Not logged in", http.StatusUnauthorized)
		return
	}
	sendJSON(w, http.StatusOK, map[string]any{
		"user": acc,
		"role": session.LookupRole(acc.Role),
	})
}

func (ac *AuthController) Accounts(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, ac.auth.Accounts())
}

func (ac *AuthController) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "account")
	if !ok {
		return
	}
	var patch models.AccountPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	acc, err := ac.auth.UpdateAccount(id, patch)
	if err != nil {
		sendFailure(w, err)
		return
	}
	sendJSON(w, http.StatusOK, acc)
}

func (ac *AuthController) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "account")
	if !ok {
		return
	}
	if err := ac.auth.DeleteAccount(id); err != nil {
		sendFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Roles lists the role catalogue
func (ac *AuthController) Roles(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, session.Roles())
}
