package routes

import (
	"net/http"

	"bizdash/app/controllers"
	"bizdash/app/middleware"
	"bizdash/app/models"
	"bizdash/app/services"

	"github.com/gorilla/mux"
)

// Deps are the services the HTTP API is built on.
type Deps struct {
	Dashboard   *services.DashboardService
	Auth        *services.AuthService
	CORSOrigins []string
}

// SetupRoutes defines the application's routes and returns the root handler.
func SetupRoutes(d Deps) http.Handler {
	router := mux.NewRouter()

	// Apply global middleware
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.ContentTypeJSON)

	postController := controllers.NewPostController(d.Dashboard)
	dataController := controllers.NewDataController(d.Dashboard, d.Auth)
	authController := controllers.NewAuthController(d.Auth)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	guard := func(perm models.Permission, h http.HandlerFunc) http.Handler {
		return middleware.RequirePermission(d.Auth, perm)(h)
	}

	// Auth endpoints
	api.HandleFunc("/auth/register", authController.Register).Methods("POST")
	api.HandleFunc("/auth/login", authController.Login).Methods("POST")
	api.HandleFunc("/auth/roles", authController.Roles).Methods("GET")
	api.Handle("/auth/logout", middleware.RequireAuth(d.Auth)(http.HandlerFunc(authController.Logout))).Methods("POST")
	api.Handle("/auth/me", middleware.RequireAuth(d.Auth)(http.HandlerFunc(authController.Me))).Methods("GET")

	// Posts endpoints
	api.Handle("/posts", guard(models.PermRead, postController.Index)).Methods("GET")
	api.Handle("/posts/refresh", guard(models.PermRead, postController.Refresh)).Methods("POST")
	api.Handle("/posts", guard(models.PermWrite, postController.Create)).Methods("POST")
	api.Handle("/posts/{id:[0-9]+}", guard(models.PermWrite, postController.Update)).Methods("PUT")
	api.Handle("/posts/{id:[0-9]+}", guard(models.PermDelete, postController.Delete)).Methods("DELETE")
	api.Handle("/view", guard(models.PermRead, postController.SetView)).Methods("PUT")

	// Read-only collections and notifications
	api.Handle("/users", guard(models.PermRead, dataController.Users)).Methods("GET")
	api.Handle("/comments", guard(models.PermRead, dataController.Comments)).Methods("GET")
	api.Handle("/analytics", guard(models.PermViewAnalytics, dataController.Analytics)).Methods("GET")
	api.Handle("/notifications", middleware.RequireAuth(d.Auth)(http.HandlerFunc(dataController.Notifications))).Methods("GET")
	api.Handle("/notifications/{id:[0-9]+}", middleware.RequireAuth(d.Auth)(http.HandlerFunc(dataController.DismissNotification))).Methods("DELETE")

	// Account management
	api.Handle("/accounts", guard(models.PermManageUsers, authController.Accounts)).Methods("GET")
	api.Handle("/accounts/{id:[0-9]+}", guard(models.PermManageUsers, authController.UpdateAccount)).Methods("PUT")
	api.Handle("/accounts/{id:[0-9]+}", guard(models.PermManageUsers, authController.DeleteAccount)).Methods("DELETE")

	return middleware.CORS(d.CORSOrigins, router)
}
