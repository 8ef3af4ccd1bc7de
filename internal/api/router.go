package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/assetdesk/internal/lifecycle"
	"github.com/erazemk/assetdesk/internal/model"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, svc *lifecycle.Service, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	categoriesHandler := &CategoriesHandler{DB: db}
	assetsHandler := &AssetsHandler{Service: svc}
	assignmentsHandler := &AssignmentsHandler{Service: svc}
	returningHandler := &ReturningHandler{Service: svc}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)
	admin := func(h http.HandlerFunc) http.Handler { return authMW(requireAdmin(h)) }
	authed := func(h http.HandlerFunc) http.Handler { return authMW(h) }

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", authed(authHandler.ChangePassword))
	mux.Handle("POST /api/auth/logout", authed(authHandler.Logout))

	// Users (admin only).
	mux.Handle("GET /api/users", admin(usersHandler.List))
	mux.Handle("POST /api/users", admin(usersHandler.Create))
	mux.Handle("PUT /api/users/{id}/disabled", admin(usersHandler.SetDisabled))

	// Categories (admin only).
	mux.Handle("GET /api/categories", admin(categoriesHandler.List))
	mux.Handle("POST /api/categories", admin(categoriesHandler.Create))

	// Assets (admin only).
	mux.Handle("GET /api/assets", admin(assetsHandler.List))
	mux.Handle("POST /api/assets", admin(assetsHandler.Create))
	mux.Handle("GET /api/assets/{id}", admin(assetsHandler.Get))
	mux.Handle("PUT /api/assets/{id}", admin(assetsHandler.Update))
	mux.Handle("DELETE /api/assets/{id}", admin(assetsHandler.Delete))
	mux.Handle("PUT /api/assets/{id}/state", admin(assetsHandler.Transition))

	// Assignments: management (admin), own list and response (all roles).
	mux.Handle("GET /api/assignments", admin(assignmentsHandler.List))
	mux.Handle("POST /api/assignments", admin(assignmentsHandler.Create))
	mux.Handle("GET /api/assignments/mine", authed(assignmentsHandler.Mine))
	mux.Handle("PUT /api/assignments/{id}/response", authed(assignmentsHandler.Respond))
	mux.Handle("DELETE /api/assignments/{id}", admin(assignmentsHandler.Delete))

	// Returning requests: create (all roles), list and complete (admin).
	mux.Handle("GET /api/returning-requests", admin(returningHandler.List))
	mux.Handle("POST /api/returning-requests", authed(returningHandler.Create))
	mux.Handle("PUT /api/returning-requests/{id}/completion", admin(returningHandler.Complete))

	return mux
}
