package main

import (
	"net/http"

	"github.com/diewo77/bill-ease/auth"
	"github.com/diewo77/bill-ease/httpx"
	"github.com/diewo77/bill-ease/internal/handlers"
	"github.com/diewo77/bill-ease/internal/services"
	"github.com/diewo77/bill-ease/internal/storage"
	"github.com/diewo77/bill-ease/pdf"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux      *http.ServeMux
	db       *gorm.DB
	sessions *auth.Manager
	logger   *zap.Logger

	auth      *handlers.AuthHandler
	products  *handlers.ProductHandler
	invoices  *handlers.InvoiceHandler
	settings  *handlers.SettingsHandler
	dashboard *handlers.DashboardHandler
}

// NewApp wires services and handlers over db and blob.
func NewApp(db *gorm.DB, blob storage.Blob, sessions *auth.Manager, renderer *pdf.Renderer, logger *zap.Logger) *App {
	users := services.NewUserService(db, logger)
	inventory := services.NewInventoryService(db, logger)
	settings := services.NewSettingsService(db, blob, logger)
	invoices := services.NewInvoiceService(db, inventory, settings, renderer, logger)
	dashboard := services.NewDashboardService(db, inventory, invoices)

	sessions.WithVerifier(users.Exists)

	app := &App{
		mux:       http.NewServeMux(),
		db:        db,
		sessions:  sessions,
		logger:    logger,
		auth:      handlers.NewAuthHandler(users, sessions, logger),
		products:  handlers.NewProductHandler(inventory, logger),
		invoices:  handlers.NewInvoiceHandler(invoices, logger),
		settings:  handlers.NewSettingsHandler(settings, logger),
		dashboard: handlers.NewDashboardHandler(dashboard, logger),
	}
	app.setupRoutes()
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.sessions.Middleware(a.mux).ServeHTTP(w, r)
}

func (a *App) setupRoutes() {
	// Public routes
	a.mux.HandleFunc("GET /healthz", a.health)
	a.mux.HandleFunc("POST /signup", a.auth.Signup)
	a.mux.HandleFunc("POST /login", a.auth.Login)
	a.mux.HandleFunc("POST /logout", a.auth.Logout)
	a.mux.HandleFunc("GET /branding", a.settings.Branding)
	a.mux.HandleFunc("GET /branding/logo", a.settings.BrandingLogo)

	// Authenticated routes
	a.mux.Handle("GET /dashboard", a.requireAuth(a.dashboard.Show))

	a.mux.Handle("GET /products", a.requireAuth(a.products.List))
	a.mux.Handle("POST /products", a.requireAuth(a.products.Create))

	a.mux.Handle("GET /invoices", a.requireAuth(a.invoices.List))
	a.mux.Handle("POST /invoices", a.requireAuth(a.invoices.Create))
	a.mux.Handle("GET /invoices/export.xlsx", a.requireAuth(a.invoices.Export))
	a.mux.Handle("GET /invoices/{id}", a.requireAuth(a.invoices.View))
	a.mux.Handle("GET /invoices/{id}/pdf", a.requireAuth(a.invoices.PDF))

	a.mux.Handle("GET /settings", a.requireAuth(a.settings.Agency))
	a.mux.Handle("PUT /settings", a.requireAuth(a.settings.UpdateAgency))
	a.mux.Handle("POST /settings/logo", a.requireAuth(a.settings.UploadAgencyLogo))

	a.mux.Handle("PUT /branding", a.requireAuth(a.settings.UpdateBranding))
	a.mux.Handle("POST /branding/logo", a.requireAuth(a.settings.UploadBrandingLogo))
}

func (a *App) requireAuth(h http.HandlerFunc) http.Handler {
	return a.sessions.RequireSession(h)
}

func (a *App) health(w http.ResponseWriter, r *http.Request) {
	sqlDB, err := a.db.DB()
	if err == nil {
		err = sqlDB.PingContext(r.Context())
	}
	if err != nil {
		a.logger.Warn("health check failed", zap.Error(err))
		httpx.JSONError(w, http.StatusServiceUnavailable, "database_unavailable", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
