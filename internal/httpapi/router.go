package httpapi

import (
	"net/http"

	"github.com/PabloPavan/pharmaerp_api/internal/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type App struct {
	ServiceName string

	Health      *HealthHandler
	Auth        *AuthHandler
	Users       *UsersHandler
	Departments *DepartmentsHandler
	Dosages     *DosagesHandler
	Customers   *CustomersHandler
	Items       *ItemsHandler
	SalesOrders *SalesOrdersHandler
	Dashboard   *DashboardHandler

	Authenticator      Authenticator
	AuthOptions        AuthOptions
	CORSAllowedOrigins []string
	SwaggerEnabled     bool
}

func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(Recoverer)
	r.Use(telemetry.ChiTraceMiddleware(app.ServiceName))
	r.Use(telemetry.ChiMetricsMiddleware)
	r.Use(telemetry.ChiLogMiddleware(app.ServiceName))
	if len(app.CORSAllowedOrigins) > 0 {
		r.Use(CORS(app.CORSAllowedOrigins))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Status: "Error", Message: msgNotFound})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Status: "Error", Message: "Method not allowed."})
	})

	r.Get("/health", app.Health.Get)
	if app.SwaggerEnabled {
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	}

	r.Route("/v1", func(r chi.Router) {
		// Public
		r.Post("/auth/login", handle(app.Auth.Login))

		// Protected
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(app.Authenticator, app.AuthOptions))

			r.Get("/auth/me", handle(app.Auth.Me))

			r.Route("/users", func(r chi.Router) {
				// Self endpoints
				r.Get("/me", handle(app.Users.Me))
				r.Put("/me", handle(app.Users.UpdateMe))

				// Admin endpoints
				r.Get("/", handle(app.Users.List))
				r.Post("/", handle(app.Users.Create))
				r.Get("/{id}", handle(app.Users.GetByID))
				r.Put("/{id}", handle(app.Users.Update))
				r.Delete("/{id}", handle(app.Users.Delete))
			})

			r.Route("/departments", func(r chi.Router) {
				r.Get("/", handle(app.Departments.ListDepartments))
				r.Post("/", handle(app.Departments.CreateDepartment))
				r.Get("/{id}", handle(app.Departments.GetDepartment))
				r.Put("/{id}", handle(app.Departments.UpdateDepartment))
				r.Delete("/{id}", handle(app.Departments.DeleteDepartment))
			})

			r.Route("/divisions", func(r chi.Router) {
				r.Get("/", handle(app.Departments.ListDivisions))
				r.Post("/", handle(app.Departments.CreateDivision))
				r.Get("/{id}", handle(app.Departments.GetDivision))
				r.Put("/{id}", handle(app.Departments.UpdateDivision))
				r.Delete("/{id}", handle(app.Departments.DeleteDivision))
			})

			r.Route("/dosages", func(r chi.Router) {
				r.Get("/", handle(app.Dosages.List))
				r.Post("/", handle(app.Dosages.Create))
				r.Get("/{id}", handle(app.Dosages.GetByID))
				r.Put("/{id}", handle(app.Dosages.Update))
				r.Delete("/{id}", handle(app.Dosages.Delete))
			})

			r.Route("/customers", func(r chi.Router) {
				r.Get("/", handle(app.Customers.List))
				r.Post("/", handle(app.Customers.Create))
				r.Get("/{id}", handle(app.Customers.GetByID))
				r.Put("/{id}", handle(app.Customers.Update))
				r.Delete("/{id}", handle(app.Customers.Delete))
			})

			r.Route("/items", func(r chi.Router) {
				r.Get("/", handle(app.Items.List))
				r.Post("/", handle(app.Items.Create))
				r.Get("/{id}", handle(app.Items.GetByID))
				r.Put("/{id}", handle(app.Items.Update))
				r.Delete("/{id}", handle(app.Items.Delete))
			})

			r.Route("/sales-orders", func(r chi.Router) {
				r.Get("/", handle(app.SalesOrders.List))
				r.Post("/", handle(app.SalesOrders.Create))
				r.Get("/{id}", handle(app.SalesOrders.GetByID))
				r.Patch("/{id}/status", handle(app.SalesOrders.UpdateStatus))
				r.Get("/{id}/invoice.pdf", handle(app.SalesOrders.Invoice))
			})

			r.Get("/dashboard", handle(app.Dashboard.Get))
		})
	})
	return r
}
