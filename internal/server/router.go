package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/pepsifleet/fleet-maintenance/internal/auth"
	"github.com/pepsifleet/fleet-maintenance/internal/authz"
	"github.com/pepsifleet/fleet-maintenance/internal/config"
	"github.com/pepsifleet/fleet-maintenance/internal/db"
	"github.com/pepsifleet/fleet-maintenance/internal/fotos"
	"github.com/pepsifleet/fleet-maintenance/internal/handlers"
	"github.com/pepsifleet/fleet-maintenance/internal/middleware"
	"github.com/pepsifleet/fleet-maintenance/internal/notify"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps carries everything the router needs.
type Deps struct {
	Config      *config.Config
	Collections *db.Collections
	AuthService *auth.Service
	Publisher   notify.Publisher
	FotoStore   fotos.Store
}

// NewRouter builds the chi router with all endpoints wired.
func NewRouter(d Deps) http.Handler {
	authHandler := handlers.NewAuthHandler(d.AuthService, d.Collections.Users)
	orderHandler := handlers.NewWorkOrderHandler(d.Collections.WorkOrders, d.Publisher)
	accessHandler := handlers.NewAccessHandler(d.Collections.Access, d.Collections.WorkOrders)
	requestHandler := handlers.NewRequestHandler(d.Collections.Requests, d.Collections.WorkOrders, d.Collections.Linker, d.Publisher)
	vehicleHandler := handlers.NewVehicleHandler(d.Collections.Vehicles)
	partHandler := handlers.NewSparePartHandler(d.Collections.SpareParts)
	userHandler := handlers.NewUserHandler(d.AuthService, d.Collections.Users)
	reportHandler := handlers.NewReportHandler(d.Collections.WorkOrders)
	uploadHandler := handlers.NewUploadHandler(d.FotoStore)

	authMW := middleware.NewAuthMiddleware(d.AuthService)
	rateLimit := middleware.NewRateLimitMiddleware()

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	if d.Config != nil && d.Config.FotosDir != "" {
		r.Handle("/fotos/*", http.StripPrefix("/fotos/", http.FileServer(http.Dir(d.Config.FotosDir))))
	}

	r.Group(func(r chi.Router) {
		r.Use(rateLimit.RateLimit(20, 60))
		r.Post("/api/auth/login", authHandler.Login)
		r.Post("/api/auth/register", authHandler.Register)
	})

	r.Group(func(r chi.Router) {
		r.Use(authMW.Authenticate)

		r.Get("/api/auth/perfil", authHandler.GetProfile)
		r.Post("/api/auth/cambiar-password", authHandler.ChangePassword)

		r.With(authMW.RequirePolicy(authz.ResOrdenesTrabajo, authz.ActVer)).
			Get("/api/ordenes-trabajo", orderHandler.List)
		r.With(authMW.RequirePolicy(authz.ResOrdenesTrabajo, authz.ActVer)).
			Get("/api/ordenes-trabajo/horarios-ocupados", orderHandler.BusySlots)
		r.With(authMW.RequirePolicy(authz.ResOrdenesTrabajo, authz.ActVer)).
			Get("/api/ordenes-trabajo/{id}", orderHandler.Get)
		r.With(authMW.RequirePolicy(authz.ResOrdenesTrabajo, authz.ActCrear)).
			Post("/api/ordenes-trabajo", orderHandler.Create)
		r.With(authMW.RequirePolicy(authz.ResOrdenesTrabajo, authz.ActActualizar)).
			Put("/api/ordenes-trabajo/{id}", orderHandler.Update)

		r.With(authMW.RequirePolicy(authz.ResRegistrosAcceso, authz.ActVer)).
			Get("/api/registros-acceso", accessHandler.List)
		r.With(authMW.RequirePolicy(authz.ResRegistrosAcceso, authz.ActCrear)).
			Post("/api/registros-acceso", accessHandler.Create)
		r.With(authMW.RequirePolicy(authz.ResRegistrosAcceso, authz.ActActualizar)).
			Put("/api/control-salida", accessHandler.ControlSalida)

		r.With(authMW.RequirePolicy(authz.ResSolicitudes, authz.ActVer)).
			Get("/api/solicitudes", requestHandler.List)
		r.With(authMW.RequirePolicy(authz.ResSolicitudes, authz.ActCrear)).
			Post("/api/solicitudes", requestHandler.Create)
		r.With(authMW.RequirePolicy(authz.ResSolicitudes, authz.ActActualizar)).
			Put("/api/solicitudes", requestHandler.Convert)
		r.With(authMW.RequirePolicy(authz.ResSolicitudes, authz.ActEliminar)).
			Delete("/api/solicitudes", requestHandler.Delete)

		r.With(authMW.RequirePolicy(authz.ResRepuestos, authz.ActVer)).
			Get("/api/repuestos", partHandler.List)
		r.With(authMW.RequirePolicy(authz.ResRepuestos, authz.ActCrear)).
			Post("/api/repuestos", partHandler.Create)
		r.With(authMW.RequirePolicy(authz.ResRepuestos, authz.ActEliminar)).
			Delete("/api/repuestos/{id}", partHandler.Delete)

		r.With(authMW.RequirePolicy(authz.ResVehiculos, authz.ActVer)).
			Get("/api/vehiculos", vehicleHandler.List)
		r.With(authMW.RequirePolicy(authz.ResVehiculos, authz.ActCrear)).
			Post("/api/vehiculos", vehicleHandler.Create)
		r.With(authMW.RequirePolicy(authz.ResVehiculos, authz.ActActualizar)).
			Put("/api/vehiculos/{id}", vehicleHandler.Update)
		r.With(authMW.RequirePolicy(authz.ResVehiculos, authz.ActEliminar)).
			Delete("/api/vehiculos/{id}", vehicleHandler.Delete)

		r.With(authMW.RequirePolicy(authz.ResUsuarios, authz.ActVer)).
			Get("/api/usuarios", userHandler.List)
		r.With(authMW.RequirePolicy(authz.ResUsuarios, authz.ActCrear)).
			Post("/api/usuarios", userHandler.Create)
		r.With(authMW.RequirePolicy(authz.ResUsuarios, authz.ActActualizar)).
			Put("/api/usuarios/{id}", userHandler.Update)
		r.With(authMW.RequirePolicy(authz.ResUsuarios, authz.ActEliminar)).
			Delete("/api/usuarios/{id}", userHandler.Delete)

		r.With(authMW.RequirePolicy(authz.ResReportes, authz.ActVer)).
			Get("/api/reportes", reportHandler.Get)

		r.With(authMW.RequirePolicy(authz.ResFotos, authz.ActCrear)).
			Post("/api/upload-foto", uploadHandler.UploadFoto)
	})

	return r
}
