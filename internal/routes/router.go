// internal/routes/router.go
package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/jaswanth12321/carequo-insure-tech/internal/auth"
	"github.com/jaswanth12321/carequo-insure-tech/internal/claims"
	"github.com/jaswanth12321/carequo-insure-tech/internal/directory"
	"github.com/jaswanth12321/carequo-insure-tech/internal/documents"
	"github.com/jaswanth12321/carequo-insure-tech/internal/handlers"
	"github.com/jaswanth12321/carequo-insure-tech/internal/ledger"
	"github.com/jaswanth12321/carequo-insure-tech/internal/metrics"
	"github.com/jaswanth12321/carequo-insure-tech/internal/middleware"
	"github.com/jaswanth12321/carequo-insure-tech/internal/rbac"
)

type Deps struct {
	Auth           *auth.Service
	Claims         *claims.Manager
	Ledger         *ledger.Service
	Directory      *directory.Service
	Documents      *documents.Service
	Logger         *zap.Logger
	RequestTimeout time.Duration
	Health         []handlers.HealthCheck
}

// roles gates a route with the same table the services enforce.
func roles(a rbac.Action) gin.HandlerFunc {
	return middleware.RequireRoles(rbac.RolesFor(a)...)
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(d.Logger), middleware.Logger(d.Logger), metrics.Middleware())
	if d.RequestTimeout > 0 {
		r.Use(middleware.Timeout(d.RequestTimeout))
	}

	authH := handlers.NewAuthHandler(d.Auth, d.Logger)
	claimH := handlers.NewClaimHandler(d.Claims, d.Documents, d.Logger)
	dirH := handlers.NewDirectoryHandler(d.Directory, d.Logger)
	finH := handlers.NewFinancialHandler(d.Ledger, d.Logger)

	r.GET("/health", handlers.NewHealthHandler(d.Health...).Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	authRequired := middleware.AuthRequired(d.Auth)

	api := r.Group("/api")
	{
		api.POST("/auth/register", authH.Register)
		api.POST("/auth/login", authH.Login)
		api.GET("/auth/me", authRequired, authH.Me)
		api.POST("/auth/totp/setup", authRequired, authH.SetupTOTP)
		api.POST("/auth/totp/verify", authRequired, authH.VerifyTOTP)
	}

	authed := r.Group("/api")
	authed.Use(authRequired)
	{
		authed.GET("/companies", dirH.ListCompanies)
		authed.POST("/companies", roles(rbac.ManageCompanies), dirH.CreateCompany)
		authed.GET("/companies/:id", dirH.GetCompany)

		authed.GET("/employees", dirH.ListEmployees)
		authed.POST("/employees", roles(rbac.ManageEmployees), dirH.CreateEmployee)
		authed.GET("/employees/:id", dirH.GetEmployee)
		authed.PUT("/employees/:id", roles(rbac.ManageEmployees), dirH.UpdateEmployee)
		authed.DELETE("/employees/:id", roles(rbac.ManageEmployees), dirH.DeleteEmployee)

		authed.GET("/claims", claimH.List)
		authed.POST("/claims", claimH.Create)
		authed.POST("/claims/documents/presign", claimH.Presign)
		authed.GET("/claims/:id", claimH.Get)
		authed.PUT("/claims/:id", roles(rbac.ReviewClaims), claimH.Review)

		authed.GET("/financials", roles(rbac.ViewFinancials), finH.List)
		authed.POST("/financials", roles(rbac.RecordTransactions), finH.Create)

		authed.GET("/wellness-partners", dirH.ListPartners)
		authed.POST("/wellness-partners", roles(rbac.ManagePartners), dirH.CreatePartner)
		authed.GET("/wellness-partners/:id", dirH.GetPartner)

		authed.GET("/bookings", dirH.ListBookings)
		authed.POST("/bookings", dirH.CreateBooking)

		authed.GET("/dashboard/stats", roles(rbac.ViewDashboard), finH.Stats)
	}

	return r
}

// WithCORS wraps the engine with the browser origin policy.
func WithCORS(h http.Handler, origins []string) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	})(h)
}
