package routes

import (
	"net/http"
	"strings"
	"time"

	"flappion-backend/controllers"
	"flappion-backend/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Controllers struct {
	Bookings    *controllers.BookingController
	Invitations *controllers.InvitationController
	Auth        *controllers.AuthController
}

func parseCorsOrigins(raw []string) []string {
	origins := make([]string, 0, len(raw))
	for _, part := range raw {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func corsConfig(rawOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:              []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:              []string{"authorization", "x-client-info", "apikey", "content-type"},
		ExposeHeaders:             []string{"Content-Length"},
		MaxAge:                    12 * time.Hour,
		OptionsResponseStatusCode: http.StatusOK,
	}

	origins := parseCorsOrigins(rawOrigins)
	for _, origin := range origins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

// SetupRouter wires the public booking and invitation endpoints and the
// session-gated admin API.
func SetupRouter(ctl Controllers, auth middleware.Authorizer, corsOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger(middleware.LoggerConfig{DoMetrics: true}))
	r.Use(cors.New(corsConfig(corsOrigins)))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	preflight := func(c *gin.Context) { c.Status(http.StatusOK) }

	api := r.Group("/api")
	{
		api.POST("/booking-intake", ctl.Bookings.Intake)
		api.OPTIONS("/booking-intake", preflight)
		api.POST("/accept-invitation", ctl.Invitations.Accept)
		api.OPTIONS("/accept-invitation", preflight)

		api.POST("/admin/auth/login", ctl.Auth.Login)

		admin := api.Group("/admin", middleware.RequireAdmin(auth))
		{
			admin.GET("/session", ctl.Auth.Session)
			admin.POST("/auth/logout", ctl.Auth.Logout)

			bookings := admin.Group("/bookings")
			{
				bookings.GET("", ctl.Bookings.List)
				bookings.PATCH("/:id/status", ctl.Bookings.UpdateStatus)
				bookings.DELETE("/:id", ctl.Bookings.Delete)
				bookings.GET("/:id/deliveries", ctl.Bookings.Deliveries)
			}

			admin.POST("/invitations", ctl.Invitations.Issue)
		}
	}

	return r
}
