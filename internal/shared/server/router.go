package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"scholarscan-backend/internal/account"
	googleauth "scholarscan-backend/internal/auth"
	"scholarscan-backend/internal/notes"
	"scholarscan-backend/internal/papers"
	"scholarscan-backend/internal/shared/config"
	"scholarscan-backend/internal/shared/metrics"
	"scholarscan-backend/internal/shared/server/middleware"
	"scholarscan-backend/internal/shared/server/respond"
	"scholarscan-backend/internal/users"
)

// RouterDeps carries the handlers the router wires up.
type RouterDeps struct {
	Config         config.Config
	PapersHandler  *papers.Handler
	NotesHandler   *notes.Handler
	AccountHandler *account.Handler
	UsersHandler   *users.Handler
	GoogleAuth     *googleauth.GoogleService
}

const uploadRateLimitGroup = "UPLOAD"

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Config.Env),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				uploadRateLimitGroup: {Rate: 0.2, Burst: 5},
			},
			GroupFor: func(c *gin.Context) string {
				if c.Request.Method == http.MethodPost && strings.HasSuffix(c.Request.URL.Path, "/papers") {
					return uploadRateLimitGroup
				}
				return ""
			},
		}),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	api.GET("/metrics", metrics.Handler())

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.UsersHandler != nil {
		deps.UsersHandler.RegisterRoutes(api)
	}
	if deps.PapersHandler != nil {
		deps.PapersHandler.RegisterRoutes(api)
	}
	if deps.NotesHandler != nil {
		deps.NotesHandler.RegisterRoutes(api)
	}
	if deps.AccountHandler != nil {
		deps.AccountHandler.RegisterRoutes(api)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
