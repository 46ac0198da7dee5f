package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/levanmartirosyan/Tbilink-BE/internal/infrastructure/auth"
	"github.com/levanmartirosyan/Tbilink-BE/internal/infrastructure/realtime"
	"github.com/levanmartirosyan/Tbilink-BE/internal/pkg/messaging/application/notify"
	"github.com/levanmartirosyan/Tbilink-BE/internal/pkg/messaging/application/session"
	httpHandler "github.com/levanmartirosyan/Tbilink-BE/internal/pkg/messaging/presentation/http"
	userrepo "github.com/levanmartirosyan/Tbilink-BE/internal/repository/port"
)

// RegisterRoutes mounts all version 1 API routes under /api/v1. Every route is
// behind token auth; the websocket endpoints accept the token via the
// access_token query parameter since browsers cannot set headers on upgrades.
func RegisterRoutes(
	r *gin.Engine,
	jwtSecret string,
	pool *pgxpool.Pool,
	coordinator *session.Coordinator,
	registry *realtime.Registry,
	relay *notify.Relay,
	users userrepo.UserRepository,
) {
	v1 := r.Group("/api/v1")
	v1.Use(auth.Middleware(jwtSecret))
	httpHandler.RegisterRoutes(v1, pool, coordinator, registry, relay, users)
}
