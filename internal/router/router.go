package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/quizdesk/testplayer/internal/config"
	"github.com/quizdesk/testplayer/internal/handler"
	"github.com/quizdesk/testplayer/internal/middleware"
	"github.com/quizdesk/testplayer/internal/response"
	"github.com/quizdesk/testplayer/internal/service"
)

// Handlers aggregates all HTTP handlers for route registration.
type Handlers struct {
	Attempt *handler.AttemptHandler
	WS      *handler.WSHandler
}

// Setup builds the Gin engine with middleware and all routes registered.
func Setup(cfg *config.Config, handlers Handlers, attempts *service.AttemptService, tokens *service.TokenService) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(response.RequestIDMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "token", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.Brotli())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":        "ok",
			"live_attempts": attempts.Live(),
		})
	})

	api := r.Group("/api/v1")
	{
		// Starting an attempt needs only the scoring-API token header; the
		// attempt token it returns guards everything after.
		api.POST("/attempts", handlers.Attempt.StartAttempt)

		att := api.Group("/attempts/:test_id")
		att.Use(middleware.RequireAttemptToken(tokens))
		{
			att.GET("/state", handlers.Attempt.GetState)
			att.PUT("/answer", handlers.Attempt.SubmitAnswer)
			att.POST("/next", handlers.Attempt.Next)
			att.POST("/previous", handlers.Attempt.Previous)
			att.POST("/jump", handlers.Attempt.Jump)
			att.POST("/submit", handlers.Attempt.Submit)
			att.GET("/result", handlers.Attempt.GetResult)
		}
	}

	ws := r.Group("/ws/v1")
	{
		stream := ws.Group("/attempts/:test_id")
		stream.Use(middleware.RequireAttemptWSAuth(tokens))
		stream.GET("/stream", handlers.WS.Stream)
	}

	return r
}
