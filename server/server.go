package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"songstream/handlers"
)

const shutdownTimeout = 10 * time.Second

// NewRouter assembles the gin engine: recovery, request ids, open CORS and
// the API routes.
func NewRouter(h *handlers.Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())

	// CORS Setup
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	// API Routes
	api := r.Group("/api")
	{
		api.GET("/ping", h.Ping)
		api.POST("/songs/upload", h.UploadSong)
		api.GET("/songs", h.ListSongs)
		api.GET("/songs/:id/stream", h.StreamSong)
	}

	return r
}

// Run serves until the context is cancelled, then shuts down gracefully
// within shutdownTimeout. In-flight streams get that long to drain.
func Run(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: handler}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-serveErr; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
