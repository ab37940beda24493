// Package api exposes the game manager over HTTP and streams game events
// over websockets.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"cluedo-custom/internal/config"
	"cluedo-custom/internal/manager"
)

const timeout = 10 * time.Second

// Server wires the HTTP routes to the manager.
type Server struct {
	mgr      *manager.Manager
	hub      *Hub
	settings config.Settings
	log      *logrus.Logger
}

func NewServer(mgr *manager.Manager, hub *Hub, settings config.Settings, logger *logrus.Logger) *Server {
	return &Server{mgr: mgr, hub: hub, settings: settings, log: logger}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(requestLogger(s.log))
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	router.GET("/api/health", s.health)
	router.GET("/api/themes", s.themes)

	games := router.Group("/games")
	games.POST("/create", s.createGame)
	games.POST("/quick-create", s.quickCreate)
	games.POST("/join", s.joinGame)
	games.GET("/list", s.listGames)
	games.POST("/:code/start", s.startGame)
	games.GET("/:code/player/:playerID", s.playerView)
	games.POST("/:code/action", s.action)
	games.DELETE("/:code", s.deleteGame)
	games.GET("/:code/qr", s.qrCode)
	games.GET("/:code/ws", s.hub.serveWS(s.mgr))

	return router
}

// Serve listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              net.JoinHostPort(s.settings.Bind, strconv.Itoa(s.settings.Port)),
		Handler:           s.Router(),
		IdleTimeout:       10 * time.Minute,
		ReadTimeout:       timeout,
		ReadHeaderTimeout: timeout,
		WriteTimeout:      timeout,
	}

	errs := make(chan error, 1)
	go func() {
		s.log.Infof("Listening on http://%s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutting down")
	s.hub.CloseAll()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func requestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
		}).Debug("request")
	}
}
