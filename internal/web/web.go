package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/handlers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"energydash/internal/web/api"
	"energydash/internal/web/middleware"
	"energydash/internal/web/view"
)

type WebServer struct {
	router  *gin.Engine
	handler http.Handler
	log     *slog.Logger

	mu     sync.Mutex
	server *http.Server
}

// Options holds the optional pieces of the web server
type Options struct {
	CORSOrigins []string
	Gatherer    prometheus.Gatherer
	Logger      *slog.Logger
}

func NewWebServer(dash api.Dashboard, opts Options) *WebServer {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	router := gin.New()
	mw := middleware.NewMiddlewareManager(log)
	router.Use(gin.Recovery(), mw.RequestID(), mw.RequestLogger())

	api.RegisterDashboardRoutes(router, dash)
	api.RegisterDeviceRoutes(router, dash)
	api.RegisterStreamRoutes(router, dash, log)
	view.RegisterDashboardRoutes(router, dash)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if opts.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	cors := handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", middleware.RequestIDHeader}),
		handlers.ExposedHeaders([]string{middleware.RequestIDHeader}),
	)

	return &WebServer{
		router:  router,
		handler: cors(router),
		log:     log.With("component", "web"),
	}
}

// Handler returns the full handler chain, CORS included
func (ws *WebServer) Handler() http.Handler {
	return ws.handler
}

// Start serves on addr until Shutdown is called
func (ws *WebServer) Start(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           ws.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	ws.mu.Lock()
	ws.server = srv
	ws.mu.Unlock()

	ws.log.Info("listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (ws *WebServer) Shutdown(ctx context.Context) error {
	ws.mu.Lock()
	srv := ws.server
	ws.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
