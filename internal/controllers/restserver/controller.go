package restserver

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/chrissnell/meeussunmoon/internal/log"
	"github.com/chrissnell/meeussunmoon/pkg/config"
	"github.com/chrissnell/meeussunmoon/pkg/lunar"
	"github.com/chrissnell/meeussunmoon/pkg/sunmoon"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	defaultListenAddr = "0.0.0.0"
	defaultPort       = 8080
)

// AlmanacStore serves precomputed days and moon phases
type AlmanacStore interface {
	LoadDays(location string, loc *time.Location, from, to time.Time) ([]sunmoon.DaySummary, error)
	LoadMoonPhases(year int, loc *time.Location) ([]lunar.PhaseEvent, error)
}

// Controller represents the REST server controller
type Controller struct {
	ctx        context.Context
	wg         *sync.WaitGroup
	restConfig config.RESTServerData
	Server     http.Server
	calc       *sunmoon.Calculator
	locations  map[string]config.LocationData
	names      []string
	store      AlmanacStore
	logger     *zap.SugaredLogger
	handlers   *Handlers
}

// NewController creates a new REST server controller. store may be nil, in
// which case every response is computed on request.
func NewController(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, calc *sunmoon.Calculator, store AlmanacStore, logger *zap.SugaredLogger) (*Controller, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	ctrl := &Controller{
		ctx:       ctx,
		wg:        wg,
		calc:      calc,
		store:     store,
		logger:    logger,
		locations: make(map[string]config.LocationData),
	}

	// Load configuration
	cfgData, err := configProvider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}

	for _, l := range cfgData.Locations {
		ctrl.locations[l.Name] = l
		ctrl.names = append(ctrl.names, l.Name)
	}
	sort.Strings(ctrl.names)

	if cfgData.RESTServer != nil {
		ctrl.restConfig = *cfgData.RESTServer
	}

	// If a ListenAddr was not provided, listen on all interfaces
	if ctrl.restConfig.ListenAddr == "" {
		logger.Infof("rest.listen-addr not provided; defaulting to %s (all interfaces)", defaultListenAddr)
		ctrl.restConfig.ListenAddr = defaultListenAddr
	}

	// Set default HTTP port if not specified
	if ctrl.restConfig.Port == 0 {
		logger.Infof("rest.port not provided; defaulting to %d", defaultPort)
		ctrl.restConfig.Port = defaultPort
	}

	ctrl.handlers = NewHandlers(ctrl)

	ctrl.Server.Addr = fmt.Sprintf("%v:%v", ctrl.restConfig.ListenAddr, ctrl.restConfig.Port)
	ctrl.Server.Handler = ctrl.setupRouter()
	ctrl.Server.ReadHeaderTimeout = 10 * time.Second

	return ctrl, nil
}

// StartController starts the REST server
func (c *Controller) StartController() error {
	c.logger.Infof("starting REST server on %s", c.Server.Addr)
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		var err error
		if c.restConfig.Cert != "" && c.restConfig.Key != "" {
			err = c.Server.ListenAndServeTLS(c.restConfig.Cert, c.restConfig.Key)
		} else {
			err = c.Server.ListenAndServe()
		}
		if err != http.ErrServerClosed {
			c.logger.Errorf("REST server error: %v", err)
		}
	}()

	go func() {
		<-c.ctx.Done()
		c.logger.Info("shutting down the REST server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c.Server.Shutdown(shutdownCtx)
	}()

	return nil
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(c.loggingMiddleware)

	api := router.PathPrefix("/api").Methods(http.MethodGet).Subrouter()
	api.HandleFunc("/locations", c.handlers.GetLocations)
	api.HandleFunc("/sun", c.handlers.GetSunForCoordinates)
	api.HandleFunc("/sun/{location}", c.handlers.GetSunForLocation)
	api.HandleFunc("/moon/{year}", c.handlers.GetMoonPhases)
	api.HandleFunc("/almanac/{location}", c.handlers.GetAlmanac)

	return router
}

func (c *Controller) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.LogHTTPRequest(log.HTTPLogEntry{
			Method:     r.Method,
			Path:       r.URL.Path,
			Query:      r.URL.RawQuery,
			Status:     rec.status,
			Duration:   time.Since(start),
			Size:       rec.size,
			RemoteAddr: r.RemoteAddr,
			UserAgent:  r.UserAgent(),
		})
	})
}

// statusRecorder captures the status code and body size for the access log
type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}

func (c *Controller) location(name string) (config.LocationData, *time.Location, error) {
	l, ok := c.locations[name]
	if !ok {
		return config.LocationData{}, nil, fmt.Errorf("%s: %w", name, config.ErrLocationNotFound)
	}
	loc, err := l.Location()
	if err != nil {
		return config.LocationData{}, nil, err
	}
	return l, loc, nil
}
