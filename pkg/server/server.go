package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/rbac-console/pkg/authenticator"
	"github.com/doodlesbykumbi/rbac-console/pkg/authenticator/authn"
	"github.com/doodlesbykumbi/rbac-console/pkg/authenticator/authn_jwt"
	"github.com/doodlesbykumbi/rbac-console/pkg/cache"
	"github.com/doodlesbykumbi/rbac-console/pkg/config"
	"github.com/doodlesbykumbi/rbac-console/pkg/i18n"
	"github.com/doodlesbykumbi/rbac-console/pkg/metrics"
	"github.com/doodlesbykumbi/rbac-console/pkg/server/store"
	gormstore "github.com/doodlesbykumbi/rbac-console/pkg/server/store/gorm"
)

type Server struct {
	Config         *config.Config
	Router         *mux.Router
	DB             *gorm.DB
	Logger         *zap.Logger
	Metrics        *metrics.Metrics
	Localizer      *i18n.Localizer
	Sessions       *Sessions
	Renderer       *Renderer
	Authenticators *authenticator.Registry

	GrantsStore  store.GroupModulePermissionsStore
	CatalogStore store.CatalogStore
	UsersStore   store.UsersStore
	AuthzStore   store.AuthzStore
	HealthStore  store.HealthStore

	srv *http.Server
}

// New builds a server without stores. Callers assign the store fields;
// NewServer does it from a database.
func New(cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	localizer, err := i18n.New(cfg.DefaultLanguage)
	if err != nil {
		return nil, err
	}
	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}

	router := mux.NewRouter().UseEncodedPath()
	router.StrictSlash(true)

	s := &Server{
		Config:         cfg,
		Router:         router,
		Logger:         logger,
		Metrics:        m,
		Localizer:      localizer,
		Sessions:       NewSessions(cfg.SessionSecret, cfg.SecureCookies, cfg.TokenLifetime()),
		Renderer:       renderer,
		Authenticators: authenticator.NewRegistry(),
	}
	s.srv = &http.Server{
		Handler:      s.Handler(),
		Addr:         cfg.Address(),
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}
	return s, nil
}

// NewServer builds a server backed by db, with the authorization cache and
// the configured authenticators wired in.
func NewServer(cfg *config.Config, db *gorm.DB, logger *zap.Logger, m *metrics.Metrics) (*Server, error) {
	s, err := New(cfg, logger, m)
	if err != nil {
		return nil, err
	}
	s.DB = db

	c, err := cache.New(cache.Options{
		Backend:      cfg.CacheBackend,
		RedisAddress: cfg.RedisAddress,
		Namespace:    cache.DefaultNamespace,
	})
	if err != nil {
		return nil, err
	}

	authz := store.NewCachedAuthzStore(gormstore.NewAuthzStore(db), c, cfg.CacheLifetime(), m, s.Logger)
	s.AuthzStore = authz
	s.GrantsStore = store.NewInvalidatingGrantsStore(gormstore.NewGroupModulePermissionsStore(db), authz, s.Logger)
	s.CatalogStore = gormstore.NewCatalogStore(db)
	s.UsersStore = gormstore.NewUsersStore(db)
	s.HealthStore = gormstore.NewHealthStore(db)

	s.Authenticators.Register(authn.New(s.UsersStore))
	s.Authenticators.Register(authn_jwt.New(s.UsersStore, authn_jwt.Config{
		Secret: []byte(cfg.JWTSecret),
		TTL:    cfg.TokenLifetime(),
	}))
	for _, name := range cfg.Authenticators {
		if err := s.Authenticators.Enable(name); err != nil {
			return nil, fmt.Errorf("failed to enable authenticator: %w", err)
		}
	}

	return s, nil
}

// Handler returns the router wrapped in panic recovery, proxy header
// handling and the access log.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.Router
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(zap.NewStdLog(s.Logger)),
		handlers.PrintRecoveryStack(true),
	)(h)
	h = handlers.ProxyHeaders(h)
	return handlers.CombinedLoggingHandler(os.Stdout, h)
}

func (s *Server) Start() error {
	s.Logger.Info("server listening", zap.String("address", s.srv.Addr))
	return s.srv.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
