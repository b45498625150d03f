// Package extensions wires the optional pieces of the console onto a
// router: encryption, csrf, sessions, rendering and CORS.
package extensions

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	"github.com/rs/zerolog"

	"github.com/deltegui/bankconsole"
	"github.com/deltegui/bankconsole/clock"
	"github.com/deltegui/bankconsole/config"
	"github.com/deltegui/bankconsole/core"
	"github.com/deltegui/bankconsole/csrf"
	"github.com/deltegui/bankconsole/cypher"
	"github.com/deltegui/bankconsole/middleware"
	"github.com/deltegui/bankconsole/renderer"
	"github.com/deltegui/bankconsole/session"
	"github.com/deltegui/bankconsole/sqlstore"
)

// NewCypher derives the key from secret. An empty secret gets a random key,
// so cookies do not survive restarts.
func NewCypher(secret string) (core.Cypher, error) {
	if secret == "" {
		return cypher.New()
	}
	return cypher.NewWithPasswordAsString(secret)
}

func AddCypher(r *bankconsole.Router, cy core.Cypher) {
	r.Add(func() core.Cypher { return cy })
}

// UseLogging must run before any other Use, so later middlewares find the
// request logger.
func UseLogging(r *bankconsole.Router, logger zerolog.Logger) {
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover)
}

func UseCsrf(r *bankconsole.Router, cy core.Cypher, duration time.Duration, clk clock.Clock, logger zerolog.Logger) *csrf.Csrf {
	c := csrf.New(duration, cy, clk, logger)
	r.Add(func() *csrf.Csrf { return c })
	r.Use(csrf.Middleware(c))
	return c
}

// AddSession builds the session manager over the configured store. The
// returned func releases the store.
func AddSession(
	ctx context.Context,
	r *bankconsole.Router,
	cfg config.SessionConfig,
	cy core.Cypher,
	clk clock.Clock,
	logger zerolog.Logger,
) (*session.Manager, func() error, error) {
	opts := session.ManagerOptions{
		Timeout: cfg.Timeout,
		Clock:   clk,
		Secure:  cfg.Secure,
		Logger:  logger,
	}
	var (
		store   session.Store
		release = func() error { return nil }
	)
	switch cfg.Store {
	case config.StoreSQLite:
		db, err := sqlstore.Connect(ctx, sqlstore.Configuration{Connection: cfg.DSN}, logger)
		if err != nil {
			return nil, nil, err
		}
		sessions, err := sqlstore.NewSessionStore(ctx, db)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		store = sessions
		release = db.Close
	case config.StoreMemory:
		store = session.NewMemoryStore()
	default:
		return nil, nil, fmt.Errorf("unknown session store %q", cfg.Store)
	}
	manager := session.NewManager(store, cy, opts)
	r.Add(func() *session.Manager { return manager })
	return manager, release, nil
}

// AddRendering installs a template renderer reading from files. Pages still
// need to be parsed on the returned renderer.
func AddRendering(r *bankconsole.Router, files fs.FS, logger zerolog.Logger) *renderer.TemplateRenderer {
	rend := renderer.NewTemplateRenderer(files, logger)
	rend.AddDefaultTemplateFunctions()
	r.SetRenderer(rend)
	r.Add(func() *renderer.TemplateRenderer { return rend })
	return rend
}

// UseCors allows origin to read the console. An empty origin allows any.
func UseCors(r *bankconsole.Router, origin string) {
	opt := middleware.CorsDefault()
	if origin != "" {
		opt.AllowOrigin = origin
	}
	r.Use(middleware.Cors(opt))
}
