// Package bankconsole is the HTTP toolkit of the console: a router built on
// httprouter, the request Context, middleware chaining, dependency injection
// of handler builders and form binding.
package bankconsole

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"

	"github.com/deltegui/bankconsole/core"
	"github.com/deltegui/bankconsole/localizer"
)

type Middleware func(Handler) Handler

type Handler func(c *Context) error

type Config struct {
	Localizer *localizer.Store
	Validator core.Validator
	Logger    zerolog.Logger

	// NotFoundRedirect is where unknown routes are sent. Empty answers 404.
	NotFoundRedirect string

	ShutdownTimeout time.Duration
}

type Router struct {
	injector    *Injector
	router      *httprouter.Router
	middlewares []Middleware
	renderer    Renderer
	cfg         Config
	log         zerolog.Logger
}

func NewRouter(cfg Config) *Router {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	r := &Router{
		injector: NewInjector(),
		router:   httprouter.New(),
		cfg:      cfg,
		log:      cfg.Logger,
	}
	r.router.RedirectTrailingSlash = true
	r.router.HandleMethodNotAllowed = false
	r.router.NotFound = http.HandlerFunc(r.notFound)
	r.router.PanicHandler = r.panicHandler
	return r
}

func (r *Router) notFound(w http.ResponseWriter, req *http.Request) {
	h := r.wrap(func(ctx *Context) error {
		if r.cfg.NotFoundRedirect == "" {
			return ctx.NotFound("not found")
		}
		return ctx.Redirect(r.cfg.NotFoundRedirect)
	})
	h(w, req, nil)
}

func (r *Router) panicHandler(w http.ResponseWriter, req *http.Request, recovered any) {
	r.log.Error().
		Interface("panic", recovered).
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Msg("handler panicked")
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// SetRenderer installs the renderer used by Context.Render.
func (r *Router) SetRenderer(renderer Renderer) {
	r.renderer = renderer
}

func (r *Router) Add(builder Builder) {
	r.injector.Add(builder)
}

// Invoke calls fn with its arguments resolved by the injector.
func (r *Router) Invoke(fn Builder) any {
	return r.injector.CallBuilder(fn)
}

func (r *Router) ShowAvailableBuilders() {
	r.injector.ShowAvailableBuilders(r.log)
}

func (r *Router) PopulateStruct(s any) {
	r.injector.PopulateStruct(s)
}

// Use appends global middlewares. They only apply to routes added after.
func (r *Router) Use(middleware Middleware) {
	r.middlewares = append(r.middlewares, middleware)
}

func (r *Router) createContext(w http.ResponseWriter, req *http.Request, params httprouter.Params) *Context {
	return &Context{
		Req:      req,
		Res:      w,
		params:   params,
		locstore: r.cfg.Localizer,
		renderer: r.renderer,
		validate: r.cfg.Validator,
	}
}

func (r *Router) wrap(h Handler, middlewares ...Middleware) httprouter.Handle {
	h = Chain(h, middlewares...)
	h = Chain(h, r.middlewares...)
	return func(w http.ResponseWriter, req *http.Request, params httprouter.Params) {
		ctx := r.createContext(w, req, params)
		if err := h(ctx); err != nil {
			ctx.Logger().Error().Err(err).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Msg("handler failed")
		}
	}
}

// Handle registers the handler built by builder. The builder arguments are
// resolved through the injector.
func (r *Router) Handle(method, pattern string, builder Builder, middlewares ...Middleware) {
	h := r.injector.ResolveHandler(builder)
	r.router.Handle(method, pattern, r.wrap(h, middlewares...))
}

func (r *Router) Get(pattern string, builder Builder, middlewares ...Middleware) {
	r.Handle(http.MethodGet, pattern, builder, middlewares...)
}

func (r *Router) Post(pattern string, builder Builder, middlewares ...Middleware) {
	r.Handle(http.MethodPost, pattern, builder, middlewares...)
}

func (r *Router) Put(pattern string, builder Builder, middlewares ...Middleware) {
	r.Handle(http.MethodPut, pattern, builder, middlewares...)
}

func (r *Router) Delete(pattern string, builder Builder, middlewares ...Middleware) {
	r.Handle(http.MethodDelete, pattern, builder, middlewares...)
}

func (r *Router) Options(pattern string, builder Builder, middlewares ...Middleware) {
	r.Handle(http.MethodOptions, pattern, builder, middlewares...)
}

// Static serves files under prefix, which must end in "/*filepath".
func (r *Router) Static(prefix string, files fs.FS) {
	r.router.ServeFiles(prefix, http.FS(files))
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}

// Run serves on address until ctx is cancelled, then shuts down gracefully.
func (r *Router) Run(ctx context.Context, address string) error {
	server := &http.Server{
		Addr:              address,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() {
		r.log.Info().Str("address", address).Msg("listening")
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	r.log.Info().Msg("server stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), r.cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	r.log.Info().Msg("server exited properly")
	return nil
}
