package engine

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/a-h/templ"
	"pblstudio/framework"
	"pblstudio/framework/router"
)

const partialRequestHeader = "HX-Request"

type Config[C interface{}] struct {
	AppContext C
	Handlers   []framework.RouteHandler[C]

	RenderPage func(r *http.Request, w http.ResponseWriter, component templ.Component, statusCode int) error

	IsPartialRequest  func(r *http.Request) bool
	IsNotFoundError   func(err error) bool
	HandleNotFound    func(w http.ResponseWriter, r *http.Request, notFoundContext framework.NotFoundContext)
	HandleBadRequest  func(w http.ResponseWriter, message string)
	HandleServerError func(w http.ResponseWriter, err error)
}

type Engine[C interface{}] struct {
	appContext C
	handlers   []framework.RouteHandler[C]

	renderPage func(r *http.Request, w http.ResponseWriter, component templ.Component, statusCode int) error

	isPartial   func(r *http.Request) bool
	isNotFound  func(err error) bool
	notFound    func(w http.ResponseWriter, r *http.Request, notFoundContext framework.NotFoundContext)
	badRequest  func(w http.ResponseWriter, message string)
	serverError func(w http.ResponseWriter, err error)
}

func New[C interface{}](cfg Config[C]) (*Engine[C], error) {
	if cfg.RenderPage == nil {
		return nil, errors.New("render page callback is required")
	}

	handlers, err := orderHandlers(cfg.Handlers)
	if err != nil {
		return nil, err
	}

	isPartial := cfg.IsPartialRequest
	if isPartial == nil {
		isPartial = IsPartialRequest
	}

	isNotFound := cfg.IsNotFoundError
	if isNotFound == nil {
		isNotFound = func(error) bool { return false }
	}

	notFound := cfg.HandleNotFound
	if notFound == nil {
		notFound = func(w http.ResponseWriter, r *http.Request, _ framework.NotFoundContext) {
			http.NotFound(w, r)
		}
	}

	badRequest := cfg.HandleBadRequest
	if badRequest == nil {
		badRequest = func(w http.ResponseWriter, message string) {
			http.Error(w, message, http.StatusBadRequest)
		}
	}

	serverError := cfg.HandleServerError
	if serverError == nil {
		serverError = func(w http.ResponseWriter, _ error) {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}

	return &Engine[C]{
		appContext:  cfg.AppContext,
		handlers:    handlers,
		renderPage:  cfg.RenderPage,
		isPartial:   isPartial,
		isNotFound:  isNotFound,
		notFound:    notFound,
		badRequest:  badRequest,
		serverError: serverError,
	}, nil
}

// orderHandlers sorts handlers so static routes are tried before wildcard
// routes and rejects two handlers claiming the same path shape.
func orderHandlers[C interface{}](handlers []framework.RouteHandler[C]) ([]framework.RouteHandler[C], error) {
	type entry struct {
		pattern router.Pattern
		handler framework.RouteHandler[C]
	}

	entries := make([]entry, 0, len(handlers))
	seen := make(map[string]string, len(handlers))
	for _, handler := range handlers {
		if handler == nil {
			return nil, errors.New("route handler cannot be nil")
		}
		pattern, err := router.Compile(handler.RoutePattern())
		if err != nil {
			return nil, err
		}
		if existing, ok := seen[pattern.Key()]; ok {
			return nil, fmt.Errorf("route pattern conflict: %q and %q", existing, pattern.String())
		}
		seen[pattern.Key()] = pattern.String()
		entries = append(entries, entry{pattern: pattern, handler: handler})
	}

	sort.SliceStable(entries, func(i int, j int) bool {
		return router.MoreSpecific(entries[i].pattern, entries[j].pattern)
	})

	ordered := make([]framework.RouteHandler[C], 0, len(entries))
	for _, e := range entries {
		ordered = append(ordered, e.handler)
	}
	return ordered, nil
}

func (engine *Engine[C]) ServeRoute(w http.ResponseWriter, r *http.Request) bool {
	for _, handler := range engine.handlers {
		if handler.TryServe(engine, w, r) {
			return true
		}
	}
	return false
}

// IsPartialRequest reports whether the client asked for a fragment without layouts.
func IsPartialRequest(r *http.Request) bool {
	return r != nil && strings.EqualFold(strings.TrimSpace(r.Header.Get(partialRequestHeader)), "true")
}

func (engine *Engine[C]) AppContext() C {
	return engine.appContext
}

func (engine *Engine[C]) IsPartialRequest(r *http.Request) bool {
	return engine.isPartial(r)
}

func (engine *Engine[C]) RenderPage(
	r *http.Request,
	w http.ResponseWriter,
	component templ.Component,
	statusCode int,
) error {
	return engine.renderPage(r, w, component, statusCode)
}

// Redirect sends a 302 Found to location.
func (engine *Engine[C]) Redirect(w http.ResponseWriter, r *http.Request, location string) {
	http.Redirect(w, r, location, http.StatusFound)
}

func (engine *Engine[C]) IsNotFound(err error) bool {
	return engine.isNotFound(err)
}

func (engine *Engine[C]) RespondNotFound(
	w http.ResponseWriter,
	r *http.Request,
	notFoundContext framework.NotFoundContext,
) {
	engine.notFound(w, r, notFoundContext)
}

func (engine *Engine[C]) RespondMethodNotAllowed(w http.ResponseWriter, allowed []string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}

func (engine *Engine[C]) RespondBadRequest(w http.ResponseWriter, message string) {
	engine.badRequest(w, message)
}

func (engine *Engine[C]) RespondServerError(w http.ResponseWriter, err error) {
	engine.serverError(w, err)
}
