package framework

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"pblstudio/framework/router"
)

const maxFormBytes = 1 << 20

type EmptyParams struct{}

type SlugParams struct {
	Slug string
}

// ParamsParser receives the escaped request path.
type ParamsParser[P interface{}] func(path string) (P, bool)

// ExactPath parses paths matching a pattern without wildcards.
func ExactPath(pattern string) ParamsParser[EmptyParams] {
	compiled := router.MustCompile(pattern)
	return func(path string) (EmptyParams, bool) {
		_, ok := compiled.Match(path)
		return EmptyParams{}, ok
	}
}

// SlugPath parses paths matching a pattern with a single [slug] wildcard.
func SlugPath(pattern string) ParamsParser[SlugParams] {
	compiled := router.MustCompile(pattern)
	return func(path string) (SlugParams, bool) {
		params, ok := compiled.Match(path)
		if !ok {
			return SlugParams{}, false
		}
		slug := strings.TrimSpace(params["slug"])
		return SlugParams{Slug: slug}, slug != ""
	}
}

type PageLoader[C interface{}, P interface{}, VM interface{}] func(
	ctx context.Context,
	appCtx C,
	r *http.Request,
	params P,
) (VM, error)

type PageRenderer[VM interface{}] func(view VM) templ.Component

type LayoutRenderer[VM interface{}] func(view VM, child templ.Component) templ.Component

type PageModule[C interface{}, P interface{}, VM interface{}] struct {
	Pattern     string
	ParseParams ParamsParser[P]
	Load        PageLoader[C, P, VM]
	Render      PageRenderer[VM]
	Layouts     []LayoutRenderer[VM]
}

// ActionResult is the outcome of a form submission: a redirect when
// RedirectURL is set, otherwise View rendered with StatusCode.
type ActionResult[VM interface{}] struct {
	RedirectURL string
	StatusCode  int
	View        VM
}

type ActionHandler[C interface{}, P interface{}, VM interface{}] func(
	ctx context.Context,
	appCtx C,
	r *http.Request,
	params P,
) (ActionResult[VM], error)

type ActionModule[C interface{}, P interface{}, VM interface{}] struct {
	Pattern     string
	ParseParams ParamsParser[P]
	Handle      ActionHandler[C, P, VM]
	Render      PageRenderer[VM]
	Layouts     []LayoutRenderer[VM]
}

type RuntimeContext[C interface{}] interface {
	AppContext() C
	IsPartialRequest(r *http.Request) bool
	RenderPage(r *http.Request, w http.ResponseWriter, component templ.Component, statusCode int) error
	Redirect(w http.ResponseWriter, r *http.Request, location string)
	IsNotFound(err error) bool
	RespondNotFound(w http.ResponseWriter, r *http.Request, notFoundContext NotFoundContext)
	RespondMethodNotAllowed(w http.ResponseWriter, allowed []string)
	RespondBadRequest(w http.ResponseWriter, message string)
	RespondServerError(w http.ResponseWriter, err error)
}

type NotFoundSource string

const (
	NotFoundSourcePageLoad       NotFoundSource = "page_load"
	NotFoundSourceUnmatchedRoute NotFoundSource = "unmatched_route"
)

type NotFoundContext struct {
	RequestPath         string
	MatchedRoutePattern string
	Source              NotFoundSource
}

type RouteHandler[C interface{}] interface {
	RoutePattern() string
	TryServe(runtime RuntimeContext[C], w http.ResponseWriter, r *http.Request) bool
}

var (
	pageMethods = []string{http.MethodGet, http.MethodHead}
	formMethods = []string{http.MethodGet, http.MethodHead, http.MethodPost}
)

type PageOnlyRouteHandler[C interface{}, P interface{}, VM interface{}] struct {
	Page PageModule[C, P, VM]
}

func (h PageOnlyRouteHandler[C, P, VM]) RoutePattern() string {
	return h.Page.Pattern
}

func (h PageOnlyRouteHandler[C, P, VM]) TryServe(
	runtime RuntimeContext[C],
	w http.ResponseWriter,
	r *http.Request,
) bool {
	params, ok := h.Page.ParseParams(r.URL.EscapedPath())
	if !ok {
		return false
	}

	if !isPageMethod(r.Method) {
		runtime.RespondMethodNotAllowed(w, pageMethods)
		return true
	}

	servePageModule(runtime, w, r, h.Page, params)
	return true
}

// FormRouteHandler serves a page on GET and its submission on POST at the same path.
type FormRouteHandler[C interface{}, P interface{}, VM interface{}, AVM interface{}] struct {
	Page   PageModule[C, P, VM]
	Action ActionModule[C, P, AVM]
}

func (h FormRouteHandler[C, P, VM, AVM]) RoutePattern() string {
	return h.Page.Pattern
}

func (h FormRouteHandler[C, P, VM, AVM]) TryServe(
	runtime RuntimeContext[C],
	w http.ResponseWriter,
	r *http.Request,
) bool {
	params, ok := h.Page.ParseParams(r.URL.EscapedPath())
	if !ok {
		return false
	}

	switch {
	case isPageMethod(r.Method):
		servePageModule(runtime, w, r, h.Page, params)
	case r.Method == http.MethodPost:
		serveActionModule(runtime, w, r, h.Action, params)
	default:
		runtime.RespondMethodNotAllowed(w, formMethods)
	}
	return true
}

func isPageMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}

func applyLayouts[VM interface{}](
	layouts []LayoutRenderer[VM],
	view VM,
	child templ.Component,
) templ.Component {
	wrapped := child
	for idx := len(layouts) - 1; idx >= 0; idx-- {
		wrapped = layouts[idx](view, wrapped)
	}
	return wrapped
}

func servePageModule[C interface{}, P interface{}, VM interface{}](
	runtime RuntimeContext[C],
	w http.ResponseWriter,
	r *http.Request,
	module PageModule[C, P, VM],
	params P,
) {
	view, err := module.Load(r.Context(), runtime.AppContext(), r, params)
	if err != nil {
		handleLoadError(runtime, w, r, err, module.Pattern, NotFoundSourcePageLoad)
		return
	}

	component := module.Render(view)
	if !runtime.IsPartialRequest(r) {
		component = applyLayouts(module.Layouts, view, component)
	}
	if err := runtime.RenderPage(r, w, component, 0); err != nil {
		runtime.RespondServerError(w, fmt.Errorf("render route %q: %w", module.Pattern, err))
	}
}

func serveActionModule[C interface{}, P interface{}, VM interface{}](
	runtime RuntimeContext[C],
	w http.ResponseWriter,
	r *http.Request,
	module ActionModule[C, P, VM],
	params P,
) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseMultipartForm(maxFormBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		runtime.RespondBadRequest(w, "invalid form submission")
		return
	}

	result, err := module.Handle(r.Context(), runtime.AppContext(), r, params)
	if err != nil {
		handleLoadError(runtime, w, r, err, module.Pattern, NotFoundSourcePageLoad)
		return
	}

	if strings.TrimSpace(result.RedirectURL) != "" {
		runtime.Redirect(w, r, result.RedirectURL)
		return
	}

	component := module.Render(result.View)
	if !runtime.IsPartialRequest(r) {
		component = applyLayouts(module.Layouts, result.View, component)
	}
	if err := runtime.RenderPage(r, w, component, result.StatusCode); err != nil {
		runtime.RespondServerError(w, fmt.Errorf("render action %q: %w", module.Pattern, err))
	}
}

func handleLoadError[C interface{}](
	runtime RuntimeContext[C],
	w http.ResponseWriter,
	r *http.Request,
	err error,
	routePattern string,
	source NotFoundSource,
) {
	if runtime.IsNotFound(err) {
		runtime.RespondNotFound(w, r, NotFoundContext{
			RequestPath:         r.URL.Path,
			MatchedRoutePattern: routePattern,
			Source:              source,
		})
		return
	}

	runtime.RespondServerError(w, fmt.Errorf("load route %q: %w", routePattern, err))
}
