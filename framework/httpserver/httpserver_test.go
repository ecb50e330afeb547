package httpserver

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"pblstudio/framework"
)

type componentFunc func(ctx context.Context, w io.Writer) error

func (f componentFunc) Render(ctx context.Context, w io.Writer) error {
	return f(ctx, w)
}

func textComponent(value string) templ.Component {
	return componentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, value)
		return err
	})
}

func wrapComponent(tag string, child templ.Component) templ.Component {
	return componentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "["+tag+"]"); err != nil {
			return err
		}
		if err := child.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "[/"+tag+"]")
		return err
	})
}

func layoutPage(pattern string, load framework.PageLoader[*struct{}, framework.EmptyParams, string]) framework.PageModule[*struct{}, framework.EmptyParams, string] {
	return framework.PageModule[*struct{}, framework.EmptyParams, string]{
		Pattern:     pattern,
		ParseParams: framework.ExactPath(pattern),
		Load:        load,
		Render:      func(view string) templ.Component { return textComponent(view) },
		Layouts: []framework.LayoutRenderer[string]{
			func(_ string, child templ.Component) templ.Component {
				return wrapComponent("layout", child)
			},
		},
	}
}

func staticText(value string) framework.PageLoader[*struct{}, framework.EmptyParams, string] {
	return func(context.Context, *struct{}, *http.Request, framework.EmptyParams) (string, error) {
		return value, nil
	}
}

func TestHTTPServerCachePoliciesAndHTMX(t *testing.T) {
	t.Parallel()

	staticDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(staticDir, "app.css"), []byte("asset"), 0o644); err != nil {
		t.Fatalf("write static asset: %v", err)
	}

	handler, err := New(Config[*struct{}]{
		AppContext: &struct{}{},
		Handlers: []framework.RouteHandler[*struct{}]{
			framework.PageOnlyRouteHandler[*struct{}, framework.EmptyParams, string]{
				Page: layoutPage("/webtoons", staticText("page")),
			},
		},
		Static: StaticMount{Dir: staticDir},
		CachePolicies: CachePolicies{
			HTML:    "html-cache",
			Partial: "partial-cache",
			Static:  "static-cache",
			Health:  "health-cache",
			Error:   "error-cache",
		},
		NotFoundPage: func(framework.NotFoundContext) templ.Component {
			return textComponent("not-found")
		},
	})
	if err != nil {
		t.Fatalf("new http server: %v", err)
	}

	recPage := httptest.NewRecorder()
	handler.ServeHTTP(recPage, httptest.NewRequest(http.MethodGet, "/webtoons", nil))
	if recPage.Code != http.StatusOK {
		t.Fatalf("page status: expected %d, got %d", http.StatusOK, recPage.Code)
	}
	if got := recPage.Header().Get("Cache-Control"); got != "html-cache" {
		t.Fatalf("page cache policy: expected %q, got %q", "html-cache", got)
	}
	if got := recPage.Header().Get("Vary"); !strings.Contains(got, "HX-Request") {
		t.Fatalf("page vary header: expected HX-Request, got %q", got)
	}
	if body := strings.TrimSpace(recPage.Body.String()); body != "[layout]page[/layout]" {
		t.Fatalf("page body: expected layout-wrapped response, got %q", body)
	}

	reqHTMX := httptest.NewRequest(http.MethodGet, "/webtoons", nil)
	reqHTMX.Header.Set("HX-Request", "true")
	recHTMX := httptest.NewRecorder()
	handler.ServeHTTP(recHTMX, reqHTMX)
	if recHTMX.Code != http.StatusOK {
		t.Fatalf("htmx status: expected %d, got %d", http.StatusOK, recHTMX.Code)
	}
	if got := recHTMX.Header().Get("Cache-Control"); got != "partial-cache" {
		t.Fatalf("htmx cache policy: expected %q, got %q", "partial-cache", got)
	}
	if body := strings.TrimSpace(recHTMX.Body.String()); body != "page" {
		t.Fatalf("htmx body: expected partial response, got %q", body)
	}

	recStatic := httptest.NewRecorder()
	handler.ServeHTTP(recStatic, httptest.NewRequest(http.MethodGet, "/static/app.css", nil))
	if recStatic.Code != http.StatusOK {
		t.Fatalf("static status: expected %d, got %d", http.StatusOK, recStatic.Code)
	}
	if got := recStatic.Header().Get("Cache-Control"); got != "static-cache" {
		t.Fatalf("static cache policy: expected %q, got %q", "static-cache", got)
	}
	if body := recStatic.Body.String(); body != "asset" {
		t.Fatalf("static body: expected %q, got %q", "asset", body)
	}

	recHealth := httptest.NewRecorder()
	handler.ServeHTTP(recHealth, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if recHealth.Code != http.StatusOK {
		t.Fatalf("health status: expected %d, got %d", http.StatusOK, recHealth.Code)
	}
	if got := recHealth.Header().Get("Cache-Control"); got != "health-cache" {
		t.Fatalf("health cache policy: expected %q, got %q", "health-cache", got)
	}
	if body := strings.TrimSpace(recHealth.Body.String()); body != "ok" {
		t.Fatalf("health body: expected %q, got %q", "ok", body)
	}
}

func TestHTTPServerFormSubmission(t *testing.T) {
	t.Parallel()

	handler, err := New(Config[*struct{}]{
		AppContext: &struct{}{},
		Handlers: []framework.RouteHandler[*struct{}]{
			framework.FormRouteHandler[*struct{}, framework.EmptyParams, string, string]{
				Page: layoutPage("/webtoons/new", staticText("form")),
				Action: framework.ActionModule[*struct{}, framework.EmptyParams, string]{
					Pattern:     "/webtoons/new",
					ParseParams: framework.ExactPath("/webtoons/new"),
					Handle: func(_ context.Context, _ *struct{}, r *http.Request, _ framework.EmptyParams) (framework.ActionResult[string], error) {
						if r.PostForm.Get("title") == "" {
							return framework.ActionResult[string]{View: "invalid", StatusCode: http.StatusUnprocessableEntity}, nil
						}
						return framework.ActionResult[string]{RedirectURL: "/webtoons"}, nil
					},
					Render: func(view string) templ.Component { return textComponent(view) },
				},
			},
		},
		CachePolicies: CachePolicies{HTML: "html-cache"},
	})
	if err != nil {
		t.Fatalf("new http server: %v", err)
	}

	submit := func(values url.Values) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/webtoons/new", strings.NewReader(values.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	recRedirect := submit(url.Values{"title": {"My Comic"}})
	if recRedirect.Code != http.StatusFound {
		t.Fatalf("redirect status: expected %d, got %d", http.StatusFound, recRedirect.Code)
	}
	if got := recRedirect.Header().Get("Location"); got != "/webtoons" {
		t.Fatalf("redirect location: expected /webtoons, got %q", got)
	}

	recInvalid := submit(url.Values{})
	if recInvalid.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid status: expected %d, got %d", http.StatusUnprocessableEntity, recInvalid.Code)
	}
	if got := recInvalid.Header().Get("Cache-Control"); got != "no-store" {
		t.Fatalf("form cache policy: expected no-store, got %q", got)
	}
	if body := recInvalid.Body.String(); body != "invalid" {
		t.Fatalf("invalid body: expected %q, got %q", "invalid", body)
	}

	recMethod := httptest.NewRecorder()
	handler.ServeHTTP(recMethod, httptest.NewRequest(http.MethodPut, "/webtoons/new", nil))
	if recMethod.Code != http.StatusMethodNotAllowed {
		t.Fatalf("method status: expected %d, got %d", http.StatusMethodNotAllowed, recMethod.Code)
	}
}

func TestHTTPServerNotFoundContextForLoadAndUnmatched(t *testing.T) {
	t.Parallel()

	errNotFound := errors.New("not found")
	ctxs := make([]framework.NotFoundContext, 0, 2)

	handler, err := New(Config[*struct{}]{
		AppContext: &struct{}{},
		Handlers: []framework.RouteHandler[*struct{}]{
			framework.PageOnlyRouteHandler[*struct{}, framework.EmptyParams, string]{
				Page: layoutPage("/webtoons", func(context.Context, *struct{}, *http.Request, framework.EmptyParams) (string, error) {
					return "", errNotFound
				}),
			},
		},
		IsNotFoundError: func(err error) bool { return errors.Is(err, errNotFound) },
		NotFoundPage: func(notFoundContext framework.NotFoundContext) templ.Component {
			ctxs = append(ctxs, notFoundContext)
			return textComponent("missing")
		},
		CachePolicies: CachePolicies{
			Error: "error-cache",
		},
	})
	if err != nil {
		t.Fatalf("new http server: %v", err)
	}

	recLoadNotFound := httptest.NewRecorder()
	handler.ServeHTTP(recLoadNotFound, httptest.NewRequest(http.MethodGet, "/webtoons", nil))
	if recLoadNotFound.Code != http.StatusNotFound {
		t.Fatalf("load not found status: expected %d, got %d", http.StatusNotFound, recLoadNotFound.Code)
	}
	if got := recLoadNotFound.Header().Get("Cache-Control"); got != "error-cache" {
		t.Fatalf("load not found cache policy: expected %q, got %q", "error-cache", got)
	}
	if body := recLoadNotFound.Body.String(); body != "missing" {
		t.Fatalf("load not found body: expected %q, got %q", "missing", body)
	}

	recUnmatched := httptest.NewRecorder()
	handler.ServeHTTP(recUnmatched, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if recUnmatched.Code != http.StatusNotFound {
		t.Fatalf("unmatched status: expected %d, got %d", http.StatusNotFound, recUnmatched.Code)
	}

	if len(ctxs) != 2 {
		t.Fatalf("expected 2 not-found contexts, got %d", len(ctxs))
	}
	if ctxs[0].Source != framework.NotFoundSourcePageLoad {
		t.Fatalf("expected first source %q, got %q", framework.NotFoundSourcePageLoad, ctxs[0].Source)
	}
	if ctxs[0].MatchedRoutePattern != "/webtoons" {
		t.Fatalf("expected first matched pattern /webtoons, got %q", ctxs[0].MatchedRoutePattern)
	}
	if ctxs[1].Source != framework.NotFoundSourceUnmatchedRoute {
		t.Fatalf("expected second source %q, got %q", framework.NotFoundSourceUnmatchedRoute, ctxs[1].Source)
	}
	if ctxs[1].RequestPath != "/missing" {
		t.Fatalf("expected second request path /missing, got %q", ctxs[1].RequestPath)
	}
}

func TestHTTPServerServerErrorIsLogged(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")
	var logged error

	handler, err := New(Config[*struct{}]{
		AppContext: &struct{}{},
		Handlers: []framework.RouteHandler[*struct{}]{
			framework.PageOnlyRouteHandler[*struct{}, framework.EmptyParams, string]{
				Page: layoutPage("/webtoons", func(context.Context, *struct{}, *http.Request, framework.EmptyParams) (string, error) {
					return "", errBoom
				}),
			},
		},
		LogServerError: func(err error) { logged = err },
	})
	if err != nil {
		t.Fatalf("new http server: %v", err)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/webtoons", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected %d, got %d", http.StatusInternalServerError, rec.Code)
	}
	if !errors.Is(logged, errBoom) {
		t.Fatalf("expected logged load error, got %v", logged)
	}
}

func TestHTTPServerAccessLog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	handler, err := New(Config[*struct{}]{
		AppContext: &struct{}{},
		AccessLog:  log.New(&buf, "", 0),
	})
	if err != nil {
		t.Fatalf("new http server: %v", err)
	}

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 access log lines, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[0], "GET /healthz 200 2B ") {
		t.Fatalf("unexpected health log line %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "GET /nowhere 404 ") {
		t.Fatalf("unexpected not-found log line %q", lines[1])
	}
}
