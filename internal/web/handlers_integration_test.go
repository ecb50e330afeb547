package web

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"

	"pblstudio/internal/config"
	"pblstudio/internal/docstore"
	"pblstudio/internal/webtoons"
)

var webtoonLinkPattern = regexp.MustCompile(`<li><a href="([^"]+)">([^<]*)</a>`)

type testApp struct {
	handler http.Handler
	service *webtoons.Service
}

func newTestApp(t *testing.T) testApp {
	t.Helper()

	store, err := docstore.Open(filepath.Join(t.TempDir(), "pblstudio.sqlite"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	repo, err := webtoons.NewRepository(store)
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}

	var seq atomic.Int64
	svc := webtoons.NewService(repo, webtoons.WithIDGenerator(func() string {
		return fmt.Sprintf("id-%d", seq.Add(1))
	}))

	handler, err := NewHandler(config.Config{StaticDir: "static"}, svc)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return testApp{handler: handler, service: svc}
}

func requireBody(t *testing.T, body io.Reader) string {
	t.Helper()

	content, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(content)
}

func performRequest(handler http.Handler, method string, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func submitForm(handler http.Handler, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webtoons/new", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandlerPageRoutesRenderHTML(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	cases := []struct {
		path        string
		mustContain string
	}{
		{path: "/", mustContain: "<title>Public Studio</title>"},
		{path: "/projects", mustContain: `<a href="/webtoons">Webtoons</a>`},
		{path: "/webtoons", mustContain: "<title>Webtoons | Public Studio</title>"},
		{path: "/webtoons/new", mustContain: `<form method="post" action="/webtoons/new">`},
	}

	for _, tc := range cases {
		rec := performRequest(app.handler, http.MethodGet, tc.path)

		if rec.Code != http.StatusOK {
			t.Fatalf("%s status: expected %d, got %d", tc.path, http.StatusOK, rec.Code)
		}
		if contentType := rec.Header().Get("Content-Type"); !strings.Contains(contentType, "text/html") {
			t.Fatalf("%s content-type: expected html, got %q", tc.path, contentType)
		}

		body := requireBody(t, rec.Body)
		if !strings.Contains(body, tc.mustContain) {
			t.Fatalf("%s body missing %q", tc.path, tc.mustContain)
		}
	}
}

func TestHomeRendersMarkdownCopy(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	body := requireBody(t, performRequest(app.handler, http.MethodGet, "/").Body)
	if !strings.Contains(body, `<a href="/webtoons/new">publish form</a>`) {
		t.Fatalf("home missing rendered markdown link: %s", body)
	}
	if !strings.Contains(body, `<meta name="description"`) {
		t.Fatalf("home missing description meta: %s", body)
	}
	if !strings.Contains(body, `<pre class="chroma">`) {
		t.Fatalf("home missing highlighted code block: %s", body)
	}
	if !strings.Contains(body, `<span class="nf">POST</span>`) {
		t.Fatalf("home code block was not tokenised as http: %s", body)
	}
}

func TestPublishWebtoonRedirectsAndPersists(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	rec := submitForm(app.handler, url.Values{
		"title":  {"My Comic"},
		"author": {"Ann"},
		"page1":  {"https://cdn.example/1.png"},
		"page2":  {""},
		"page3":  {"https://cdn.example/3.png"},
		"page4":  {""},
		"page5":  {""},
	})
	if rec.Code != http.StatusFound {
		t.Fatalf("publish status: expected %d, got %d", http.StatusFound, rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/webtoons" {
		t.Fatalf("publish location: expected /webtoons, got %q", got)
	}

	list := requireBody(t, performRequest(app.handler, http.MethodGet, "/webtoons").Body)
	if !strings.Contains(list, `<a href="/webtoons/my-comic">My Comic</a>`) {
		t.Fatalf("list missing published webtoon: %s", list)
	}
	if !strings.Contains(list, "by Ann") {
		t.Fatalf("list missing author: %s", list)
	}

	detail := performRequest(app.handler, http.MethodGet, "/webtoons/my-comic")
	if detail.Code != http.StatusOK {
		t.Fatalf("detail status: expected %d, got %d", http.StatusOK, detail.Code)
	}
	body := requireBody(t, detail.Body)
	for _, want := range []string{
		`<h1>My Comic</h1>`,
		`<figure class="page" id="page-1"><img src="https://cdn.example/1.png"`,
		`<figure class="page" id="page-2"><img src="https://cdn.example/3.png"`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("detail missing %q: %s", want, body)
		}
	}
	if strings.Contains(body, `id="page-3"`) {
		t.Fatalf("detail should only number filled pages: %s", body)
	}
}

func TestWebtoonLinksResolveForReservedCharacters(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	titles := []string{"C# Basics", "50% Off", "AC/DC Live", "Hello World"}
	for _, title := range titles {
		rec := submitForm(app.handler, url.Values{"title": {title}, "author": {"Ann"}})
		if rec.Code != http.StatusFound {
			t.Fatalf("publish %q status: expected %d, got %d", title, http.StatusFound, rec.Code)
		}
	}

	list := requireBody(t, performRequest(app.handler, http.MethodGet, "/webtoons").Body)
	matches := webtoonLinkPattern.FindAllStringSubmatch(list, -1)
	if len(matches) != len(titles) {
		t.Fatalf("expected %d webtoon links, got %d: %s", len(titles), len(matches), list)
	}

	for _, match := range matches {
		href := html.UnescapeString(match[1])
		title := html.UnescapeString(match[2])
		if _, err := url.ParseRequestURI(href); err != nil {
			t.Fatalf("link for %q is not a valid URL %q: %v", title, href, err)
		}

		detail := performRequest(app.handler, http.MethodGet, href)
		if detail.Code != http.StatusOK {
			t.Fatalf("follow %q for %q: expected %d, got %d", href, title, http.StatusOK, detail.Code)
		}
		if body := requireBody(t, detail.Body); !strings.Contains(body, "<h1>"+html.EscapeString(title)+"</h1>") {
			t.Fatalf("detail for %q missing heading: %s", title, body)
		}
	}
}

func TestMultipartPublishIsAccepted(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for field, value := range map[string]string{
		"title":  "Upload Day",
		"author": "Ann",
		"page1":  "https://cdn.example/1.png",
	} {
		if err := writer.WriteField(field, value); err != nil {
			t.Fatalf("write %s: %v", field, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/webtoons/new", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	app.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("multipart publish status: expected %d, got %d: %s", http.StatusFound, rec.Code, rec.Body.String())
	}
	detail := requireBody(t, performRequest(app.handler, http.MethodGet, "/webtoons/upload-day").Body)
	if !strings.Contains(detail, `<img src="https://cdn.example/1.png"`) {
		t.Fatalf("multipart pages were not stored: %s", detail)
	}
}

func TestPublishWebtoonRejectsMissingFields(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	rec := submitForm(app.handler, url.Values{
		"title":  {""},
		"author": {"Ann"},
		"page1":  {"https://cdn.example/1.png"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("rejected status: expected %d, got %d", http.StatusOK, rec.Code)
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Fatalf("rejected cache policy: expected no-store, got %q", got)
	}

	body := requireBody(t, rec.Body)
	if !strings.Contains(body, "<li>Title is required</li>") {
		t.Fatalf("expected title error, got %s", body)
	}
	if strings.Contains(body, "Author is required") {
		t.Fatalf("did not expect author error, got %s", body)
	}
	if !strings.Contains(body, `name="author" value="Ann"`) {
		t.Fatalf("expected author value to be kept, got %s", body)
	}
	if !strings.Contains(body, `name="page1" value="https://cdn.example/1.png"`) {
		t.Fatalf("expected page value to be kept, got %s", body)
	}

	count, err := app.service.CountWebtoons(t.Context())
	if err != nil {
		t.Fatalf("count webtoons: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected nothing stored, got %d", count)
	}
}

func TestPublishWebtoonReportsBothMissingFields(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	body := requireBody(t, submitForm(app.handler, url.Values{}).Body)
	titleIdx := strings.Index(body, "Title is required")
	authorIdx := strings.Index(body, "Author is required")
	if titleIdx < 0 || authorIdx < 0 || titleIdx > authorIdx {
		t.Fatalf("expected both errors in order, got %s", body)
	}
}

func TestHandlerEscapesUserContent(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	rec := submitForm(app.handler, url.Values{
		"title":  {"Night <b>Shift</b>"},
		"author": {"Ann"},
	})
	if rec.Code != http.StatusFound {
		t.Fatalf("publish status: expected %d, got %d", http.StatusFound, rec.Code)
	}

	list := requireBody(t, performRequest(app.handler, http.MethodGet, "/webtoons").Body)
	if strings.Contains(list, "<b>Shift</b>") {
		t.Fatalf("expected title to be escaped: %s", list)
	}
	if !strings.Contains(list, "Night &lt;b&gt;Shift&lt;/b&gt;") {
		t.Fatalf("expected escaped title: %s", list)
	}
}

func TestHandlerNotFoundAndHealth(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	recHealth := performRequest(app.handler, http.MethodGet, "/healthz")
	if recHealth.Code != http.StatusOK {
		t.Fatalf("healthz status: expected %d, got %d", http.StatusOK, recHealth.Code)
	}
	if body := strings.TrimSpace(requireBody(t, recHealth.Body)); body != "ok" {
		t.Fatalf("healthz body: expected %q, got %q", "ok", body)
	}

	recMissingWebtoon := performRequest(app.handler, http.MethodGet, "/webtoons/missing")
	if recMissingWebtoon.Code != http.StatusNotFound {
		t.Fatalf("missing webtoon status: expected %d, got %d", http.StatusNotFound, recMissingWebtoon.Code)
	}
	if body := requireBody(t, recMissingWebtoon.Body); !strings.Contains(body, "<code>/webtoons/missing</code>") {
		t.Fatalf("missing webtoon body should name the path: %s", body)
	}

	recUnknown := performRequest(app.handler, http.MethodGet, "/nowhere/at/all")
	if recUnknown.Code != http.StatusNotFound {
		t.Fatalf("unknown path status: expected %d, got %d", http.StatusNotFound, recUnknown.Code)
	}
	_ = requireBody(t, recUnknown.Body)

	recMethod := performRequest(app.handler, http.MethodPost, "/webtoons")
	if recMethod.Code != http.StatusMethodNotAllowed {
		t.Fatalf("post list status: expected %d, got %d", http.StatusMethodNotAllowed, recMethod.Code)
	}
}

func TestHandlerServesStaticAssets(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	rec := performRequest(app.handler, http.MethodGet, "/static/app.css")
	if rec.Code != http.StatusOK {
		t.Fatalf("static status: expected %d, got %d", http.StatusOK, rec.Code)
	}
	if got := rec.Header().Get("Cache-Control"); got != cacheControlPublicHour {
		t.Fatalf("static cache policy: expected %q, got %q", cacheControlPublicHour, got)
	}
}

func TestPartialRequestSkipsLayout(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/projects", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	app.handler.ServeHTTP(rec, req)

	body := requireBody(t, rec.Body)
	if strings.Contains(body, "<html") {
		t.Fatalf("partial response should not include the document shell: %s", body)
	}
	if !strings.HasPrefix(body, "<h1>Projects</h1>") {
		t.Fatalf("unexpected partial body: %s", body)
	}
}
