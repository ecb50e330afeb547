package web

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/a-h/templ"
	"pblstudio/framework"
	"pblstudio/framework/httpserver"
	"pblstudio/internal/config"
	"pblstudio/internal/markdown"
	"pblstudio/internal/web/appcore"
	"pblstudio/internal/web/components"
	"pblstudio/internal/web/content"
	"pblstudio/internal/webtoons"
)

const homeSummaryChars = 160

// NewHandler builds the full HTTP surface: routes, static assets under
// /static/, /healthz and the not-found page.
func NewHandler(cfg config.Config, service *webtoons.Service) (http.Handler, error) {
	home := markdown.Render(content.Home, markdown.Options{}, homeSummaryChars)

	var accessLog *log.Logger
	if cfg.AccessLog {
		accessLog = log.New(os.Stderr, "pblstudio ", log.LstdFlags)
	}

	handler, err := httpserver.New(httpserver.Config[*appcore.Context]{
		AppContext:      appcore.NewContext(service, home),
		Handlers:        Handlers(),
		IsNotFoundError: appcore.IsNotFoundError,
		NotFoundPage:    notFoundPage,
		Static: httpserver.StaticMount{
			URLPrefix: "/static/",
			Dir:       cfg.StaticDir,
		},
		CachePolicies: cachePolicies(cfg),
		LogServerError: func(err error) {
			log.Printf("pblstudio server error: %v", err)
		},
		AccessLog: accessLog,
	})
	if err != nil {
		return nil, fmt.Errorf("create http handler: %w", err)
	}
	return handler, nil
}

func notFoundPage(notFoundContext framework.NotFoundContext) templ.Component {
	view := appcore.NewNotFoundPageView(notFoundContext.RequestPath)
	return components.Layout(view, components.NotFound(view))
}
