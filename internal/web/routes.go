package web

import (
	"github.com/a-h/templ"
	"pblstudio/framework"
	"pblstudio/internal/web/appcore"
	"pblstudio/internal/web/components"
)

type appContext = *appcore.Context

func rootLayout[VM appcore.RootLayoutView]() []framework.LayoutRenderer[VM] {
	return []framework.LayoutRenderer[VM]{
		func(view VM, child templ.Component) templ.Component {
			return components.Layout(view, child)
		},
	}
}

func page[P interface{}, VM appcore.RootLayoutView](
	pattern string,
	parse framework.ParamsParser[P],
	load framework.PageLoader[appContext, P, VM],
	render framework.PageRenderer[VM],
) framework.PageModule[appContext, P, VM] {
	return framework.PageModule[appContext, P, VM]{
		Pattern:     pattern,
		ParseParams: parse,
		Load:        load,
		Render:      render,
		Layouts:     rootLayout[VM](),
	}
}

// Handlers lists every application route. Registration order does not
// matter; the engine tries static paths before wildcard ones.
func Handlers() []framework.RouteHandler[appContext] {
	return []framework.RouteHandler[appContext]{
		framework.PageOnlyRouteHandler[appContext, framework.EmptyParams, appcore.HomePageView]{
			Page: page("/", framework.ExactPath("/"), appcore.LoadHomePage, components.Home),
		},
		framework.PageOnlyRouteHandler[appContext, framework.EmptyParams, appcore.ProjectsPageView]{
			Page: page("/projects", framework.ExactPath("/projects"), appcore.LoadProjectsPage, components.Projects),
		},
		framework.PageOnlyRouteHandler[appContext, framework.EmptyParams, appcore.WebtoonsPageView]{
			Page: page("/webtoons", framework.ExactPath("/webtoons"), appcore.LoadWebtoonsPage, components.WebtoonsList),
		},
		framework.FormRouteHandler[appContext, framework.EmptyParams, appcore.NewWebtoonPageView, appcore.NewWebtoonPageView]{
			Page: page("/webtoons/new", framework.ExactPath("/webtoons/new"), appcore.LoadNewWebtoonPage, components.NewWebtoon),
			Action: framework.ActionModule[appContext, framework.EmptyParams, appcore.NewWebtoonPageView]{
				Pattern:     "/webtoons/new",
				ParseParams: framework.ExactPath("/webtoons/new"),
				Handle:      appcore.PublishWebtoon,
				Render:      components.NewWebtoon,
				Layouts:     rootLayout[appcore.NewWebtoonPageView](),
			},
		},
		framework.PageOnlyRouteHandler[appContext, framework.SlugParams, appcore.WebtoonPageView]{
			Page: page("/webtoons/[slug]", framework.SlugPath("/webtoons/[slug]"), appcore.LoadWebtoonPage, components.Webtoon),
		},
	}
}
