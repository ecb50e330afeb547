package appcore

import (
	"context"
	"net/http"
	"strings"

	"pblstudio/framework"
	"pblstudio/internal/webtoons"
)

const (
	defaultHomeTitle = "Public Studio"
	WebtoonsPath     = "/webtoons"
)

func LoadHomePage(
	_ context.Context,
	appCtx *Context,
	_ *http.Request,
	_ framework.EmptyParams,
) (HomePageView, error) {
	view := HomePageView{PageTitle: defaultHomeTitle}
	if appCtx == nil {
		return view, nil
	}
	if title := strings.TrimSpace(appCtx.home.Title); title != "" {
		view.PageTitle = title
	}
	view.Description = appCtx.home.Summary
	view.Body = appCtx.home.HTML
	return view, nil
}

func LoadProjectsPage(
	_ context.Context,
	appCtx *Context,
	_ *http.Request,
	_ framework.EmptyParams,
) (ProjectsPageView, error) {
	service, err := webtoonService(appCtx)
	if err != nil {
		return ProjectsPageView{}, err
	}

	return ProjectsPageView{
		PageTitle: "Projects",
		Projects:  service.ListProjects(),
	}, nil
}

func LoadWebtoonsPage(
	ctx context.Context,
	appCtx *Context,
	_ *http.Request,
	_ framework.EmptyParams,
) (WebtoonsPageView, error) {
	service, err := webtoonService(appCtx)
	if err != nil {
		return WebtoonsPageView{}, err
	}

	items, err := service.ListWebtoons(ctx)
	if err != nil {
		return WebtoonsPageView{}, err
	}
	total, err := service.CountWebtoons(ctx)
	if err != nil {
		return WebtoonsPageView{}, err
	}

	return WebtoonsPageView{
		PageTitle: "Webtoons",
		Webtoons:  items,
		Total:     total,
	}, nil
}

func LoadWebtoonPage(
	ctx context.Context,
	appCtx *Context,
	_ *http.Request,
	params framework.SlugParams,
) (WebtoonPageView, error) {
	service, err := webtoonService(appCtx)
	if err != nil {
		return WebtoonPageView{}, err
	}

	webtoon, err := service.GetWebtoon(ctx, params.Slug)
	if err != nil {
		return WebtoonPageView{}, err
	}

	return WebtoonPageView{
		PageTitle: webtoon.Title,
		Slugline:  params.Slug,
		Webtoon:   webtoon,
	}, nil
}

func LoadNewWebtoonPage(
	_ context.Context,
	_ *Context,
	_ *http.Request,
	_ framework.EmptyParams,
) (NewWebtoonPageView, error) {
	return newNewWebtoonPageView(webtoons.PublishForm{}, nil), nil
}

// PublishWebtoon stores a submitted webtoon and redirects to the list. A
// rejected submission re-renders the form with its values and messages.
func PublishWebtoon(
	ctx context.Context,
	appCtx *Context,
	r *http.Request,
	_ framework.EmptyParams,
) (framework.ActionResult[NewWebtoonPageView], error) {
	service, err := webtoonService(appCtx)
	if err != nil {
		return framework.ActionResult[NewWebtoonPageView]{}, err
	}

	form := webtoons.ParsePublishForm(r.PostForm)
	if _, err := service.Publish(ctx, form); err != nil {
		validationErr, ok := webtoons.AsValidationError(err)
		if !ok {
			return framework.ActionResult[NewWebtoonPageView]{}, err
		}
		return framework.ActionResult[NewWebtoonPageView]{
			StatusCode: http.StatusOK,
			View:       newNewWebtoonPageView(form, validationErr.Messages),
		}, nil
	}

	return framework.ActionResult[NewWebtoonPageView]{RedirectURL: WebtoonsPath}, nil
}

func webtoonService(appCtx *Context) (*webtoons.Service, error) {
	if appCtx == nil || appCtx.service == nil {
		return nil, errWebtoonServiceUnavailable
	}
	return appCtx.service, nil
}
