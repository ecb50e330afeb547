package appcore

import (
	"errors"

	"pblstudio/internal/markdown"
	"pblstudio/internal/webtoons"
)

var errWebtoonServiceUnavailable = errors.New("webtoon service unavailable")

type Context struct {
	service *webtoons.Service
	home    markdown.Document
}

// NewContext binds the webtoon service and the rendered landing copy.
func NewContext(service *webtoons.Service, home markdown.Document) *Context {
	return &Context{service: service, home: home}
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, webtoons.ErrNotFound)
}
