package web

import (
	"strings"

	"pblstudio/framework/httpserver"
	"pblstudio/internal/config"
)

const cacheControlPublicHour = "public, max-age=3600, s-maxage=3600"

// cachePolicies maps configured Cache-Control values onto the server's policy
// set. Form responses and errors are never cached.
func cachePolicies(cfg config.Config) httpserver.CachePolicies {
	html := strings.TrimSpace(cfg.CacheHTML)
	if html == "" {
		html = "no-cache"
	}
	static := strings.TrimSpace(cfg.CacheStatic)
	if static == "" {
		static = cacheControlPublicHour
	}

	return httpserver.CachePolicies{
		HTML:    html,
		Partial: html,
		Form:    "no-store",
		Static:  static,
		Health:  "no-store",
		Error:   "no-store",
	}
}
