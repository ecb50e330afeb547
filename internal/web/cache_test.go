package web

import (
	"testing"

	"pblstudio/internal/config"
)

func TestCachePoliciesFromConfig(t *testing.T) {
	policies := cachePolicies(config.Config{CacheHTML: "private", CacheStatic: "public, max-age=60"})

	if policies.HTML != "private" || policies.Partial != "private" {
		t.Fatalf("expected html policy to follow config, got %+v", policies)
	}
	if policies.Static != "public, max-age=60" {
		t.Fatalf("expected static policy to follow config, got %q", policies.Static)
	}
	if policies.Form != "no-store" || policies.Error != "no-store" {
		t.Fatalf("expected uncached form and error responses, got %+v", policies)
	}
}

func TestCachePoliciesDefaults(t *testing.T) {
	policies := cachePolicies(config.Config{})

	if policies.HTML != "no-cache" {
		t.Fatalf("expected no-cache html default, got %q", policies.HTML)
	}
	if policies.Static != cacheControlPublicHour {
		t.Fatalf("expected cache-control %q, got %q", cacheControlPublicHour, policies.Static)
	}
}
