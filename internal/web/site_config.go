package web

import (
	"net"
	"net/url"
	"strings"

	gconfig "github.com/Laisky/go-config/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"

	contentCtl "github.com/Laisky/amc-site/internal/web/content/controller"
)

// LoadSiteConfig builds the frontend configuration from settings.
// A missing editor key or storage bucket only disables the related feature.
func LoadSiteConfig(logger logSDK.Logger) contentCtl.SiteConfig {
	site := contentCtl.SiteConfig{
		EditorAPIKey:   strings.TrimSpace(gconfig.Shared.GetString("settings.editor.api_key")),
		StorageBaseURL: strings.TrimRight(strings.TrimSpace(gconfig.Shared.GetString("settings.storage.public_base_url")), "/"),
		UploadsEnabled: strings.TrimSpace(gconfig.Shared.GetString("settings.storage.bucket")) != "",
	}

	if site.EditorAPIKey == "" {
		logger.Warn("settings.editor.api_key is empty, rich-text editor disabled")
	}
	if !site.UploadsEnabled {
		logger.Warn("settings.storage.bucket is empty, uploads disabled")
	}

	return site
}

// originMatcher matches request origins against `settings.web.allowed_origins`.
//
// Entries are host names, `*.example.com` wildcards that also match the apex
// domain, or full origins whose scheme is ignored.
type originMatcher struct {
	exact    map[string]bool
	suffixes []string
}

func newOriginMatcher(patterns []string) originMatcher {
	m := originMatcher{exact: map[string]bool{}}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if strings.Contains(p, "://") {
			if u, err := url.Parse(p); err == nil {
				p = u.Host
			}
		}

		if base, ok := strings.CutPrefix(p, "*."); ok {
			if base = normalizeHost(base); base != "" {
				m.suffixes = append(m.suffixes, base)
			}
			continue
		}
		if host := normalizeHost(p); host != "" {
			m.exact[host] = true
		}
	}

	return m
}

// allow reports whether origin may call the API.
func (m originMatcher) allow(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}

	host := normalizeHost(u.Host)
	if m.exact[host] {
		return true
	}
	for _, base := range m.suffixes {
		if host == base || strings.HasSuffix(host, "."+base) {
			return true
		}
	}

	return false
}

// normalizeHost lowercases a hostname and removes port or trailing dot suffixes.
func normalizeHost(value string) string {
	trimmed := strings.TrimSpace(strings.ToLower(value))
	trimmed = strings.TrimSuffix(trimmed, ".")
	if trimmed == "" {
		return ""
	}

	host, _, err := net.SplitHostPort(trimmed)
	if err == nil {
		return strings.TrimSuffix(strings.ToLower(host), ".")
	}

	if strings.HasPrefix(trimmed, "[") && strings.Contains(trimmed, "]") {
		withoutBrackets := strings.TrimPrefix(trimmed, "[")
		withoutBrackets = strings.TrimSuffix(withoutBrackets, "]")
		return strings.TrimSuffix(withoutBrackets, ".")
	}

	return trimmed
}
