package rewrite

import (
	"net/url"
	"strings"
)

var dangerousSchemes = []string{"javascript:", "data:", "vbscript:"}

// renderLink applies the link-handling policy precedence from spec.md §4.4:
// strip > dangerous-scheme filter > allowed_domains > make_absolute > as-is.
func renderLink(lk linkEvent, opts LinkOptions) string {
	if opts.Strip {
		return lk.text
	}

	if hasDangerousScheme(lk.dest) {
		return lk.text
	}

	if len(opts.AllowedDomains) > 0 {
		if host, isAbsolute := absoluteHost(lk.dest); isAbsolute {
			if !domainAllowed(host, opts.AllowedDomains) {
				return lk.text
			}
		}
		// Relative hrefs bypass the allowlist check entirely.
	}

	if opts.MakeAbsolute && isRelative(lk.dest) && opts.BaseURL != "" {
		return "[" + lk.text + "](" + joinBaseURL(opts.BaseURL, lk.dest) + ")"
	}

	return "[" + lk.text + "](" + lk.dest + ")"
}

func hasDangerousScheme(href string) bool {
	lower := strings.ToLower(strings.TrimSpace(href))
	for _, s := range dangerousSchemes {
		if strings.HasPrefix(lower, s) {
			return true
		}
	}
	return false
}

// isRelative reports whether href has no URL scheme (and is not a
// protocol-relative `//host/...` URL).
func isRelative(href string) bool {
	if strings.HasPrefix(href, "//") {
		return false
	}
	u, err := url.Parse(href)
	if err != nil {
		return true
	}
	return u.Scheme == ""
}

// absoluteHost returns the hostname of href if it is an absolute URL.
func absoluteHost(href string) (host string, isAbsolute bool) {
	if strings.HasPrefix(href, "//") {
		u, err := url.Parse("scheme:" + href)
		if err != nil {
			return "", false
		}
		return strings.ToLower(u.Hostname()), true
	}
	u, err := url.Parse(href)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}
	return strings.ToLower(u.Hostname()), true
}

// domainAllowed matches exact hostnames only (spec.md §9 open question:
// subdomain matching is explicitly not performed by default).
func domainAllowed(host string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(host, a) {
			return true
		}
	}
	return false
}

// joinBaseURL joins base and a relative href with exactly one separating
// slash.
func joinBaseURL(base, href string) string {
	base = strings.TrimRight(base, "/")
	href = strings.TrimLeft(href, "/")
	return base + "/" + href
}
