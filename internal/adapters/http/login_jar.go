package http

import (
	"strings"
	"sync"
	"time"

	"net/http"
	"net/url"
)

// LoginJar collects cookies harvested hop by hop while the login flow chases
// redirects. It lives only for the duration of one login attempt; the single
// session cookie that matters is extracted at the end and persisted
// separately.
type LoginJar struct {
	mu      sync.Mutex
	cookies map[string][]*http.Cookie
}

func NewLoginJar() *LoginJar {
	return &LoginJar{cookies: make(map[string][]*http.Cookie)}
}

func (j *LoginJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if cookies == nil {
		return
	}

	for _, c := range cookies {
		key := domainKey(c.Domain, u.Host)
		list := j.cookies[key]
		updated := false
		for i, existing := range list {
			if strings.EqualFold(existing.Name, c.Name) && cookiePathMatch(existing.Path, c.Path) {
				if shouldDelete(c) {
					list = append(list[:i], list[i+1:]...)
				} else {
					list[i] = cloneCookie(c)
				}
				updated = true
				break
			}
		}
		if !updated && !shouldDelete(c) {
			list = append(list, cloneCookie(c))
		}
		j.cookies[key] = list
	}
}

func (j *LoginJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()

	var result []*http.Cookie
	if u == nil {
		return result
	}

	host := canonicalHost(u.Host)
	now := time.Now()

	for domain, list := range j.cookies {
		filtered := list[:0]
		for _, c := range list {
			if isExpired(c, now) {
				continue
			}
			if !domainMatches(host, domain) {
				filtered = append(filtered, c)
				continue
			}
			if !cookiePathMatch(c.Path, u.Path) {
				filtered = append(filtered, c)
				continue
			}
			result = append(result, cloneCookie(c))
			filtered = append(filtered, c)
		}
		j.cookies[domain] = filtered
	}

	return result
}

// Named returns the value of the first cookie whose name matches, compared
// case-insensitively across every origin in the jar. Returns "" when absent.
func (j *LoginJar) Named(name string) string {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := time.Now()
	for _, list := range j.cookies {
		for _, c := range list {
			if isExpired(c, now) {
				continue
			}
			if strings.EqualFold(c.Name, name) {
				return c.Value
			}
		}
	}
	return ""
}

func (j *LoginJar) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	n := 0
	for _, list := range j.cookies {
		n += len(list)
	}
	return n
}

func cloneCookie(c *http.Cookie) *http.Cookie {
	clone := *c
	return &clone
}

func canonicalHost(host string) string {
	host = strings.ToLower(host)
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	return host
}

func domainKey(cookieDomain, host string) string {
	if cookieDomain != "" {
		return canonicalHost(strings.TrimPrefix(cookieDomain, "."))
	}
	return canonicalHost(host)
}

func domainMatches(host, domain string) bool {
	host = canonicalHost(host)
	domain = canonicalHost(domain)
	if host == domain {
		return true
	}
	return strings.HasSuffix(host, "."+domain)
}

func cookiePathMatch(cookiePath, reqPath string) bool {
	if cookiePath == "" {
		cookiePath = "/"
	}
	return strings.HasPrefix(reqPath, cookiePath) || reqPath == ""
}

func shouldDelete(c *http.Cookie) bool {
	if c.MaxAge < 0 {
		return true
	}
	if !c.Expires.IsZero() && c.Expires.Before(time.Now()) {
		return true
	}
	return false
}

func isExpired(c *http.Cookie, now time.Time) bool {
	if c.MaxAge < 0 {
		return true
	}
	if !c.Expires.IsZero() && c.Expires.Before(now) {
		return true
	}
	return false
}
