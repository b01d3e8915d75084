package http

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/akiyoshi81/risingstones-checkin-bot/internal/platform/logger"
	"github.com/akiyoshi81/risingstones-checkin-bot/pkg/utils"
)

type HTTPError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP Error %d: %s", e.StatusCode, e.Status)
}

type FetchOptions struct {
	Method            string
	FormBody          url.Values
	AdditionalHeaders map[string]string
}

// APIClient covers the two request patterns the protocol needs: authenticated
// calls carrying the stored session cookie as a literal Cookie header, and
// unauthenticated login-flow calls whose cookies are tracked in a LoginJar.
// Redirects are never followed automatically; the login flow chases them by
// hand so it can harvest Set-Cookie at every hop.
type APIClient struct {
	UserAgent  string
	WebOrigin  string
	HTTPClient *http.Client
	Log        *logger.ClassLogger

	mu     sync.Mutex
	cookie string
}

func NewAPIClient(userAgent, webOrigin string, log *logger.ClassLogger) *APIClient {
	return &APIClient{
		UserAgent: userAgent,
		WebOrigin: webOrigin,
		HTTPClient: &http.Client{
			Timeout: 120 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		Log: log,
	}
}

func (c *APIClient) SetSessionCookie(cookie string) {
	c.mu.Lock()
	c.cookie = cookie
	c.mu.Unlock()
}

func (c *APIClient) SessionCookie() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cookie
}

func (c *APIClient) HasSessionCookie() bool {
	return strings.TrimSpace(c.SessionCookie()) != ""
}

func (c *APIClient) browserHeaders() map[string]string {
	return map[string]string{
		"Accept":             "application/json, text/plain, */*",
		"Accept-Language":    "zh-CN,zh;q=0.9,en;q=0.8,en-GB;q=0.7,en-US;q=0.6",
		"Cache-Control":      "no-cache",
		"Pragma":             "no-cache",
		"User-Agent":         c.UserAgent,
		"Referer":            c.WebOrigin + "/",
		"Sec-Ch-Ua":          "\"Microsoft Edge\";v=\"137\", \"Chromium\";v=\"137\", \"Not/A)Brand\";v=\"24\"",
		"Sec-Ch-Ua-Mobile":   "?0",
		"Sec-Ch-Ua-Platform": "\"Windows\"",
		"Sec-Fetch-Dest":     "empty",
		"Sec-Fetch-Mode":     "cors",
		"Sec-Fetch-Site":     "same-site",
	}
}

// Fetch issues an authenticated call. The stored session cookie rides along
// verbatim; the response body is returned raw so callers can decode either
// JSON or JSONP envelopes.
func (c *APIClient) Fetch(endpoint string, opts *FetchOptions) ([]byte, error) {
	if opts == nil {
		opts = &FetchOptions{}
	}
	if opts.Method == "" {
		opts.Method = "GET"
	}

	var reqBody io.Reader
	if opts.FormBody != nil {
		reqBody = strings.NewReader(opts.FormBody.Encode())
	}

	req, err := http.NewRequest(opts.Method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range c.browserHeaders() {
		req.Header.Set(key, value)
	}
	if opts.FormBody != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for key, value := range opts.AdditionalHeaders {
		req.Header.Set(key, value)
	}
	if cookie := c.SessionCookie(); cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	if c.Log != nil {
		c.Log.JustLog(fmt.Sprintf("%s %s", opts.Method, endpoint))
	}

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request error: %w", err)
	}
	defer res.Body.Close()

	resBodyBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if c.Log != nil {
		c.Log.JustLog(fmt.Sprintf("Response Body:\n%s", utils.BeautifyJSON(resBodyBytes)))
	}

	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return resBodyBytes, nil
	}

	return nil, &HTTPError{
		StatusCode: res.StatusCode,
		Status:     res.Status,
		Body:       resBodyBytes,
	}
}

// LoginResult is the outcome of a single login-flow hop.
type LoginResult struct {
	StatusCode int
	Location   string
	Body       []byte
}

func (r *LoginResult) IsRedirect() bool {
	return r.StatusCode >= 300 && r.StatusCode < 400 && r.Location != ""
}

// LoginGet issues one unauthenticated login-flow request: cookies held in the
// jar are attached, the response's Set-Cookie headers are harvested back into
// it, and any redirect is reported to the caller instead of being followed.
func (c *APIClient) LoginGet(rawURL string, jar *LoginJar, extraHeaders map[string]string) (*LoginResult, error) {
	req, err := http.NewRequest("GET", rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range c.browserHeaders() {
		req.Header.Set(key, value)
	}
	for key, value := range extraHeaders {
		req.Header.Set(key, value)
	}
	if jar != nil {
		for _, cookie := range jar.Cookies(req.URL) {
			req.AddCookie(cookie)
		}
	}

	if c.Log != nil {
		c.Log.JustLog(fmt.Sprintf("GET %s", rawURL))
	}

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request error: %w", err)
	}
	defer res.Body.Close()

	if jar != nil {
		jar.SetCookies(req.URL, res.Cookies())
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &LoginResult{
		StatusCode: res.StatusCode,
		Location:   res.Header.Get("Location"),
		Body:       body,
	}, nil
}
