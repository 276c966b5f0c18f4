// Package gradescope scrapes Gradescope's html interface. There is no public
// API, so every extractor is written against the markup in selectors.go.
package gradescope

import (
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"gradescope-scraper/internal/components/assert"
	"gradescope-scraper/internal/components/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const DefaultBaseUrl = "https://www.gradescope.com"

const (
	DefaultRequestDelay = 100 * time.Millisecond
	// NoRequestDelay turns off the spacing of per-item requests.
	NoRequestDelay time.Duration = -1
)

const (
	report_client_new                     = "client.new"
	report_client_login                   = "client.login"
	report_client_fetch                   = "client.fetch"
	report_client_list_courses            = "client.list-courses"
	report_client_list_members            = "client.list-members"
	report_client_list_assignments        = "client.list-assignments"
	report_client_list_submission_links   = "client.list-submission-links"
	report_client_submission_links        = "client.submission-links"
	report_client_find_student_submission = "client.find-student-submission"
	report_client_list_student_submission = "client.list-student-submissions"
	report_client_list_graders            = "client.list-graders"
	report_client_list_extensions         = "client.list-extensions"
	report_client_set_extension           = "client.set-extension"
	report_client_update_dates            = "client.update-assignment-dates"
	report_client_upload                  = "client.upload-assignment"
)

type Options struct {
	// BaseUrl defaults to DefaultBaseUrl.
	BaseUrl string
	// RequestDelay is the minimum spacing between the per-item requests made
	// while resolving many submissions. Zero means DefaultRequestDelay,
	// any negative value (ex. NoRequestDelay) means no delay.
	RequestDelay time.Duration
	// Timeout applies to each request, defaults to 30 seconds.
	Timeout time.Duration
	// CloudflareBypass wraps the transport with a browser-like TLS
	// fingerprint.
	CloudflareBypass bool
	// UserAgent overrides the default browser user agent.
	UserAgent string
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// Client is an authenticated channel to one Gradescope account. It holds the
// cookie jar and the csrf header, so it must not be shared between
// goroutines without external locking.
type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client

	delay *rate.Limiter
	tel   telemetry.API
}

func NewClient(opts Options, tel telemetry.API) (*Client, error) {
	assert.NotNil(tel)
	assert.NotNegative("timeout", opts.Timeout)

	tel = telemetry.NewScopedAPI("gradescope_scraper", tel)

	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.RequestDelay == 0 {
		opts.RequestDelay = DefaultRequestDelay
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}

	baseUrl, err := url.Parse(strings.TrimSuffix(opts.BaseUrl, "/"))
	if err != nil {
		tel.ReportBroken(report_client_new, fmt.Errorf("parse base url: %w", err), opts.BaseUrl)
		return nil, err
	}
	if baseUrl.Scheme == "" || baseUrl.Host == "" {
		err := fmt.Errorf("base url must be absolute: %q", opts.BaseUrl)
		tel.ReportBroken(report_client_new, err)
		return nil, err
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(baseUrl.String())
	httpClient.SetCookieJar(jar)
	httpClient.SetHeader("user-agent", opts.UserAgent)
	httpClient.SetRedirectPolicy(
		resty.FlexibleRedirectPolicy(10),
		resty.DomainCheckRedirectPolicy(baseUrl.Hostname()),
	)
	httpClient.SetTimeout(opts.Timeout)
	if opts.CloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}

	telemetry.InstrumentResty(httpClient, "gradescope_scraper", tel)

	limit := rate.Inf
	if opts.RequestDelay > 0 {
		limit = rate.Every(opts.RequestDelay)
	}

	return &Client{
		BaseUrl: baseUrl,
		Http:    httpClient,
		delay:   rate.NewLimiter(limit, 1),
		tel:     tel,
	}, nil
}

// Url resolves path against the base url.
func (c *Client) Url(path string) string {
	return c.BaseUrl.String() + path
}

// Authenticated reports whether Login has installed a csrf header.
func (c *Client) Authenticated() bool {
	return c.Http.Header.Get(loginPage.CsrfHeader) != ""
}

func requireIds(ids ...string) error {
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return ErrInvalidId
		}
	}
	return nil
}

func courseUrl(courseId string) string {
	return fmt.Sprintf("/courses/%s", url.PathEscape(courseId))
}

func assignmentUrl(courseId, assignmentId string) string {
	return fmt.Sprintf("%s/assignments/%s", courseUrl(courseId), url.PathEscape(assignmentId))
}

