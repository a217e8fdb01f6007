// Package fetch wraps resty with the header set, timeout and error
// taxonomy shared by every campus site client. It performs no retries
// itself, see RetryPolicy for the bounded retry wrapper applied at the
// platform boundary.
package fetch

import (
	"context"
	"errors"
	"net"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"time"

	"campusassist-backend/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

const desktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client
}

type ClientOptions struct {
	BaseUrl string
	// defaults to 10s
	Timeout time.Duration
	// tracer name for resty instrumentation, defaults to "fetch/http"
	TracerName string
}

func NewClient(opts ClientOptions) (*Client, error) {
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = time.Second * 10
	}
	tracerName := opts.TracerName
	if tracerName == "" {
		tracerName = "fetch/http"
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", desktopUserAgent)
	client.SetHeader("accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	client.SetHeader("accept-language", "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(timeout)

	telemetry.InstrumentResty(client, tracerName)

	return &Client{
		BaseUrl: baseUrl,
		Http:    client,
	}, nil
}

type Page struct {
	Body       string
	StatusCode int
}

// Page performs a GET carrying the client's cookie jar and headers.
func (c *Client) Page(ctx context.Context, endpoint string) (Page, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		Get(endpoint)
	if err != nil {
		return Page{}, classifyTransport(err)
	}
	if err := checkStatus(res); err != nil {
		return Page{}, err
	}
	return Page{
		Body:       string(res.Body()),
		StatusCode: res.StatusCode(),
	}, nil
}

// Binary performs a GET and returns the raw response bytes, used for
// attachment downloads.
func (c *Client) Binary(ctx context.Context, endpoint string) ([]byte, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		Get(endpoint)
	if err != nil {
		return nil, classifyTransport(err)
	}
	if err := checkStatus(res); err != nil {
		return nil, err
	}
	return res.Body(), nil
}

// SubmitForm performs a POST with a url-encoded body, used for login
// and reservation forms.
func (c *Client) SubmitForm(ctx context.Context, endpoint string, fields map[string]string) (Page, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		SetFormData(fields).
		Post(endpoint)
	if err != nil {
		return Page{}, classifyTransport(err)
	}
	if err := checkStatus(res); err != nil {
		return Page{}, err
	}
	return Page{
		Body:       string(res.Body()),
		StatusCode: res.StatusCode(),
	}, nil
}

func classifyTransport(err error) *NetworkError {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &NetworkError{Kind: KindTimeout, cause: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &NetworkError{Kind: KindTimeout, cause: err}
	}

	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) {
		return &NetworkError{Kind: KindConnection, cause: err}
	}

	return &NetworkError{Kind: KindUnknown, cause: err}
}

func checkStatus(res *resty.Response) error {
	code := res.StatusCode()
	if code >= 200 && code < 300 {
		return nil
	}

	switch code {
	case 429:
		return &NetworkError{
			Kind:       KindRateLimit,
			StatusCode: code,
			RetryAfter: retryAfter(res),
		}
	case 408, 504:
		return &NetworkError{Kind: KindTimeout, StatusCode: code}
	case 502, 503:
		return &NetworkError{
			Kind:       KindConnection,
			StatusCode: code,
			RetryAfter: retryAfter(res),
		}
	}
	return &NetworkError{Kind: KindUnknown, StatusCode: code}
}

func retryAfter(res *resty.Response) time.Duration {
	header := res.Header().Get("Retry-After")
	if header == "" {
		return 0
	}
	seconds, err := strconv.Atoi(header)
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
