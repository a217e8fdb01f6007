// Package learnus scrapes the course platform. The site is a Moodle
// derivative: login carries a hidden logintoken, data pages live
// under /course and /mod paths.
package learnus

import (
	"context"
	"strings"
	"time"

	"campusassist-backend/lib/extract"
	"campusassist-backend/lib/fetch"
	"campusassist-backend/lib/htmlutil"
	"campusassist-backend/lib/records"
	"campusassist-backend/lib/scrapers/pagecache"
	"campusassist-backend/lib/scrapers/session"
	"campusassist-backend/lib/urlutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/dgraph-io/badger/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/learnus")

const (
	loginPath      = "/login/index.php"
	logoutPath     = "/login/logout.php"
	dashboardPath  = "/my/"
	courseViewPath = "/course/view.php"
	assignmentPath = "/mod/assign/index.php"
	boardPath      = "/mod/ubboard/index.php"
)

// course lists move slowly, cache scraped dashboard pages for a day
const courseListLifetime = int64(time.Hour / time.Second * 24)

type Client struct {
	http  *fetch.Client
	guard session.Guard
	retry fetch.RetryPolicy
	// nil unless a page cache db was configured
	pages *pagecache.Cache
}

type ClientOptions struct {
	BaseUrl string
	Timeout time.Duration
	Retry   fetch.RetryPolicy
	// optional: persists slow-moving pages across restarts
	PageCache *badger.DB
	// unique id for this client's cache partition, required with
	// PageCache
	ClientId string
}

func NewClient(opts ClientOptions) (*Client, error) {
	httpClient, err := fetch.NewClient(fetch.ClientOptions{
		BaseUrl:    opts.BaseUrl,
		Timeout:    opts.Timeout,
		TracerName: "scrapers/learnus/http",
	})
	if err != nil {
		return nil, err
	}

	c := &Client{
		http:  httpClient,
		retry: opts.Retry,
	}
	if opts.PageCache != nil {
		pages := pagecache.New(opts.PageCache, httpClient.BaseUrl, opts.ClientId)
		c.pages = &pages
	}
	return c, nil
}

func (c *Client) State() session.State {
	return c.guard.State()
}

// Login fetches the login form, extracts the hidden logintoken,
// submits the credentials and verifies the dashboard shows a logout
// affordance. Network failures wrap as AuthenticationError.
func (c *Client) Login(ctx context.Context, username, password string) error {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	if err := c.guard.Begin(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	err := c.login(ctx, username, password)
	if err != nil {
		c.guard.Reset()
		span.RecordError(err)
		span.SetStatus(codes.Error, "login failed")
		return err
	}

	c.guard.Succeed()
	return nil
}

func (c *Client) login(ctx context.Context, username, password string) error {
	page, err := c.http.Page(ctx, loginPath)
	if err != nil {
		return session.NewError("failed to fetch login page", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.Body))
	if err != nil {
		return session.NewError("failed to parse login page", err)
	}
	logintoken := doc.Find("input[name=logintoken]").AttrOr("value", "")
	if logintoken == "" {
		return session.NewError("could not find login token", nil)
	}

	res, err := c.http.SubmitForm(ctx, loginPath, map[string]string{
		"logintoken": logintoken,
		"username":   username,
		"password":   password,
	})
	if err != nil {
		return session.NewError("login request failed", err)
	}

	if !hasLogoutAffordance(res.Body) {
		// the POST may have redirected to an interstitial, the
		// dashboard is authoritative
		dashboard, err := c.http.Page(ctx, dashboardPath)
		if err != nil {
			return session.NewError("failed to fetch dashboard after login", err)
		}
		if !hasLogoutAffordance(dashboard.Body) {
			return session.NewError("login rejected by site", session.ErrLoginFailed)
		}
	}
	return nil
}

func hasLogoutAffordance(body string) bool {
	return strings.Contains(body, "logout.php") || strings.Contains(body, "로그아웃")
}

// Logout is best effort: the request error is swallowed and the
// session is forced to unauthenticated regardless.
func (c *Client) Logout(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "client:Logout")
	defer span.End()

	_, err := c.http.Page(ctx, logoutPath)
	if err != nil {
		span.RecordError(err)
	}
	c.guard.Reset()
}

// fetchPage runs one retry-wrapped page fetch behind the auth gate
// and detects an authentication-required response.
func (c *Client) fetchPage(ctx context.Context, endpoint string) (string, error) {
	if err := c.guard.Require(); err != nil {
		return "", err
	}

	page, err := fetch.Retry(ctx, c.retry, func(ctx context.Context) (fetch.Page, error) {
		return c.http.Page(ctx, endpoint)
	})
	if err != nil {
		return "", err
	}

	// a login form on a data page means the session cookie expired
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.Body))
	if err != nil {
		return "", err
	}
	if doc.Find("input[name=logintoken]").Length() > 0 {
		c.guard.Reset()
		return "", session.NewError("session expired", nil)
	}
	return page.Body, nil
}

// Courses lists the dashboard courses, served from the page cache
// when one is configured.
func (c *Client) Courses(ctx context.Context) ([]records.Course, error) {
	ctx, span := tracer.Start(ctx, "client:Courses")
	defer span.End()

	// the gate applies even to cached pages, a logged-out client
	// must not serve another session's dashboard
	if err := c.guard.Require(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if c.pages != nil {
		if cached, err := c.pages.Get(dashboardPath); err == nil {
			span.SetStatus(codes.Ok, "CACHE HIT")
			return extract.Courses(string(cached.Contents), records.PlatformLearnUs)
		}
	}

	body, err := c.fetchPage(ctx, dashboardPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch dashboard")
		return nil, err
	}

	courses, err := extract.Courses(body, records.PlatformLearnUs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to extract courses")
		return nil, err
	}

	if c.pages != nil {
		err = c.pages.Set(dashboardPath, pagecache.Page{
			Contents:  []byte(body),
			Anchors:   courseAnchors(body),
			ExpiresAt: time.Now().Unix() + courseListLifetime,
		})
		if err != nil {
			span.RecordError(err)
		}
	}
	return courses, nil
}

// courseAnchors pulls the course links off the dashboard so cached
// pages keep their navigation targets.
func courseAnchors(body string) []htmlutil.Anchor {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil
	}
	return htmlutil.GetAnchors(doc.Find("a.course-link"))
}

func (c *Client) CourseDetail(ctx context.Context, courseId string) (records.Course, error) {
	ctx, span := tracer.Start(ctx, "client:CourseDetail")
	defer span.End()

	endpoint := urlutil.WithQuery(courseViewPath, map[string]any{"id": courseId})
	body, err := c.fetchPage(ctx, endpoint)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch course page")
		return records.Course{}, err
	}

	course, err := extract.CourseDetail(body, records.PlatformLearnUs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to extract course detail")
		return records.Course{}, err
	}
	return course, nil
}

func (c *Client) Assignments(ctx context.Context, courseId string) ([]records.Assignment, error) {
	ctx, span := tracer.Start(ctx, "client:Assignments")
	defer span.End()

	endpoint := urlutil.WithQuery(assignmentPath, map[string]any{"id": courseId})
	body, err := c.fetchPage(ctx, endpoint)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch assignments")
		return nil, err
	}

	assignments, err := extract.Assignments(body, records.PlatformLearnUs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to extract assignments")
		return nil, err
	}
	return assignments, nil
}

// Notices lists a course notice board. courseId may be empty for the
// site-wide board.
func (c *Client) Notices(ctx context.Context, courseId string) ([]records.Notice, error) {
	ctx, span := tracer.Start(ctx, "client:Notices")
	defer span.End()

	endpoint := boardPath
	if courseId != "" {
		endpoint = urlutil.WithQuery(boardPath, map[string]any{"id": courseId})
	}
	body, err := c.fetchPage(ctx, endpoint)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch notices")
		return nil, err
	}

	notices, err := extract.Notices(body, records.PlatformLearnUs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to extract notices")
		return nil, err
	}
	return notices, nil
}

// Attachment downloads one attachment's raw bytes.
func (c *Client) Attachment(ctx context.Context, attachment records.Attachment) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "client:Attachment")
	defer span.End()

	if err := c.guard.Require(); err != nil {
		return nil, err
	}
	data, err := fetch.Retry(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		return c.http.Binary(ctx, attachment.Url)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to download attachment")
		return nil, err
	}
	return data, nil
}
