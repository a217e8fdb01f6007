// Package portal scrapes the general university portal: the course
// catalog used to enrich course records and the campus-wide notice
// boards (academic, scholarship, career).
package portal

import (
	"context"
	"strings"
	"time"

	"campusassist-backend/lib/extract"
	"campusassist-backend/lib/fetch"
	"campusassist-backend/lib/records"
	"campusassist-backend/lib/scrapers/session"
	"campusassist-backend/lib/urlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/portal")

const (
	loginPath   = "/login"
	logoutPath  = "/logout"
	coursesPath = "/sugang/courses"
	boardPath   = "/board/notice"
)

// Board is one of the portal's notice boards.
type Board string

const (
	BoardGeneral     Board = ""
	BoardAcademic    Board = "academic"
	BoardScholarship Board = "scholarship"
	BoardCareer      Board = "career"
)

type Client struct {
	http  *fetch.Client
	guard session.Guard
	retry fetch.RetryPolicy
}

type ClientOptions struct {
	BaseUrl string
	Timeout time.Duration
	Retry   fetch.RetryPolicy
}

func NewClient(opts ClientOptions) (*Client, error) {
	httpClient, err := fetch.NewClient(fetch.ClientOptions{
		BaseUrl:    opts.BaseUrl,
		Timeout:    opts.Timeout,
		TracerName: "scrapers/portal/http",
	})
	if err != nil {
		return nil, err
	}
	return &Client{
		http:  httpClient,
		retry: opts.Retry,
	}, nil
}

func (c *Client) State() session.State {
	return c.guard.State()
}

// Login scrapes the hidden _csrf field off the login form, submits
// the credentials and checks for a logout affordance.
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

	csrf := doc.Find("input[name=_csrf]").AttrOr("value", "")
	if csrf == "" {
		return session.NewError("could not find csrf token", nil)
	}

	res, err := c.http.SubmitForm(ctx, loginPath, map[string]string{
		"username": username,
		"password": password,
		"_csrf":    csrf,
	})
	if err != nil {
		return session.NewError("login request failed", err)
	}
	if !strings.Contains(res.Body, "logout") && !strings.Contains(res.Body, "로그아웃") {
		return session.NewError("login rejected by site", session.ErrLoginFailed)
	}
	return nil
}

func (c *Client) Logout(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "client:Logout")
	defer span.End()

	_, err := c.http.Page(ctx, logoutPath)
	if err != nil {
		span.RecordError(err)
	}
	c.guard.Reset()
}

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
	if strings.Contains(page.Body, "name=\"_csrf\"") {
		c.guard.Reset()
		return "", session.NewError("session expired", nil)
	}
	return page.Body, nil
}

// Courses lists the enrolled courses as the portal renders them,
// used to fill in fields the course platform omits.
func (c *Client) Courses(ctx context.Context) ([]records.Course, error) {
	ctx, span := tracer.Start(ctx, "client:Courses")
	defer span.End()

	body, err := c.fetchPage(ctx, coursesPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch course catalog")
		return nil, err
	}

	courses, err := extract.Courses(body, records.PlatformPortal)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to extract courses")
		return nil, err
	}
	return courses, nil
}

// Notices lists a notice board, newest first as the site renders it.
func (c *Client) Notices(ctx context.Context, board Board) ([]records.Notice, error) {
	ctx, span := tracer.Start(ctx, "client:Notices")
	defer span.End()

	endpoint := boardPath
	if board != BoardGeneral {
		endpoint = urlutil.Join(boardPath, string(board))
	}
	body, err := c.fetchPage(ctx, endpoint)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch notice board")
		return nil, err
	}

	notices, err := extract.Notices(body, records.PlatformPortal)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to extract notices")
		return nil, err
	}
	return notices, nil
}

// NoticeDetail fetches one notice's full page, body and attachments
// included.
func (c *Client) NoticeDetail(ctx context.Context, noticeId string) (records.Notice, error) {
	ctx, span := tracer.Start(ctx, "client:NoticeDetail")
	defer span.End()

	endpoint := urlutil.WithQuery(urlutil.Join(boardPath, "view"), map[string]any{"id": noticeId})
	body, err := c.fetchPage(ctx, endpoint)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch notice page")
		return records.Notice{}, err
	}

	notices, err := extract.Notices(body, records.PlatformPortal)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to extract notice")
		return records.Notice{}, err
	}
	if len(notices) == 0 {
		return records.Notice{}, &extract.ParseError{Message: "no notice block in detail page"}
	}
	return notices[0], nil
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
