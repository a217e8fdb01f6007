// Package library scrapes the library system: study room listings
// and reservations, reading room occupancy and opening hours.
package library

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"campusassist-backend/lib/extract"
	"campusassist-backend/lib/fetch"
	"campusassist-backend/lib/htmlutil"
	"campusassist-backend/lib/records"
	"campusassist-backend/lib/scrapers/session"
	"campusassist-backend/lib/urlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/library")

const (
	loginPath   = "/login"
	logoutPath  = "/logout"
	roomsPath   = "/studyroom/list"
	reservePath = "/studyroom/reserve"
	cancelPath  = "/studyroom/cancel"
	statusPath  = "/status"
	hoursPath   = "/hours"
	noticePath  = "/board/notice"
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
		TracerName: "scrapers/library/http",
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

// Rooms lists the study rooms for a campus with their reservation
// schedules.
func (c *Client) Rooms(ctx context.Context, campus string) ([]records.Room, error) {
	ctx, span := tracer.Start(ctx, "client:Rooms")
	defer span.End()

	endpoint := urlutil.WithQuery(roomsPath, map[string]any{"campus": campus})
	body, err := c.fetchPage(ctx, endpoint)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch room list")
		return nil, err
	}

	rooms, err := extract.Rooms(body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to extract rooms")
		return nil, err
	}
	return rooms, nil
}

type Reservation struct {
	Success       bool
	ReservationId string
}

// ReserveRoom submits a reservation form for a room slot. The site
// answers with a confirmation block carrying the reservation id.
func (c *Client) ReserveRoom(ctx context.Context, roomId, date, startTime, endTime, purpose string) (Reservation, error) {
	ctx, span := tracer.Start(ctx, "client:ReserveRoom")
	defer span.End()

	if err := c.guard.Require(); err != nil {
		return Reservation{}, err
	}

	res, err := fetch.Retry(ctx, c.retry, func(ctx context.Context) (fetch.Page, error) {
		return c.http.SubmitForm(ctx, reservePath, map[string]string{
			"roomId":    roomId,
			"date":      date,
			"startTime": startTime,
			"endTime":   endTime,
			"purpose":   purpose,
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reservation request failed")
		return Reservation{}, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.Body))
	if err != nil {
		return Reservation{}, &extract.ParseError{Message: "malformed reservation response"}
	}
	confirmation := doc.Find(".reservation-confirm").First()
	if confirmation.Length() == 0 {
		return Reservation{Success: false}, nil
	}
	return Reservation{
		Success:       true,
		ReservationId: htmlutil.CleanText(confirmation.Find(".reservation-id").Text()),
	}, nil
}

type CancelResult struct {
	Success bool
}

func (c *Client) CancelReservation(ctx context.Context, reservationId string) (CancelResult, error) {
	ctx, span := tracer.Start(ctx, "client:CancelReservation")
	defer span.End()

	if err := c.guard.Require(); err != nil {
		return CancelResult{}, err
	}

	res, err := fetch.Retry(ctx, c.retry, func(ctx context.Context) (fetch.Page, error) {
		return c.http.SubmitForm(ctx, cancelPath, map[string]string{
			"reservationId": reservationId,
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "cancel request failed")
		return CancelResult{}, err
	}
	return CancelResult{
		Success: strings.Contains(res.Body, "cancel-confirm"),
	}, nil
}

// Status reads the reading room occupancy board.
func (c *Client) Status(ctx context.Context) ([]records.LibraryStatus, error) {
	ctx, span := tracer.Start(ctx, "client:Status")
	defer span.End()

	body, err := c.fetchPage(ctx, statusPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch status board")
		return nil, err
	}
	return extract.LibraryStatuses(body)
}

// Hours reads the opening hours table.
func (c *Client) Hours(ctx context.Context) ([]records.LibraryHours, error) {
	ctx, span := tracer.Start(ctx, "client:Hours")
	defer span.End()

	body, err := c.fetchPage(ctx, hoursPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch hours")
		return nil, err
	}
	return extract.LibraryHours(body)
}

// Notices lists the library's own notice board.
func (c *Client) Notices(ctx context.Context) ([]records.Notice, error) {
	ctx, span := tracer.Start(ctx, "client:Notices")
	defer span.End()

	body, err := c.fetchPage(ctx, noticePath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch notices")
		return nil, err
	}
	return extract.Notices(body, records.PlatformLibrary)
}

// Resource fetches status, hours and notices concurrently and returns
// whatever succeeded. Only a failure of all three is an error.
func (c *Client) Resource(ctx context.Context) (records.LibraryResource, error) {
	ctx, span := tracer.Start(ctx, "client:Resource")
	defer span.End()

	var resource records.LibraryResource
	var errList []error
	var mu sync.Mutex
	var wg sync.WaitGroup

	collect := func(op func() error) {
		defer wg.Done()
		err := op()
		if err != nil {
			mu.Lock()
			errList = append(errList, err)
			mu.Unlock()
			span.RecordError(err)
		}
	}

	wg.Add(3)
	go collect(func() error {
		status, err := c.Status(ctx)
		if err != nil {
			return err
		}
		mu.Lock()
		resource.Status = status
		mu.Unlock()
		return nil
	})
	go collect(func() error {
		hours, err := c.Hours(ctx)
		if err != nil {
			return err
		}
		mu.Lock()
		resource.Hours = hours
		mu.Unlock()
		return nil
	})
	go collect(func() error {
		notices, err := c.Notices(ctx)
		if err != nil {
			return err
		}
		mu.Lock()
		resource.Notices = notices
		mu.Unlock()
		return nil
	})
	wg.Wait()

	if len(errList) == 3 {
		err := errors.Join(errList...)
		span.SetStatus(codes.Error, "all library fetches failed")
		return records.LibraryResource{}, err
	}
	return resource, nil
}
