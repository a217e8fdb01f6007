// Package campus is the aggregation service behind the chatbot's
// "fetch data for this question" contract. It routes a category to
// the platform sessions that serve it, fans the calls out, tolerates
// partial platform failure and caches the merged result.
package campus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"campusassist-backend/lib/cache"
	"campusassist-backend/lib/records"
	"campusassist-backend/lib/scrapers/library"
	"campusassist-backend/lib/scrapers/portal"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("services/campus")

const DefaultCampus = "신촌"

// CoursePlatform is the course site's session surface the aggregator
// needs (learnus.Client satisfies it).
type CoursePlatform interface {
	Courses(ctx context.Context) ([]records.Course, error)
	Assignments(ctx context.Context, courseId string) ([]records.Assignment, error)
	Notices(ctx context.Context, courseId string) ([]records.Notice, error)
}

// PortalPlatform is the university portal surface (portal.Client).
type PortalPlatform interface {
	Courses(ctx context.Context) ([]records.Course, error)
	Notices(ctx context.Context, board portal.Board) ([]records.Notice, error)
}

// LibraryPlatform is the library system surface (library.Client).
type LibraryPlatform interface {
	Rooms(ctx context.Context, campus string) ([]records.Room, error)
	Hours(ctx context.Context) ([]records.LibraryHours, error)
	Resource(ctx context.Context) (records.LibraryResource, error)
	ReserveRoom(ctx context.Context, roomId, date, startTime, endTime, purpose string) (library.Reservation, error)
	CancelReservation(ctx context.Context, reservationId string) (library.CancelResult, error)
}

type Service struct {
	learnus CoursePlatform
	portal  PortalPlatform
	library LibraryPlatform
	results *cache.Cache[Result]
}

type ServiceOptions struct {
	LearnUs CoursePlatform
	Portal  PortalPlatform
	Library LibraryPlatform
	// shared result cache, owned by the composition root
	Results *cache.Cache[Result]
}

func NewService(opts ServiceOptions) Service {
	return Service{
		learnus: opts.LearnUs,
		portal:  opts.Portal,
		library: opts.Library,
		results: opts.Results,
	}
}

// Options scopes one query. The zero value means: default campus, no
// count limit, cache on.
type Options struct {
	Campus string
	// maximum records to return, 0 means unlimited
	Count int
	// scrape even when a live cache entry exists, then overwrite it
	ForceRefresh bool
	// bypass the cache entirely, neither reading nor writing
	SkipCache bool
}

func (o Options) withDefaults() Options {
	if o.Campus == "" {
		o.Campus = DefaultCampus
	}
	return o
}

// PlatformOutcome records how one platform fared during a fan-out.
type PlatformOutcome struct {
	Platform records.Platform
	OK       bool
	Error    string `json:",omitempty"`
}

// Result is one answered category query. Exactly the fields matching
// the category are populated; Platforms always carries the outcome of
// every platform that was asked.
type Result struct {
	Category    Category
	Courses     []records.Course         `json:",omitempty"`
	Assignments []records.Assignment     `json:",omitempty"`
	Notices     []records.Notice         `json:",omitempty"`
	Rooms       []records.Room           `json:",omitempty"`
	Library     *records.LibraryResource `json:",omitempty"`
	Platforms   []PlatformOutcome
	FromCache   bool
}

// ScrapeByCategory is the single entry point. It resolves the category
// to its platforms, serves from cache when allowed, fans out otherwise
// and writes the merged result back through with the category's TTL.
//
// A concurrent miss on the same key may scrape twice; the second write
// simply overwrites the first. That race is accepted, there is no
// single-flight de-duplication.
func (s *Service) ScrapeByCategory(ctx context.Context, category Category, opts Options) (Result, error) {
	ctx, span := tracer.Start(ctx, "service:ScrapeByCategory",
		trace.WithAttributes(attribute.String("category", string(category))))
	defer span.End()

	ttl, known := categoryTTLs[category]
	if !known {
		err := &ConfigurationError{Message: fmt.Sprintf("unknown category %q", category)}
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}

	opts = opts.withDefaults()
	key := cacheKey(category, opts.Campus, opts.Count)

	if !opts.SkipCache && !opts.ForceRefresh {
		if cached, ok := s.results.Get(key); ok {
			cached.FromCache = true
			span.SetStatus(codes.Ok, "CACHE HIT")
			return cached, nil
		}
	}

	result, err := s.scrape(ctx, category, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "scrape failed")
		return Result{}, err
	}
	result.Category = category
	applyLimit(&result, opts.Count)

	if !opts.SkipCache {
		s.results.SetTTL(key, result, ttl)
	}
	return result, nil
}

func (s *Service) scrape(ctx context.Context, category Category, opts Options) (Result, error) {
	switch category {
	case CategoryCourse:
		return s.scrapeCourses(ctx)
	case CategoryAssignment:
		return s.scrapeAssignments(ctx)
	case CategoryNotice:
		return s.scrapeNotices(ctx)
	case CategoryAcademic:
		return s.scrapeBoard(ctx, portal.BoardAcademic)
	case CategoryScholarship:
		return s.scrapeBoard(ctx, portal.BoardScholarship)
	case CategoryCareer:
		return s.scrapeBoard(ctx, portal.BoardCareer)
	case CategoryLibrary:
		return s.scrapeLibrary(ctx)
	case CategoryStudyroom:
		return s.scrapeRooms(ctx, opts.Campus)
	case CategoryFacilities:
		return s.scrapeHours(ctx)
	}
	// unreachable, the TTL table gates the vocabulary
	return Result{}, &ConfigurationError{Message: fmt.Sprintf("unrouted category %q", category)}
}

type platformCall struct {
	platform records.Platform
	run      func(ctx context.Context) error
}

// fanOut starts every call, waits for all of them and inspects each
// outcome individually. Only a failure of every platform is an error;
// anything less is a partial result.
func fanOut(ctx context.Context, category Category, calls []platformCall) ([]PlatformOutcome, error) {
	outcomes := make([]PlatformOutcome, len(calls))
	errs := make([]error, len(calls))

	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call platformCall) {
			defer wg.Done()
			err := call.run(ctx)
			outcomes[i] = PlatformOutcome{Platform: call.platform, OK: err == nil}
			if err != nil {
				errs[i] = err
				outcomes[i].Error = err.Error()
				slog.ErrorContext(ctx, "platform scrape failed",
					"category", category,
					"platform", call.platform,
					"err", err)
			}
		}(i, call)
	}
	wg.Wait()

	var failures []PlatformFailure
	for i, err := range errs {
		if err != nil {
			failures = append(failures, PlatformFailure{Platform: calls[i].platform, Err: err})
		}
	}
	if len(failures) == len(calls) {
		return nil, &AggregateError{Category: category, Failures: failures}
	}
	return outcomes, nil
}

func (s *Service) scrapeCourses(ctx context.Context) (Result, error) {
	var mu sync.Mutex
	var fromLearnUs, fromPortal []records.Course

	outcomes, err := fanOut(ctx, CategoryCourse, []platformCall{
		{records.PlatformLearnUs, func(ctx context.Context) error {
			courses, err := s.learnus.Courses(ctx)
			if err != nil {
				return err
			}
			mu.Lock()
			fromLearnUs = courses
			mu.Unlock()
			return nil
		}},
		{records.PlatformPortal, func(ctx context.Context) error {
			courses, err := s.portal.Courses(ctx)
			if err != nil {
				return err
			}
			mu.Lock()
			fromPortal = courses
			mu.Unlock()
			return nil
		}},
	})
	if err != nil {
		return Result{}, err
	}
	return Result{
		Courses:   mergeCourseLists(fromLearnUs, fromPortal),
		Platforms: outcomes,
	}, nil
}

// scrapeAssignments walks the enrolled courses and collects every
// course's assignment list. A single course page failing is logged
// and skipped; the call only fails when nothing could be fetched.
func (s *Service) scrapeAssignments(ctx context.Context) (Result, error) {
	courses, err := s.learnus.Courses(ctx)
	if err != nil {
		return Result{}, &AggregateError{
			Category: CategoryAssignment,
			Failures: []PlatformFailure{{Platform: records.PlatformLearnUs, Err: err}},
		}
	}

	var assignments []records.Assignment
	var errs []error
	for _, course := range courses {
		perCourse, err := s.learnus.Assignments(ctx, course.Id)
		if err != nil {
			errs = append(errs, fmt.Errorf("course %s: %w", course.Id, err))
			slog.ErrorContext(ctx, "assignment scrape failed",
				"course", course.Id, "err", err)
			continue
		}
		assignments = append(assignments, perCourse...)
	}
	if len(errs) > 0 && len(assignments) == 0 {
		return Result{}, &AggregateError{
			Category: CategoryAssignment,
			Failures: []PlatformFailure{{Platform: records.PlatformLearnUs, Err: errors.Join(errs...)}},
		}
	}

	return Result{
		Assignments: assignments,
		Platforms: []PlatformOutcome{
			{Platform: records.PlatformLearnUs, OK: true},
		},
	}, nil
}

func (s *Service) scrapeNotices(ctx context.Context) (Result, error) {
	var mu sync.Mutex
	var fromLearnUs, fromPortal []records.Notice

	outcomes, err := fanOut(ctx, CategoryNotice, []platformCall{
		{records.PlatformLearnUs, func(ctx context.Context) error {
			notices, err := s.learnus.Notices(ctx, "")
			if err != nil {
				return err
			}
			mu.Lock()
			fromLearnUs = notices
			mu.Unlock()
			return nil
		}},
		{records.PlatformPortal, func(ctx context.Context) error {
			notices, err := s.portal.Notices(ctx, portal.BoardGeneral)
			if err != nil {
				return err
			}
			mu.Lock()
			fromPortal = notices
			mu.Unlock()
			return nil
		}},
	})
	if err != nil {
		return Result{}, err
	}
	return Result{
		Notices:   mergeNoticeLists(fromLearnUs, fromPortal),
		Platforms: outcomes,
	}, nil
}

func (s *Service) scrapeBoard(ctx context.Context, board portal.Board) (Result, error) {
	notices, err := s.portal.Notices(ctx, board)
	if err != nil {
		return Result{}, &AggregateError{
			Category: Category(board),
			Failures: []PlatformFailure{{Platform: records.PlatformPortal, Err: err}},
		}
	}
	return Result{
		Notices: notices,
		Platforms: []PlatformOutcome{
			{Platform: records.PlatformPortal, OK: true},
		},
	}, nil
}

func (s *Service) scrapeLibrary(ctx context.Context) (Result, error) {
	resource, err := s.library.Resource(ctx)
	if err != nil {
		return Result{}, &AggregateError{
			Category: CategoryLibrary,
			Failures: []PlatformFailure{{Platform: records.PlatformLibrary, Err: err}},
		}
	}
	return Result{
		Library: &resource,
		Platforms: []PlatformOutcome{
			{Platform: records.PlatformLibrary, OK: true},
		},
	}, nil
}

func (s *Service) scrapeRooms(ctx context.Context, campus string) (Result, error) {
	rooms, err := s.library.Rooms(ctx, campus)
	if err != nil {
		return Result{}, &AggregateError{
			Category: CategoryStudyroom,
			Failures: []PlatformFailure{{Platform: records.PlatformLibrary, Err: err}},
		}
	}
	return Result{
		Rooms: rooms,
		Platforms: []PlatformOutcome{
			{Platform: records.PlatformLibrary, OK: true},
		},
	}, nil
}

func (s *Service) scrapeHours(ctx context.Context) (Result, error) {
	hours, err := s.library.Hours(ctx)
	if err != nil {
		return Result{}, &AggregateError{
			Category: CategoryFacilities,
			Failures: []PlatformFailure{{Platform: records.PlatformLibrary, Err: err}},
		}
	}
	return Result{
		Library: &records.LibraryResource{Hours: hours},
		Platforms: []PlatformOutcome{
			{Platform: records.PlatformLibrary, OK: true},
		},
	}, nil
}

func applyLimit(result *Result, count int) {
	if count <= 0 {
		return
	}
	if len(result.Courses) > count {
		result.Courses = result.Courses[:count]
	}
	if len(result.Assignments) > count {
		result.Assignments = result.Assignments[:count]
	}
	if len(result.Notices) > count {
		result.Notices = result.Notices[:count]
	}
	if len(result.Rooms) > count {
		result.Rooms = result.Rooms[:count]
	}
}

// ReserveRoom forwards to the library session and drops the cached
// studyroom listings for that campus on success, so the next query
// sees the slot taken.
func (s *Service) ReserveRoom(ctx context.Context, campus, roomId, date, startTime, endTime, purpose string) (library.Reservation, error) {
	ctx, span := tracer.Start(ctx, "service:ReserveRoom")
	defer span.End()

	if campus == "" {
		campus = DefaultCampus
	}
	reservation, err := s.library.ReserveRoom(ctx, roomId, date, startTime, endTime, purpose)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reservation failed")
		return library.Reservation{}, err
	}
	if reservation.Success {
		invalidated := s.results.DeletePrefix(string(CategoryStudyroom) + "/" + campus + "/")
		slog.DebugContext(ctx, "invalidated studyroom cache",
			"campus", campus, "entries", invalidated)
	}
	return reservation, nil
}

func (s *Service) CancelReservation(ctx context.Context, campus, reservationId string) (library.CancelResult, error) {
	ctx, span := tracer.Start(ctx, "service:CancelReservation")
	defer span.End()

	if campus == "" {
		campus = DefaultCampus
	}
	cancel, err := s.library.CancelReservation(ctx, reservationId)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "cancel failed")
		return library.CancelResult{}, err
	}
	if cancel.Success {
		s.results.DeletePrefix(string(CategoryStudyroom) + "/" + campus + "/")
	}
	return cancel, nil
}
