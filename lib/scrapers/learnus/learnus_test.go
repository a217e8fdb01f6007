package learnus

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"campusassist-backend/lib/records"
	"campusassist-backend/lib/scrapers/session"
	"campusassist-backend/lib/telemetry"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

const testUsername = "student1"
const testPassword = "hunter2"

type fakeSite struct {
	mux      *http.ServeMux
	requests atomic.Int64
	// when set, every data page serves the login form instead, the
	// way the real site answers a dead session cookie
	expired atomic.Bool
}

func newFakeSite(t *testing.T) (*fakeSite, *httptest.Server) {
	site := &fakeSite{mux: http.NewServeMux()}

	site.mux.HandleFunc("GET /login/index.php", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<form action="/login/index.php" method="post">
			<input type="hidden" name="logintoken" value="tok-123">
		</form>`)
	})
	site.mux.HandleFunc("POST /login/index.php", func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.PostForm.Get("logintoken") != "tok-123" ||
			r.PostForm.Get("username") != testUsername ||
			r.PostForm.Get("password") != testPassword {
			fmt.Fprint(w, `<div class="loginerrors">로그인 정보가 올바르지 않습니다</div>`)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "MoodleSession", Value: "sess-1", Path: "/"})
		fmt.Fprint(w, `<div class="usermenu"><a href="/login/logout.php">로그아웃</a></div>`)
	})

	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie("MoodleSession")
			if site.expired.Load() || err != nil || cookie.Value != "sess-1" {
				fmt.Fprint(w, `<form action="/login/index.php" method="post">
					<input type="hidden" name="logintoken" value="tok-123">
				</form>`)
				return
			}
			next(w, r)
		}
	}

	site.mux.HandleFunc("GET /my/", authed(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<div class="course-list">
			<div class="course-item" data-course-id="ECO1101">
				<a class="course-link" href="/course/view.php?id=1101">
					<span class="course-title">미시경제원론</span>
				</a>
				<span class="course-prof">김경제</span>
			</div>
		</div>`)
	}))
	site.mux.HandleFunc("GET /mod/assign/index.php", authed(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "1101", r.URL.Query().Get("id"))
		fmt.Fprint(w, `<div class="assignment-list">
			<div class="assignment-item" data-assignment-id="a-1">
				<span class="assignment-title">과제 1</span>
				<span class="assignment-status">제출 완료</span>
			</div>
		</div>`)
	}))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		site.requests.Add(1)
		site.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)
	return site, server
}

func newTestClient(t *testing.T, server *httptest.Server) *Client {
	client, err := NewClient(ClientOptions{BaseUrl: server.URL})
	require.NoError(t, err)
	return client
}

func TestAuthenticationGate(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/learnus")
	defer cleanup()

	site, server := newFakeSite(t)
	client := newTestClient(t, server)

	_, err := client.Courses(context.Background())
	var authErr *session.AuthenticationError
	require.ErrorAs(t, err, &authErr)
	// the gate fires before any network call
	require.EqualValues(t, 0, site.requests.Load())
}

func TestLoginRejected(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/learnus")
	defer cleanup()

	_, server := newFakeSite(t)
	client := newTestClient(t, server)

	err := client.Login(context.Background(), testUsername, "wrong")
	var authErr *session.AuthenticationError
	require.ErrorAs(t, err, &authErr)
	require.ErrorIs(t, err, session.ErrLoginFailed)
	require.Equal(t, session.Unauthenticated, client.State())
}

func TestLoginAndScrape(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/learnus")
	defer cleanup()

	_, server := newFakeSite(t)
	client := newTestClient(t, server)

	ctx := context.Background()
	require.NoError(t, client.Login(ctx, testUsername, testPassword))
	require.Equal(t, session.Authenticated, client.State())

	courses, err := client.Courses(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	require.Equal(t, "ECO1101", courses[0].Id)
	require.Equal(t, records.PlatformLearnUs, courses[0].Platform)

	assignments, err := client.Assignments(ctx, "1101")
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	require.Equal(t, records.AssignmentSubmitted, assignments[0].Status)
}

func TestExpiredSessionDetected(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/learnus")
	defer cleanup()

	site, server := newFakeSite(t)
	client := newTestClient(t, server)

	ctx := context.Background()
	require.NoError(t, client.Login(ctx, testUsername, testPassword))

	site.expired.Store(true)
	_, err := client.Courses(ctx)
	var authErr *session.AuthenticationError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, session.Unauthenticated, client.State())
}

func TestPageCacheStaysBehindAuthGate(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/learnus")
	defer cleanup()

	_, server := newFakeSite(t)

	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	client, err := NewClient(ClientOptions{
		BaseUrl:   server.URL,
		PageCache: db,
		ClientId:  "learnus-test",
	})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, client.Login(ctx, testUsername, testPassword))

	courses, err := client.Courses(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 1)

	// the dashboard page was cached along with its course links
	cached, err := client.pages.Get("/my/")
	require.NoError(t, err)
	require.Len(t, cached.Anchors, 1)
	require.Equal(t, "미시경제원론", cached.Anchors[0].Name)

	// a warm cache must not leak records past the gate
	client.Logout(ctx)
	_, err = client.Courses(ctx)
	var authErr *session.AuthenticationError
	require.ErrorAs(t, err, &authErr)
}

func TestLogoutForcesUnauthenticated(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/learnus")
	defer cleanup()

	_, server := newFakeSite(t)
	client := newTestClient(t, server)

	ctx := context.Background()
	require.NoError(t, client.Login(ctx, testUsername, testPassword))

	// the fake site has no logout route, the failure is swallowed
	client.Logout(ctx)
	require.Equal(t, session.Unauthenticated, client.State())
}
