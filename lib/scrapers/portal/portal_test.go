package portal

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"campusassist-backend/lib/records"
	"campusassist-backend/lib/scrapers/session"
	"campusassist-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

func newFakePortal(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /login", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<form method="post" action="/login">
			<input type="hidden" name="_csrf" value="csrf-abc">
		</form>`)
	})
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.PostForm.Get("_csrf") != "csrf-abc" || r.PostForm.Get("password") != "hunter2" {
			fmt.Fprint(w, `<div class="error">아이디 또는 비밀번호를 확인하세요</div>`)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "portal-1"})
		fmt.Fprint(w, `<a href="/logout">로그아웃</a>`)
	})

	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie("JSESSIONID")
			if err != nil || cookie.Value != "portal-1" {
				fmt.Fprint(w, `<form><input name="_csrf" value="csrf-abc"></form>`)
				return
			}
			next(w, r)
		}
	}

	mux.HandleFunc("GET /board/notice/scholarship", authed(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<div class="notice-board">
			<div class="notice-item" data-notice-id="s-1">
				<span class="notice-title">2025-1 국가장학금 신청 안내</span>
				<span class="notice-date">2025-02-01</span>
			</div>
		</div>`)
	}))
	mux.HandleFunc("GET /board/notice/view", authed(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "s-1", r.URL.Query().Get("id"))
		fmt.Fprint(w, `<div class="notice-board">
			<div class="notice-item" data-notice-id="s-1">
				<span class="notice-title">2025-1 국가장학금 신청 안내</span>
				<div class="notice-body">신청 기간은 2월 1일부터입니다.</div>
				<div class="attachment" data-attachment-id="att-9">
					<a href="/files/guide.hwp">신청안내.hwp</a>
					<span class="attachment-size">1.5MB</span>
				</div>
			</div>
		</div>`)
	}))
	mux.HandleFunc("GET /sugang/courses", authed(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<div class="course-list">
			<div class="course-item" data-course-id="ECO1101">
				<span class="course-title">미시경제원론</span>
				<span class="course-dept">경제학부</span>
				<span class="course-credit">3</span>
			</div>
		</div>`)
	}))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func login(t *testing.T, client *Client) {
	require.NoError(t, client.Login(context.Background(), "student1", "hunter2"))
}

func TestLoginFlow(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/portal")
	defer cleanup()

	server := newFakePortal(t)
	client, err := NewClient(ClientOptions{BaseUrl: server.URL})
	require.NoError(t, err)

	err = client.Login(context.Background(), "student1", "wrong")
	var authErr *session.AuthenticationError
	require.ErrorAs(t, err, &authErr)

	login(t, client)
	require.Equal(t, session.Authenticated, client.State())
}

func TestScholarshipBoard(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/portal")
	defer cleanup()

	server := newFakePortal(t)
	client, err := NewClient(ClientOptions{BaseUrl: server.URL})
	require.NoError(t, err)
	login(t, client)

	notices, err := client.Notices(context.Background(), BoardScholarship)
	require.NoError(t, err)
	require.Len(t, notices, 1)
	require.Equal(t, "2025-1 국가장학금 신청 안내", notices[0].Title)
	require.Equal(t, records.PlatformPortal, notices[0].Platform)
}

func TestNoticeDetail(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/portal")
	defer cleanup()

	server := newFakePortal(t)
	client, err := NewClient(ClientOptions{BaseUrl: server.URL})
	require.NoError(t, err)
	login(t, client)

	notice, err := client.NoticeDetail(context.Background(), "s-1")
	require.NoError(t, err)
	require.Equal(t, "신청 기간은 2월 1일부터입니다.", notice.Body)
	require.Len(t, notice.Attachments, 1)
	require.Equal(t, "application/x-hwp", notice.Attachments[0].MimeType)
}

func TestPortalCourses(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/portal")
	defer cleanup()

	server := newFakePortal(t)
	client, err := NewClient(ClientOptions{BaseUrl: server.URL})
	require.NoError(t, err)
	login(t, client)

	courses, err := client.Courses(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 1)
	require.Equal(t, "경제학부", courses[0].Department)
}
