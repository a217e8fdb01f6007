package library

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

func newFakeLibrary(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /login", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<form><input type="hidden" name="_csrf" value="lib-csrf"></form>`)
	})
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.PostForm.Get("_csrf") != "lib-csrf" || r.PostForm.Get("password") != "hunter2" {
			fmt.Fprint(w, `<div class="error">로그인 실패</div>`)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "LIBSESSION", Value: "lib-1"})
		fmt.Fprint(w, `<a href="/logout">로그아웃</a>`)
	})

	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie("LIBSESSION")
			if err != nil || cookie.Value != "lib-1" {
				fmt.Fprint(w, `<form><input name="_csrf" value="lib-csrf"></form>`)
				return
			}
			next(w, r)
		}
	}

	mux.HandleFunc("GET /studyroom/list", authed(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "신촌", r.URL.Query().Get("campus"))
		fmt.Fprint(w, `<div class="room-list">
			<div class="room-item" data-room-id="r-301">
				<span class="room-name">스터디룸 301</span>
				<span class="room-capacity">6인</span>
			</div>
		</div>`)
	}))
	mux.HandleFunc("POST /studyroom/reserve", authed(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.PostForm.Get("roomId") != "r-301" {
			fmt.Fprint(w, `<div class="reservation-error">이미 예약된 시간입니다</div>`)
			return
		}
		fmt.Fprint(w, `<div class="reservation-confirm">
			<span class="reservation-id">rsv-789</span>
		</div>`)
	}))
	mux.HandleFunc("POST /studyroom/cancel", authed(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.PostForm.Get("reservationId") == "rsv-789" {
			fmt.Fprint(w, `<div class="cancel-confirm">예약이 취소되었습니다</div>`)
			return
		}
		fmt.Fprint(w, `<div class="cancel-error"></div>`)
	}))
	mux.HandleFunc("GET /status", authed(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<div class="library-status">
			<div class="status-row">
				<span class="status-name">제1열람실</span>
				<span class="status-capacity">500</span>
				<span class="status-available">120</span>
				<span class="status-state">이용 가능</span>
			</div>
		</div>`)
	}))
	mux.HandleFunc("GET /hours", authed(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<div class="library-hours">
			<div class="hours-row">
				<span class="hours-facility">중앙도서관</span>
				<span class="hours-weekday">09:00-22:00</span>
			</div>
		</div>`)
	}))
	mux.HandleFunc("GET /board/notice", authed(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<div class="notice-board">
			<div class="notice-item" data-notice-id="lib-1">
				<span class="notice-title">열람실 좌석 시스템 점검 안내</span>
			</div>
		</div>`)
	}))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newLoggedInClient(t *testing.T) *Client {
	server := newFakeLibrary(t)
	client, err := NewClient(ClientOptions{BaseUrl: server.URL})
	require.NoError(t, err)
	require.NoError(t, client.Login(context.Background(), "student1", "hunter2"))
	return client
}

func TestRooms(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/library")
	defer cleanup()

	client := newLoggedInClient(t)
	rooms, err := client.Rooms(context.Background(), "신촌")
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	require.Equal(t, "r-301", rooms[0].Id)
	require.Equal(t, 6, rooms[0].Capacity)
	require.Equal(t, records.PlatformLibrary, rooms[0].Platform)
}

func TestReserveAndCancel(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/library")
	defer cleanup()

	client := newLoggedInClient(t)
	ctx := context.Background()

	reservation, err := client.ReserveRoom(ctx, "r-301", "2025-03-02", "10:00", "12:00", "스터디")
	require.NoError(t, err)
	require.True(t, reservation.Success)
	require.Equal(t, "rsv-789", reservation.ReservationId)

	// conflicting reservation: not an error, just unsuccessful
	reservation, err = client.ReserveRoom(ctx, "r-999", "2025-03-02", "10:00", "12:00", "스터디")
	require.NoError(t, err)
	require.False(t, reservation.Success)

	cancel, err := client.CancelReservation(ctx, "rsv-789")
	require.NoError(t, err)
	require.True(t, cancel.Success)
}

func TestReserveRequiresAuthentication(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/library")
	defer cleanup()

	server := newFakeLibrary(t)
	client, err := NewClient(ClientOptions{BaseUrl: server.URL})
	require.NoError(t, err)

	_, err = client.ReserveRoom(context.Background(), "r-301", "2025-03-02", "10:00", "12:00", "스터디")
	var authErr *session.AuthenticationError
	require.ErrorAs(t, err, &authErr)
}

func TestResourceAggregate(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/library")
	defer cleanup()

	client := newLoggedInClient(t)
	resource, err := client.Resource(context.Background())
	require.NoError(t, err)
	require.Len(t, resource.Status, 1)
	require.Len(t, resource.Hours, 1)
	require.Len(t, resource.Notices, 1)
	require.Equal(t, records.LibraryOpen, resource.Status[0].Status)
}
