package urlutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJoin(t *testing.T) {
	cases := []struct {
		base   string
		path   string
		expect string
	}{
		{"https://learnus.example.ac.kr", "/my/", "https://learnus.example.ac.kr/my/"},
		{"https://learnus.example.ac.kr/", "/my/", "https://learnus.example.ac.kr/my/"},
		{"https://portal.example.ac.kr", "notice/list", "https://portal.example.ac.kr/notice/list"},
		{"https://portal.example.ac.kr/", "", "https://portal.example.ac.kr"},
	}
	for _, test := range cases {
		require.Equal(t, test.expect, Join(test.base, test.path))
	}
}

func TestWithQuery(t *testing.T) {
	out := WithQuery("https://learnus.example.ac.kr/course/view.php", map[string]any{
		"id":   42,
		"lang": "ko",
	})
	require.Equal(t, "https://learnus.example.ac.kr/course/view.php?id=42&lang=ko", out)

	out = WithQuery("https://library.example.ac.kr/rooms?campus=sinchon", map[string]any{
		"date": "2025-03-02",
	})
	require.Equal(t, "https://library.example.ac.kr/rooms?campus=sinchon&date=2025-03-02", out)

	out = WithQuery("https://library.example.ac.kr/rooms", nil)
	require.Equal(t, "https://library.example.ac.kr/rooms", out)
}
