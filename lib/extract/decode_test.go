package extract

import (
	"testing"
	"time"

	"campusassist-backend/lib/records"

	"github.com/stretchr/testify/require"
)

func TestParseSize(t *testing.T) {
	cases := []struct {
		text   string
		expect int64
	}{
		{"3.2MB", 3355443},
		{"512KB", 524288},
		{"512 KB", 524288},
		{"1GB", 1073741824},
		{"100B", 100},
		{"2.5mb", 2621440},
		{"bogus", 0},
		{"", 0},
		{"MB", 0},
	}
	for _, test := range cases {
		require.Equal(t, test.expect, ParseSize(test.text), "input %q", test.text)
	}
}

func TestParseInt(t *testing.T) {
	require.Equal(t, 1234, ParseInt("조회 1,234"))
	require.Equal(t, 3, ParseInt("3학점"))
	require.Equal(t, 0, ParseInt("없음"))
	require.Equal(t, 0, ParseInt(""))
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		text   string
		expect time.Time
	}{
		{"2025-03-02", time.Date(2025, time.March, 2, 0, 0, 0, 0, time.Local)},
		{"2025.03.02", time.Date(2025, time.March, 2, 0, 0, 0, 0, time.Local)},
		{"2025-03-02 13:30", time.Date(2025, time.March, 2, 13, 30, 0, 0, time.Local)},
		{"2025년 3월 2일", time.Date(2025, time.March, 2, 0, 0, 0, 0, time.Local)},
		{"언젠가", time.Time{}},
		{"", time.Time{}},
	}
	for _, test := range cases {
		require.Equal(t, test.expect, ParseDate(test.text), "input %q", test.text)
	}
}

func TestParseAssignmentStatus(t *testing.T) {
	cases := []struct {
		text   string
		expect records.AssignmentStatus
	}{
		{"제출 완료", records.AssignmentSubmitted},
		{"Submitted for grading", records.AssignmentSubmitted},
		{"채점 완료", records.AssignmentGraded},
		{"Graded", records.AssignmentGraded},
		{"미제출", records.AssignmentNotSubmitted},
		{"Not submitted", records.AssignmentNotSubmitted},
		{"알 수 없음", records.AssignmentNotSubmitted},
		{"", records.AssignmentNotSubmitted},
	}
	for _, test := range cases {
		require.Equal(t, test.expect, ParseAssignmentStatus(test.text), "input %q", test.text)
	}
}

func TestParseLibraryState(t *testing.T) {
	cases := []struct {
		text   string
		expect records.LibraryState
	}{
		{"이용 가능", records.LibraryOpen},
		{"Open", records.LibraryOpen},
		{"운영중", records.LibraryOpen},
		{"점검중", records.LibraryMaintenance},
		{"Maintenance", records.LibraryMaintenance},
		{"운영 종료", records.LibraryClosed},
		{"종료", records.LibraryClosed},
		{"휴관", records.LibraryClosed},
		{"???", records.LibraryClosed},
	}
	for _, test := range cases {
		require.Equal(t, test.expect, ParseLibraryState(test.text), "input %q", test.text)
	}
}

func TestMimeFromName(t *testing.T) {
	require.Equal(t, "application/pdf", MimeFromName("수강안내.pdf"))
	require.Equal(t, "application/x-hwp", MimeFromName("공지.hwp"))
	require.Equal(t, "application/octet-stream", MimeFromName("noextension"))
}

func TestSyntheticIdUnique(t *testing.T) {
	a := SyntheticId("notice", 0)
	b := SyntheticId("notice", 1)
	require.NotEqual(t, a, b)
}
