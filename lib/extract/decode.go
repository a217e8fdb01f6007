package extract

import (
	"mime"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"campusassist-backend/lib/records"
)

var digitRun = regexp.MustCompile(`-?[\d,]+`)

// ParseInt reads the first run of digits out of free text, so cells
// like "조회 1,234" decode to 1234. Unparseable text yields 0.
func ParseInt(s string) int {
	match := digitRun.FindString(s)
	if match == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.ReplaceAll(match, ",", ""))
	if err != nil {
		return 0
	}
	return n
}

var floatRun = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

func ParseFloat(s string) float64 {
	match := floatRun.FindString(strings.ReplaceAll(s, ",", ""))
	if match == "" {
		return 0
	}
	f, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return f
}

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006.01.02 15:04",
	"2006.01.02",
	"2006/01/02",
	"06-01-02",
}

var koreanDate = regexp.MustCompile(`(\d{4})년\s*(\d{1,2})월\s*(\d{1,2})일`)

// ParseDate tries the date layouts the campus sites are known to
// render. Unparseable text yields the zero time.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}

	if groups := koreanDate.FindStringSubmatch(s); groups != nil {
		year, _ := strconv.Atoi(groups[1])
		month, _ := strconv.Atoi(groups[2])
		day, _ := strconv.Atoi(groups[3])
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
	}

	for _, layout := range dateLayouts {
		parsed, err := time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			return parsed
		}
	}
	return time.Time{}
}

var sizeUnits = map[string]int64{
	"B":  1,
	"KB": 1024,
	"MB": 1024 * 1024,
	"GB": 1024 * 1024 * 1024,
}

var sizeText = regexp.MustCompile(`(?i)^([\d.,]+)\s*(B|KB|MB|GB)$`)

// ParseSize converts human-readable size text ("3.2MB", "512KB") to
// bytes. Unparseable text yields 0.
func ParseSize(s string) int64 {
	groups := sizeText.FindStringSubmatch(strings.TrimSpace(s))
	if groups == nil {
		return 0
	}
	amount, err := strconv.ParseFloat(strings.ReplaceAll(groups[1], ",", ""), 64)
	if err != nil {
		return 0
	}
	return int64(amount * float64(sizeUnits[strings.ToUpper(groups[2])]))
}

// status vocabularies: case-insensitive substring match over the
// Korean and English renderings the sites use. Order matters,
// "미제출" contains "제출" so the not-submitted check runs first.
var gradedWords = []string{"채점", "평가 완료", "graded"}
var notSubmittedWords = []string{"미제출", "not submitted", "not-submitted"}
var submittedWords = []string{"제출", "submitted"}

func ParseAssignmentStatus(s string) records.AssignmentStatus {
	lowered := strings.ToLower(s)
	if containsAny(lowered, gradedWords) {
		return records.AssignmentGraded
	}
	if containsAny(lowered, notSubmittedWords) {
		return records.AssignmentNotSubmitted
	}
	if containsAny(lowered, submittedWords) {
		return records.AssignmentSubmitted
	}
	return records.AssignmentNotSubmitted
}

var maintenanceWords = []string{"점검", "정비", "maintenance"}
var closedWords = []string{"종료", "휴관", "closed"}
var openWords = []string{"이용 가능", "이용가능", "운영", "open"}

func ParseLibraryState(s string) records.LibraryState {
	lowered := strings.ToLower(s)
	if containsAny(lowered, maintenanceWords) {
		return records.LibraryMaintenance
	}
	// "운영 종료" must not read as open, so closed words run first
	if containsAny(lowered, closedWords) {
		return records.LibraryClosed
	}
	if containsAny(lowered, openWords) {
		return records.LibraryOpen
	}
	return records.LibraryClosed
}

func containsAny(lowered string, words []string) bool {
	for _, word := range words {
		if strings.Contains(lowered, word) {
			return true
		}
	}
	return false
}

// MimeFromName derives a mime type tag from a file name's extension.
func MimeFromName(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return "application/octet-stream"
	}
	if known := mime.TypeByExtension(ext); known != "" {
		// strip any charset parameter
		if i := strings.Index(known, ";"); i >= 0 {
			known = known[:i]
		}
		return known
	}
	switch ext {
	case ".hwp", ".hwpx":
		return "application/x-hwp"
	default:
		return "application/octet-stream"
	}
}
