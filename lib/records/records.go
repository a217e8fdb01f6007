// Package records holds the normalized record types produced by the
// platform extractors and consumed by the aggregation service.
package records

import "time"

// Platform identifies which campus site a record was scraped from.
// The tag is stamped by the extractor at parse time and never mutated
// afterward.
type Platform string

const (
	PlatformLearnUs Platform = "learnus"
	PlatformPortal  Platform = "portal"
	PlatformLibrary Platform = "library"
)

type Attachment struct {
	Id   string
	Name string
	Url  string
	// derived from human-readable size text, 0 when unparseable
	SizeBytes int64
	// derived from the file extension when not explicitly present
	MimeType string
}

type Course struct {
	Id          string
	Name        string
	Instructor  string
	Semester    string
	Url         string
	Description string
	Credits     int
	// free-text slot strings, order preserved
	Schedule   []string
	Department string
	Platform   Platform
}

type Notice struct {
	Id          string
	Title       string
	Body        string
	Author      string
	PublishedAt time.Time
	Important   bool
	Views       int
	Attachments []Attachment
	Platform    Platform
}

type AssignmentStatus string

const (
	AssignmentNotSubmitted AssignmentStatus = "not-submitted"
	AssignmentSubmitted    AssignmentStatus = "submitted"
	AssignmentGraded       AssignmentStatus = "graded"
)

type Assignment struct {
	Id          string
	Title       string
	Description string
	StartAt     time.Time
	DueAt       time.Time
	Status      AssignmentStatus
	MaxScore    float64
	Attachments []Attachment
	Platform    Platform
}

type RoomSlot struct {
	Day       string
	StartTime string
	EndTime   string
	Purpose   string
	Organizer string
}

type Room struct {
	Id         string
	Name       string
	Capacity   int
	Available  bool
	Location   string
	Facilities []string
	Schedule   []RoomSlot
	Platform   Platform
}

type LibraryState string

const (
	LibraryOpen        LibraryState = "open"
	LibraryClosed      LibraryState = "closed"
	LibraryMaintenance LibraryState = "maintenance"
)

type LibraryStatus struct {
	RoomType  string
	Capacity  int
	Available int
	Status    LibraryState
}

type LibraryHours struct {
	Facility string
	Weekday  string
	Weekend  string
	Holiday  string
}

// LibraryResource is the aggregate returned for library-wide queries.
type LibraryResource struct {
	Status  []LibraryStatus
	Hours   []LibraryHours
	Notices []Notice
}
