package commands

import (
	"os"
	"time"

	"campusassist-backend/lib/records"
	"campusassist-backend/services/campus"

	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable(header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(header)
	t.SetStyle(table.StyleRounded)
	return t
}

func formatDate(date time.Time) string {
	if date.IsZero() {
		return ""
	}
	return date.Format("2006-01-02")
}

func renderResult(result campus.Result) {
	if len(result.Courses) > 0 {
		renderCourses(result.Courses)
	}
	if len(result.Assignments) > 0 {
		renderAssignments(result.Assignments)
	}
	if len(result.Notices) > 0 {
		renderNotices(result.Notices)
	}
	if len(result.Rooms) > 0 {
		renderRooms(result.Rooms)
	}
	if result.Library != nil {
		renderLibrary(*result.Library)
	}
	renderOutcomes(result.Platforms)
}

func renderCourses(courses []records.Course) {
	t := newTable(table.Row{"Id", "Name", "Instructor", "Credits", "Department", "Platform"})
	for _, c := range courses {
		t.AppendRow(table.Row{c.Id, c.Name, c.Instructor, c.Credits, c.Department, c.Platform})
	}
	t.Render()
}

func renderAssignments(assignments []records.Assignment) {
	t := newTable(table.Row{"Id", "Title", "Due", "Status", "Platform"})
	for _, a := range assignments {
		t.AppendRow(table.Row{a.Id, a.Title, formatDate(a.DueAt), a.Status, a.Platform})
	}
	t.Render()
}

func renderNotices(notices []records.Notice) {
	t := newTable(table.Row{"Id", "Title", "Author", "Published", "Important", "Platform"})
	for _, n := range notices {
		t.AppendRow(table.Row{n.Id, n.Title, n.Author, formatDate(n.PublishedAt), n.Important, n.Platform})
	}
	t.Render()
}

func renderRooms(rooms []records.Room) {
	t := newTable(table.Row{"Id", "Name", "Capacity", "Available", "Location"})
	for _, r := range rooms {
		t.AppendRow(table.Row{r.Id, r.Name, r.Capacity, r.Available, r.Location})
	}
	t.Render()
}

func renderLibrary(resource records.LibraryResource) {
	if len(resource.Status) > 0 {
		t := newTable(table.Row{"Room", "Capacity", "Available", "Status"})
		for _, s := range resource.Status {
			t.AppendRow(table.Row{s.RoomType, s.Capacity, s.Available, s.Status})
		}
		t.Render()
	}
	if len(resource.Hours) > 0 {
		t := newTable(table.Row{"Facility", "Weekday", "Weekend", "Holiday"})
		for _, h := range resource.Hours {
			t.AppendRow(table.Row{h.Facility, h.Weekday, h.Weekend, h.Holiday})
		}
		t.Render()
	}
	if len(resource.Notices) > 0 {
		renderNotices(resource.Notices)
	}
}

func renderOutcomes(outcomes []campus.PlatformOutcome) {
	t := newTable(table.Row{"Platform", "OK", "Error"})
	for _, o := range outcomes {
		t.AppendRow(table.Row{o.Platform, o.OK, o.Error})
	}
	t.Render()
}
