package extract

import (
	"campusassist-backend/lib/records"
)

// library status signature: a .library-status container of .status-row
// entries, one per reading-room type.
func libraryStatusSchema() schema[records.LibraryStatus] {
	return schema[records.LibraryStatus]{
		container: ".library-status",
		item:      ".status-row",
		fields: []Field[records.LibraryStatus]{
			{
				Name: "room_type", Selector: ".status-name",
				Set: func(r *records.LibraryStatus, raw string) { r.RoomType = raw },
			},
			{
				Name: "capacity", Selector: ".status-capacity",
				Set: func(r *records.LibraryStatus, raw string) { r.Capacity = ParseInt(raw) },
			},
			{
				Name: "available", Selector: ".status-available",
				Set: func(r *records.LibraryStatus, raw string) { r.Available = ParseInt(raw) },
			},
			{
				Name: "state", Selector: ".status-state",
				Set: func(r *records.LibraryStatus, raw string) {
					r.Status = ParseLibraryState(raw)
				},
			},
		},
	}
}

func LibraryStatuses(html string) ([]records.LibraryStatus, error) {
	doc, err := parseDocument(html)
	if err != nil {
		return nil, err
	}
	return libraryStatusSchema().extract(doc, "library-status")
}

// library hours signature: a .library-hours container of .hours-row
// entries, one per facility.
func libraryHoursSchema() schema[records.LibraryHours] {
	return schema[records.LibraryHours]{
		container: ".library-hours",
		item:      ".hours-row",
		fields: []Field[records.LibraryHours]{
			{
				Name: "facility", Selector: ".hours-facility",
				Set: func(r *records.LibraryHours, raw string) { r.Facility = raw },
			},
			{
				Name: "weekday", Selector: ".hours-weekday",
				Set: func(r *records.LibraryHours, raw string) { r.Weekday = raw },
			},
			{
				Name: "weekend", Selector: ".hours-weekend",
				Set: func(r *records.LibraryHours, raw string) { r.Weekend = raw },
			},
			{
				Name: "holiday", Selector: ".hours-holiday",
				Set: func(r *records.LibraryHours, raw string) { r.Holiday = raw },
			},
		},
	}
}

func LibraryHours(html string) ([]records.LibraryHours, error) {
	doc, err := parseDocument(html)
	if err != nil {
		return nil, err
	}
	return libraryHoursSchema().extract(doc, "library-hours")
}
