package extract

import (
	"campusassist-backend/lib/htmlutil"
	"campusassist-backend/lib/records"

	"github.com/PuerkitoBio/goquery"
)

// room markup signature: a .room-list container of .room-item blocks,
// each optionally carrying a .room-schedule table of reserved slots.
func roomSchema() schema[records.Room] {
	return schema[records.Room]{
		container: ".room-list",
		item:      ".room-item",
		fields: []Field[records.Room]{
			{
				Name: "id", Attr: "data-room-id",
				Set: func(r *records.Room, raw string) { r.Id = raw },
			},
			{
				Name: "name", Selector: ".room-name",
				Set: func(r *records.Room, raw string) { r.Name = raw },
			},
			{
				Name: "capacity", Selector: ".room-capacity",
				Set: func(r *records.Room, raw string) { r.Capacity = ParseInt(raw) },
			},
			{
				Name: "location", Selector: ".room-location",
				Set: func(r *records.Room, raw string) { r.Location = raw },
			},
		},
		lists: []ListField[records.Room]{
			{
				Name: "facilities", Selector: ".room-facilities li",
				Set: func(r *records.Room, values []string) { r.Facilities = values },
			},
		},
		post: func(sel *goquery.Selection, r *records.Room, ordinal int) {
			r.Available = !sel.HasClass("room-unavailable")
			r.Schedule = roomSlotsFrom(sel)
			if r.Id == "" {
				r.Id = SyntheticId("room", ordinal)
			}
			r.Platform = records.PlatformLibrary
		},
	}
}

func roomSlotsFrom(sel *goquery.Selection) []records.RoomSlot {
	var slots []records.RoomSlot
	sel.Find(".room-schedule tr.slot").Each(func(_ int, row *goquery.Selection) {
		cell := func(class string) string {
			return htmlutil.CleanText(row.Find(class).First().Text())
		}
		slots = append(slots, records.RoomSlot{
			Day:       cell(".slot-day"),
			StartTime: cell(".slot-start"),
			EndTime:   cell(".slot-end"),
			Purpose:   cell(".slot-purpose"),
			Organizer: cell(".slot-organizer"),
		})
	})
	return slots
}

func Rooms(html string) ([]records.Room, error) {
	doc, err := parseDocument(html)
	if err != nil {
		return nil, err
	}
	return roomSchema().extract(doc, "room")
}
