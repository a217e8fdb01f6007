package extract

import (
	"campusassist-backend/lib/records"

	"github.com/PuerkitoBio/goquery"
)

// assignment markup signature: an .assignment-list container of
// .assignment-item rows. Required for the same reason as notices.
func assignmentSchema(platform records.Platform) schema[records.Assignment] {
	return schema[records.Assignment]{
		container: ".assignment-list",
		required:  true,
		item:      ".assignment-item",
		fields: []Field[records.Assignment]{
			{
				Name: "id", Attr: "data-assignment-id",
				Set: func(r *records.Assignment, raw string) { r.Id = raw },
			},
			{
				Name: "title", Selector: ".assignment-title",
				Set: func(r *records.Assignment, raw string) { r.Title = raw },
			},
			{
				Name: "description", Selector: ".assignment-desc",
				Set: func(r *records.Assignment, raw string) { r.Description = raw },
			},
			{
				Name: "start", Selector: ".assignment-start",
				Set: func(r *records.Assignment, raw string) { r.StartAt = ParseDate(raw) },
			},
			{
				Name: "due", Selector: ".assignment-due",
				Set: func(r *records.Assignment, raw string) { r.DueAt = ParseDate(raw) },
			},
			{
				Name: "status", Selector: ".assignment-status",
				Set: func(r *records.Assignment, raw string) {
					r.Status = ParseAssignmentStatus(raw)
				},
			},
			{
				Name: "max_score", Selector: ".assignment-score",
				Set: func(r *records.Assignment, raw string) { r.MaxScore = ParseFloat(raw) },
			},
		},
		post: func(sel *goquery.Selection, r *records.Assignment, ordinal int) {
			r.Attachments = attachmentsFrom(sel, "assignment")
			if r.Id == "" {
				r.Id = SyntheticId("assignment", ordinal)
			}
			r.Platform = platform
		},
	}
}

func Assignments(html string, platform records.Platform) ([]records.Assignment, error) {
	doc, err := parseDocument(html)
	if err != nil {
		return nil, err
	}
	return assignmentSchema(platform).extract(doc, "assignment")
}
