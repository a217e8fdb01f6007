package extract

import (
	"campusassist-backend/lib/records"

	"github.com/PuerkitoBio/goquery"
)

// course markup signature: a .course-list container of .course-item
// blocks. Both the course platform and the portal render this shape.
func courseSchema(platform records.Platform) schema[records.Course] {
	return schema[records.Course]{
		container: ".course-list",
		item:      ".course-item",
		fields: []Field[records.Course]{
			{
				Name: "id", Attr: "data-course-id",
				Set: func(r *records.Course, raw string) { r.Id = raw },
			},
			{
				Name: "name", Selector: ".course-title",
				Set: func(r *records.Course, raw string) { r.Name = raw },
			},
			{
				Name: "instructor", Selector: ".course-prof",
				Set: func(r *records.Course, raw string) { r.Instructor = raw },
			},
			{
				Name: "semester", Selector: ".course-semester",
				Set: func(r *records.Course, raw string) { r.Semester = raw },
			},
			{
				Name: "url", Selector: "a.course-link", Attr: "href",
				Set: func(r *records.Course, raw string) { r.Url = raw },
			},
			{
				Name: "description", Selector: ".course-desc",
				Set: func(r *records.Course, raw string) { r.Description = raw },
			},
			{
				Name: "credits", Selector: ".course-credit",
				Set: func(r *records.Course, raw string) { r.Credits = ParseInt(raw) },
			},
			{
				Name: "department", Selector: ".course-dept",
				Set: func(r *records.Course, raw string) { r.Department = raw },
			},
		},
		lists: []ListField[records.Course]{
			{
				Name: "schedule", Selector: ".course-schedule li",
				Set: func(r *records.Course, values []string) { r.Schedule = values },
			},
		},
		post: func(_ *goquery.Selection, r *records.Course, ordinal int) {
			if r.Id == "" {
				r.Id = SyntheticId("course", ordinal)
			}
			r.Platform = platform
		},
	}
}

// Courses extracts the course records in a document. A document with
// no course container is an empty result: course listings commonly
// render nothing at all outside the semester.
func Courses(html string, platform records.Platform) ([]records.Course, error) {
	doc, err := parseDocument(html)
	if err != nil {
		return nil, err
	}
	return courseSchema(platform).extract(doc, "course")
}

// CourseDetail extracts a single course from a detail page, which
// renders one .course-item inside the same container signature.
func CourseDetail(html string, platform records.Platform) (records.Course, error) {
	courses, err := Courses(html, platform)
	if err != nil {
		return records.Course{}, err
	}
	if len(courses) == 0 {
		return records.Course{}, &ParseError{Message: "no course block in detail page"}
	}
	return courses[0], nil
}
