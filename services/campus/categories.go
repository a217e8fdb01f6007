package campus

import (
	"fmt"
	"time"
)

// Category is the topic key the intent layer hands us. The vocabulary
// is fixed; anything else is a ConfigurationError.
type Category string

const (
	CategoryCourse      Category = "course"
	CategoryAssignment  Category = "assignment"
	CategoryNotice      Category = "notice"
	CategoryAcademic    Category = "academic"
	CategoryScholarship Category = "scholarship"
	CategoryCareer      Category = "career"
	CategoryLibrary     Category = "library"
	CategoryStudyroom   Category = "studyroom"
	CategoryFacilities  Category = "facilities"
)

// categoryTTLs reflects how fast each category goes stale: enrollment
// data moves slowly, seat occupancy changes by the minute.
var categoryTTLs = map[Category]time.Duration{
	CategoryCourse:      time.Minute * 30,
	CategoryAssignment:  time.Minute * 30,
	CategoryNotice:      time.Minute * 10,
	CategoryAcademic:    time.Minute * 10,
	CategoryScholarship: time.Minute * 10,
	CategoryCareer:      time.Minute * 10,
	CategoryLibrary:     time.Minute * 5,
	CategoryStudyroom:   time.Minute * 5,
	CategoryFacilities:  time.Hour,
}

// cacheKey uniquely identifies one logical query. Campus and count are
// part of the identity so differently scoped calls never collide.
func cacheKey(category Category, campus string, count int) string {
	return fmt.Sprintf("%s/%s/%d", category, campus, count)
}
