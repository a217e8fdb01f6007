package campus

import (
	"strings"

	"campusassist-backend/lib/records"

	"github.com/antzucaro/matchr"
)

// Course names rarely match exactly across sites (spacing, section
// suffixes), so id misses fall back to a similarity match.
const nameMatchThreshold = 0.93

// mergeCourseLists combines two platforms' views of the same
// enrollment. Matching entries merge field-by-field with primary
// taking precedence, unmatched secondary entries are appended. The
// operation is commutative in membership: response order only decides
// which platform wins contested fields.
func mergeCourseLists(primary, secondary []records.Course) []records.Course {
	out := make([]records.Course, len(primary))
	copy(out, primary)

	byId := make(map[string]int, len(out))
	for i, course := range out {
		if course.Id != "" {
			byId[course.Id] = i
		}
	}

	for _, candidate := range secondary {
		if i, ok := byId[candidate.Id]; ok && candidate.Id != "" {
			out[i] = records.MergeCourses(out[i], candidate)
			continue
		}
		if i, ok := closestByName(out, candidate.Name); ok {
			out[i] = records.MergeCourses(out[i], candidate)
			continue
		}
		out = append(out, candidate)
		if candidate.Id != "" {
			byId[candidate.Id] = len(out) - 1
		}
	}
	return out
}

func closestByName(courses []records.Course, name string) (int, bool) {
	name = normalizeName(name)
	if name == "" {
		return 0, false
	}

	best := -1
	bestScore := 0.0
	for i, course := range courses {
		score := matchr.JaroWinkler(normalizeName(course.Name), name, false)
		if score > bestScore {
			best = i
			bestScore = score
		}
	}
	if best >= 0 && bestScore >= nameMatchThreshold {
		return best, true
	}
	return 0, false
}

func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// mergeNoticeLists is a union: notices have no cross-platform
// identity, only same-platform duplicates are dropped.
func mergeNoticeLists(lists ...[]records.Notice) []records.Notice {
	type noticeKey struct {
		platform records.Platform
		id       string
	}
	seen := map[noticeKey]bool{}

	var out []records.Notice
	for _, list := range lists {
		for _, notice := range list {
			key := noticeKey{notice.Platform, notice.Id}
			if notice.Id != "" && seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, notice)
		}
	}
	return out
}
