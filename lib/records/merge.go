package records

import (
	"log/slog"

	"dario.cat/mergo"
)

// MergeCourses combines two records of the same course. Field-level
// fill-in: a non-empty field on base is never replaced by other, an
// empty one is filled from other. Two exceptions carried over from
// the product behavior: schedules are unioned and the longer
// description wins.
func MergeCourses(base, other Course) Course {
	merged := base

	schedule := base.Schedule
	description := base.Description

	err := mergo.Merge(&merged, other)
	if err != nil {
		// only reachable with mismatched types, which the signature
		// rules out
		slog.Warn("course merge failed", "id", base.Id, "err", err)
		return base
	}

	merged.Schedule = unionSchedule(schedule, other.Schedule)
	if len(other.Description) > len(description) {
		merged.Description = other.Description
	} else {
		merged.Description = description
	}
	if base.Platform != "" {
		merged.Platform = base.Platform
	}
	return merged
}

func unionSchedule(a, b []string) []string {
	seen := make(map[string]bool, len(a))
	out := make([]string, 0, len(a)+len(b))
	for _, slot := range a {
		if slot == "" || seen[slot] {
			continue
		}
		seen[slot] = true
		out = append(out, slot)
	}
	for _, slot := range b {
		if slot == "" || seen[slot] {
			continue
		}
		seen[slot] = true
		out = append(out, slot)
	}
	return out
}
