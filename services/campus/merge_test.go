package campus

import (
	"testing"

	"campusassist-backend/lib/records"

	"github.com/stretchr/testify/require"
)

func TestMergeCourseListsById(t *testing.T) {
	primary := []records.Course{
		{Id: "ECO1101", Name: "미시경제원론", Instructor: "김경제"},
	}
	secondary := []records.Course{
		{Id: "ECO1101", Name: "미시경제원론", Credits: 3},
		{Id: "STA2001", Name: "통계학입문"},
	}

	merged := mergeCourseLists(primary, secondary)
	require.Len(t, merged, 2)
	require.Equal(t, "김경제", merged[0].Instructor)
	require.Equal(t, 3, merged[0].Credits)
	require.Equal(t, "STA2001", merged[1].Id)
}

func TestMergeCourseListsNameFallback(t *testing.T) {
	// the portal renders a different internal id but the same title
	primary := []records.Course{
		{Id: "coursemosId-441", Name: "Introduction to Statistics", Instructor: "이통계"},
	}
	secondary := []records.Course{
		{Id: "STA2001", Name: "Introduction to  Statistics", Credits: 3},
	}

	merged := mergeCourseLists(primary, secondary)
	require.Len(t, merged, 1)
	require.Equal(t, "이통계", merged[0].Instructor)
	require.Equal(t, 3, merged[0].Credits)
}

func TestMergeCourseListsDistinctNamesStaySeparate(t *testing.T) {
	primary := []records.Course{{Id: "a", Name: "거시경제원론"}}
	secondary := []records.Course{{Id: "b", Name: "유기화학"}}

	merged := mergeCourseLists(primary, secondary)
	require.Len(t, merged, 2)
}

func TestMergeCommutativeMembership(t *testing.T) {
	a := []records.Course{{Id: "x", Name: "선형대수"}, {Id: "y", Name: "해석학"}}
	b := []records.Course{{Id: "y", Name: "해석학"}, {Id: "z", Name: "위상수학"}}

	forward := mergeCourseLists(a, b)
	backward := mergeCourseLists(b, a)
	require.Len(t, forward, 3)
	require.Len(t, backward, 3)

	ids := func(courses []records.Course) map[string]bool {
		set := map[string]bool{}
		for _, c := range courses {
			set[c.Id] = true
		}
		return set
	}
	require.Equal(t, ids(forward), ids(backward))
}

func TestMergeNoticeListsDropsSamePlatformDuplicates(t *testing.T) {
	learnus := []records.Notice{
		{Id: "n-1", Platform: records.PlatformLearnUs},
		{Id: "n-1", Platform: records.PlatformLearnUs},
	}
	portal := []records.Notice{
		// same id on another platform is a different notice
		{Id: "n-1", Platform: records.PlatformPortal},
	}

	merged := mergeNoticeLists(learnus, portal)
	require.Len(t, merged, 2)
}
