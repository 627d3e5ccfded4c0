package workload_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ratiba/core/workload"
	"github.com/trezcool/ratiba/testutil"
)

func newSelectors() *workload.Selectors {
	sel := workload.NewSelectors("ar")
	sel.Now = testutil.FixedClock
	return sel
}

func TestLoadPercentage(t *testing.T) {
	tests := []struct {
		name       string
		totalHours float64
		maxLoad    float64
		want       float64
	}{
		{name: "three quarters", totalHours: 18, maxLoad: 24, want: 75},
		{name: "zero quota", totalHours: 12, maxLoad: 0, want: 0},
		{name: "negative quota", totalHours: 5, maxLoad: -1, want: 0},
		{name: "no hours", totalHours: 0, maxLoad: 20, want: 0},
		{name: "rounded down", totalHours: 1, maxLoad: 3, want: 33.33},
		{name: "rounded up", totalHours: 2, maxLoad: 3, want: 66.67},
		{name: "overloaded", totalHours: 10, maxLoad: 3, want: 333.33},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := workload.LoadPercentage(tt.totalHours, tt.maxLoad); got != tt.want {
				t.Errorf("LoadPercentage() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelectors_SummaryForTeacher(t *testing.T) {
	store, _ := testutil.NewStore(t, testutil.SchoolDataset())
	snap := testutil.Snapshot(t, store)
	sel := newSelectors()

	t.Run("loaded teacher", func(t *testing.T) {
		sum := sel.SummaryForTeacher(snap, "t-amina")
		require.NotNil(t, sum)
		assert.Equal(t, "Amina", sum.TeacherName)
		assert.Equal(t, "Mathematics", sum.Specialization)
		assert.Equal(t, 2, sum.TotalAssignments)
		assert.Equal(t, 18.0, sum.TotalHours)
		assert.Equal(t, 24.0, sum.MaxLoad)
		assert.Equal(t, 75.0, sum.LoadPercentage)
		require.Len(t, sum.Assignments, 2)
		assert.Equal(t, "1A", sum.Assignments[0].ClassroomName)
		assert.Equal(t, "2A", sum.Assignments[1].ClassroomName)
	})

	t.Run("teacher without assignments", func(t *testing.T) {
		sum := sel.SummaryForTeacher(snap, "t-badr")
		require.NotNil(t, sum)
		assert.Equal(t, 0, sum.TotalAssignments)
		assert.Equal(t, 0.0, sum.TotalHours)
		assert.Equal(t, 0.0, sum.LoadPercentage)
		assert.NotNil(t, sum.Assignments)
		assert.Empty(t, sum.Assignments)
	})

	t.Run("dangling references and zero quota", func(t *testing.T) {
		sum := sel.SummaryForTeacher(snap, "t-chadia")
		require.NotNil(t, sum)
		assert.Equal(t, 4.0, sum.TotalHours)
		assert.Equal(t, 0.0, sum.LoadPercentage)
		require.Len(t, sum.Assignments, 2)
		dangling := sum.Assignments[1]
		assert.Equal(t, "a-5", dangling.ID)
		assert.Equal(t, workload.UnknownSubject, dangling.SubjectName)
		assert.Equal(t, workload.UnknownClassroom, dangling.ClassroomName)
		assert.Empty(t, dangling.ClassroomLevel)
	})

	t.Run("unknown teacher", func(t *testing.T) {
		assert.Nil(t, sel.SummaryForTeacher(snap, "unknown-id"))
	})
}

func TestSelectors_SummaryForTeacher_totalHours(t *testing.T) {
	ds := testutil.SchoolDataset()
	store, _ := testutil.NewStore(t, ds)
	snap := testutil.Snapshot(t, store)
	sel := newSelectors()

	for _, teacher := range ds.Teachers {
		var want float64
		var count int
		for _, a := range ds.Assignments {
			if a.TeacherID == teacher.ID && a.Status == workload.StatusActive {
				want += a.HoursPerWeek
				count++
			}
		}
		sum := sel.SummaryForTeacher(snap, teacher.ID)
		require.NotNil(t, sum)
		if sum.TotalHours != want || sum.TotalAssignments != count {
			t.Errorf("%s: TotalHours = %v, TotalAssignments = %d; want %v, %d",
				teacher.ID, sum.TotalHours, sum.TotalAssignments, want, count)
		}
	}
}

func teacherIDs(sums []workload.TeacherSummary) []string {
	ids := make([]string, 0, len(sums))
	for _, s := range sums {
		ids = append(ids, s.TeacherID)
	}
	return ids
}

func TestSelectors_PlanSummary(t *testing.T) {
	store, _ := testutil.NewStore(t, testutil.SchoolDataset())
	snap := testutil.Snapshot(t, store)
	sel := newSelectors()

	selected := testutil.Snapshot(t, store)
	selected.Selection = map[string]struct{}{"t-badr": {}, "t-chadia": {}}

	tests := []struct {
		name      string
		snap      workload.Snapshot
		scopeIDs  []string
		wantIDs   []string
		wantHours float64
		wantAvgLd float64
	}{
		{name: "falls back to all active teachers", snap: snap, wantIDs: []string{"t-amina", "t-badr", "t-chadia"}, wantHours: 22, wantAvgLd: 7.33},
		{name: "uses the selection set", snap: selected, wantIDs: []string{"t-badr", "t-chadia"}, wantHours: 4, wantAvgLd: 2},
		{name: "explicit ids win over selection", snap: selected, scopeIDs: []string{"t-amina"}, wantIDs: []string{"t-amina"}, wantHours: 18, wantAvgLd: 18},
		{name: "unknown and duplicate ids dropped", snap: snap, scopeIDs: []string{"t-chadia", "nope", "t-chadia"}, wantIDs: []string{"t-chadia"}, wantHours: 4, wantAvgLd: 4},
		{name: "explicit inactive teacher kept", snap: snap, scopeIDs: []string{"t-driss"}, wantIDs: []string{"t-driss"}, wantHours: 5, wantAvgLd: 5},
		{name: "only unknown ids", snap: snap, scopeIDs: []string{"nope"}, wantIDs: []string{}, wantHours: 0, wantAvgLd: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := sel.PlanSummary(tt.snap, tt.scopeIDs...)
			assert.Equal(t, tt.wantIDs, teacherIDs(plan.TeacherSummaries))
			assert.Equal(t, len(tt.wantIDs), plan.TeacherCount)
			assert.Equal(t, tt.wantHours, plan.TotalHours)
			assert.Equal(t, tt.wantAvgLd, plan.AverageLoad)
			assert.True(t, plan.LastUpdated.Equal(testutil.Epoch))
		})
	}
}

func TestSelectors_PlanSummary_activeTeacherCount(t *testing.T) {
	ds := testutil.SchoolDataset()
	store, _ := testutil.NewStore(t, ds)
	plan := newSelectors().PlanSummary(testutil.Snapshot(t, store))

	var active int
	for _, teacher := range ds.Teachers {
		if teacher.IsActive {
			active++
		}
	}
	assert.Equal(t, active, plan.TeacherCount)
}

func TestSelectors_idempotence(t *testing.T) {
	store, _ := testutil.NewStore(t, testutil.SchoolDataset())
	snap := testutil.Snapshot(t, store)
	snap.Selection = map[string]struct{}{"t-amina": {}, "t-chadia": {}, "t-badr": {}}
	sel := newSelectors()

	assert.Equal(t, sel.PlanSummary(snap), sel.PlanSummary(snap))
	assert.Equal(t, sel.SummaryForTeacher(snap, "t-chadia"), sel.SummaryForTeacher(snap, "t-chadia"))
	assert.Equal(t, sel.FilterableTeachers(snap), sel.FilterableTeachers(snap))
}

func TestSelectors_localeAwareOrdering(t *testing.T) {
	store, _ := testutil.NewStore(t, workload.Dataset{
		Teachers: []workload.Teacher{
			testutil.Teacher("t-zoe", "Zoé", "", 10, true),
			testutil.Teacher("t-eve", "eve", "", 10, true),
			testutil.Teacher("t-emile", "Émile", "", 10, true),
		},
	})
	snap := testutil.Snapshot(t, store)
	sel := workload.NewSelectors("fr")

	want := []string{"t-emile", "t-eve", "t-zoe"}
	assert.Equal(t, want, sel.FilterableTeachers(snap))
	assert.Equal(t, want, teacherIDs(sel.PlanSummary(snap).TeacherSummaries))
}

func TestSelectors_FilterableTeachers(t *testing.T) {
	store, _ := testutil.NewStore(t, testutil.SchoolDataset())
	sel := newSelectors()

	tests := []struct {
		name    string
		filters workload.Filters
		want    []string
	}{
		{name: "no filters", want: []string{"t-amina", "t-badr", "t-chadia"}},
		{name: "search by specialization skips inactive", filters: workload.Filters{Search: "math"}, want: []string{"t-amina"}},
		{name: "search is case-insensitive", filters: workload.Filters{Search: "AMI"}, want: []string{"t-amina"}},
		{name: "search matches name or specialization", filters: workload.Filters{Search: "a"}, want: []string{"t-amina", "t-badr", "t-chadia"}},
		{name: "search (unknown)", filters: workload.Filters{Search: "lol"}, want: []string{}},
		{name: "level 2", filters: workload.Filters{Level: "2"}, want: []string{"t-amina", "t-chadia"}},
		{name: "level ignores deleted assignments & inactive teachers", filters: workload.Filters{Level: "1"}, want: []string{"t-amina"}},
		{name: "level (unknown)", filters: workload.Filters{Level: "9"}, want: []string{}},
		{name: "search & level", filters: workload.Filters{Search: "arab", Level: "2"}, want: []string{"t-chadia"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store.SetFilters(tt.filters)
			got := sel.FilterableTeachers(testutil.Snapshot(t, store))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectors_AllFilteredSelected(t *testing.T) {
	ctx := testutil.Context()
	store, _ := testutil.NewStore(t, testutil.SchoolDataset())
	sel := newSelectors()

	store.SetFilters(workload.Filters{Search: "lol"})
	if sel.AllFilteredSelected(testutil.Snapshot(t, store)) {
		t.Error("AllFilteredSelected() = true on an empty filtered list")
	}

	store.SetFilters(workload.Filters{Level: "2"})
	filtered := sel.FilterableTeachers(testutil.Snapshot(t, store))
	require.NoError(t, store.SelectAllFilteredTeachers(ctx, filtered))
	snap := testutil.Snapshot(t, store)
	require.True(t, sel.AllFilteredSelected(snap))
	assert.Equal(t, len(filtered), sel.SelectedFilteredCount(snap))

	// flipping any single membership bit flips the result
	for _, id := range filtered {
		selected, err := store.ToggleTeacherSelection(ctx, id)
		require.NoError(t, err)
		require.False(t, selected)
		snap = testutil.Snapshot(t, store)
		assert.False(t, sel.AllFilteredSelected(snap), "after unchecking %s", id)
		assert.Equal(t, len(filtered)-1, sel.SelectedFilteredCount(snap))

		_, err = store.ToggleTeacherSelection(ctx, id)
		require.NoError(t, err)
		assert.True(t, sel.AllFilteredSelected(testutil.Snapshot(t, store)), "after re-checking %s", id)
	}

	// selecting teachers outside of the filter does not count
	_, err := store.ToggleTeacherSelection(ctx, "t-badr")
	require.NoError(t, err)
	snap = testutil.Snapshot(t, store)
	assert.True(t, sel.AllFilteredSelected(snap))
	assert.Equal(t, len(filtered), sel.SelectedFilteredCount(snap))
}
