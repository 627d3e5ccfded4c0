package workload_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/workload"
	"github.com/trezcool/ratiba/testutil"
)

func TestStore_CreateAssignment(t *testing.T) {
	ctx := testutil.Context()
	store, _ := testutil.NewStore(t, testutil.SchoolDataset())
	defer workload.SetClock(testutil.FixedClock)()
	defer workload.SetIDGenerator(func() string { return "a-new" })()

	valid := workload.NewAssignment{
		TeacherID:    " t-badr ",
		SubjectID:    "s-math",
		ClassroomID:  "c-2a",
		HoursPerWeek: 6,
		Semester:     "First",
	}

	tests := []struct {
		name       string
		data       workload.NewAssignment
		wantFields []string // offending fields
	}{
		{name: "missing fields", data: workload.NewAssignment{}, wantFields: []string{"teacher_id", "subject_id", "classroom_id", "semester"}},
		{name: "negative hours", data: workload.NewAssignment{TeacherID: "t-badr", SubjectID: "s-math", ClassroomID: "c-2a", HoursPerWeek: -1, Semester: workload.SemesterFull}, wantFields: []string{"hours_per_week"}},
		{name: "unknown semester", data: workload.NewAssignment{TeacherID: "t-badr", SubjectID: "s-math", ClassroomID: "c-2a", Semester: "summer"}, wantFields: []string{"semester"}},
		{name: "dangling references", data: workload.NewAssignment{TeacherID: "lol", SubjectID: "lol", ClassroomID: "lol", Semester: workload.SemesterFull}, wantFields: []string{"teacher_id", "subject_id", "classroom_id"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.CreateAssignment(ctx, tt.data)
			require.Error(t, err)
			vErr, ok := errors.Cause(err).(*core.ValidationError)
			require.True(t, ok, "error %T is not a *core.ValidationError", err)
			fields := vErr.FieldMap()
			for _, f := range tt.wantFields {
				assert.Contains(t, fields, f)
			}
			assert.Len(t, fields, len(tt.wantFields))
		})
	}

	t.Run("valid", func(t *testing.T) {
		asgmt, err := store.CreateAssignment(ctx, valid)
		require.NoError(t, err)
		assert.Equal(t, workload.Assignment{
			ID:           "a-new",
			TeacherID:    "t-badr",
			SubjectID:    "s-math",
			ClassroomID:  "c-2a",
			HoursPerWeek: 6,
			Semester:     workload.SemesterFirst,
			Status:       workload.StatusActive,
			CreatedAt:    testutil.Epoch,
		}, asgmt)

		sum := newSelectors().SummaryForTeacher(testutil.Snapshot(t, store), "t-badr")
		require.NotNil(t, sum)
		assert.Equal(t, 1, sum.TotalAssignments)
		assert.Equal(t, 30.0, sum.LoadPercentage)
	})

	t.Run("duplicate id", func(t *testing.T) {
		_, err := store.CreateAssignment(ctx, valid)
		assert.Equal(t, workload.ErrAssignmentExists, errors.Cause(err))
	})
}

func TestStore_DeleteAssignment(t *testing.T) {
	ctx := testutil.Context()
	store, _ := testutil.NewStore(t, testutil.SchoolDataset())

	tests := []struct {
		name string
		id   string
		want bool
	}{
		{name: "unknown id is a no-op", id: "lol", want: false},
		{name: "already deleted", id: "a-3", want: false},
		{name: "active", id: "a-1", want: true},
		{name: "twice", id: "a-1", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.DeleteAssignment(ctx, tt.id)
			require.NoError(t, err)
			if got != tt.want {
				t.Errorf("DeleteAssignment() = %v, want %v", got, tt.want)
			}
		})
	}

	sum := newSelectors().SummaryForTeacher(testutil.Snapshot(t, store), "t-amina")
	require.NotNil(t, sum)
	assert.Equal(t, 8.0, sum.TotalHours)
	assert.Equal(t, 1, sum.TotalAssignments)
}

func TestStore_DeleteAssignmentsForTeachers(t *testing.T) {
	ctx := testutil.Context()
	store, _ := testutil.NewStore(t, testutil.SchoolDataset())

	n, err := store.DeleteAssignmentsForTeachers(ctx, []string{"t-amina", "t-badr", "lol"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = store.DeleteAssignmentsForTeachers(ctx, []string{"t-amina"})
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	snap := testutil.Snapshot(t, store)
	sel := newSelectors()
	assert.Equal(t, 0.0, sel.SummaryForTeacher(snap, "t-amina").TotalHours)
	assert.Equal(t, 4.0, sel.SummaryForTeacher(snap, "t-chadia").TotalHours)
}

func TestStore_ToggleTeacherSelection(t *testing.T) {
	ctx := testutil.Context()
	store, _ := testutil.NewStore(t, testutil.SchoolDataset())

	_, err := store.ToggleTeacherSelection(ctx, "lol")
	assert.Equal(t, workload.ErrTeacherNotFound, err)
	assert.Empty(t, testutil.Snapshot(t, store).Selection)

	selected, err := store.ToggleTeacherSelection(ctx, "t-amina")
	require.NoError(t, err)
	assert.True(t, selected)
	assert.True(t, testutil.Snapshot(t, store).IsSelected("t-amina"))

	selected, err = store.ToggleTeacherSelection(ctx, "t-amina")
	require.NoError(t, err)
	assert.False(t, selected)
	assert.False(t, testutil.Snapshot(t, store).IsSelected("t-amina"))
}

func TestStore_SelectTeacher(t *testing.T) {
	ctx := testutil.Context()
	store, _ := testutil.NewStore(t, testutil.SchoolDataset())

	_, err := store.ToggleTeacherSelection(ctx, "t-badr")
	require.NoError(t, err)

	require.NoError(t, store.SelectTeacher(ctx, "t-amina"))
	snap := testutil.Snapshot(t, store)
	assert.Equal(t, "t-amina", snap.SelectedTeacherID)
	assert.Equal(t, map[string]struct{}{"t-badr": {}}, snap.Selection, "focus must not touch the selection set")

	assert.Equal(t, workload.ErrTeacherNotFound, store.SelectTeacher(ctx, "lol"))
	assert.Equal(t, "t-amina", testutil.Snapshot(t, store).SelectedTeacherID)

	store.ClearTeacherSelection()
	snap = testutil.Snapshot(t, store)
	assert.Equal(t, "t-amina", snap.SelectedTeacherID, "clearing the selection set must not touch focus")
	assert.Empty(t, snap.Selection)

	require.NoError(t, store.SelectTeacher(ctx, ""))
	assert.Empty(t, testutil.Snapshot(t, store).SelectedTeacherID)
}

func TestStore_SelectAllFilteredTeachers(t *testing.T) {
	ctx := testutil.Context()
	store, _ := testutil.NewStore(t, testutil.SchoolDataset())
	sel := newSelectors()

	filtered := sel.FilterableTeachers(testutil.Snapshot(t, store))
	require.NoError(t, store.SelectAllFilteredTeachers(ctx, append(filtered, "lol")))
	original := testutil.Snapshot(t, store).Selection
	assert.Len(t, original, len(filtered), "unknown ids must be ignored")

	// select-all on an already fully selected list, clear, then select-all again restores the set
	require.NoError(t, store.SelectAllFilteredTeachers(ctx, filtered))
	store.ClearTeacherSelection()
	assert.Empty(t, testutil.Snapshot(t, store).Selection)
	require.NoError(t, store.SelectAllFilteredTeachers(ctx, filtered))
	assert.Equal(t, original, testutil.Snapshot(t, store).Selection)
}

func TestStore_SetFilters(t *testing.T) {
	store, _ := testutil.NewStore(t, testutil.SchoolDataset())

	store.SetFilters(workload.Filters{Search: "  ami ", Level: " 2"})
	assert.Equal(t, workload.Filters{Search: "ami", Level: "2"}, testutil.Snapshot(t, store).Filters)

	store.SetSearch("badr ")
	store.SetLevel("")
	assert.Equal(t, workload.Filters{Search: "badr"}, testutil.Snapshot(t, store).Filters)
}

func TestStore_Load(t *testing.T) {
	ctx := testutil.Context()
	store, _ := testutil.NewStore(t, testutil.SchoolDataset())
	_, err := store.ToggleTeacherSelection(ctx, "t-amina")
	require.NoError(t, err)
	require.NoError(t, store.SelectTeacher(ctx, "t-badr"))
	store.SetSearch("a")

	ds := testutil.SchoolDataset()
	require.NoError(t, store.Load(ctx, ds))
	snap := testutil.Snapshot(t, store)
	assert.Empty(t, snap.Selection)
	assert.Empty(t, snap.SelectedTeacherID)
	assert.True(t, snap.Filters.IsEmpty())
	assert.Len(t, snap.Teachers, len(ds.Teachers))

	ds.Teachers = append(ds.Teachers, ds.Teachers[0])
	err = store.Load(ctx, ds)
	assert.Equal(t, workload.ErrDuplicateReference, errors.Cause(err))
}
