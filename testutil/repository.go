package testutil

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ratiba/core/workload"
)

// RepositoryContract runs the behaviour every workload.Repository must have against fresh repositories.
func RepositoryContract(t *testing.T, newRepo func(t *testing.T) workload.Repository) {
	ctx := Context()

	t.Run("Load & Query", func(t *testing.T) {
		repo := newRepo(t)
		ds := SchoolDataset()
		require.NoError(t, repo.Load(ctx, ds))

		teachers, err := repo.QueryTeachers(ctx)
		require.NoError(t, err)
		assert.Equal(t, ds.Teachers, teachers, "sorted by id")

		subjects, err := repo.QuerySubjects(ctx)
		require.NoError(t, err)
		assert.Equal(t, []workload.Subject{ds.Subjects[1], ds.Subjects[0]}, subjects)

		classrooms, err := repo.QueryClassrooms(ctx)
		require.NoError(t, err)
		assert.Equal(t, ds.Classrooms, classrooms)

		asgmts, err := repo.QueryAssignments(ctx)
		require.NoError(t, err)
		assert.Equal(t, ds.Assignments, asgmts)
	})

	t.Run("Load replaces", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Load(ctx, SchoolDataset()))
		require.NoError(t, repo.Load(ctx, workload.Dataset{
			Teachers: []workload.Teacher{Teacher("t-zoe", "Zoé", "", 10, true)},
		}))

		teachers, err := repo.QueryTeachers(ctx)
		require.NoError(t, err)
		assert.Len(t, teachers, 1)
		asgmts, err := repo.QueryAssignments(ctx)
		require.NoError(t, err)
		assert.Empty(t, asgmts)
	})

	t.Run("Load rejects duplicates", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Load(ctx, SchoolDataset()))

		ds := SchoolDataset()
		ds.Assignments = append(ds.Assignments, ds.Assignments[0])
		assert.Equal(t, workload.ErrDuplicateReference, errors.Cause(repo.Load(ctx, ds)))

		// previous content is kept
		asgmts, err := repo.QueryAssignments(ctx)
		require.NoError(t, err)
		assert.Len(t, asgmts, len(SchoolDataset().Assignments))
	})

	t.Run("CreateAssignment", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Load(ctx, SchoolDataset()))

		a := Assignment("a-7", "t-badr", "s-math", "c-2a", 2.5)
		a.CreatedAt = Epoch.Add(1)
		got, err := repo.CreateAssignment(ctx, a)
		require.NoError(t, err)
		assert.Equal(t, a, got)

		_, err = repo.CreateAssignment(ctx, a)
		assert.Equal(t, workload.ErrAssignmentExists, errors.Cause(err))

		asgmts, err := repo.QueryAssignments(ctx)
		require.NoError(t, err)
		require.Len(t, asgmts, 7)
		assert.Equal(t, a, asgmts[6], "latest last")
	})

	t.Run("DeleteAssignments", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Load(ctx, SchoolDataset()))

		tests := []struct {
			name string
			ids  []string
			want int
		}{
			{name: "none", want: 0},
			{name: "unknown", ids: []string{"lol"}, want: 0},
			{name: "already deleted", ids: []string{"a-3"}, want: 0},
			{name: "mixed", ids: []string{"a-1", "a-3", "lol", "a-4"}, want: 2},
			{name: "twice", ids: []string{"a-1", "a-4"}, want: 0},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				n, err := repo.DeleteAssignments(ctx, tt.ids...)
				require.NoError(t, err)
				assert.Equal(t, tt.want, n)
			})
		}

		asgmts, err := repo.QueryAssignments(ctx)
		require.NoError(t, err)
		statuses := make(map[string]workload.Status, len(asgmts))
		for _, a := range asgmts {
			statuses[a.ID] = a.Status
		}
		assert.Equal(t, map[string]workload.Status{
			"a-1": workload.StatusDeleted,
			"a-2": workload.StatusActive,
			"a-3": workload.StatusDeleted,
			"a-4": workload.StatusDeleted,
			"a-5": workload.StatusActive,
			"a-6": workload.StatusActive,
		}, statuses)
	})
}
