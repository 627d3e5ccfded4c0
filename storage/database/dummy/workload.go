package dummydb

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core/workload"
)

type workloadRepository struct {
	db *workloadTables
}

var _ workload.Repository = (*workloadRepository)(nil) // interface compliance check

func NewWorkloadRepository(db *DB) workload.Repository {
	return &workloadRepository{db: db.workload}
}

func (repo *workloadRepository) Load(_ context.Context, ds workload.Dataset) error {
	tables := newWorkloadTables()
	for i := range ds.Teachers {
		t := ds.Teachers[i]
		if _, dup := tables.teachers[t.ID]; dup {
			return errors.Wrapf(workload.ErrDuplicateReference, "teacher %q", t.ID)
		}
		tables.teachers[t.ID] = &t
	}
	for i := range ds.Subjects {
		s := ds.Subjects[i]
		if _, dup := tables.subjects[s.ID]; dup {
			return errors.Wrapf(workload.ErrDuplicateReference, "subject %q", s.ID)
		}
		tables.subjects[s.ID] = &s
	}
	for i := range ds.Classrooms {
		c := ds.Classrooms[i]
		if _, dup := tables.classrooms[c.ID]; dup {
			return errors.Wrapf(workload.ErrDuplicateReference, "classroom %q", c.ID)
		}
		tables.classrooms[c.ID] = &c
	}
	for i := range ds.Assignments {
		a := ds.Assignments[i]
		if _, dup := tables.assignments[a.ID]; dup {
			return errors.Wrapf(workload.ErrDuplicateReference, "assignment %q", a.ID)
		}
		tables.assignments[a.ID] = &a
	}

	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.teachers = tables.teachers
	repo.db.subjects = tables.subjects
	repo.db.classrooms = tables.classrooms
	repo.db.assignments = tables.assignments
	return nil
}

func (repo *workloadRepository) QueryTeachers(context.Context) ([]workload.Teacher, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	teachers := make([]workload.Teacher, 0, len(repo.db.teachers))
	for _, t := range repo.db.teachers {
		teachers = append(teachers, *t)
	}
	sort.Slice(teachers, func(i, j int) bool { return teachers[i].ID < teachers[j].ID })
	return teachers, nil
}

func (repo *workloadRepository) QuerySubjects(context.Context) ([]workload.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subjects := make([]workload.Subject, 0, len(repo.db.subjects))
	for _, s := range repo.db.subjects {
		subjects = append(subjects, *s)
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].ID < subjects[j].ID })
	return subjects, nil
}

func (repo *workloadRepository) QueryClassrooms(context.Context) ([]workload.Classroom, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	classrooms := make([]workload.Classroom, 0, len(repo.db.classrooms))
	for _, c := range repo.db.classrooms {
		classrooms = append(classrooms, *c)
	}
	sort.Slice(classrooms, func(i, j int) bool { return classrooms[i].ID < classrooms[j].ID })
	return classrooms, nil
}

func (repo *workloadRepository) QueryAssignments(context.Context) ([]workload.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	asgmts := make([]workload.Assignment, 0, len(repo.db.assignments))
	for _, a := range repo.db.assignments {
		asgmts = append(asgmts, *a)
	}
	sort.Slice(asgmts, func(i, j int) bool {
		if !asgmts[i].CreatedAt.Equal(asgmts[j].CreatedAt) {
			return asgmts[i].CreatedAt.Before(asgmts[j].CreatedAt)
		}
		return asgmts[i].ID < asgmts[j].ID
	})
	return asgmts, nil
}

func (repo *workloadRepository) CreateAssignment(_ context.Context, a workload.Assignment) (workload.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, exists := repo.db.assignments[a.ID]; exists {
		return workload.Assignment{}, workload.ErrAssignmentExists
	}
	repo.db.assignments[a.ID] = &a
	return a, nil
}

func (repo *workloadRepository) DeleteAssignments(_ context.Context, ids ...string) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var n int
	for _, id := range ids {
		if a, ok := repo.db.assignments[id]; ok && a.IsActive() {
			a.Status = workload.StatusDeleted
			n++
		}
	}
	return n, nil
}
