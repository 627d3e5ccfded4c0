package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/workload"
	"github.com/trezcool/ratiba/services/logger"
	"github.com/trezcool/ratiba/storage/database/dummy"
)

// Epoch is the fixed creation time of fixture assignments.
var Epoch = time.Date(2026, time.September, 1, 8, 0, 0, 0, time.UTC)

func Teacher(id, name, specialization string, maxLoad float64, isActive bool) workload.Teacher {
	return workload.Teacher{ID: id, Name: name, Specialization: specialization, MaxLoad: maxLoad, IsActive: isActive}
}

func Assignment(id, teacherID, subjectID, classroomID string, hours float64, status ...workload.Status) workload.Assignment {
	st := workload.StatusActive
	if len(status) > 0 {
		st = status[0]
	}
	return workload.Assignment{
		ID:           id,
		TeacherID:    teacherID,
		SubjectID:    subjectID,
		ClassroomID:  classroomID,
		HoursPerWeek: hours,
		Semester:     workload.SemesterFull,
		Status:       st,
		CreatedAt:    Epoch,
	}
}

// SchoolDataset is a small school: 3 active teachers, 1 inactive one, 2 subjects and 2 classrooms on 2 levels.
//   - t-amina: maxLoad 24, 18 active hours, 1 deleted assignment
//   - t-badr: maxLoad 20, no assignment
//   - t-chadia: maxLoad 0, 4 hours, one of them on a deleted subject
//   - t-driss: inactive
func SchoolDataset() workload.Dataset {
	return workload.Dataset{
		Teachers: []workload.Teacher{
			Teacher("t-amina", "Amina", "Mathematics", 24, true),
			Teacher("t-badr", "Badr", "Physics", 20, true),
			Teacher("t-chadia", "Chadia", "Arabic", 0, true),
			Teacher("t-driss", "Driss", "Mathematics", 18, false),
		},
		Subjects: []workload.Subject{
			{ID: "s-math", Name: "Math"},
			{ID: "s-arabic", Name: "Arabic"},
		},
		Classrooms: []workload.Classroom{
			{ID: "c-1a", Name: "1A", Level: "1"},
			{ID: "c-2a", Name: "2A", Level: "2"},
		},
		Assignments: []workload.Assignment{
			Assignment("a-1", "t-amina", "s-math", "c-1a", 10),
			Assignment("a-2", "t-amina", "s-math", "c-2a", 8),
			Assignment("a-3", "t-amina", "s-arabic", "c-1a", 6, workload.StatusDeleted),
			Assignment("a-4", "t-chadia", "s-arabic", "c-2a", 3),
			Assignment("a-5", "t-chadia", "s-gone", "c-gone", 1),
			Assignment("a-6", "t-driss", "s-math", "c-1a", 5),
		},
	}
}

// NewStore returns a Store over an in-memory repository loaded with ds.
func NewStore(t *testing.T, ds workload.Dataset) (*workload.Store, workload.Repository) {
	t.Helper()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	repo := dummydb.NewWorkloadRepository(db)
	store := workload.NewStore(repo, NopLogger())
	if err := store.Load(context.Background(), ds); err != nil {
		t.Fatalf("store.Load() failed: %v", err)
	}
	return store, repo
}

// Snapshot takes a snapshot of store, failing the test on error.
func Snapshot(t *testing.T, store *workload.Store) workload.Snapshot {
	t.Helper()
	snap, err := store.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("store.Snapshot() failed: %v", err)
	}
	return snap
}

// FixedClock always returns Epoch.
func FixedClock() time.Time { return Epoch }

func Context() context.Context { return context.Background() }

func NopLogger() core.Logger { return logsvc.NewNopLogger() }
