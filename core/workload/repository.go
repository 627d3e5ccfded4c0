package workload

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrTeacherNotFound    = errors.New("teacher not found")
	ErrSubjectNotFound    = errors.New("subject not found")
	ErrClassroomNotFound  = errors.New("classroom not found")
	ErrAssignmentExists   = errors.New("an assignment with this id already exists")
	ErrDuplicateReference = errors.New("duplicate id in dataset")
)

// Repository stores the entity collections.
// Implementations must return copies: callers are free to mutate returned values.
type Repository interface {
	// Load replaces every collection with the provided Dataset.
	Load(ctx context.Context, ds Dataset) error
	QueryTeachers(ctx context.Context) ([]Teacher, error)
	QuerySubjects(ctx context.Context) ([]Subject, error)
	QueryClassrooms(ctx context.Context) ([]Classroom, error)
	QueryAssignments(ctx context.Context) ([]Assignment, error)
	CreateAssignment(ctx context.Context, a Assignment) (Assignment, error)
	// DeleteAssignments marks the active assignments with the given ids as deleted and returns how many were.
	// Unknown or already deleted ids are skipped. Either all matching assignments are deleted or none.
	DeleteAssignments(ctx context.Context, ids ...string) (int, error)
}
