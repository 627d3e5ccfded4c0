package workload

import (
	"math"
	"time"

	"github.com/trezcool/ratiba/core"
)

// Semesters
const (
	SemesterFirst  Semester = "first"
	SemesterSecond Semester = "second"
	SemesterFull   Semester = "full"
)

// Assignment statuses
const (
	StatusActive  Status = "active"
	StatusDeleted Status = "deleted"
)

// Placeholders used when an assignment references a subject or classroom that no longer exists.
const (
	UnknownSubject   = "Unknown subject"
	UnknownClassroom = "Unknown classroom"
)

var Semesters = []Semester{SemesterFirst, SemesterSecond, SemesterFull}

type Semester string

func (s Semester) Valid() bool {
	switch s {
	case SemesterFirst, SemesterSecond, SemesterFull:
		return true
	}
	return false
}

type Status string

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusDeleted
}

type Teacher struct {
	ID             string  `json:"id" yaml:"id" validate:"required,identifier"`
	Name           string  `json:"name" yaml:"name" validate:"required"`
	Specialization string  `json:"specialization" yaml:"specialization"`
	MaxLoad        float64 `json:"max_load" yaml:"max_load" validate:"gte=0"`
	IsActive       bool    `json:"is_active" yaml:"is_active"`
}

type Subject struct {
	ID   string `json:"id" yaml:"id" validate:"required,identifier"`
	Name string `json:"name" yaml:"name" validate:"required"`
}

type Classroom struct {
	ID    string `json:"id" yaml:"id" validate:"required,identifier"`
	Name  string `json:"name" yaml:"name" validate:"required"`
	Level string `json:"level" yaml:"level"`
}

type Assignment struct {
	ID           string    `json:"id" yaml:"id" validate:"required,identifier"`
	TeacherID    string    `json:"teacher_id" yaml:"teacher_id" validate:"required"`
	SubjectID    string    `json:"subject_id" yaml:"subject_id" validate:"required"`
	ClassroomID  string    `json:"classroom_id" yaml:"classroom_id" validate:"required"`
	HoursPerWeek float64   `json:"hours_per_week" yaml:"hours_per_week" validate:"gte=0"`
	Semester     Semester  `json:"semester" yaml:"semester" validate:"semester"`
	Status       Status    `json:"status" yaml:"status" validate:"assignment_status"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"` // UTC
}

func (a Assignment) IsActive() bool { return a.Status == StatusActive }

// Dataset is a bulk load of every entity collection.
type Dataset struct {
	Teachers    []Teacher    `json:"teachers" yaml:"teachers"`
	Subjects    []Subject    `json:"subjects" yaml:"subjects"`
	Classrooms  []Classroom  `json:"classrooms" yaml:"classrooms"`
	Assignments []Assignment `json:"assignments" yaml:"assignments"`
}

// NewAssignment contains information needed to create a new Assignment.
type NewAssignment struct {
	TeacherID    string   `json:"teacher_id" validate:"required"`
	SubjectID    string   `json:"subject_id" validate:"required"`
	ClassroomID  string   `json:"classroom_id" validate:"required"`
	HoursPerWeek float64  `json:"hours_per_week" validate:"gte=0"`
	Semester     Semester `json:"semester" validate:"required,semester"`
}

func (na *NewAssignment) Clean() {
	na.TeacherID = core.CleanString(na.TeacherID)
	na.SubjectID = core.CleanString(na.SubjectID)
	na.ClassroomID = core.CleanString(na.ClassroomID)
	na.Semester = Semester(core.CleanString(string(na.Semester), true /* lower */))
}

func (na *NewAssignment) Validate() error {
	na.Clean()
	return core.TranslateValidationErrors(core.Validate.Struct(na))
}

type Filters struct {
	Search string `json:"search" query:"search"`
	Level  string `json:"level" query:"level"`
}

func (f *Filters) Clean() {
	f.Search = core.CleanString(f.Search)
	f.Level = core.CleanString(f.Level)
}

func (f Filters) IsEmpty() bool {
	return f.Search == "" && f.Level == ""
}

type (
	AssignmentDetail struct {
		ID             string   `json:"id"`
		SubjectID      string   `json:"subject_id"`
		SubjectName    string   `json:"subject_name"`
		ClassroomID    string   `json:"classroom_id"`
		ClassroomName  string   `json:"classroom_name"`
		ClassroomLevel string   `json:"classroom_level"`
		HoursPerWeek   float64  `json:"hours_per_week"`
		Semester       Semester `json:"semester"`
	}

	TeacherSummary struct {
		TeacherID        string             `json:"teacher_id"`
		TeacherName      string             `json:"teacher_name"`
		Specialization   string             `json:"specialization"`
		TotalAssignments int                `json:"total_assignments"`
		TotalHours       float64            `json:"total_hours"`
		MaxLoad          float64            `json:"max_load"`
		LoadPercentage   float64            `json:"load_percentage"`
		Assignments      []AssignmentDetail `json:"assignments"`
	}

	PlanSummary struct {
		TeacherCount     int              `json:"teacher_count"`
		TotalHours       float64          `json:"total_hours"`
		AverageLoad      float64          `json:"average_load"`
		TeacherSummaries []TeacherSummary `json:"teacher_summaries"`
		LastUpdated      time.Time        `json:"last_updated"`
	}
)

// LoadPercentage returns the assigned hours as a percentage of maxLoad, rounded to 2 decimals.
// A zero (or negative) maxLoad yields 0.
func LoadPercentage(totalHours, maxLoad float64) float64 {
	if maxLoad <= 0 {
		return 0
	}
	return round2(totalHours / maxLoad * 100)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
