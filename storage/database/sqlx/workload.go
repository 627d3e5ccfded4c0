package sqlxrepos

import (
	"context"
	"sort"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core/workload"
)

// createdAtLayout is fixed-width so that stored timestamps sort lexically.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z"

// deleteChunkSize bounds the number of ids bound to a single statement.
const deleteChunkSize = 500

var (
	teacherColumns    = []string{"id", "name", "specialization", "max_load", "is_active"}
	subjectColumns    = []string{"id", "name"}
	classroomColumns  = []string{"id", "name", "level"}
	assignmentColumns = []string{
		"id", "teacher_id", "subject_id", "classroom_id",
		"hours_per_week", "semester", "status", "created_at",
	}
)

type (
	teacherRow struct {
		ID             string  `db:"id"`
		Name           string  `db:"name"`
		Specialization string  `db:"specialization"`
		MaxLoad        float64 `db:"max_load"`
		IsActive       bool    `db:"is_active"`
	}

	subjectRow struct {
		ID   string `db:"id"`
		Name string `db:"name"`
	}

	classroomRow struct {
		ID    string `db:"id"`
		Name  string `db:"name"`
		Level string `db:"level"`
	}

	assignmentRow struct {
		ID           string  `db:"id"`
		TeacherID    string  `db:"teacher_id"`
		SubjectID    string  `db:"subject_id"`
		ClassroomID  string  `db:"classroom_id"`
		HoursPerWeek float64 `db:"hours_per_week"`
		Semester     string  `db:"semester"`
		Status       string  `db:"status"`
		CreatedAt    string  `db:"created_at"`
	}
)

func (r assignmentRow) toAssignment() (workload.Assignment, error) {
	createdAt, err := time.Parse(createdAtLayout, r.CreatedAt)
	if err != nil {
		return workload.Assignment{}, errors.Wrapf(err, "parsing created_at of assignment %q", r.ID)
	}
	return workload.Assignment{
		ID:           r.ID,
		TeacherID:    r.TeacherID,
		SubjectID:    r.SubjectID,
		ClassroomID:  r.ClassroomID,
		HoursPerWeek: r.HoursPerWeek,
		Semester:     workload.Semester(r.Semester),
		Status:       workload.Status(r.Status),
		CreatedAt:    createdAt,
	}, nil
}

func formatCreatedAt(t time.Time) string {
	return t.UTC().Format(createdAtLayout)
}

type workloadRepository struct {
	db *sqlx.DB
	sb squirrel.StatementBuilderType
}

var _ workload.Repository = (*workloadRepository)(nil) // interface compliance check

// NewWorkloadRepository returns a workload.Repository over db (sqlite or postgres).
// The tables must exist; see database.Migrate.
func NewWorkloadRepository(db *sqlx.DB) workload.Repository {
	ph := squirrel.PlaceholderFormat(squirrel.Question)
	if db.DriverName() == "postgres" {
		ph = squirrel.Dollar
	}
	return &workloadRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(ph),
	}
}

// inTx runs fn in a transaction, rolled back when fn fails.
func (repo *workloadRepository) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

func (repo *workloadRepository) exec(ctx context.Context, tx *sqlx.Tx, b squirrel.Sqlizer) (int64, error) {
	q, args, err := b.ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	res, err := tx.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, errors.Wrap(err, "executing query")
	}
	n, err := res.RowsAffected()
	return n, errors.Wrap(err, "counting affected rows")
}

func (repo *workloadRepository) selectAll(ctx context.Context, dest interface{}, b squirrel.SelectBuilder) error {
	q, args, err := b.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	return errors.Wrap(repo.db.SelectContext(ctx, dest, q, args...), "querying")
}

func checkDuplicates(ds workload.Dataset) error {
	seen := make(map[string]struct{})
	check := func(kind, id string) error {
		key := kind + "/" + id
		if _, dup := seen[key]; dup {
			return errors.Wrapf(workload.ErrDuplicateReference, "%s %q", kind, id)
		}
		seen[key] = struct{}{}
		return nil
	}
	for _, t := range ds.Teachers {
		if err := check("teacher", t.ID); err != nil {
			return err
		}
	}
	for _, s := range ds.Subjects {
		if err := check("subject", s.ID); err != nil {
			return err
		}
	}
	for _, c := range ds.Classrooms {
		if err := check("classroom", c.ID); err != nil {
			return err
		}
	}
	for _, a := range ds.Assignments {
		if err := check("assignment", a.ID); err != nil {
			return err
		}
	}
	return nil
}

// Load replaces every table content with ds, all or nothing.
func (repo *workloadRepository) Load(ctx context.Context, ds workload.Dataset) error {
	if err := checkDuplicates(ds); err != nil {
		return err
	}
	return repo.inTx(ctx, func(tx *sqlx.Tx) error {
		for _, table := range []string{"assignments", "classrooms", "subjects", "teachers"} {
			if _, err := repo.exec(ctx, tx, repo.sb.Delete(table)); err != nil {
				return errors.Wrapf(err, "clearing %s", table)
			}
		}
		for _, t := range ds.Teachers {
			b := repo.sb.Insert("teachers").Columns(teacherColumns...).
				Values(t.ID, t.Name, t.Specialization, t.MaxLoad, t.IsActive)
			if _, err := repo.exec(ctx, tx, b); err != nil {
				return errors.Wrapf(err, "inserting teacher %q", t.ID)
			}
		}
		for _, s := range ds.Subjects {
			b := repo.sb.Insert("subjects").Columns(subjectColumns...).Values(s.ID, s.Name)
			if _, err := repo.exec(ctx, tx, b); err != nil {
				return errors.Wrapf(err, "inserting subject %q", s.ID)
			}
		}
		for _, c := range ds.Classrooms {
			b := repo.sb.Insert("classrooms").Columns(classroomColumns...).Values(c.ID, c.Name, c.Level)
			if _, err := repo.exec(ctx, tx, b); err != nil {
				return errors.Wrapf(err, "inserting classroom %q", c.ID)
			}
		}
		for _, a := range ds.Assignments {
			if _, err := repo.exec(ctx, tx, repo.insertAssignment(a)); err != nil {
				return errors.Wrapf(err, "inserting assignment %q", a.ID)
			}
		}
		return nil
	})
}

func (repo *workloadRepository) insertAssignment(a workload.Assignment) squirrel.InsertBuilder {
	return repo.sb.Insert("assignments").Columns(assignmentColumns...).Values(
		a.ID, a.TeacherID, a.SubjectID, a.ClassroomID,
		a.HoursPerWeek, string(a.Semester), string(a.Status), formatCreatedAt(a.CreatedAt),
	)
}

func (repo *workloadRepository) QueryTeachers(ctx context.Context) ([]workload.Teacher, error) {
	var rows []teacherRow
	if err := repo.selectAll(ctx, &rows, repo.sb.Select(teacherColumns...).From("teachers").OrderBy("id")); err != nil {
		return nil, errors.Wrap(err, "teachers")
	}
	teachers := make([]workload.Teacher, 0, len(rows))
	for _, r := range rows {
		teachers = append(teachers, workload.Teacher(r))
	}
	return teachers, nil
}

func (repo *workloadRepository) QuerySubjects(ctx context.Context) ([]workload.Subject, error) {
	var rows []subjectRow
	if err := repo.selectAll(ctx, &rows, repo.sb.Select(subjectColumns...).From("subjects").OrderBy("id")); err != nil {
		return nil, errors.Wrap(err, "subjects")
	}
	subjects := make([]workload.Subject, 0, len(rows))
	for _, r := range rows {
		subjects = append(subjects, workload.Subject(r))
	}
	return subjects, nil
}

func (repo *workloadRepository) QueryClassrooms(ctx context.Context) ([]workload.Classroom, error) {
	var rows []classroomRow
	if err := repo.selectAll(ctx, &rows, repo.sb.Select(classroomColumns...).From("classrooms").OrderBy("id")); err != nil {
		return nil, errors.Wrap(err, "classrooms")
	}
	classrooms := make([]workload.Classroom, 0, len(rows))
	for _, r := range rows {
		classrooms = append(classrooms, workload.Classroom(r))
	}
	return classrooms, nil
}

func (repo *workloadRepository) QueryAssignments(ctx context.Context) ([]workload.Assignment, error) {
	var rows []assignmentRow
	b := repo.sb.Select(assignmentColumns...).From("assignments").OrderBy("created_at", "id")
	if err := repo.selectAll(ctx, &rows, b); err != nil {
		return nil, errors.Wrap(err, "assignments")
	}
	asgmts := make([]workload.Assignment, 0, len(rows))
	for _, r := range rows {
		a, err := r.toAssignment()
		if err != nil {
			return nil, err
		}
		asgmts = append(asgmts, a)
	}
	// byte-wise order whatever the database collation
	sort.SliceStable(asgmts, func(i, j int) bool {
		if !asgmts[i].CreatedAt.Equal(asgmts[j].CreatedAt) {
			return asgmts[i].CreatedAt.Before(asgmts[j].CreatedAt)
		}
		return asgmts[i].ID < asgmts[j].ID
	})
	return asgmts, nil
}

func (repo *workloadRepository) CreateAssignment(ctx context.Context, a workload.Assignment) (workload.Assignment, error) {
	err := repo.inTx(ctx, func(tx *sqlx.Tx) error {
		q, args, err := repo.sb.Select("COUNT(*)").From("assignments").Where(squirrel.Eq{"id": a.ID}).ToSql()
		if err != nil {
			return errors.Wrap(err, "building query")
		}
		var n int
		if err = tx.GetContext(ctx, &n, q, args...); err != nil {
			return errors.Wrap(err, "checking assignment id")
		}
		if n > 0 {
			return workload.ErrAssignmentExists
		}
		_, err = repo.exec(ctx, tx, repo.insertAssignment(a))
		return errors.Wrap(err, "inserting assignment")
	})
	if err != nil {
		return workload.Assignment{}, err
	}
	a.CreatedAt = a.CreatedAt.UTC()
	return a, nil
}

// DeleteAssignments soft deletes the active assignments among ids, in a single transaction.
func (repo *workloadRepository) DeleteAssignments(ctx context.Context, ids ...string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var total int64
	err := repo.inTx(ctx, func(tx *sqlx.Tx) error {
		for start := 0; start < len(ids); start += deleteChunkSize {
			chunk := ids[start:min(start+deleteChunkSize, len(ids))]
			b := repo.sb.Update("assignments").
				Set("status", string(workload.StatusDeleted)).
				Where(squirrel.Eq{"id": chunk, "status": string(workload.StatusActive)})
			n, err := repo.exec(ctx, tx, b)
			if err != nil {
				return errors.Wrap(err, "deleting assignments")
			}
			total += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(total), nil
}
