package workload

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
)

var (
	nowFunc   = time.Now // mockable
	newIDFunc = func() string { return uuid.New().String() }
)

// Snapshot is a point-in-time copy of the entity collections and of the UI state.
// Selectors only ever read snapshots.
type Snapshot struct {
	Teachers          []Teacher
	Subjects          []Subject
	Classrooms        []Classroom
	Assignments       []Assignment
	Selection         map[string]struct{}
	Filters           Filters
	SelectedTeacherID string
}

func (snap Snapshot) IsSelected(teacherID string) bool {
	_, ok := snap.Selection[teacherID]
	return ok
}

// Store holds the entity collections (through its Repository) and the transient UI state:
// the selection set, the filters and the focused teacher.
// The three pieces of selection state are independent: toggling never changes the focused teacher and vice versa.
type Store struct {
	repo   Repository
	logger core.Logger

	mu                sync.Mutex
	selection         map[string]struct{}
	filters           Filters
	selectedTeacherID string
}

func NewStore(repo Repository, logger core.Logger) *Store {
	return &Store{
		repo:      repo,
		logger:    logger,
		selection: make(map[string]struct{}),
	}
}

// Load replaces the entity collections and resets the UI state.
func (s *Store) Load(ctx context.Context, ds Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Load(ctx, ds); err != nil {
		return errors.Wrap(err, "loading dataset")
	}
	s.selection = make(map[string]struct{})
	s.filters = Filters{}
	s.selectedTeacherID = ""
	s.logger.Info("dataset loaded", map[string]interface{}{
		"teachers":    len(ds.Teachers),
		"subjects":    len(ds.Subjects),
		"classrooms":  len(ds.Classrooms),
		"assignments": len(ds.Assignments),
	})
	return nil
}

func (s *Store) teacherExists(ctx context.Context, id string) (bool, error) {
	teachers, err := s.repo.QueryTeachers(ctx)
	if err != nil {
		return false, errors.Wrap(err, "querying teachers")
	}
	for _, t := range teachers {
		if t.ID == id {
			return true, nil
		}
	}
	return false, nil
}

// CreateAssignment validates na and stores a new active Assignment.
// Teacher, subject and classroom must all exist so that no dangling reference is ever created here.
func (s *Store) CreateAssignment(ctx context.Context, na NewAssignment) (Assignment, error) {
	if err := na.Validate(); err != nil {
		return Assignment{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkReferences(ctx, na); err != nil {
		return Assignment{}, err
	}
	asgmt := Assignment{
		ID:           newIDFunc(),
		TeacherID:    na.TeacherID,
		SubjectID:    na.SubjectID,
		ClassroomID:  na.ClassroomID,
		HoursPerWeek: na.HoursPerWeek,
		Semester:     na.Semester,
		Status:       StatusActive,
		CreatedAt:    nowFunc().UTC(),
	}
	asgmt, err := s.repo.CreateAssignment(ctx, asgmt)
	if err != nil {
		return Assignment{}, errors.Wrap(err, "creating assignment")
	}
	s.logger.Debug("assignment created", map[string]interface{}{"id": asgmt.ID, "teacher_id": asgmt.TeacherID})
	return asgmt, nil
}

func (s *Store) checkReferences(ctx context.Context, na NewAssignment) error {
	var flds []core.FieldError

	ok, err := s.teacherExists(ctx, na.TeacherID)
	if err != nil {
		return err
	}
	if !ok {
		flds = append(flds, core.FieldError{Field: "teacher_id", Error: ErrTeacherNotFound.Error()})
	}

	subjects, err := s.repo.QuerySubjects(ctx)
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	found := false
	for _, sub := range subjects {
		if sub.ID == na.SubjectID {
			found = true
			break
		}
	}
	if !found {
		flds = append(flds, core.FieldError{Field: "subject_id", Error: ErrSubjectNotFound.Error()})
	}

	classrooms, err := s.repo.QueryClassrooms(ctx)
	if err != nil {
		return errors.Wrap(err, "querying classrooms")
	}
	found = false
	for _, cls := range classrooms {
		if cls.ID == na.ClassroomID {
			found = true
			break
		}
	}
	if !found {
		flds = append(flds, core.FieldError{Field: "classroom_id", Error: ErrClassroomNotFound.Error()})
	}

	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

// DeleteAssignment deletes the assignment with the given id. An unknown id is a no-op and reports false.
func (s *Store) DeleteAssignment(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.repo.DeleteAssignments(ctx, id)
	if err != nil {
		return false, errors.Wrap(err, "deleting assignment")
	}
	if n > 0 {
		s.logger.Debug("assignment deleted", map[string]interface{}{"id": id})
	}
	return n > 0, nil
}

// DeleteAssignmentsForTeachers deletes every active assignment of the given teachers and returns how many were.
func (s *Store) DeleteAssignmentsForTeachers(ctx context.Context, teacherIDs []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := make(map[string]struct{}, len(teacherIDs))
	for _, id := range teacherIDs {
		wanted[id] = struct{}{}
	}
	asgmts, err := s.repo.QueryAssignments(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "querying assignments")
	}
	ids := make([]string, 0, len(asgmts))
	for _, a := range asgmts {
		if _, ok := wanted[a.TeacherID]; ok && a.IsActive() {
			ids = append(ids, a.ID)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := s.repo.DeleteAssignments(ctx, ids...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting assignments")
	}
	s.logger.Info("assignments deleted", map[string]interface{}{"teachers": len(teacherIDs), "assignments": n})
	return n, nil
}

// ToggleTeacherSelection adds or removes a teacher from the selection set and reports the new membership.
func (s *Store) ToggleTeacherSelection(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.teacherExists(ctx, id)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, ErrTeacherNotFound
	}
	if _, selected := s.selection[id]; selected {
		delete(s.selection, id)
		return false, nil
	}
	s.selection[id] = struct{}{}
	return true, nil
}

// SelectTeacher sets the focused teacher. An empty id clears it.
func (s *Store) SelectTeacher(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == "" {
		s.selectedTeacherID = ""
		return nil
	}
	ok, err := s.teacherExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTeacherNotFound
	}
	s.selectedTeacherID = id
	return nil
}

// SelectAllFilteredTeachers adds every known id to the selection set. Unknown ids are ignored.
func (s *Store) SelectAllFilteredTeachers(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	teachers, err := s.repo.QueryTeachers(ctx)
	if err != nil {
		return errors.Wrap(err, "querying teachers")
	}
	known := make(map[string]struct{}, len(teachers))
	for _, t := range teachers {
		known[t.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := known[id]; ok {
			s.selection[id] = struct{}{}
		}
	}
	return nil
}

func (s *Store) ClearTeacherSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = make(map[string]struct{})
}

func (s *Store) SetSearch(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters.Search = core.CleanString(term)
}

func (s *Store) SetLevel(level string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters.Level = core.CleanString(level)
}

func (s *Store) SetFilters(f Filters) {
	f.Clean()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = f
}

// Snapshot returns a copy of the current collections and UI state.
func (s *Store) Snapshot(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		snap Snapshot
		err  error
	)
	if snap.Teachers, err = s.repo.QueryTeachers(ctx); err != nil {
		return Snapshot{}, errors.Wrap(err, "querying teachers")
	}
	if snap.Subjects, err = s.repo.QuerySubjects(ctx); err != nil {
		return Snapshot{}, errors.Wrap(err, "querying subjects")
	}
	if snap.Classrooms, err = s.repo.QueryClassrooms(ctx); err != nil {
		return Snapshot{}, errors.Wrap(err, "querying classrooms")
	}
	if snap.Assignments, err = s.repo.QueryAssignments(ctx); err != nil {
		return Snapshot{}, errors.Wrap(err, "querying assignments")
	}
	snap.Selection = make(map[string]struct{}, len(s.selection))
	for id := range s.selection {
		snap.Selection[id] = struct{}{}
	}
	snap.Filters = s.filters
	snap.SelectedTeacherID = s.selectedTeacherID
	return snap, nil
}
