package workload

import (
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Selectors derives workload summaries from a Snapshot.
// Every call recomputes from scratch: there is no cache to invalidate, at the cost of O(teachers × assignments) per call.
type Selectors struct {
	Locale language.Tag
	Now    func() time.Time
}

// NewSelectors returns Selectors comparing names with the rules of locale (eg. "ar", "fr-CD").
// An unparsable locale falls back to the root collation order.
func NewSelectors(locale string) *Selectors {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Und
	}
	return &Selectors{Locale: tag, Now: time.Now}
}

func (sel *Selectors) now() time.Time {
	if sel.Now == nil {
		return time.Now().UTC()
	}
	return sel.Now().UTC()
}

// index holds the lookups a single selector call needs.
type index struct {
	teachers   map[string]Teacher
	subjects   map[string]Subject
	classrooms map[string]Classroom
}

func newIndex(snap Snapshot) index {
	idx := index{
		teachers:   make(map[string]Teacher, len(snap.Teachers)),
		subjects:   make(map[string]Subject, len(snap.Subjects)),
		classrooms: make(map[string]Classroom, len(snap.Classrooms)),
	}
	for _, t := range snap.Teachers {
		idx.teachers[t.ID] = t
	}
	for _, s := range snap.Subjects {
		idx.subjects[s.ID] = s
	}
	for _, c := range snap.Classrooms {
		idx.classrooms[c.ID] = c
	}
	return idx
}

// SummaryForTeacher aggregates the active assignments of a teacher. It returns nil for an unknown teacher.
func (sel *Selectors) SummaryForTeacher(snap Snapshot, teacherID string) *TeacherSummary {
	idx := newIndex(snap)
	t, ok := idx.teachers[teacherID]
	if !ok {
		return nil
	}
	sum := sel.summarize(snap, idx, t, newNameSorter(sel.Locale))
	return &sum
}

func (sel *Selectors) summarize(snap Snapshot, idx index, t Teacher, ns nameSorter) TeacherSummary {
	sum := TeacherSummary{
		TeacherID:      t.ID,
		TeacherName:    t.Name,
		Specialization: t.Specialization,
		MaxLoad:        t.MaxLoad,
		Assignments:    []AssignmentDetail{},
	}
	for _, a := range snap.Assignments {
		if a.TeacherID != t.ID || !a.IsActive() {
			continue
		}
		detail := AssignmentDetail{
			ID:            a.ID,
			SubjectID:     a.SubjectID,
			SubjectName:   UnknownSubject,
			ClassroomID:   a.ClassroomID,
			ClassroomName: UnknownClassroom,
			HoursPerWeek:  a.HoursPerWeek,
			Semester:      a.Semester,
		}
		if sub, ok := idx.subjects[a.SubjectID]; ok {
			detail.SubjectName = sub.Name
		}
		if cls, ok := idx.classrooms[a.ClassroomID]; ok {
			detail.ClassroomName = cls.Name
			detail.ClassroomLevel = cls.Level
		}
		sum.Assignments = append(sum.Assignments, detail)
	}
	ns.sortDetails(sum.Assignments)
	for _, detail := range sum.Assignments {
		sum.TotalHours += detail.HoursPerWeek
	}
	sum.TotalAssignments = len(sum.Assignments)
	sum.LoadPercentage = LoadPercentage(sum.TotalHours, sum.MaxLoad)
	return sum
}

// activeTeacherIDs returns the ids of every active teacher, in snapshot order.
func activeTeacherIDs(snap Snapshot) []string {
	ids := make([]string, 0, len(snap.Teachers))
	for _, t := range snap.Teachers {
		if t.IsActive {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

func selectionIDs(snap Snapshot) []string {
	ids := make([]string, 0, len(snap.Selection))
	for id := range snap.Selection {
		ids = append(ids, id)
	}
	return ids
}

// PlanSummary builds the aggregate report over the effective teachers:
// scopeIDs when provided, else the selection set when not empty, else every active teacher.
// Unknown ids are dropped.
func (sel *Selectors) PlanSummary(snap Snapshot, scopeIDs ...string) PlanSummary {
	ids := scopeIDs
	if len(ids) == 0 {
		ids = selectionIDs(snap)
	}
	if len(ids) == 0 {
		ids = activeTeacherIDs(snap)
	}

	idx := newIndex(snap)
	ns := newNameSorter(sel.Locale)
	seen := make(map[string]struct{}, len(ids))
	plan := PlanSummary{TeacherSummaries: make([]TeacherSummary, 0, len(ids))}
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		t, ok := idx.teachers[id]
		if !ok {
			continue
		}
		sum := sel.summarize(snap, idx, t, ns)
		plan.TeacherSummaries = append(plan.TeacherSummaries, sum)
	}
	ns.sortSummaries(plan.TeacherSummaries)
	for _, sum := range plan.TeacherSummaries {
		plan.TotalHours += sum.TotalHours
	}

	plan.TeacherCount = len(plan.TeacherSummaries)
	if plan.TeacherCount > 0 {
		plan.AverageLoad = round2(plan.TotalHours / float64(plan.TeacherCount))
	}
	plan.LastUpdated = sel.now()
	return plan
}

// FilterableTeachers returns the ids of the active teachers matching the snapshot filters, sorted by name.
// Search is a case-insensitive substring match on name or specialization;
// level keeps teachers with at least one active assignment in a classroom of that level.
func (sel *Selectors) FilterableTeachers(snap Snapshot) []string {
	search := strings.ToLower(strings.TrimSpace(snap.Filters.Search))
	level := strings.TrimSpace(snap.Filters.Level)

	var atLevel map[string]struct{}
	if level != "" {
		idx := newIndex(snap)
		atLevel = make(map[string]struct{})
		for _, a := range snap.Assignments {
			if !a.IsActive() {
				continue
			}
			if cls, ok := idx.classrooms[a.ClassroomID]; ok && cls.Level == level {
				atLevel[a.TeacherID] = struct{}{}
			}
		}
	}

	teachers := make([]Teacher, 0, len(snap.Teachers))
	for _, t := range snap.Teachers {
		if !t.IsActive {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Name), search) &&
			!strings.Contains(strings.ToLower(t.Specialization), search) {
			continue
		}
		if atLevel != nil {
			if _, ok := atLevel[t.ID]; !ok {
				continue
			}
		}
		teachers = append(teachers, t)
	}
	newNameSorter(sel.Locale).sortTeachers(teachers)

	ids := make([]string, 0, len(teachers))
	for _, t := range teachers {
		ids = append(ids, t.ID)
	}
	return ids
}

// AllFilteredSelected reports whether the filtered list is not empty and entirely selected.
func (sel *Selectors) AllFilteredSelected(snap Snapshot) bool {
	ids := sel.FilterableTeachers(snap)
	if len(ids) == 0 {
		return false
	}
	for _, id := range ids {
		if !snap.IsSelected(id) {
			return false
		}
	}
	return true
}

// SelectedFilteredCount counts the filtered teachers that are in the selection set.
func (sel *Selectors) SelectedFilteredCount(snap Snapshot) int {
	var n int
	for _, id := range sel.FilterableTeachers(snap) {
		if snap.IsSelected(id) {
			n++
		}
	}
	return n
}
