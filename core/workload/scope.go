package workload

import (
	"strings"

	"github.com/pkg/errors"
)

// Scopes
const (
	ScopeCurrent  Scope = "current"
	ScopeSelected Scope = "selected"
	ScopeAll      Scope = "all"
)

var ErrInvalidScope = errors.New("scope must be one of current, selected or all")

// Scope is the rule picking which teachers a bulk action applies to.
type Scope string

func ParseScope(s string) (Scope, error) {
	switch scope := Scope(strings.ToLower(strings.TrimSpace(s))); scope {
	case ScopeCurrent, ScopeSelected, ScopeAll:
		return scope, nil
	}
	return "", ErrInvalidScope
}

// EmptyScopeError is returned when a scope resolves to no teacher at all.
// Its message is meant to be shown to the user as is.
type EmptyScopeError struct {
	Scope Scope
}

func (err *EmptyScopeError) Error() string {
	switch err.Scope {
	case ScopeCurrent:
		return "no teacher is currently selected"
	case ScopeSelected:
		return "no teachers are checked; check at least one teacher first"
	default:
		return "there are no active teachers to act on"
	}
}

func IsEmptyScope(err error) bool {
	_, ok := errors.Cause(err).(*EmptyScopeError)
	return ok
}

// ResolveScope maps scope to the concrete ids of the teachers it designates:
// the focused teacher (current), the selection set (selected) or every active teacher (all).
// Ids are returned in name order. An empty result is an *EmptyScopeError.
func (sel *Selectors) ResolveScope(snap Snapshot, scope Scope) ([]string, error) {
	idx := newIndex(snap)

	var teachers []Teacher
	switch scope {
	case ScopeCurrent:
		if t, ok := idx.teachers[snap.SelectedTeacherID]; ok {
			teachers = append(teachers, t)
		}
	case ScopeSelected:
		for id := range snap.Selection {
			if t, ok := idx.teachers[id]; ok {
				teachers = append(teachers, t)
			}
		}
	case ScopeAll:
		for _, t := range snap.Teachers {
			if t.IsActive {
				teachers = append(teachers, t)
			}
		}
	default:
		return nil, ErrInvalidScope
	}

	if len(teachers) == 0 {
		return nil, &EmptyScopeError{Scope: scope}
	}
	newNameSorter(sel.Locale).sortTeachers(teachers)
	ids := make([]string, 0, len(teachers))
	for _, t := range teachers {
		ids = append(ids, t.ID)
	}
	return ids, nil
}
