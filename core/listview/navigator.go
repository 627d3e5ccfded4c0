package listview

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

// Keys
const (
	KeyNone Key = iota
	KeyArrowDown
	KeyArrowUp
	KeyHome
	KeyEnd
	KeyEnter
	KeySpace
)

// Action kinds
const (
	ActionNone ActionKind = iota
	ActionSelect
	ActionToggle
)

var ErrUnknownKey = errors.New("unknown key")

type Key int

var keyNames = map[string]Key{
	"arrowdown": KeyArrowDown,
	"down":      KeyArrowDown,
	"arrowup":   KeyArrowUp,
	"up":        KeyArrowUp,
	"home":      KeyHome,
	"end":       KeyEnd,
	"enter":     KeyEnter,
	"space":     KeySpace,
	" ":         KeySpace,
}

// ParseKey maps a DOM-style key name (eg. "ArrowDown", "Home", " ") to a Key.
func ParseKey(s string) (Key, error) {
	if s != " " {
		s = strings.ToLower(strings.TrimSpace(s))
	}
	if k, ok := keyNames[s]; ok {
		return k, nil
	}
	return KeyNone, ErrUnknownKey
}

type ActionKind int

func (k ActionKind) String() string {
	switch k {
	case ActionSelect:
		return "select"
	case ActionToggle:
		return "toggle"
	}
	return "none"
}

// Action is what a key press or a click asks the store to do with a row.
type Action struct {
	Kind      ActionKind
	Index     int
	TeacherID string
}

// Modifiers held during a click.
type Modifiers struct {
	Ctrl  bool
	Meta  bool
	Shift bool
}

func (m Modifiers) any() bool { return m.Ctrl || m.Meta || m.Shift }

// Navigator keeps the keyboard focus and scroll offset of one list.
// The focused index is unrelated to the selection set and to the focused teacher of the store:
// moving it never changes either, only the returned Actions do once dispatched.
// A Navigator is not safe for concurrent use.
type Navigator struct {
	r   *Renderer
	ids []string

	FocusedIndex int // -1: none
	ScrollTop    int
}

func (r *Renderer) NewNavigator(ids []string) *Navigator {
	nav := &Navigator{r: r, FocusedIndex: -1}
	nav.SetItems(ids)
	return nav
}

// SetItems replaces the rows. Focus follows the focused id when it is still listed,
// otherwise it is clamped to the new bounds.
func (nav *Navigator) SetItems(ids []string) {
	focusedID := nav.FocusedID()
	nav.ids = append([]string(nil), ids...)

	switch {
	case len(nav.ids) == 0:
		nav.FocusedIndex = -1
	case focusedID != "":
		nav.FocusedIndex = min(nav.FocusedIndex, len(nav.ids)-1)
		for i, id := range nav.ids {
			if id == focusedID {
				nav.FocusedIndex = i
				break
			}
		}
	}
	nav.ScrollTop = nav.r.ClampScrollTop(len(nav.ids), nav.ScrollTop)
}

func (nav *Navigator) Len() int { return len(nav.ids) }

func (nav *Navigator) Items() []string { return append([]string(nil), nav.ids...) }

// FocusedID returns the id of the focused row, or "" when nothing is focused.
func (nav *Navigator) FocusedID() string {
	if nav.FocusedIndex < 0 || nav.FocusedIndex >= len(nav.ids) {
		return ""
	}
	return nav.ids[nav.FocusedIndex]
}

// Visible returns the window to materialize at the current scroll offset.
func (nav *Navigator) Visible() Window {
	return nav.r.Window(len(nav.ids), nav.ScrollTop)
}

// Scroll moves the viewport. Focus is left untouched.
func (nav *Navigator) Scroll(scrollTop int) {
	nav.ScrollTop = nav.r.ClampScrollTop(len(nav.ids), scrollTop)
}

func (nav *Navigator) focus(index int) {
	nav.FocusedIndex = index
	nav.ScrollTop = nav.r.ScrollIntoView(len(nav.ids), index, nav.ScrollTop)
}

func (nav *Navigator) action(kind ActionKind, index int) Action {
	return Action{Kind: kind, Index: index, TeacherID: nav.ids[index]}
}

// HandleKey moves the focus (arrows, Home, End) or asks to select the focused row (Enter, Space).
func (nav *Navigator) HandleKey(k Key) Action {
	n := len(nav.ids)
	if n == 0 {
		return Action{Kind: ActionNone, Index: -1}
	}
	switch k {
	case KeyArrowDown:
		if nav.FocusedIndex < 0 {
			nav.focus(0)
		} else {
			nav.focus(min(nav.FocusedIndex+1, n-1))
		}
	case KeyArrowUp:
		if nav.FocusedIndex < 0 {
			nav.focus(0)
		} else {
			nav.focus(max(nav.FocusedIndex-1, 0))
		}
	case KeyHome:
		nav.focus(0)
	case KeyEnd:
		nav.focus(n - 1)
	case KeyEnter, KeySpace:
		if id := nav.FocusedID(); id != "" {
			return nav.action(ActionSelect, nav.FocusedIndex)
		}
	}
	return Action{Kind: ActionNone, Index: nav.FocusedIndex}
}

// Click focuses row index and asks to select it, or to toggle its membership in the selection set
// when a modifier is held. Out of range clicks do nothing.
func (nav *Navigator) Click(index int, mods Modifiers) Action {
	if index < 0 || index >= len(nav.ids) {
		return Action{Kind: ActionNone, Index: -1}
	}
	nav.focus(index)
	if mods.any() {
		return nav.action(ActionToggle, index)
	}
	return nav.action(ActionSelect, index)
}

// Check is the row checkbox: it always asks to toggle.
func (nav *Navigator) Check(index int) Action {
	if index < 0 || index >= len(nav.ids) {
		return Action{Kind: ActionNone, Index: -1}
	}
	nav.focus(index)
	return nav.action(ActionToggle, index)
}

// Target receives dispatched actions. *workload.Store is a Target.
type Target interface {
	SelectTeacher(ctx context.Context, id string) error
	ToggleTeacherSelection(ctx context.Context, id string) (bool, error)
}

// Dispatch applies a to t. ActionNone is a no-op.
func Dispatch(ctx context.Context, t Target, a Action) error {
	switch a.Kind {
	case ActionSelect:
		return errors.Wrap(t.SelectTeacher(ctx, a.TeacherID), "selecting teacher")
	case ActionToggle:
		_, err := t.ToggleTeacherSelection(ctx, a.TeacherID)
		return errors.Wrap(err, "toggling teacher selection")
	}
	return nil
}
