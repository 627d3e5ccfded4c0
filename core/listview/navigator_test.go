package listview_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ratiba/core/listview"
	"github.com/trezcool/ratiba/testutil"
)

func rowIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("t-%04d", i)
	}
	return ids
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		in      string
		want    listview.Key
		wantErr error
	}{
		{in: "ArrowDown", want: listview.KeyArrowDown},
		{in: "arrowup", want: listview.KeyArrowUp},
		{in: "Home", want: listview.KeyHome},
		{in: "End", want: listview.KeyEnd},
		{in: "Enter", want: listview.KeyEnter},
		{in: " ", want: listview.KeySpace},
		{in: "Space", want: listview.KeySpace},
		{in: "Tab", want: listview.KeyNone, wantErr: listview.ErrUnknownKey},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := listview.ParseKey(tt.in)
			assert.Equal(t, tt.wantErr, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNavigator_HandleKey(t *testing.T) {
	nav := newRenderer(t).NewNavigator(rowIDs(1000))
	require.Equal(t, -1, nav.FocusedIndex)

	steps := []struct {
		key        listview.Key
		wantFocus  int
		wantScroll int
	}{
		{key: listview.KeyArrowUp, wantFocus: 0, wantScroll: 0},
		{key: listview.KeyArrowDown, wantFocus: 1, wantScroll: 0},
		{key: listview.KeyArrowDown, wantFocus: 2, wantScroll: 0},
		{key: listview.KeyArrowDown, wantFocus: 3, wantScroll: 0},
		{key: listview.KeyArrowDown, wantFocus: 4, wantScroll: 0},
		{key: listview.KeyArrowDown, wantFocus: 5, wantScroll: 0},
		{key: listview.KeyArrowDown, wantFocus: 6, wantScroll: 48},  // just enough for row 6 to be fully visible
		{key: listview.KeyArrowDown, wantFocus: 7, wantScroll: 112}, // one row further
		{key: listview.KeyArrowUp, wantFocus: 6, wantScroll: 112},   // still visible: no scroll
		{key: listview.KeyArrowUp, wantFocus: 5, wantScroll: 112},
		{key: listview.KeyArrowUp, wantFocus: 4, wantScroll: 112},
		{key: listview.KeyArrowUp, wantFocus: 3, wantScroll: 112},
		{key: listview.KeyArrowUp, wantFocus: 2, wantScroll: 112},
		{key: listview.KeyArrowUp, wantFocus: 1, wantScroll: 64},
		{key: listview.KeyEnd, wantFocus: 999, wantScroll: 1000*64 - 400},
		{key: listview.KeyArrowDown, wantFocus: 999, wantScroll: 1000*64 - 400},
		{key: listview.KeyHome, wantFocus: 0, wantScroll: 0},
		{key: listview.KeyArrowUp, wantFocus: 0, wantScroll: 0},
	}
	for i, step := range steps {
		a := nav.HandleKey(step.key)
		assert.Equal(t, listview.ActionNone, a.Kind, "step %d", i)
		if nav.FocusedIndex != step.wantFocus || nav.ScrollTop != step.wantScroll {
			t.Fatalf("step %d: focus = %d, scroll = %d; want %d, %d",
				i, nav.FocusedIndex, nav.ScrollTop, step.wantFocus, step.wantScroll)
		}
		// the focused row is always materialized
		w := nav.Visible()
		assert.True(t, w.Start <= nav.FocusedIndex && nav.FocusedIndex < w.End, "step %d", i)
	}
}

func TestNavigator_HandleKey_select(t *testing.T) {
	nav := newRenderer(t).NewNavigator(rowIDs(10))

	assert.Equal(t, listview.ActionNone, nav.HandleKey(listview.KeyEnter).Kind, "nothing focused")

	nav.HandleKey(listview.KeyEnd)
	for _, k := range []listview.Key{listview.KeyEnter, listview.KeySpace} {
		a := nav.HandleKey(k)
		assert.Equal(t, listview.Action{Kind: listview.ActionSelect, Index: 9, TeacherID: "t-0009"}, a)
	}
}

func TestNavigator_emptyList(t *testing.T) {
	nav := newRenderer(t).NewNavigator(nil)
	for _, k := range []listview.Key{listview.KeyArrowDown, listview.KeyEnd, listview.KeyEnter} {
		assert.Equal(t, listview.ActionNone, nav.HandleKey(k).Kind)
		assert.Equal(t, -1, nav.FocusedIndex)
	}
	assert.Equal(t, listview.ActionNone, nav.Click(0, listview.Modifiers{}).Kind)
	assert.Equal(t, 0, nav.Visible().TotalHeight)
}

func TestNavigator_Click(t *testing.T) {
	nav := newRenderer(t).NewNavigator(rowIDs(100))

	tests := []struct {
		name  string
		index int
		mods  listview.Modifiers
		want  listview.ActionKind
	}{
		{name: "plain click selects", index: 3, want: listview.ActionSelect},
		{name: "ctrl-click toggles", index: 4, mods: listview.Modifiers{Ctrl: true}, want: listview.ActionToggle},
		{name: "cmd-click toggles", index: 5, mods: listview.Modifiers{Meta: true}, want: listview.ActionToggle},
		{name: "shift-click toggles", index: 6, mods: listview.Modifiers{Shift: true}, want: listview.ActionToggle},
		{name: "out of range", index: 100, want: listview.ActionNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := nav.Click(tt.index, tt.mods)
			assert.Equal(t, tt.want, a.Kind)
			if tt.want != listview.ActionNone {
				assert.Equal(t, tt.index, nav.FocusedIndex)
				assert.Equal(t, fmt.Sprintf("t-%04d", tt.index), a.TeacherID)
			}
		})
	}

	a := nav.Check(7)
	assert.Equal(t, listview.ActionToggle, a.Kind)
	assert.Equal(t, "t-0007", a.TeacherID)
}

func TestNavigator_SetItems(t *testing.T) {
	nav := newRenderer(t).NewNavigator(rowIDs(100))
	nav.Click(50, listview.Modifiers{})
	nav.Scroll(1 << 20)
	require.Equal(t, 100*64-400, nav.ScrollTop)

	// focus follows the focused id
	nav.SetItems(rowIDs(100)[40:])
	assert.Equal(t, 10, nav.FocusedIndex)
	assert.Equal(t, "t-0050", nav.FocusedID())
	assert.Equal(t, 60*64-400, nav.ScrollTop)

	// focused id is gone: clamp
	nav.SetItems(rowIDs(5))
	assert.Equal(t, 4, nav.FocusedIndex)
	assert.Equal(t, 0, nav.ScrollTop)

	nav.SetItems(nil)
	assert.Equal(t, -1, nav.FocusedIndex)
	assert.Empty(t, nav.FocusedID())
}

func TestDispatch(t *testing.T) {
	ctx := testutil.Context()
	store, _ := testutil.NewStore(t, testutil.SchoolDataset())
	nav := newRenderer(t).NewNavigator([]string{"t-amina", "t-badr", "t-chadia"})

	require.NoError(t, listview.Dispatch(ctx, store, nav.Click(1, listview.Modifiers{})))
	require.NoError(t, listview.Dispatch(ctx, store, nav.Click(2, listview.Modifiers{Ctrl: true})))
	require.NoError(t, listview.Dispatch(ctx, store, nav.Check(0)))
	require.NoError(t, listview.Dispatch(ctx, store, nav.HandleKey(listview.KeyArrowDown)))

	snap := testutil.Snapshot(t, store)
	assert.Equal(t, "t-badr", snap.SelectedTeacherID, "toggles must not move the focused teacher")
	assert.Equal(t, map[string]struct{}{"t-amina": {}, "t-chadia": {}}, snap.Selection, "select must not touch the selection set")
	assert.Equal(t, 1, nav.FocusedIndex)

	require.NoError(t, listview.Dispatch(ctx, store, nav.HandleKey(listview.KeyEnter)))
	assert.Equal(t, "t-badr", testutil.Snapshot(t, store).SelectedTeacherID)

	err := listview.Dispatch(ctx, store, listview.Action{Kind: listview.ActionToggle, TeacherID: "lol"})
	assert.Error(t, err)
}
