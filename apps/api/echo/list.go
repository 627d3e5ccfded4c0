package echoapi

import (
	"context"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core/listview"
	"github.com/trezcool/ratiba/core/workload"
)

type (
	// listState is the server side keyboard focus and scroll offset of the teacher list.
	listState struct {
		store *workload.Store
		sel   *workload.Selectors

		mu  sync.Mutex
		nav *listview.Navigator
	}

	windowRow struct {
		Index     int    `json:"index"`
		Top       int    `json:"top"`
		TeacherID string `json:"teacher_id"`
		Selected  bool   `json:"selected"`
	}

	windowResponse struct {
		Start        int         `json:"start"`
		End          int         `json:"end"`
		TotalHeight  int         `json:"total_height"`
		ScrollTop    int         `json:"scroll_top"`
		FocusedIndex int         `json:"focused_index"`
		FocusedID    string      `json:"focused_id"`
		Rows         []windowRow `json:"rows"`
		Action       string      `json:"action,omitempty"`
	}

	scrollRequest struct {
		ScrollTop int `json:"scroll_top"`
	}

	keyRequest struct {
		Key string `json:"key"`
	}

	clickRequest struct {
		Index    int  `json:"index"`
		Checkbox bool `json:"checkbox"`
		Ctrl     bool `json:"ctrl"`
		Meta     bool `json:"meta"`
		Shift    bool `json:"shift"`
	}
)

func newListState(r *listview.Renderer, store *workload.Store, sel *workload.Selectors) *listState {
	return &listState{store: store, sel: sel, nav: r.NewNavigator(nil)}
}

// do refreshes the rows from the filtered teachers, then runs fn with the lock held.
func (ls *listState) do(ctx context.Context, fn func(nav *listview.Navigator) listview.Action) (windowResponse, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	snap, err := ls.store.Snapshot(ctx)
	if err != nil {
		return windowResponse{}, errors.Wrap(err, "taking snapshot")
	}
	ls.nav.SetItems(ls.sel.FilterableTeachers(snap))

	act := fn(ls.nav)
	if act.Kind != listview.ActionNone {
		if err = listview.Dispatch(ctx, ls.store, act); err != nil {
			return windowResponse{}, err
		}
		if snap, err = ls.store.Snapshot(ctx); err != nil {
			return windowResponse{}, errors.Wrap(err, "taking snapshot")
		}
	}
	return newWindowResponse(ls.nav, snap, act), nil
}

func newWindowResponse(nav *listview.Navigator, snap workload.Snapshot, act listview.Action) windowResponse {
	win := nav.Visible()
	ids := nav.Items()
	resp := windowResponse{
		Start:        win.Start,
		End:          win.End,
		TotalHeight:  win.TotalHeight,
		ScrollTop:    nav.ScrollTop,
		FocusedIndex: nav.FocusedIndex,
		FocusedID:    nav.FocusedID(),
		Rows:         make([]windowRow, 0, len(win.Rows)),
	}
	if act.Kind != listview.ActionNone {
		resp.Action = act.Kind.String()
	}
	for _, row := range win.Rows {
		resp.Rows = append(resp.Rows, windowRow{
			Index:     row.Index,
			Top:       row.Top,
			TeacherID: ids[row.Index],
			Selected:  snap.IsSelected(ids[row.Index]),
		})
	}
	return resp
}

func registerListAPI(g *echo.Group, ls *listState) {
	windowGroup := g.Group("/window")
	windowGroup.GET("", getWindow(ls))
	windowGroup.PUT("/scroll", scrollWindow(ls))
	windowGroup.POST("/keys", pressKey(ls))
	windowGroup.POST("/clicks", clickRow(ls))
}

func getWindow(ls *listState) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		resp, err := ls.do(ctx.Request().Context(), func(*listview.Navigator) listview.Action {
			return listview.Action{Kind: listview.ActionNone, Index: -1}
		})
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, resp)
	}
}

func scrollWindow(ls *listState) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var req scrollRequest
		if err := ctx.Bind(&req); err != nil {
			return errors.Wrap(err, "binding to scrollRequest")
		}
		resp, err := ls.do(ctx.Request().Context(), func(nav *listview.Navigator) listview.Action {
			nav.Scroll(req.ScrollTop)
			return listview.Action{Kind: listview.ActionNone, Index: -1}
		})
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, resp)
	}
}

func pressKey(ls *listState) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var req keyRequest
		if err := ctx.Bind(&req); err != nil {
			return errors.Wrap(err, "binding to keyRequest")
		}
		key, err := listview.ParseKey(req.Key)
		if err != nil {
			return err
		}
		resp, err := ls.do(ctx.Request().Context(), func(nav *listview.Navigator) listview.Action {
			return nav.HandleKey(key)
		})
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, resp)
	}
}

func clickRow(ls *listState) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var req clickRequest
		if err := ctx.Bind(&req); err != nil {
			return errors.Wrap(err, "binding to clickRequest")
		}
		resp, err := ls.do(ctx.Request().Context(), func(nav *listview.Navigator) listview.Action {
			if req.Checkbox {
				return nav.Check(req.Index)
			}
			return nav.Click(req.Index, listview.Modifiers{Ctrl: req.Ctrl, Meta: req.Meta, Shift: req.Shift})
		})
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, resp)
	}
}
