package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core/workload"
)

type (
	teacherItem struct {
		ID             string  `json:"id"`
		Name           string  `json:"name"`
		Specialization string  `json:"specialization"`
		MaxLoad        float64 `json:"max_load"`
		Selected       bool    `json:"selected"`
		Focused        bool    `json:"focused"`
	}

	teacherListResponse struct {
		Items            []teacherItem    `json:"items"`
		Filters          workload.Filters `json:"filters"`
		SelectedCount    int              `json:"selected_count"`
		AllSelected      bool             `json:"all_selected"`
		FocusedTeacherID string           `json:"focused_teacher_id"`
	}

	toggleResponse struct {
		TeacherID string `json:"teacher_id"`
		Selected  bool   `json:"selected"`
	}

	focusRequest struct {
		TeacherID string `json:"teacher_id"`
	}
)

func registerWorkloadAPI(g *echo.Group, store *workload.Store, sel *workload.Selectors) {
	teachersGroup := g.Group("/teachers")
	teachersGroup.GET("", teacherList(store, sel))
	teachersGroup.GET("/:id/summary", teacherSummary(store, sel))
	teachersGroup.POST("/:id/toggle", toggleTeacher(store))

	g.PUT("/focus", focusTeacher(store))
	g.PUT("/filters", setFilters(store, sel))

	selectionGroup := g.Group("/selection")
	selectionGroup.POST("/all", selectAllFiltered(store, sel))
	selectionGroup.DELETE("", clearSelection(store, sel))

	assignmentsGroup := g.Group("/assignments")
	assignmentsGroup.POST("", createAssignment(store))
	assignmentsGroup.DELETE("/:id", deleteAssignment(store))
}

func newTeacherList(snap workload.Snapshot, sel *workload.Selectors) teacherListResponse {
	byID := make(map[string]workload.Teacher, len(snap.Teachers))
	for _, t := range snap.Teachers {
		byID[t.ID] = t
	}
	ids := sel.FilterableTeachers(snap)
	resp := teacherListResponse{
		Items:            make([]teacherItem, 0, len(ids)),
		Filters:          snap.Filters,
		SelectedCount:    sel.SelectedFilteredCount(snap),
		AllSelected:      sel.AllFilteredSelected(snap),
		FocusedTeacherID: snap.SelectedTeacherID,
	}
	for _, id := range ids {
		t := byID[id]
		resp.Items = append(resp.Items, teacherItem{
			ID:             t.ID,
			Name:           t.Name,
			Specialization: t.Specialization,
			MaxLoad:        t.MaxLoad,
			Selected:       snap.IsSelected(t.ID),
			Focused:        t.ID == snap.SelectedTeacherID,
		})
	}
	return resp
}

func teacherList(store *workload.Store, sel *workload.Selectors) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		snap, err := store.Snapshot(ctx.Request().Context())
		if err != nil {
			return errors.Wrap(err, "taking snapshot")
		}
		return ctx.JSON(http.StatusOK, newTeacherList(snap, sel))
	}
}

func teacherSummary(store *workload.Store, sel *workload.Selectors) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		snap, err := store.Snapshot(ctx.Request().Context())
		if err != nil {
			return errors.Wrap(err, "taking snapshot")
		}
		sum := sel.SummaryForTeacher(snap, ctx.Param("id"))
		if sum == nil {
			return errHttpNotFound
		}
		return ctx.JSON(http.StatusOK, sum)
	}
}

func toggleTeacher(store *workload.Store) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		id := ctx.Param("id")
		selected, err := store.ToggleTeacherSelection(ctx.Request().Context(), id)
		if err != nil {
			return errors.Wrap(err, "toggling teacher selection")
		}
		return ctx.JSON(http.StatusOK, toggleResponse{TeacherID: id, Selected: selected})
	}
}

func focusTeacher(store *workload.Store) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var req focusRequest
		if err := ctx.Bind(&req); err != nil {
			return errors.Wrap(err, "binding to focusRequest")
		}
		if err := store.SelectTeacher(ctx.Request().Context(), req.TeacherID); err != nil {
			return errors.Wrap(err, "selecting teacher")
		}
		return ctx.NoContent(http.StatusNoContent)
	}
}

func setFilters(store *workload.Store, sel *workload.Selectors) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var f workload.Filters
		if err := ctx.Bind(&f); err != nil {
			return errors.Wrap(err, "binding to Filters")
		}
		store.SetFilters(f)
		return teacherList(store, sel)(ctx)
	}
}

func selectAllFiltered(store *workload.Store, sel *workload.Selectors) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		reqCtx := ctx.Request().Context()
		snap, err := store.Snapshot(reqCtx)
		if err != nil {
			return errors.Wrap(err, "taking snapshot")
		}
		if err = store.SelectAllFilteredTeachers(reqCtx, sel.FilterableTeachers(snap)); err != nil {
			return errors.Wrap(err, "selecting filtered teachers")
		}
		return teacherList(store, sel)(ctx)
	}
}

func clearSelection(store *workload.Store, sel *workload.Selectors) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		store.ClearTeacherSelection()
		return teacherList(store, sel)(ctx)
	}
}

func createAssignment(store *workload.Store) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var na workload.NewAssignment
		if err := ctx.Bind(&na); err != nil {
			return errors.Wrap(err, "binding to NewAssignment")
		}
		asgmt, err := store.CreateAssignment(ctx.Request().Context(), na)
		if err != nil {
			return errors.Wrap(err, "creating assignment")
		}
		return ctx.JSON(http.StatusCreated, asgmt)
	}
}

func deleteAssignment(store *workload.Store) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		deleted, err := store.DeleteAssignment(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			return errors.Wrap(err, "deleting assignment")
		}
		return ctx.JSON(http.StatusOK, echo.Map{"deleted": deleted})
	}
}
