package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core/bulk"
	"github.com/trezcool/ratiba/core/workload"
)

func registerBulkAPI(g *echo.Group, svc *bulk.Service, store *workload.Store, sel *workload.Selectors) {
	g.GET("/plan", plan(svc, store, sel))
	g.GET("/exports/:format", export(svc))
	g.POST("/share", share(svc))

	bulkGroup := g.Group("/bulk")
	bulkGroup.POST("/delete", bulkDelete(svc))
	bulkGroup.GET("/edit-intent", editIntent(svc))
}

// plan without a scope falls back to the selection set, or to every active teacher.
func plan(svc *bulk.Service, store *workload.Store, sel *workload.Selectors) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		reqCtx := ctx.Request().Context()
		if ctx.QueryParam(scopeParam) == "" {
			snap, err := store.Snapshot(reqCtx)
			if err != nil {
				return errors.Wrap(err, "taking snapshot")
			}
			return ctx.JSON(http.StatusOK, sel.PlanSummary(snap))
		}

		scope, err := queryScope(ctx)
		if err != nil {
			return err
		}
		p, err := svc.Plan(reqCtx, scope)
		if err != nil {
			return errors.Wrap(err, "building plan")
		}
		return ctx.JSON(http.StatusOK, p)
	}
}

func export(svc *bulk.Service) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		scope, err := queryScope(ctx)
		if err != nil {
			return err
		}
		exp, err := svc.Export(ctx.Request().Context(), scope, bulk.Format(ctx.Param("format")))
		if err != nil {
			return errors.Wrap(err, "exporting plan")
		}
		ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", exp.Filename))
		return ctx.Blob(http.StatusOK, exp.ContentType(), exp.Body)
	}
}

func share(svc *bulk.Service) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var req shareRequest
		if err := ctx.Bind(&req); err != nil {
			return errors.Wrap(err, "binding to shareRequest")
		}
		scope, err := workload.ParseScope(req.Scope)
		if err != nil {
			return err
		}
		if err = svc.Share(ctx.Request().Context(), scope, req.Recipients...); err != nil {
			return errors.Wrap(err, "sharing plan")
		}
		return ctx.NoContent(http.StatusAccepted)
	}
}

func bulkDelete(svc *bulk.Service) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		scope, err := bindScope(ctx)
		if err != nil {
			return err
		}
		res, err := svc.DeleteAssignments(ctx.Request().Context(), scope)
		if err != nil {
			return errors.Wrap(err, "deleting assignments")
		}
		return ctx.JSON(http.StatusOK, res)
	}
}

func editIntent(svc *bulk.Service) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		scope, err := queryScope(ctx)
		if err != nil {
			return err
		}
		intent, err := svc.EditIntent(ctx.Request().Context(), scope)
		if err != nil {
			return errors.Wrap(err, "resolving edit intent")
		}
		return ctx.JSON(http.StatusOK, intent)
	}
}
