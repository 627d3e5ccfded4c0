package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core/workload"
)

const scopeParam = "scope"

type (
	scopeRequest struct {
		Scope string `json:"scope"`
	}

	shareRequest struct {
		Scope      string   `json:"scope"`
		Recipients []string `json:"recipients"`
	}
)

// queryScope reads the mandatory scope query parameter.
func queryScope(ctx echo.Context) (workload.Scope, error) {
	return workload.ParseScope(ctx.QueryParam(scopeParam))
}

// bindScope reads the scope of a JSON body.
func bindScope(ctx echo.Context) (workload.Scope, error) {
	var req scopeRequest
	if err := ctx.Bind(&req); err != nil {
		return "", errors.Wrap(err, "binding to scopeRequest")
	}
	return workload.ParseScope(req.Scope)
}
