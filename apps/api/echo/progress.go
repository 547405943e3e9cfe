package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/revisehub/revisehub/core/progress"
)

type progressApi struct {
	svc progress.Service
}

func registerProgressAPI(e *echo.Echo, opts *Options, authn ...echo.MiddlewareFunc) {
	api := progressApi{svc: opts.ProgressSvc}

	e.GET("/progress", api.overview, authn...)
}

func (api *progressApi) overview(ctx echo.Context) error {
	limit, _ := strconv.Atoi(ctx.QueryParam("limit"))
	userID, err := claimedUserID(ctx)
	if err != nil {
		return err
	}

	ov := api.svc.Overview(ctx.Request().Context(), userID, limit)
	return ctx.JSON(http.StatusOK, ov)
}
