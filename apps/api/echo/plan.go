package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/revisehub/revisehub/core/plan"
)

type planApi struct {
	svc      plan.Service
	validate *validator.Validate
}

func registerPlannerAPI(e *echo.Echo, opts *Options, authn ...echo.MiddlewareFunc) {
	api := planApi{
		svc:      opts.PlanSvc,
		validate: opts.Validate,
	}

	g := e.Group("/planner", authn...)
	g.POST("/create", api.create)
	g.GET("", api.query)
	g.PUT("/:planId/topics", api.addTopic)
	g.PUT("/:planId/topics/:topicId", api.updateTopic)
	g.DELETE("/:planId/topics/:topicId", api.deleteTopic)
	g.PUT("/:planId/reorder", api.reorder)
}

// Handlers

func (api *planApi) create(ctx echo.Context) error {
	var data plan.NewStudyPlan
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudyPlan")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	userID, err := claimedUserID(ctx)
	if err != nil {
		return err
	}

	p, err := api.svc.Create(ctx.Request().Context(), userID, data)
	if err != nil {
		return errors.Wrap(err, "creating study plan")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *planApi) query(ctx echo.Context) error {
	userID, err := claimedUserID(ctx)
	if err != nil {
		return err
	}

	plans, err := api.svc.Query(ctx.Request().Context(), userID)
	if err != nil {
		return errors.Wrap(err, "querying study plans")
	}
	if plans == nil {
		plans = []plan.StudyPlan{}
	}
	return ctx.JSON(http.StatusOK, plans)
}

func (api *planApi) addTopic(ctx echo.Context) error {
	planID, err := pathID(ctx, "planId")
	if err != nil {
		return err
	}

	var data plan.NewTopic
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTopic")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	userID, err := claimedUserID(ctx)
	if err != nil {
		return err
	}

	p, err := api.svc.AddTopic(ctx.Request().Context(), planID, userID, data)
	if err != nil {
		return errors.Wrap(err, "adding topic")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *planApi) updateTopic(ctx echo.Context) error {
	planID, err := pathID(ctx, "planId")
	if err != nil {
		return err
	}
	topicID, err := pathID(ctx, "topicId")
	if err != nil {
		return err
	}

	var data plan.UpdateTopic
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTopic")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	userID, err := claimedUserID(ctx)
	if err != nil {
		return err
	}

	p, err := api.svc.UpdateTopic(ctx.Request().Context(), planID, topicID, userID, data)
	if err != nil {
		return errors.Wrap(err, "updating topic")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *planApi) deleteTopic(ctx echo.Context) error {
	planID, err := pathID(ctx, "planId")
	if err != nil {
		return err
	}
	topicID, err := pathID(ctx, "topicId")
	if err != nil {
		return err
	}
	userID, err := claimedUserID(ctx)
	if err != nil {
		return err
	}

	p, err := api.svc.DeleteTopic(ctx.Request().Context(), planID, topicID, userID)
	if err != nil {
		return errors.Wrap(err, "deleting topic")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *planApi) reorder(ctx echo.Context) error {
	planID, err := pathID(ctx, "planId")
	if err != nil {
		return err
	}

	var data plan.ReorderTopics
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReorderTopics")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	userID, err := claimedUserID(ctx)
	if err != nil {
		return err
	}

	p, err := api.svc.Reorder(ctx.Request().Context(), planID, userID, data)
	if err != nil {
		return errors.Wrap(err, "reordering topics")
	}
	return ctx.JSON(http.StatusOK, p)
}
