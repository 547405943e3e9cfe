package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/revisehub/revisehub/core/note"
	"github.com/revisehub/revisehub/core/user"
)

// uploads above this size are rejected before reaching storage
const maxUploadSize = 20 << 20 // 20 MiB

type noteApi struct {
	svc      note.Service
	validate *validator.Validate
}

func registerNoteAPI(e *echo.Echo, opts *Options, authn ...echo.MiddlewareFunc) {
	api := noteApi{
		svc:      opts.NoteSvc,
		validate: opts.Validate,
	}

	g := e.Group("/notes", authn...)
	g.GET("", api.query)
	g.POST("", api.create)
	g.GET("/stats", api.monthlyStats)
	g.GET("/stats/weekly", api.weeklyStats)
	g.PUT("/:id", api.update)
	g.DELETE("/:id", api.destroy)
}

// Handlers

func (api *noteApi) create(ctx echo.Context) error {
	data := note.NewNote{
		Title:       ctx.FormValue("title"),
		Description: ctx.FormValue("description"),
		Category:    ctx.FormValue("category"),
	}

	fh, err := ctx.FormFile("file")
	if err == nil {
		if fh.Size > maxUploadSize {
			return errRequestTooLong
		}
		f, err := fh.Open()
		if err != nil {
			return errors.Wrap(err, "opening uploaded file")
		}
		defer f.Close()

		data.FileName = fh.Filename
		data.ContentType = fh.Header.Get(echo.HeaderContentType)
		data.File = f
	}

	if err := data.Validate(api.validate); err != nil {
		return err
	}
	userID, err := claimedUserID(ctx)
	if err != nil {
		return err
	}

	n, err := api.svc.Create(ctx.Request().Context(), userID, data)
	if err != nil {
		return errors.Wrap(err, "creating note")
	}
	return ctx.JSON(http.StatusCreated, n)
}

func (api *noteApi) query(ctx echo.Context) error {
	includeDeleted, _ := strconv.ParseBool(ctx.QueryParam("includeDeleted"))
	userID, err := claimedUserID(ctx)
	if err != nil {
		return err
	}

	notes, err := api.svc.Query(ctx.Request().Context(), userID, includeDeleted)
	if err != nil {
		return errors.Wrap(err, "querying notes")
	}
	if notes == nil {
		notes = []note.Note{}
	}
	return ctx.JSON(http.StatusOK, notes)
}

func (api *noteApi) update(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}

	var data note.UpdateNote
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateNote")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	userID, err := claimedUserID(ctx)
	if err != nil {
		return err
	}

	n, err := api.svc.Update(ctx.Request().Context(), id, userID, data)
	if err != nil {
		return errors.Wrap(err, "updating note")
	}
	return ctx.JSON(http.StatusOK, n)
}

func (api *noteApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	userID, err := claimedUserID(ctx)
	if err != nil {
		return err
	}

	if err := api.svc.Delete(ctx.Request().Context(), id, userID); err != nil {
		return errors.Wrap(err, "deleting note")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *noteApi) monthlyStats(ctx echo.Context) error {
	userID, err := claimedUserID(ctx)
	if err != nil {
		return err
	}

	stats, err := api.svc.MonthlyStats(ctx.Request().Context(), userID)
	if err != nil {
		return errors.Wrap(err, "computing monthly stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *noteApi) weeklyStats(ctx echo.Context) error {
	userID, err := claimedUserID(ctx)
	if err != nil {
		return err
	}

	counts, err := api.svc.WeeklyCounts(ctx.Request().Context(), userID)
	if err != nil {
		return errors.Wrap(err, "computing weekly stats")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"weeks": counts})
}

// claimedUserID returns the authenticated user's ID cached on the context by
// requireUser. A missing entry is an auth failure, never a zero-value owner.
func claimedUserID(ctx echo.Context) (int64, error) {
	usr, ok := ctx.Get(contextUserKey).(user.User)
	if !ok {
		return 0, errUnauthorized
	}
	return usr.ID, nil
}

// pathID parses a numeric path parameter; a malformed value reads the same
// as a record that does not exist.
func pathID(ctx echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil {
		return 0, errHttpNotFound
	}
	return id, nil
}
