package echoapi

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/revisehub/revisehub/core"
	"github.com/revisehub/revisehub/core/note"
	"github.com/revisehub/revisehub/core/plan"
	"github.com/revisehub/revisehub/core/progress"
	"github.com/revisehub/revisehub/core/user"
)

type (
	Options struct {
		Conf           *core.Config
		Logger         core.Logger
		DisableReqLogs bool

		Validate   *validator.Validate
		Translator ut.Translator

		UserSvc     user.Service
		NoteSvc     note.Service
		PlanSvc     plan.Service
		ProgressSvc progress.Service

		// UploadsDir enables the static /uploads route for the local
		// file storage backend.
		UploadsDir string

		SignalShutdown func()
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.Conf
	initJWTConfig(conf)

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	if len(conf.Server.AllowedOrigins) > 0 {
		s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: conf.Server.AllowedOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		}))
	}

	signalShutdown := s.opts.SignalShutdown
	if signalShutdown == nil {
		signalShutdown = func() {}
	}
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator, signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)
	if s.opts.UploadsDir != "" {
		s.app.Static("/uploads", s.opts.UploadsDir)
	}

	// authed routes verify the token, then resolve the account
	authn := []echo.MiddlewareFunc{
		middleware.JWTWithConfig(appJWTConfig),
		requireUser(s.opts.UserSvc),
	}

	registerAuthAPI(s.app, s.opts, authn...)
	registerNoteAPI(s.app, s.opts, authn...)
	registerPlannerAPI(s.app, s.opts, authn...)
	registerProgressAPI(s.app, s.opts, authn...)
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.opts.Conf.Server.Address()))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to ReviseHub API!")
}
