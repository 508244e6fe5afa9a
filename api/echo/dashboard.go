package echoapi

import (
	"encoding/json"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mrdaoud/tadrees/core"
	"github.com/mrdaoud/tadrees/core/student"
)

// assistantApology is returned whenever the AI collaborator cannot answer;
// the dashboard must keep working without it.
const assistantApology = "عذراً، المساعد الذكي غير متاح حالياً. حاول مرة أخرى لاحقاً."

type dashboardApi struct {
	svc        *student.Service
	assistant  core.AssistantService
	notifSvc   core.NotificationService
	logger     core.Logger
	validate   *validator.Validate
	translator ut.Translator
}

func registerDashboardAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := dashboardApi{
		svc:        deps.StudentSvc,
		assistant:  deps.Assistant,
		notifSvc:   deps.NotifSvc,
		logger:     deps.Logger,
		validate:   deps.Validate,
		translator: deps.Translator,
	}

	// the leaderboard is the public home screen
	g.GET("/leaderboard", api.leaderboard)

	dg := g.Group("/dashboard", jwt, teacherMiddleware())
	dg.GET("/stats", api.stats)
	dg.GET("/alerts", api.alerts)

	g.GET("/notifications", api.notifications, jwt, teacherMiddleware())
	g.POST("/assistant", api.ask, jwt, teacherMiddleware())
}

// Handlers

func (api *dashboardApi) leaderboard(ctx echo.Context) error {
	ranked, err := api.svc.Leaderboard()
	if err != nil {
		return errors.Wrap(err, "computing leaderboard")
	}
	return ctx.JSON(http.StatusOK, ranked)
}

func (api *dashboardApi) stats(ctx echo.Context) error {
	sum, err := api.svc.Stats()
	if err != nil {
		return errors.Wrap(err, "computing stats")
	}
	return ctx.JSON(http.StatusOK, sum)
}

func (api *dashboardApi) alerts(ctx echo.Context) error {
	alerts, err := api.svc.Alerts()
	if err != nil {
		return errors.Wrap(err, "computing alerts")
	}
	return ctx.JSON(http.StatusOK, alerts)
}

func (api *dashboardApi) notifications(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.notifSvc.Recent())
}

func (api *dashboardApi) ask(ctx echo.Context) error {
	var data AssistantRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssistantRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	snap, err := api.svc.Snapshot()
	if err != nil {
		return errors.Wrap(err, "reading snapshot")
	}
	snapJSON, err := json.Marshal(snap)
	if err != nil {
		return errors.Wrap(err, "marshaling snapshot")
	}

	answer, err := api.assistant.Analyze(ctx.Request().Context(), string(snapJSON), data.Question)
	if err != nil {
		// degrade instead of failing the request
		api.logger.Warn("assistant unavailable", err)
		answer = assistantApology
	}
	return ctx.JSON(http.StatusOK, AssistantResponse{Answer: answer})
}

type (
	AssistantRequest struct {
		Question string `json:"question" validate:"required"`
	}

	AssistantResponse struct {
		Answer string `json:"answer"`
	}
)

func (ar *AssistantRequest) Validate(validate *validator.Validate) error {
	ar.Question = core.CleanString(ar.Question)
	return validate.Struct(ar)
}
