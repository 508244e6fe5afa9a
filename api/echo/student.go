package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mrdaoud/tadrees/core/student"
)

type studentApi struct {
	svc        *student.Service
	validate   *validator.Validate
	translator ut.Translator
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := studentApi{
		svc:        deps.StudentSvc,
		validate:   deps.Validate,
		translator: deps.Translator,
	}

	// un-authed metadata endpoint
	g.GET("/grade-levels", api.queryGradeLevels)

	sg := g.Group("/students", jwt)
	sg.GET("", api.query, teacherMiddleware())
	sg.POST("", api.create, teacherMiddleware())

	// detail endpoints
	dg := sg.Group("/:id", ownStudentOrTeacherMiddleware())
	dg.GET("", api.retrieve)
	dg.GET("/report", api.report)
	dg.PUT("", api.update, teacherMiddleware())
	dg.DELETE("", api.destroy, teacherMiddleware())
	dg.POST("/grades", api.addGrade, teacherMiddleware())
	dg.POST("/payments", api.addPayment, teacherMiddleware())
	dg.POST("/attendance", api.markAttendance, teacherMiddleware())
	dg.POST("/notes", api.addNote, teacherMiddleware())
}

// Handlers

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.Create(data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *studentApi) query(ctx echo.Context) error {
	filter := new(student.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()

	students, err := api.svc.Filter(*filter)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	s, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) report(ctx echo.Context) error {
	prof, err := api.svc.Profile(ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, prof)
}

func (api *studentApi) update(ctx echo.Context) error {
	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.Update(ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) addGrade(ctx echo.Context) error {
	var data student.NewGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGrade")
	}
	data.StudentID = ctx.Param("id")
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	g, err := api.svc.AddGrade(data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, g)
}

func (api *studentApi) addPayment(ctx echo.Context) error {
	var data student.NewPayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPayment")
	}
	data.StudentID = ctx.Param("id")
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	p, err := api.svc.AddPayment(data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *studentApi) markAttendance(ctx echo.Context) error {
	var data student.MarkAttendance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MarkAttendance")
	}
	data.StudentID = ctx.Param("id")
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	// upsert; returns the surviving record
	a, err := api.svc.Mark(data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *studentApi) addNote(ctx echo.Context) error {
	var data student.NewNote
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewNote")
	}
	data.StudentID = ctx.Param("id")
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	n, err := api.svc.AddNote(data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, n)
}

func (api *studentApi) queryGradeLevels(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, student.GradeLevels)
}
