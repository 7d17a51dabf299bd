package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/school"
)

func (api *schoolApi) registerPeopleAPI(g *echo.Group, jwt echo.MiddlewareFunc, principal echo.MiddlewareFunc) {
	sg := g.Group("/staff", jwt, principal)
	sg.GET("", api.queryStaff)
	sg.POST("", api.createStaff)
	sg.GET("/:id", api.retrieveStaff)
	sg.PUT("/:id", api.updateStaff)
	sg.DELETE("/:id", api.destroyStaff)

	tg := g.Group("/teachers", jwt, principal)
	tg.GET("", api.queryTeachers)
	tg.POST("", api.createTeacher)
	tg.GET("/:id", api.retrieveTeacher)
	tg.PUT("/:id", api.updateTeacher)
	tg.DELETE("/:id", api.destroyTeacher)

	gg := g.Group("/guardians", jwt, principal)
	gg.GET("", api.queryGuardians)
	gg.POST("", api.createGuardian)
	gg.GET("/:id", api.retrieveGuardian)
	gg.PUT("/:id", api.updateGuardian)
	gg.DELETE("/:id", api.destroyGuardian)

	stg := g.Group("/students", jwt, principal)
	stg.GET("", api.queryStudents)
	stg.POST("", api.createStudent)
	stg.GET("/:id", api.retrieveStudent)
	stg.PUT("/:id", api.updateStudent)
	stg.DELETE("/:id", api.destroyStudent)
}

// Staff

func (api *schoolApi) queryStaff(ctx echo.Context) error {
	p, err := api.principal(ctx)
	if err != nil {
		return err
	}
	rows, err := api.svc.ListStaff(ctx.Request().Context(), p, bindOrdering(ctx).Orderings)
	if err != nil {
		return err
	}
	if rows == nil {
		rows = []school.StaffMember{}
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (api *schoolApi) retrieveStaff(ctx echo.Context) error {
	p, err := api.principal(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	row, err := api.svc.GetStaff(ctx.Request().Context(), p, id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, row)
}

func (api *schoolApi) createStaff(ctx echo.Context) error {
	p, err := api.principal(ctx)
	if err != nil {
		return err
	}
	var data school.ProfileInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ProfileInput")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	row, err := api.svc.CreateStaff(ctx.Request().Context(), p, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, row)
}

func (api *schoolApi) updateStaff(ctx echo.Context) error {
	p, err := api.principal(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data school.ProfileInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ProfileInput")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	row, err := api.svc.UpdateStaff(ctx.Request().Context(), p, id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, row)
}

func (api *schoolApi) destroyStaff(ctx echo.Context) error {
	p, err := api.principal(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteStaff(ctx.Request().Context(), p, id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Teachers

func (api *schoolApi) queryTeachers(ctx echo.Context) error {
	p, err := api.principal(ctx)
	if err != nil {
		return err
	}
	rows, err := api.svc.ListTeachers(ctx.Request().Context(), p, bindOrdering(ctx).Orderings)
	if err != nil {
		return err
	}
	if rows == nil {
		rows = []school.Teacher{}
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (api *schoolApi) retrieveTeacher(ctx echo.Context) error {
	p, err := api.principal(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	row, err := api.svc.GetTeacher(ctx.Request().Context(), p, id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, row)
}

func (api *schoolApi) createTeacher(ctx echo.Context) error {
	p, err := api.principal(ctx)
	if err != nil {
		return err
	}
	var data school.ProfileInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ProfileInput")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	row, err := api.svc.CreateTeacher(ctx.Request().Context(), p, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, row)
}

func (api *schoolApi) updateTeacher(ctx echo.Context) error {
	p, err := api.principal(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data school.ProfileInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ProfileInput")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	row, err := api.svc.UpdateTeacher(ctx.Request().Context(), p, id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, row)
}

func (api *schoolApi) destroyTeacher(ctx echo.Context) error {
	p, err := api.principal(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteTeacher(ctx.Request().Context(), p, id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Guardians

func (api *schoolApi) queryGuardians(ctx echo.Context) error {
	p, err := api.principal(ctx)
	if err != nil {
		return err
	}
	rows, err := api.svc.ListGuardians(ctx.Request().Context(), p, bindOrdering(ctx).Orderings)
	if err != nil {
		return err
	}
	if rows == nil {
		rows = []school.Guardian{}
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (api *schoolApi) retrieveGuardian(ctx echo.Context) error {
	p, err := api.principal(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	row, err := api.svc.GetGuardian(ctx.Request().Context(), p, id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, row)
}

func (api *schoolApi) createGuardian(ctx echo.Context) error {
	p, err := api.principal(ctx)
	if err != nil {
		return err
	}
	var data school.ProfileInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ProfileInput")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	row, err := api.svc.CreateGuardian(ctx.Request().Context(), p, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, row)
}

func (api *schoolApi) updateGuardian(ctx echo.Context) error {
	p, err := api.principal(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data school.ProfileInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ProfileInput")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	row, err := api.svc.UpdateGuardian(ctx.Request().Context(), p, id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, row)
}

func (api *schoolApi) destroyGuardian(ctx echo.Context) error {
	p, err := api.principal(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteGuardian(ctx.Request().Context(), p, id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Students

func (api *schoolApi) queryStudents(ctx echo.Context) error {
	p, err := api.principal(ctx)
	if err != nil {
		return err
	}
	rows, err := api.svc.ListStudents(ctx.Request().Context(), p, bindOrdering(ctx).Orderings)
	if err != nil {
		return err
	}
	if rows == nil {
		rows = []school.Student{}
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (api *schoolApi) retrieveStudent(ctx echo.Context) error {
	p, err := api.principal(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	row, err := api.svc.GetStudent(ctx.Request().Context(), p, id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, row)
}

func (api *schoolApi) createStudent(ctx echo.Context) error {
	p, err := api.principal(ctx)
	if err != nil {
		return err
	}
	var data school.StudentInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StudentInput")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	row, err := api.svc.CreateStudent(ctx.Request().Context(), p, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, row)
}

func (api *schoolApi) updateStudent(ctx echo.Context) error {
	p, err := api.principal(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data school.StudentInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StudentInput")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	row, err := api.svc.UpdateStudent(ctx.Request().Context(), p, id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, row)
}

func (api *schoolApi) destroyStudent(ctx echo.Context) error {
	p, err := api.principal(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteStudent(ctx.Request().Context(), p, id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
