package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/school"
)

func (api *schoolApi) registerGradesAPI(g *echo.Group, jwt echo.MiddlewareFunc, principal echo.MiddlewareFunc) {
	gg := g.Group("/grades", jwt, principal)
	gg.GET("", api.queryGrades)
	gg.POST("", api.createGrade)
	gg.GET("/:id", api.retrieveGrade)
	gg.PUT("/:id", api.updateGrade)
	gg.DELETE("/:id", api.destroyGrade)
}

func (api *schoolApi) queryGrades(ctx echo.Context) error {
	p, err := api.principal(ctx)
	if err != nil {
		return err
	}
	rows, err := api.svc.ListGrades(ctx.Request().Context(), p, bindOrdering(ctx).Orderings)
	if err != nil {
		return err
	}
	if rows == nil {
		rows = []school.Grade{}
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (api *schoolApi) retrieveGrade(ctx echo.Context) error {
	p, err := api.principal(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	row, err := api.svc.GetGrade(ctx.Request().Context(), p, id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, row)
}

func (api *schoolApi) createGrade(ctx echo.Context) error {
	p, err := api.principal(ctx)
	if err != nil {
		return err
	}
	var data school.GradeInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GradeInput")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	row, err := api.svc.CreateGrade(ctx.Request().Context(), p, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, row)
}

func (api *schoolApi) updateGrade(ctx echo.Context) error {
	p, err := api.principal(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data school.GradeInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GradeInput")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	row, err := api.svc.UpdateGrade(ctx.Request().Context(), p, id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, row)
}

func (api *schoolApi) destroyGrade(ctx echo.Context) error {
	p, err := api.principal(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteGrade(ctx.Request().Context(), p, id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
