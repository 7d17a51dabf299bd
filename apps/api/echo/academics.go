package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/school"
)

func (api *schoolApi) registerAcademicsAPI(g *echo.Group, jwt echo.MiddlewareFunc, principal echo.MiddlewareFunc) {
	sg := g.Group("/subjects", jwt, principal)
	sg.GET("", api.querySubjects)
	sg.POST("", api.createSubject)
	sg.GET("/:id", api.retrieveSubject)
	sg.PUT("/:id", api.updateSubject)
	sg.DELETE("/:id", api.destroySubject)

	cg := g.Group("/classes", jwt, principal)
	cg.GET("", api.queryClassGroups)
	cg.POST("", api.createClassGroup)
	cg.GET("/:id", api.retrieveClassGroup)
	cg.PUT("/:id", api.updateClassGroup)
	cg.DELETE("/:id", api.destroyClassGroup)

	ag := g.Group("/assessments", jwt, principal)
	ag.GET("", api.queryAssessments)
	ag.POST("", api.createAssessment)
	ag.GET("/:id", api.retrieveAssessment)
	ag.PUT("/:id", api.updateAssessment)
	ag.DELETE("/:id", api.destroyAssessment)
}

// Subjects

func (api *schoolApi) querySubjects(ctx echo.Context) error {
	p, err := api.principal(ctx)
	if err != nil {
		return err
	}
	rows, err := api.svc.ListSubjects(ctx.Request().Context(), p, bindOrdering(ctx).Orderings)
	if err != nil {
		return err
	}
	if rows == nil {
		rows = []school.Subject{}
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (api *schoolApi) retrieveSubject(ctx echo.Context) error {
	p, err := api.principal(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	row, err := api.svc.GetSubject(ctx.Request().Context(), p, id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, row)
}

func (api *schoolApi) createSubject(ctx echo.Context) error {
	p, err := api.principal(ctx)
	if err != nil {
		return err
	}
	var data school.SubjectInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SubjectInput")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	row, err := api.svc.CreateSubject(ctx.Request().Context(), p, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, row)
}

func (api *schoolApi) updateSubject(ctx echo.Context) error {
	p, err := api.principal(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data school.SubjectInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SubjectInput")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	row, err := api.svc.UpdateSubject(ctx.Request().Context(), p, id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, row)
}

func (api *schoolApi) destroySubject(ctx echo.Context) error {
	p, err := api.principal(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteSubject(ctx.Request().Context(), p, id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Class groups

func (api *schoolApi) queryClassGroups(ctx echo.Context) error {
	p, err := api.principal(ctx)
	if err != nil {
		return err
	}
	rows, err := api.svc.ListClassGroups(ctx.Request().Context(), p, bindOrdering(ctx).Orderings)
	if err != nil {
		return err
	}
	if rows == nil {
		rows = []school.ClassGroup{}
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (api *schoolApi) retrieveClassGroup(ctx echo.Context) error {
	p, err := api.principal(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	row, err := api.svc.GetClassGroup(ctx.Request().Context(), p, id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, row)
}

func (api *schoolApi) createClassGroup(ctx echo.Context) error {
	p, err := api.principal(ctx)
	if err != nil {
		return err
	}
	var data school.ClassGroupInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ClassGroupInput")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	row, err := api.svc.CreateClassGroup(ctx.Request().Context(), p, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, row)
}

func (api *schoolApi) updateClassGroup(ctx echo.Context) error {
	p, err := api.principal(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data school.ClassGroupInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ClassGroupInput")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	row, err := api.svc.UpdateClassGroup(ctx.Request().Context(), p, id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, row)
}

func (api *schoolApi) destroyClassGroup(ctx echo.Context) error {
	p, err := api.principal(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteClassGroup(ctx.Request().Context(), p, id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Assessments

func (api *schoolApi) queryAssessments(ctx echo.Context) error {
	p, err := api.principal(ctx)
	if err != nil {
		return err
	}
	rows, err := api.svc.ListAssessments(ctx.Request().Context(), p, bindOrdering(ctx).Orderings)
	if err != nil {
		return err
	}
	if rows == nil {
		rows = []school.Assessment{}
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (api *schoolApi) retrieveAssessment(ctx echo.Context) error {
	p, err := api.principal(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	row, err := api.svc.GetAssessment(ctx.Request().Context(), p, id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, row)
}

func (api *schoolApi) createAssessment(ctx echo.Context) error {
	p, err := api.principal(ctx)
	if err != nil {
		return err
	}
	var data school.AssessmentInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssessmentInput")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	row, err := api.svc.CreateAssessment(ctx.Request().Context(), p, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, row)
}

func (api *schoolApi) updateAssessment(ctx echo.Context) error {
	p, err := api.principal(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data school.AssessmentInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssessmentInput")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	row, err := api.svc.UpdateAssessment(ctx.Request().Context(), p, id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, row)
}

func (api *schoolApi) destroyAssessment(ctx echo.Context) error {
	p, err := api.principal(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteAssessment(ctx.Request().Context(), p, id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
