package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/shule/core/school"
	"github.com/trezcool/shule/core/user"
)

type schoolApi struct {
	svc    *school.Service
	usrSvc *user.Service
}

// registerSchoolAPI mounts the record collections. All of them sit behind
// auth; per-role visibility and write rules are enforced by the service.
func registerSchoolAPI(g *echo.Group, jwt echo.MiddlewareFunc, usrSvc *user.Service, svc *school.Service) {
	api := schoolApi{svc: svc, usrSvc: usrSvc}
	principal := principalMiddleware(usrSvc, svc)

	api.registerPeopleAPI(g, jwt, principal)
	api.registerAcademicsAPI(g, jwt, principal)
	api.registerGradesAPI(g, jwt, principal)
}

func (api *schoolApi) principal(ctx echo.Context) (school.Principal, error) {
	return getContextPrincipal(ctx, api.usrSvc, api.svc)
}

func pathID(ctx echo.Context) (uint, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errHttpNotFound
	}
	return uint(id), nil
}

func bindOrdering(ctx echo.Context) *Ordering {
	ord := new(Ordering)
	ord.Bind(ctx)
	return ord
}
