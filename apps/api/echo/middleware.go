package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/school"
	"github.com/trezcool/shule/core/user"
)

// principalMiddleware resolves the caller's account and role up front so that
// handlers downstream can rely on a populated Principal.
func principalMiddleware(usrSvc *user.Service, schoolSvc *school.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if _, err := getContextPrincipal(ctx, usrSvc, schoolSvc); err != nil {
				return errors.Wrap(err, "resolving principal")
			}
			return next(ctx)
		}
	}
}

// adminMiddleware only lets resolved Admins through.
func adminMiddleware(usrSvc *user.Service, schoolSvc *school.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			p, err := getContextPrincipal(ctx, usrSvc, schoolSvc)
			if err != nil {
				return errors.Wrap(err, "resolving principal")
			}
			if p.Role.Kind == school.KindAdmin {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// selfOrAdminMiddleware lets Admins and the account owner through; anyone
// else gets a 404 so account IDs cannot be probed.
func selfOrAdminMiddleware(usrSvc *user.Service, schoolSvc *school.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if id, err := strconv.ParseUint(ctx.Param("id"), 10, 64); err == nil {
				p, err := getContextPrincipal(ctx, usrSvc, schoolSvc)
				if err != nil {
					return errors.Wrap(err, "resolving principal")
				}
				if uint(id) == p.Account.ID || p.Role.Kind == school.KindAdmin {
					return next(ctx)
				}
			}
			return errHttpNotFound
		}
	}
}
