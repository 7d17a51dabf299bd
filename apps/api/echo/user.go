package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/school"
	"github.com/trezcool/shule/core/user"
)

type userApi struct {
	svc       *user.Service
	schoolSvc *school.Service
}

func registerUserAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *user.Service, schoolSvc *school.Service) {
	api := userApi{svc: svc, schoolSvc: schoolSvc}

	// un-authed endpoints
	// TODO: rate limit `/password-reset` & `/password-reset-confirm`
	g.POST("/register", api.register)
	g.POST("/token", api.obtainToken)
	g.POST("/token/verify", api.verifyToken)
	g.POST("/password-reset", api.resetPassword)
	g.POST("/password-reset-confirm", api.confirmPasswordReset)

	// authed endpoints
	g.POST("/token/refresh", api.refreshToken, jwt)

	// account administration
	admin := adminMiddleware(svc, schoolSvc)
	ag := g.Group("/accounts", jwt)
	ag.GET("", api.query, admin)
	ag.DELETE("", api.destroyMultiple, admin)
	dg := ag.Group("/:id", selfOrAdminMiddleware(svc, schoolSvc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy, admin)
	dg.POST("/link", api.linkProfile, admin)
}

// Handlers

func (api *userApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	usr, err := api.svc.Register(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering user")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userApi) obtainToken(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := authenticate(ctx.Request().Context(), data.Username, data.Password, api.svc, api.schoolSvc)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return core.NewValidationError(errors.New("invalid credentials"))
		}
		return errors.Wrap(err, "authenticating")
	}
	token, err := GenerateToken(claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *userApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.svc, api.schoolSvc)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *userApi) verifyToken(ctx echo.Context) error {
	var data VerifyTokenRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to VerifyTokenRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := ParseToken(data.Token)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, claims)
}

func (api *userApi) resetPassword(ctx echo.Context) error {
	var data PasswordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.svc.RequestPasswordReset(ctx.Request().Context(), data.Email); !(err == nil || errors.Cause(err) == user.ErrNotFound) {
		// do not return errors to attackers
		ctx.Logger().Errorf("%+v", errors.Wrap(err, "requesting password reset"))
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})
}

func (api *userApi) confirmPasswordReset(ctx echo.Context) error {
	var data user.ResetUserPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetUserPassword")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.svc.ResetPassword(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "resetting password")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password has been reset with the new password."})
}

func (api *userApi) query(ctx echo.Context) error {
	filter := new(user.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []user.User{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	users, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	if users == nil {
		users = []user.User{}
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *userApi) retrieve(ctx echo.Context) error {
	usr, err := api.pathUser(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) update(ctx echo.Context) error {
	usr, err := api.pathUser(ctx)
	if err != nil {
		return err
	}

	var data user.UpdateUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateUser")
	}
	if err := data.Validate(usr, api.svc); err != nil {
		return err
	}

	// only admins get to flip the administrative flags
	p, err := getContextPrincipal(ctx, api.svc, api.schoolSvc)
	if err != nil {
		return errors.Wrap(err, "getting context principal")
	}
	if p.Role.Kind != school.KindAdmin {
		data.IsStaff = nil
		data.IsActive = nil
	}

	usr, err = api.svc.Update(ctx.Request().Context(), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) destroy(ctx echo.Context) error {
	usr, err := api.pathUser(ctx)
	if err != nil {
		return err
	}

	// ctxUser cannot delete themselves
	p, err := getContextPrincipal(ctx, api.svc, api.schoolSvc)
	if err != nil {
		return errors.Wrap(err, "getting context principal")
	}
	if usr.ID == p.Account.ID {
		return errHttpForbidden
	}

	if err := api.svc.Delete(ctx.Request().Context(), usr.ID); err != nil {
		return errors.Wrap(err, "deleting user")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *userApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	// ctxUser cannot delete themselves
	p, err := getContextPrincipal(ctx, api.svc, api.schoolSvc)
	if err != nil {
		return errors.Wrap(err, "getting context principal")
	}
	for _, id := range query.IDs {
		if id == p.Account.ID {
			return errHttpForbidden
		}
	}

	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// linkProfile attaches the account to a profile row, giving it its role.
func (api *userApi) linkProfile(ctx echo.Context) error {
	usr, err := api.pathUser(ctx)
	if err != nil {
		return err
	}

	var data LinkProfileRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LinkProfileRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	kind := school.Kind(data.ProfileType)
	if err := school.LinkAccount(ctx.Request().Context(), api.schoolSvc.DB(), kind, data.ProfileID, usr.ID); err != nil {
		return errors.Wrap(err, "linking account")
	}

	role, err := school.ResolveRole(ctx.Request().Context(), api.schoolSvc.DB(), usr)
	if err != nil {
		return errors.Wrap(err, "resolving role")
	}
	return ctx.JSON(http.StatusOK, role)
}

func (api *userApi) pathUser(ctx echo.Context) (user.User, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return user.User{}, errHttpNotFound
	}
	usr, err := api.svc.GetByID(ctx.Request().Context(), uint(id))
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return user.User{}, errHttpNotFound
		}
		return user.User{}, errors.Wrap(err, "finding user by ID")
	}
	return usr, nil
}

type (
	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	VerifyTokenRequest struct {
		Token string `json:"token" validate:"required"`
	}

	PasswordResetRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}

	DestroyMultipleRequest struct {
		IDs []uint `query:"id"`
	}

	LinkProfileRequest struct {
		ProfileType string `json:"profile_type" validate:"required,oneof=admin teacher student guardian"`
		ProfileID   uint   `json:"profile_id" validate:"required"`
	}
)

func (lr *LoginRequest) Validate() error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return core.Validate.Struct(lr)
}

func (vr *VerifyTokenRequest) Validate() error {
	vr.Token = core.CleanString(vr.Token)
	return core.Validate.Struct(vr)
}

func (pr *PasswordResetRequest) Validate() error {
	pr.Email = core.CleanString(pr.Email, true /* lower */)
	return core.Validate.Struct(pr)
}

func (lp *LinkProfileRequest) Validate() error {
	lp.ProfileType = core.CleanString(lp.ProfileType, true /* lower */)
	return core.Validate.Struct(lp)
}
