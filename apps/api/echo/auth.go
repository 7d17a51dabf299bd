package echoapi

import (
	"context"
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/school"
	"github.com/trezcool/shule/core/user"
)

var (
	// appJWTConfig is the default JWT auth middleware config.
	appJWTConfig = middleware.JWTConfig{
		SigningKey:    core.Conf.SecretKey,
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    "userToken",
		Claims:        new(Claims),
	}
	contextPrincipalKey = "principal"
)

// Claims represents the authorization claims transmitted via a JWT.
// Role is informational for clients; permissions are re-resolved from the
// profile links on every request.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	Username     string `json:"username,omitempty"`
	Email        string `json:"email,omitempty"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	Role         string `json:"role,omitempty"`
	ProfileID    uint   `json:"profile_id,omitempty"`
}

func (c Claims) userID() uint {
	id, _ := strconv.ParseUint(c.Subject, 10, 64)
	return uint(id)
}

func GetUserClaims(usr user.User, role school.Role, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	var oriat int64
	if len(origIat) > 0 {
		oriat = origIat[0]
	} else {
		oriat = nownix
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    core.Conf.AppName,
			Subject:   strconv.FormatUint(uint64(usr.ID), 10),
			Audience:  "Shule",
			ExpiresAt: now.Add(core.Conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Username:     usr.Username,
		Email:        usr.Email,
		FirstName:    usr.FirstName,
		LastName:     usr.LastName,
		Role:         string(role.Kind),
		ProfileID:    role.ProfileID,
	}
}

func authenticate(ctx context.Context, uname, pwd string, usrSvc *user.Service, schoolSvc *school.Service) (*Claims, error) {
	usr, err := usrSvc.GetByUsernameOrEmail(ctx, uname)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return nil, errAuthenticationFailed
		}
		return nil, errors.Wrap(err, "finding user by username or email")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return nil, errAuthenticationFailed
	}
	if !usr.IsActive {
		return nil, errAccountDeactivated
	}
	usr, err = usrSvc.SetLastLogin(ctx, usr)
	if err != nil {
		return nil, errors.Wrap(err, "setting lastLogin")
	}
	role, err := school.ResolveRole(ctx, schoolSvc.DB(), usr)
	if err != nil {
		return nil, errors.Wrap(err, "resolving role")
	}
	return GetUserClaims(usr, role), nil
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(appJWTConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(appJWTConfig.SigningKey.([]byte))
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

// ParseToken validates a raw token string and returns its claims.
func ParseToken(raw string) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != appJWTConfig.SigningMethod {
			return nil, errors.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return appJWTConfig.SigningKey, nil
	})
	if err != nil || !token.Valid {
		return nil, errInvalidAuthToken
	}
	return claims, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(appJWTConfig.ContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// getContextPrincipal loads the authenticated account and re-resolves its
// role from the profile links; stale or tampered claim roles never stick.
func getContextPrincipal(ctx echo.Context, usrSvc *user.Service, schoolSvc *school.Service) (school.Principal, error) {
	if p, ok := ctx.Get(contextPrincipalKey).(school.Principal); ok {
		return p, nil
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return school.Principal{}, errors.Wrap(err, "getting context claims")
	}

	reqCtx := ctx.Request().Context()
	usr, err := usrSvc.GetByID(reqCtx, claims.userID())
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return school.Principal{}, errUnauthorized
		}
		return school.Principal{}, errors.Wrap(err, "finding user by ID")
	}
	if !usr.IsActive {
		return school.Principal{}, errAccountDeactivated
	}

	role, err := school.ResolveRole(reqCtx, schoolSvc.DB(), usr)
	if err != nil {
		return school.Principal{}, errors.Wrap(err, "resolving role")
	}

	p := school.Principal{Account: usr, Role: role}
	ctx.Set(contextPrincipalKey, p)
	return p, nil
}

func refreshToken(ctx echo.Context, usrSvc *user.Service, schoolSvc *school.Service) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}

	p, err := getContextPrincipal(ctx, usrSvc, schoolSvc)
	if err != nil {
		return "", errors.Wrap(err, "getting context principal")
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(core.Conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}

	newClaims := GetUserClaims(p.Account, p.Role, claims.OrigIssuedAt)
	token, err := GenerateToken(newClaims)
	return token, errors.Wrap(err, "generating token")
}
