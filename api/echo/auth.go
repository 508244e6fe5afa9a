package echoapi

import (
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/mrdaoud/tadrees/core"
	"github.com/mrdaoud/tadrees/core/student"
)

// Access roles. The teacher owns the whole dashboard; a parent only sees their
// own child.
const (
	RoleTeacher = "teacher"
	RoleParent  = "parent"
)

const authContextKey = "authToken"

const errParentNotRegistered = "هذا الرقم غير مسجل لدينا."

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	Role         string `json:"role"`
	StudentID    string `json:"student_id,omitempty"` // set for parents only
}

// newJWTConfig is the default JWT auth middleware config.
func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    authContextKey,
		Claims:        new(Claims),
	}
}

func newClaims(conf *core.Config, role, studentID string, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	var oriat int64
	if len(origIat) > 0 {
		oriat = origIat[0]
	} else {
		oriat = nownix
	}

	subject := role
	if studentID != "" {
		subject = studentID
	}
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   subject,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Role:         role,
		StudentID:    studentID,
	}
}

func GetTeacherClaims(conf *core.Config, origIat ...int64) *Claims {
	return newClaims(conf, RoleTeacher, "", origIat...)
}

func GetParentClaims(conf *core.Config, studentID string, origIat ...int64) *Claims {
	return newClaims(conf, RoleParent, studentID, origIat...)
}

// GenerateToken generates a signed JWT token string representing the Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(middleware.AlgorithmHS256)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(authContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func teacherMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.Role == RoleTeacher {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// ownStudentOrTeacherMiddleware scopes student detail routes: the teacher sees
// everyone, a parent only the student their token was issued for.
func ownStudentOrTeacherMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.Role == RoleTeacher || claims.StudentID == ctx.Param("id") {
				return next(ctx)
			}
			return errHttpNotFound
		}
	}
}

type authApi struct {
	conf       *core.Config
	svc        *student.Service
	keeper     *core.SecretKeeper
	validate   *validator.Validate
	translator ut.Translator
}

func registerAuthAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := authApi{
		conf:       deps.Conf,
		svc:        deps.StudentSvc,
		keeper:     deps.SecretKeeper,
		validate:   deps.Validate,
		translator: deps.Translator,
	}

	ag := g.Group("/auth")

	// un-authed endpoints
	// TODO: rate limit `/teacher` & `/parent`
	ag.POST("/teacher", api.teacherLogin)
	ag.POST("/parent", api.parentLogin)

	// authed endpoints
	ag.POST("/token-refresh", api.refreshToken, jwt)
	ag.PUT("/teacher-secret", api.rotateSecret, jwt, teacherMiddleware())
}

// Handlers

func (api *authApi) teacherLogin(ctx echo.Context) error {
	var data TeacherLoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TeacherLoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.keeper.Check(data.Password); err != nil {
		return errAuthenticationFailed
	}

	token, err := GenerateToken(api.conf, GetTeacherClaims(api.conf))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, Role: RoleTeacher})
}

func (api *authApi) parentLogin(ctx echo.Context) error {
	var data ParentLoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ParentLoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.GetByParentPhone(data.Phone)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return core.NewValidationError(errors.New(errParentNotRegistered))
		}
		return errors.Wrap(err, "finding student by parent phone")
	}

	token, err := GenerateToken(api.conf, GetParentClaims(api.conf, s.ID))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, Role: RoleParent, Student: &s})
}

func (api *authApi) refreshToken(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(api.conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return errRefreshExpired
	}

	refreshed := newClaims(api.conf, claims.Role, claims.StudentID, claims.OrigIssuedAt)
	token, err := GenerateToken(api.conf, refreshed)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, Role: claims.Role})
}

func (api *authApi) rotateSecret(ctx echo.Context) error {
	var data RotateSecretRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RotateSecretRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.keeper.Check(data.Current); err != nil {
		return errAuthenticationFailed
	}
	if err := api.keeper.Set(data.New); err != nil {
		return errors.Wrap(err, "setting teacher secret")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Teacher secret has been updated."})
}

type (
	TeacherLoginRequest struct {
		Password string `json:"password" validate:"required"`
	}

	ParentLoginRequest struct {
		Phone string `json:"phone" validate:"required"`
	}

	LoginResponse struct {
		Token   string           `json:"token"`
		Role    string           `json:"role"`
		Student *student.Student `json:"student,omitempty"`
	}

	RotateSecretRequest struct {
		Current string `json:"current" validate:"required"`
		New     string `json:"new" validate:"required,min=8"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)

func (tr *TeacherLoginRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(tr)
}

func (pr *ParentLoginRequest) Validate(validate *validator.Validate) error {
	pr.Phone = core.CleanString(pr.Phone)
	return validate.Struct(pr)
}

func (rr *RotateSecretRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(rr)
}
