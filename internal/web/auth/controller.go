package auth

import (
	"net/http"
	"strings"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/Laisky/amc-site/internal/web/content/model"
	"github.com/Laisky/amc-site/library/jwt"
)

const (
	// CookieName holds the session token.
	CookieName = "token"
	// ctxKeyClaims stores the parsed session on the gin context.
	ctxKeyClaims = "auth_claims"
)

// LoginRequest is the body of `POST /login`.
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Session describes the logged-in admin.
type Session struct {
	UID       string `json:"uid"`
	Email     string `json:"email"`
	ExpiresAt int64  `json:"expires_at"`
}

func sessionOf(claims *jwt.SessionClaims) *Session {
	s := &Session{UID: claims.Subject, Email: claims.Email}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Unix()
	}

	return s
}

// Controller serves login routes and guards admin routes.
type Controller struct {
	svc          *Service
	secureCookie bool
}

// NewController creates the controller. secureCookie marks the cookie https-only.
func NewController(svc *Service, secureCookie bool) *Controller {
	return &Controller{svc: svc, secureCookie: secureCookie}
}

// Register mounts `POST /login`, `POST /logout` and `GET /session`.
func (c *Controller) Register(g gin.IRouter) {
	g.POST("/login", c.Login)
	g.POST("/logout", c.Logout)
	g.GET("/session", c.Session)
}

// Login exchanges credentials for the session cookie.
func (c *Controller) Login(ctx *gin.Context) {
	logger := gmw.GetLogger(ctx).Named("admin_login")

	req := new(LoginRequest)
	if err := ctx.ShouldBind(req); err != nil {
		ctx.JSON(http.StatusBadRequest, model.Fail[any](ErrLoginFailed))
		return
	}

	token, claims, err := c.svc.Login(ctx.Request.Context(), ctx.ClientIP(), req.Email, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, ErrTooManyAttempts):
		ctx.JSON(http.StatusTooManyRequests, model.Fail[any](ErrTooManyAttempts))
		return
	case errors.Is(err, ErrLoginDisabled):
		ctx.JSON(http.StatusServiceUnavailable, model.Fail[any](ErrLoginDisabled))
		return
	case errors.Is(err, ErrLoginFailed):
		ctx.JSON(http.StatusUnauthorized, model.Fail[any](ErrLoginFailed))
		return
	default:
		logger.Error("login", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, model.Fail[any](ErrLoginFailed))
		return
	}

	c.setCookie(ctx, token, int(c.svc.TTL().Seconds()))
	ctx.JSON(http.StatusOK, model.OK(sessionOf(claims)))
}

// Logout clears the session cookie.
func (c *Controller) Logout(ctx *gin.Context) {
	c.setCookie(ctx, "", -1)
	ctx.JSON(http.StatusOK, model.OK[any](nil))
}

// Session returns the current admin or 401.
func (c *Controller) Session(ctx *gin.Context) {
	claims, err := c.parse(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, model.Fail[any](ErrUnauthorized))
		return
	}

	ctx.JSON(http.StatusOK, model.OK(sessionOf(claims)))
}

// Guard rejects requests without a valid admin session.
func (c *Controller) Guard() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		claims, err := c.parse(ctx)
		if err != nil {
			if !errors.Is(err, ErrUnauthorized) {
				gmw.GetLogger(ctx).Warn("authorize admin request", zap.Error(err))
				ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, model.Fail[any](errors.New("admin check unavailable")))
				return
			}

			gmw.GetLogger(ctx).Debug("reject admin request", zap.Error(err))
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, model.Fail[any](ErrUnauthorized))
			return
		}

		ctx.Set(ctxKeyClaims, claims)
		ctx.Next()
	}
}

// HasSession reports whether the request carries a valid admin session.
func (c *Controller) HasSession(ctx *gin.Context) bool {
	_, err := c.parse(ctx)
	return err == nil
}

// ClaimsFromContext returns the session set by Guard.
func ClaimsFromContext(ctx *gin.Context) (*jwt.SessionClaims, bool) {
	v, ok := ctx.Get(ctxKeyClaims)
	if !ok {
		return nil, false
	}

	claims, ok := v.(*jwt.SessionClaims)
	return claims, ok
}

// parse reads the cookie, then a bearer Authorization header, and
// re-checks the allowlist.
func (c *Controller) parse(ctx *gin.Context) (*jwt.SessionClaims, error) {
	token, err := ctx.Cookie(CookieName)
	if err != nil || token == "" {
		header := ctx.GetHeader("Authorization")
		if after, ok := strings.CutPrefix(header, "Bearer "); ok {
			token = strings.TrimSpace(after)
		}
	}

	return c.svc.Authorize(ctx.Request.Context(), token)
}

func (c *Controller) setCookie(ctx *gin.Context, token string, maxAge int) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(CookieName, token, maxAge, "/", "", c.secureCookie, true)
}
