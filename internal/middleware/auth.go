package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/servipro/marketplace-api/internal/model"
	"github.com/servipro/marketplace-api/internal/repository"
	"github.com/servipro/marketplace-api/pkg/auth"
	"github.com/servipro/marketplace-api/pkg/httputil"
)

const userContextKey = "current_user"

// AuthMiddleware validates bearer tokens and loads the authenticated user.
// Users are cached briefly so hot endpoints don't reload the row per request;
// a deactivation can thus lag by at most the cache TTL.
type AuthMiddleware struct {
	tokens auth.TokenService
	users  repository.UserRepository
	cache  *cache.Cache
}

func NewAuthMiddleware(tokens auth.TokenService, users repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
		users:  users,
		cache:  cache.New(30*time.Second, time.Minute),
	}
}

func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			m.abort(c, "missing authorization header")
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			m.abort(c, "malformed authorization header")
			return
		}

		claims, err := m.tokens.ValidateAccessToken(parts[1])
		if err != nil {
			m.abort(c, "invalid or expired token")
			return
		}

		user, err := m.loadUser(c, claims.UserID.String())
		if err != nil {
			m.abort(c, "account not found")
			return
		}
		if !user.IsActive {
			m.abort(c, "account is deactivated")
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// RequireRole gates a route group to one role. Runs after Authenticate.
func (m *AuthMiddleware) RequireRole(role model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || user.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, httputil.Response{
				Success: false,
				Error:   &httputil.Error{Code: http.StatusForbidden, Message: "insufficient role"},
			})
			return
		}
		c.Next()
	}
}

func (m *AuthMiddleware) loadUser(c *gin.Context, id string) (*model.User, error) {
	if cached, ok := m.cache.Get(id); ok {
		return cached.(*model.User), nil
	}

	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	user, err := m.users.Get(c.Request.Context(), userID)
	if err != nil {
		return nil, err
	}
	m.cache.Set(id, user, cache.DefaultExpiration)
	return user, nil
}

func (m *AuthMiddleware) abort(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, httputil.Response{
		Success: false,
		Error:   &httputil.Error{Code: http.StatusUnauthorized, Message: message},
	})
}

// CurrentUser returns the authenticated user set by Authenticate, or nil.
func CurrentUser(c *gin.Context) *model.User {
	value, exists := c.Get(userContextKey)
	if !exists {
		return nil
	}
	user, _ := value.(*model.User)
	return user
}
