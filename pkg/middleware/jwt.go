package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gtemgoua/property-manager-app/pkg/logger"
	"github.com/gtemgoua/property-manager-app/pkg/response"
)

var (
	ErrInvalidToken = errors.New("invalid token")
)

// Context keys for the authenticated operator
const (
	ContextKeyUserID = "user_id"
	ContextKeyEmail  = "email"
	ContextKeyRole   = "role"
)

// Operator roles
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleViewer  = "viewer"
)

// JWTConfig holds configuration for JWT middleware
type JWTConfig struct {
	// Secret is the HMAC key tokens are signed with
	Secret string
	// Issuer, when set, must match the iss claim
	Issuer string
	// SkipPaths are exact paths that bypass validation
	SkipPaths []string
}

func (c *JWTConfig) skip(path string) bool {
	for _, p := range c.SkipPaths {
		if p == path {
			return true
		}
	}
	return false
}

// JWTMiddleware validates bearer tokens and stores the operator in the gin context
func JWTMiddleware(config *JWTConfig) gin.HandlerFunc {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(config.Issuer))
	}
	parser := jwt.NewParser(opts...)

	return func(c *gin.Context) {
		if config.skip(c.Request.URL.Path) || c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("MISSING_TOKEN", "Authorization header is required"))
			return
		}

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("INVALID_TOKEN", "Invalid authorization header format"))
			return
		}
		tokenString := strings.TrimSpace(authHeader[len(bearerPrefix):])
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("INVALID_TOKEN", "Token is empty"))
			return
		}

		claims := jwt.MapClaims{}
		token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return []byte(config.Secret), nil
		})
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("TOKEN_EXPIRED", "Access token has expired"))
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("INVALID_TOKEN", "Invalid access token"))
			return
		}
		if !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("INVALID_TOKEN", "Invalid access token"))
			return
		}

		// user_id is preferred, sub is accepted for tokens minted by generic identity providers
		userID, _ := claims["user_id"].(string)
		if userID == "" {
			userID, _ = claims["sub"].(string)
		}
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("INVALID_TOKEN", "Missing user_id in token"))
			return
		}
		email, _ := claims["email"].(string)
		role, _ := claims["role"].(string)

		c.Set(ContextKeyUserID, userID)
		c.Set(ContextKeyEmail, email)
		c.Set(ContextKeyRole, role)
		c.Request = c.Request.WithContext(logger.ContextWithActor(c.Request.Context(), userID))

		c.Next()
	}
}

// RequireRole rejects requests whose operator role is not one of roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetRole(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Unauthorized("User not authenticated"))
			return
		}
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, response.Forbidden("Insufficient permissions"))
	}
}

// RequireRoleForWrites lets reads through and applies RequireRole to every other method
func RequireRoleForWrites(roles ...string) gin.HandlerFunc {
	guard := RequireRole(roles...)
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
		default:
			guard(c)
		}
	}
}

// GetUserID extracts user ID from gin context
func GetUserID(c *gin.Context) (string, bool) {
	return getString(c, ContextKeyUserID)
}

// GetEmail extracts email from gin context
func GetEmail(c *gin.Context) (string, bool) {
	return getString(c, ContextKeyEmail)
}

// GetRole extracts role from gin context
func GetRole(c *gin.Context) (string, bool) {
	return getString(c, ContextKeyRole)
}

func getString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
