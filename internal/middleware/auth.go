package middleware

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"bouquet-studio-backend/internal/config"
	"bouquet-studio-backend/internal/models"
)

const (
	UserIDKey      = "user_id"
	UserEmailKey   = "user_email"
	AccessTokenKey = "access_token"
)

// ErrorAuthRequired is the error code the UI reacts to by showing the
// sign-in dialog.
const ErrorAuthRequired = "auth_required"

var errNoToken = errors.New("missing authorization header")

type authError struct {
	message string
}

func (e *authError) Error() string { return e.message }

// AuthMiddleware requires a valid Supabase access token.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, token, err := authenticate(c, cfg.SupabaseJWTSecret)
		if err != nil {
			reject(c, err)
			return
		}
		setIdentity(c, claims, token)
		c.Next()
	}
}

// OptionalAuthMiddleware identifies the user when a token is sent and
// lets anonymous requests through. A token that is sent but invalid is
// still rejected.
func OptionalAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, token, err := authenticate(c, cfg.SupabaseJWTSecret)
		if errors.Is(err, errNoToken) {
			c.Next()
			return
		}
		if err != nil {
			reject(c, err)
			return
		}
		setIdentity(c, claims, token)
		c.Next()
	}
}

func reject(c *gin.Context, err error) {
	authRejections.WithLabelValues(rejectionReason(err)).Inc()
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
		Error:   ErrorAuthRequired,
		Message: err.Error(),
	})
}

func rejectionReason(err error) string {
	if errors.Is(err, errNoToken) {
		return "missing_token"
	}
	return "invalid_token"
}

func setIdentity(c *gin.Context, claims jwt.MapClaims, token string) {
	c.Set(UserIDKey, claims["sub"].(string))
	if email, ok := claims["email"].(string); ok {
		c.Set(UserEmailKey, email)
	}
	c.Set(AccessTokenKey, token)
}

func authenticate(c *gin.Context, secret string) (jwt.MapClaims, string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, "", errNoToken
	}

	// Extract token from "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, "", &authError{"invalid authorization header format"}
	}

	tokenString := strings.TrimSpace(parts[1])
	if tokenString == "" {
		return nil, "", &authError{"empty token"}
	}

	// Some clients URL-encode the token
	if decoded, err := url.QueryUnescape(tokenString); err == nil {
		tokenString = decoded
	}

	if len(strings.Split(tokenString, ".")) != 3 {
		return nil, "", &authError{"invalid token format"}
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if secret == "" {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, "", &authError{"token has expired"}
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid):
			return nil, "", &authError{"token signature is invalid"}
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, "", &authError{"token is malformed"}
		default:
			return nil, "", &authError{"invalid token: " + err.Error()}
		}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, "", &authError{"invalid token claims"}
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, "", &authError{"missing user id in token"}
	}

	return claims, tokenString, nil
}

// UserID returns the authenticated user id, or "" for anonymous requests.
func UserID(c *gin.Context) string {
	if v, ok := c.Get(UserIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
