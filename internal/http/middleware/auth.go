package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/skillsprint-backend/internal/platform/ctxutil"
	"github.com/yungbote/skillsprint-backend/internal/platform/logger"
)

const roleServiceRole = "service_role"

// Claims are the fields read from a Supabase access token.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type AuthMiddleware struct {
	log    *logger.Logger
	secret []byte
}

func NewAuthMiddleware(log *logger.Logger, jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{
		log:    log.With("middleware", "AuthMiddleware"),
		secret: []byte(jwtSecret),
	}
}

// VerifyToken checks an HS256 token and returns the caller it names. Service-role tokens
// may omit the subject.
func (am *AuthMiddleware) VerifyToken(tokenString string) (*ctxutil.RequestData, error) {
	if len(am.secret) == 0 {
		return nil, errors.New("auth secret not configured")
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return am.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !parsed.Valid {
		return nil, errors.New("invalid or expired token")
	}
	rd := &ctxutil.RequestData{Role: claims.Role}
	if claims.Subject != "" {
		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			return nil, fmt.Errorf("invalid user id in token: %w", err)
		}
		rd.UserID = userID
	}
	if rd.UserID == uuid.Nil && rd.Role != roleServiceRole {
		return nil, errors.New("token has no subject")
	}
	return rd, nil
}

// RequireAuth rejects requests without a valid token. With allowServiceRole, service-role
// tokens without a user are let through as well.
func (am *AuthMiddleware) RequireAuth(allowServiceRole bool) gin.HandlerFunc {
	return am.requireAuth(allowServiceRole, abortAuth)
}

// RequireFunctionAuth is RequireAuth for the function endpoints: service-role tokens are
// accepted and rejections use the flat {"error": "..."} body.
func (am *AuthMiddleware) RequireFunctionAuth() gin.HandlerFunc {
	return am.requireAuth(true, abortFunctionAuth)
}

type abortFunc func(c *gin.Context, status int, msg, code string)

func (am *AuthMiddleware) requireAuth(allowServiceRole bool, abort abortFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			abort(c, http.StatusUnauthorized, "missing or invalid token", "unauthorized")
			return
		}
		rd, err := am.VerifyToken(tokenString)
		if err != nil {
			am.log.Debug("Token rejected", "error", err)
			abort(c, http.StatusUnauthorized, err.Error(), "unauthorized")
			return
		}
		if rd.UserID == uuid.Nil && !allowServiceRole {
			abort(c, http.StatusForbidden, "forbidden", "forbidden")
			return
		}
		c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), rd))
		c.Next()
	}
}

func abortAuth(c *gin.Context, status int, msg, code string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{"message": msg, "code": code},
	})
}

func abortFunctionAuth(c *gin.Context, status int, msg, _ string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// EventSource cannot set headers, so the token may also come from ?token=.
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return strings.TrimSpace(c.Query("token"))
}
