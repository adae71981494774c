package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"digiwave-dashboard/internal/shared/apperror"
	"digiwave-dashboard/internal/shared/contextutil"
	"digiwave-dashboard/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Gin context keys set by AuthMiddleware.
const (
	KeyUserID      = "user_id"
	KeyEmployeeID  = "employee_id"
	KeyCompanyID   = "company_id"
	KeyRole        = "role"
	KeyAccessToken = "access_token"
)

var (
	ErrTokenNotFound = apperror.New(apperror.CodeUnauthorized, "Token not found", http.StatusUnauthorized)
	ErrInvalidToken  = apperror.New(apperror.CodeInvalidToken, "Invalid token", http.StatusUnauthorized)
	ErrTokenExpired  = apperror.New(apperror.CodeTokenExpired, "Token has expired", http.StatusUnauthorized)
)

// AuthMiddleware validates the dashboard's HS256 bearer token (or the
// access_token cookie) and exposes its claims. The raw token is kept so
// calls to the backend can be made on the user's behalf.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found {
			tokenString = ""
		}
		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}
		if tokenString == "" {
			abort(c, ErrTokenNotFound)
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abort(c, ErrTokenExpired)
				return
			}
			abort(c, ErrInvalidToken)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abort(c, ErrInvalidToken.WithMessage("Invalid token claims"))
			return
		}

		userID, _ := claims[KeyUserID].(string)
		if userID == "" {
			abort(c, ErrInvalidToken.WithMessage("User ID not found in token"))
			return
		}
		employeeID, _ := claims[KeyEmployeeID].(string)
		companyID, _ := claims[KeyCompanyID].(string)
		role, _ := claims[KeyRole].(string)

		c.Set(KeyUserID, userID)
		c.Set(KeyEmployeeID, employeeID)
		c.Set(KeyCompanyID, companyID)
		c.Set(KeyRole, role)
		c.Set(KeyAccessToken, tokenString)

		ctx := contextutil.WithUserID(c.Request.Context(), userID)
		ctx = contextutil.WithAccessToken(ctx, tokenString)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func abort(c *gin.Context, err *apperror.AppError) {
	abortWithDetails(c, err, nil)
}

func abortWithDetails(c *gin.Context, err *apperror.AppError, details any) {
	response.Error(c, err.HTTPStatus, err.Code, err.Message, details)
	c.Abort()
}
