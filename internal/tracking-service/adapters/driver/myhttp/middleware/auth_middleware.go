package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"bus-fleet/internal/tracking-service/adapters/driver/myhttp/handlers"

	"github.com/golang-jwt/jwt"
)

type AuthMiddleware struct {
	accessSecret string
}

func NewAuthMiddleware(accessSecret string) *AuthMiddleware {
	return &AuthMiddleware{
		accessSecret: accessSecret,
	}
}

func (am *AuthMiddleware) Wrap(next http.Handler) http.Handler {
	return am.wrapRole(next, "")
}

// WrapStaff additionally requires the STAFF role. Used for destructive
// operations like retention cleanup.
func (am *AuthMiddleware) WrapStaff(next http.Handler) http.Handler {
	return am.wrapRole(next, "STAFF")
}

func (am *AuthMiddleware) wrapRole(next http.Handler, requiredRole string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := r.Header.Get("Authorization")
		if tokenString == "" {
			handlers.JsonError(w, http.StatusUnauthorized, fmt.Errorf("empty JWT-Token"))
			return
		}
		tokenString = strings.TrimPrefix(tokenString, "Bearer ")
		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			return []byte(am.accessSecret), nil
		})
		if err != nil {
			handlers.JsonError(w, http.StatusUnauthorized, fmt.Errorf("failed to parse JWT-Token"))
			return
		}

		if !token.Valid {
			handlers.JsonError(w, http.StatusUnauthorized, fmt.Errorf("invalid JWT-Token"))
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			handlers.JsonError(w, http.StatusUnauthorized, fmt.Errorf("invalid claims"))
			return
		}

		userId, ok := claims["user_id"].(string)
		if !ok {
			handlers.JsonError(w, http.StatusUnauthorized, fmt.Errorf("user not found in token"))
			return
		}

		role, ok := claims["role"].(string)
		if !ok {
			handlers.JsonError(w, http.StatusUnauthorized, fmt.Errorf("role not found in token"))
			return
		}

		if requiredRole != "" && role != requiredRole {
			handlers.JsonError(w, http.StatusForbidden, fmt.Errorf("insufficient role for this operation"))
			return
		}

		r.Header.Set("X-UserId", userId)
		r.Header.Set("X-Role", role)

		next.ServeHTTP(w, r)
	})
}
