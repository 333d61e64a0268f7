package middleware

import (
	"context"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kmehta-dev/drivehub/internal/config"
	"github.com/kmehta-dev/drivehub/internal/utils"
)

type contextKey string

const userIDKey contextKey = "userID"

var jwtSecret = config.Envs.JWTSecret

// UserID extracts the authenticated actor set by AuthMiddleware.
func UserID(r *http.Request) (uuid.UUID, bool) {
	id, ok := r.Context().Value(userIDKey).(uuid.UUID)
	return id, ok
}

func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		unauthorized := func() {
			utils.JSONResponse(w, http.StatusUnauthorized, utils.Payload{
				Success: false,
				Message: "Unauthorized",
			})
		}

		cookie, err := r.Cookie("token")
		if err != nil {
			unauthorized()
			return
		}

		token, err := jwt.Parse(cookie.Value, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			unauthorized()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			unauthorized()
			return
		}

		raw, ok := claims["userId"].(string)
		if !ok || raw == "" {
			unauthorized()
			return
		}
		userID, err := uuid.Parse(raw)
		if err != nil {
			unauthorized()
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
