package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"coursework_service/internal/ctxdata"
	"coursework_service/internal/model"
	"coursework_service/pkg/logging"
)

type claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// NewAuthMiddleware verifies the Bearer token and stores the caller's
// identity in the request context. Tokens carry the user id in `sub` and
// the role in `role`.
func NewAuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			header := r.Header.Get("Authorization")
			if header == "" {
				if logger, ok := logging.GetFromContext(ctx); ok {
					logger.Info(ctx, "no authorization header", zap.String("path", r.URL.Path))
				}
				writeUnauthorized(w)
				return
			}
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				writeUnauthorized(w)
				return
			}

			parsed := &claims{}
			_, err := jwt.ParseWithClaims(token, parsed, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil {
				if logger, ok := logging.GetFromContext(ctx); ok {
					logger.Info(ctx, "invalid token", zap.String("path", r.URL.Path), zap.Error(err))
				}
				writeUnauthorized(w)
				return
			}

			userID, err := uuid.Parse(parsed.Subject)
			if err != nil {
				writeUnauthorized(w)
				return
			}
			role := model.Role(parsed.Role)
			if !role.IsValid() {
				writeUnauthorized(w)
				return
			}

			ctx = ctxdata.WithUserID(ctx, userID)
			ctx = ctxdata.WithUserRole(ctx, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"message":"unauthorized"}`))
}
