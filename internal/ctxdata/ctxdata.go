package ctxdata

import (
	"context"

	"github.com/google/uuid"

	"coursework_service/internal/model"
)

type userIDKey struct{}
type userRoleKey struct{}

var (
	userIDKeyInstance   = userIDKey{}
	userRoleKeyInstance = userRoleKey{}
)

// WithUserID stores the verified user id supplied by the auth middleware.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKeyInstance, userID)
}

func UserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userIDKeyInstance).(uuid.UUID)
	return userID, ok
}

func WithUserRole(ctx context.Context, role model.Role) context.Context {
	return context.WithValue(ctx, userRoleKeyInstance, role)
}

func UserRole(ctx context.Context) (model.Role, bool) {
	role, ok := ctx.Value(userRoleKeyInstance).(model.Role)
	return role, ok
}
