package service

import (
	"context"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"coursework_service/internal/ctxdata"
	"coursework_service/internal/errdefs"
	"coursework_service/internal/model"
	"coursework_service/pkg/logging"
)

// identity returns the verified {userId, role} pair the auth middleware
// stored in the context.
func identity(ctx context.Context) (uuid.UUID, model.Role, error) {
	userID, ok := ctxdata.UserID(ctx)
	if !ok {
		return uuid.Nil, "", errdefs.ErrAuthentication
	}
	role, ok := ctxdata.UserRole(ctx)
	if !ok || !role.IsValid() {
		return uuid.Nil, "", errdefs.ErrAuthentication
	}
	return userID, role, nil
}

// requireTeacher admits only the course's owning teacher.
func requireTeacher(ctx context.Context, course *model.Course) error {
	userID, role, err := identity(ctx)
	if err != nil {
		return err
	}
	if role != model.RoleTeacher || course.TeacherID != userID {
		return errdefs.ErrPermissionDenied
	}
	return nil
}

// requireMember admits the owning teacher or an enrolled student.
func requireMember(ctx context.Context, courseRepo CourseRepository, course *model.Course) error {
	userID, role, err := identity(ctx)
	if err != nil {
		return err
	}
	if role == model.RoleTeacher && course.TeacherID == userID {
		return nil
	}
	enrolled, err := courseRepo.IsEnrolled(ctx, course.ID, userID)
	if err != nil {
		return err
	}
	if !enrolled {
		return errdefs.ErrPermissionDenied
	}
	return nil
}

// blobKey builds a collision-free storage key that keeps the original
// extension: a v7 uuid (time-ordered, random-suffixed) plus the extension.
func blobKey(filename string) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String() + strings.ToLower(path.Ext(filename)), nil
}

// discardBlob removes a blob best-effort: cascade deletes must not fail
// because a file is already gone.
func discardBlob(ctx context.Context, blobs BlobStore, key string) {
	if err := blobs.Delete(ctx, key); err != nil {
		if logger, ok := logging.GetFromContext(ctx); ok {
			logger.Warn(ctx, "failed to delete blob", zap.String("key", key), zap.Error(err))
		}
	}
}
