package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/memodb-io/notespace/internal/modules/model"
	"github.com/memodb-io/notespace/internal/modules/serializer"
	"github.com/memodb-io/notespace/internal/modules/service"
	"github.com/memodb-io/notespace/internal/pkg/paging"
)

// currentUser returns the user set by middleware.SessionAuth.
func currentUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get("user")
	if !ok {
		return nil, false
	}
	u, ok := v.(*model.User)
	return u, ok && u != nil
}

func mustUser(c *gin.Context) (*model.User, bool) {
	u, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
	}
	return u, ok
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid "+name, err))
		return uuid.Nil, false
	}
	return id, true
}

var (
	badRequestErrs = []error{
		service.ErrInvalidRole,
		service.ErrInvalidStatus,
		service.ErrInvalidAssetType,
		service.ErrEmptyTitle,
		service.ErrMissingFile,
		service.ErrInvalidFilename,
		service.ErrInvalidCaptcha,
		service.ErrInvalidEmailCode,
		service.ErrPasswordTooShort,
		service.ErrInvalidRegistration,
		service.ErrNotAMember,
		paging.ErrInvalidCursor,
	}
	conflictErrs = []error{
		service.ErrMultipleOwners,
		service.ErrOrphanedProject,
		service.ErrDuplicateMembership,
		service.ErrPersonalSpace,
		service.ErrUsernameTaken,
		service.ErrEmailTaken,
	}
	notFoundErrs = []error{
		service.ErrProjectNotFound,
		service.ErrMembershipNotFound,
		service.ErrNoteNotFound,
		service.ErrAssetNotFound,
		service.ErrUserNotFound,
	}
)

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// respondErr maps service errors to statuses; anything unknown is a 500.
func respondErr(c *gin.Context, err error) {
	switch {
	case isAny(err, badRequestErrs):
		c.JSON(http.StatusBadRequest, serializer.ParamErr(err.Error(), nil))
	case isAny(err, conflictErrs):
		c.JSON(http.StatusConflict, serializer.ConflictErr(err.Error()))
	case isAny(err, notFoundErrs):
		c.JSON(http.StatusNotFound, serializer.NotFoundErr(err.Error()))
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrInactiveAccount):
		c.JSON(http.StatusForbidden, serializer.ForbiddenErr(err.Error()))
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(err.Error()))
	case errors.Is(err, service.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, serializer.TooManyErr(err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
	}
}
