package repo

import (
	"errors"

	"github.com/memodb-io/notespace/internal/infra/db"
	"github.com/memodb-io/notespace/internal/modules/model"
)

// Unique index conflicts surfaced by the repositories.
var (
	ErrUsernameExists   = errors.New("username already exists")
	ErrEmailExists      = errors.New("email already exists")
	ErrMembershipExists = errors.New("membership already exists")
	ErrOwnerExists      = errors.New("project already has an owner")
)

const (
	usernameIndexName = "ux_users_username_lower"
	emailIndexName    = "ux_users_email_lower"
)

// translateUnique maps unique violations on known indexes to sentinel errors and
// returns every other error unchanged.
func translateUnique(err error) error {
	name, ok := db.UniqueViolation(err)
	if !ok {
		return err
	}
	switch name {
	case model.OwnerIndexName:
		return ErrOwnerExists
	case model.MemberPairIndexName:
		return ErrMembershipExists
	case usernameIndexName:
		return ErrUsernameExists
	case emailIndexName:
		return ErrEmailExists
	}
	return err
}
