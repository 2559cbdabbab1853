package service

import "errors"

// Service layer errors; handlers map them to HTTP statuses with errors.Is.
var (
	// Membership invariants
	ErrMultipleOwners      = errors.New("a project can only have one owner")
	ErrOrphanedProject     = errors.New("cannot remove the only project owner; make another member the owner first")
	ErrDuplicateMembership = errors.New("user is already a member of this project")
	ErrInvalidRole         = errors.New("invalid membership role")
	ErrNotAMember          = errors.New("target user is not a member of this project")
	ErrPersonalSpace       = errors.New("a personal space cannot be transferred or deleted")

	// Lookups
	ErrProjectNotFound    = errors.New("project not found")
	ErrMembershipNotFound = errors.New("membership not found")
	ErrNoteNotFound       = errors.New("note not found")
	ErrAssetNotFound      = errors.New("asset not found")
	ErrUserNotFound       = errors.New("user not found")

	// Access
	ErrForbidden = errors.New("you do not have permission to access this resource")

	// Input
	ErrInvalidStatus    = errors.New("invalid project status")
	ErrInvalidAssetType = errors.New("invalid asset type")
	ErrEmptyTitle       = errors.New("title is required")
	ErrMissingFile      = errors.New("file is required")
	ErrInvalidFilename  = errors.New("invalid file name")

	// Accounts
	ErrUsernameTaken       = errors.New("username is already taken")
	ErrEmailTaken          = errors.New("email is already registered")
	ErrInvalidCaptcha      = errors.New("captcha answer is incorrect")
	ErrInvalidEmailCode    = errors.New("email verification code is incorrect or expired")
	ErrPasswordTooShort    = errors.New("password is too short")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrInactiveAccount     = errors.New("account is inactive")
	ErrRateLimited         = errors.New("too many requests from this network, try again later")
	ErrUnauthenticated     = errors.New("authentication required")
	ErrInvalidRegistration = errors.New("invalid registration data")
)
