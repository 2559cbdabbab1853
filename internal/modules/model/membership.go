package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// Roles lists every role, highest privilege first.
var Roles = []Role{RoleOwner, RoleAdmin, RoleEditor, RoleViewer}

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// CanManageMembers is true for roles allowed to add, re-role or remove collaborators.
func (r Role) CanManageMembers() bool {
	return r == RoleOwner || r == RoleAdmin
}

// CanWrite is true for roles allowed to create notes and upload assets.
func (r Role) CanWrite() bool {
	return r == RoleOwner || r == RoleAdmin || r == RoleEditor
}

// OwnerIndexName is the partial unique index that keeps a single owner per project.
const OwnerIndexName = "ux_memberships_single_owner"

// OwnerIndexDDL creates OwnerIndexName; AutoMigrate cannot express partial indexes.
const OwnerIndexDDL = "CREATE UNIQUE INDEX IF NOT EXISTS " + OwnerIndexName +
	" ON memberships (project_id) WHERE role = 'owner'"

// MemberPairIndexName keeps one membership per (user, project).
const MemberPairIndexName = "ux_memberships_user_project"

type Membership struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_memberships_user_project,priority:1" json:"user_id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:ux_memberships_user_project,priority:2" json:"project_id"`
	Role      Role      `gorm:"type:varchar(10);not null;default:viewer;index" json:"role"`
	JoinedAt  time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"joined_at"`

	// Membership <-> User
	User *User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"user,omitempty"`

	// Membership <-> Project
	Project *Project `gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (Membership) TableName() string { return "memberships" }
