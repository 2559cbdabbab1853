package service

import (
	"context"

	"github.com/google/uuid"
)

// Routing keys on the events and mail exchanges.
const (
	RoutingNoteChanged       = "note.changed"
	RoutingMembershipChanged = "membership.changed"
	RoutingMailVerification  = "mail.verification"
)

// EventPublisher is satisfied by *mq.Publisher.
type EventPublisher interface {
	PublishJSON(ctx context.Context, exchange, routingKey string, body any) error
}

// NoteChangedEvent tells workers that the visible-notes lists of every member of
// ProjectID, or of AuthorID for project-less notes, may be stale.
type NoteChangedEvent struct {
	NoteID    uuid.UUID  `json:"note_id"`
	AuthorID  uuid.UUID  `json:"author_id"`
	ProjectID *uuid.UUID `json:"project_id,omitempty"`
	Action    string     `json:"action"`
}

type MembershipChangedEvent struct {
	ProjectID uuid.UUID `json:"project_id"`
	UserID    uuid.UUID `json:"user_id"`
	Role      string    `json:"role,omitempty"`
	Action    string    `json:"action"`
}

// VerificationMail is consumed by the external mailer.
type VerificationMail struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)
