package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/memodb-io/notespace/internal/config"
	"github.com/memodb-io/notespace/internal/modules/model"
	"github.com/memodb-io/notespace/internal/modules/repo"
	"go.uber.org/zap"
)

type NoteService interface {
	Create(ctx context.Context, actorID uuid.UUID, in CreateNoteInput) (*model.Note, error)
	Get(ctx context.Context, actorID, noteID uuid.UUID) (*model.Note, error)
	Update(ctx context.Context, actorID, noteID uuid.UUID, in UpdateNoteInput) (*model.Note, error)
	Delete(ctx context.Context, actorID, noteID uuid.UUID) error
	GetPublic(ctx context.Context, publicID uuid.UUID) (*model.Note, error)
	ListVisible(ctx context.Context, actorID uuid.UUID) ([]model.NoteSummary, error)
	Search(ctx context.Context, actorID uuid.UUID, query string, limit int) ([]model.NoteSummary, error)
}

type noteService struct {
	r           repo.NoteRepo
	memberships repo.MembershipRepo
	cache       VisibleNotesCache
	publisher   EventPublisher
	cfg         *config.Config
	log         *zap.Logger
}

func NewNoteService(r repo.NoteRepo, memberships repo.MembershipRepo, cache VisibleNotesCache, publisher EventPublisher, cfg *config.Config, log *zap.Logger) NoteService {
	return &noteService{
		r:           r,
		memberships: memberships,
		cache:       cache,
		publisher:   publisher,
		cfg:         cfg,
		log:         log,
	}
}

type CreateNoteInput struct {
	Title     string
	Content   *string
	ProjectID *uuid.UUID
	IsPublic  bool
}

func (s *noteService) Create(ctx context.Context, actorID uuid.UUID, in CreateNoteInput) (*model.Note, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if in.ProjectID != nil {
		if _, err := requireRole(ctx, s.memberships, actorID, *in.ProjectID, model.Role.CanWrite); err != nil {
			return nil, err
		}
	}

	n := &model.Note{
		Title:     title,
		Content:   in.Content,
		AuthorID:  actorID,
		ProjectID: in.ProjectID,
		IsPublic:  in.IsPublic,
	}
	if err := s.r.Create(ctx, n); err != nil {
		return nil, err
	}

	s.changed(ctx, n, ActionCreated)
	return n, nil
}

// visible applies the read rule: project notes to project members, project-less
// notes to their author.
func (s *noteService) visible(ctx context.Context, n *model.Note, actorID uuid.UUID) error {
	if n.ProjectID == nil {
		if n.AuthorID != actorID {
			return ErrForbidden
		}
		return nil
	}
	_, err := requireMember(ctx, s.memberships, actorID, *n.ProjectID)
	return err
}

func (s *noteService) Get(ctx context.Context, actorID, noteID uuid.UUID) (*model.Note, error) {
	n, err := s.r.Get(ctx, noteID)
	if err != nil {
		return nil, notFoundAs(err, ErrNoteNotFound)
	}
	if err := s.visible(ctx, n, actorID); err != nil {
		return nil, err
	}
	return n, nil
}

// UpdateNoteInput carries the only mutable note fields; author and project are fixed at creation.
type UpdateNoteInput struct {
	Title    *string
	Content  *string
	IsPublic *bool
}

func (s *noteService) Update(ctx context.Context, actorID, noteID uuid.UUID, in UpdateNoteInput) (*model.Note, error) {
	n, err := s.r.Get(ctx, noteID)
	if err != nil {
		return nil, notFoundAs(err, ErrNoteNotFound)
	}
	if err := s.visible(ctx, n, actorID); err != nil {
		return nil, err
	}
	if n.AuthorID != actorID {
		return nil, ErrForbidden
	}

	fields := make([]string, 0, 4)
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, ErrEmptyTitle
		}
		n.Title = title
		fields = append(fields, "title")
	}
	if in.Content != nil {
		n.Content = in.Content
		fields = append(fields, "content")
	}
	if in.IsPublic != nil {
		n.IsPublic = *in.IsPublic
		fields = append(fields, "is_public")
	}
	if len(fields) == 0 {
		return n, nil
	}
	n.UpdatedAt = time.Now()
	fields = append(fields, "updated_at")

	if err := s.r.Update(ctx, n, fields...); err != nil {
		return nil, err
	}

	s.changed(ctx, n, ActionUpdated)
	return n, nil
}

// Delete is allowed to the author, and to owners and admins of the note's project.
func (s *noteService) Delete(ctx context.Context, actorID, noteID uuid.UUID) error {
	n, err := s.r.Get(ctx, noteID)
	if err != nil {
		return notFoundAs(err, ErrNoteNotFound)
	}
	if err := s.visible(ctx, n, actorID); err != nil {
		return err
	}
	if n.AuthorID != actorID {
		if n.ProjectID == nil {
			return ErrForbidden
		}
		if _, err := requireRole(ctx, s.memberships, actorID, *n.ProjectID, model.Role.CanManageMembers); err != nil {
			return err
		}
	}

	if err := s.r.Delete(ctx, noteID); err != nil {
		return notFoundAs(err, ErrNoteNotFound)
	}

	s.changed(ctx, n, ActionDeleted)
	return nil
}

// GetPublic serves unauthenticated reads by public id. Private notes are reported
// as missing so their existence does not leak.
func (s *noteService) GetPublic(ctx context.Context, publicID uuid.UUID) (*model.Note, error) {
	n, err := s.r.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, notFoundAs(err, ErrNoteNotFound)
	}
	if !n.IsPublic {
		return nil, ErrNoteNotFound
	}
	return n, nil
}

func (s *noteService) ListVisible(ctx context.Context, actorID uuid.UUID) ([]model.NoteSummary, error) {
	return s.cache.Get(ctx, actorID)
}

func (s *noteService) Search(ctx context.Context, actorID uuid.UUID, query string, limit int) ([]model.NoteSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.NoteSummary{}, nil
	}
	return s.r.Search(ctx, actorID, query, limit)
}

// audience lists the users whose visible set contains n.
func (s *noteService) audience(ctx context.Context, n *model.Note) ([]uuid.UUID, error) {
	if n.ProjectID == nil {
		return []uuid.UUID{n.AuthorID}, nil
	}
	return s.memberships.ListUserIDs(ctx, *n.ProjectID)
}

// changed evicts the sidebars that list n before returning, then publishes the
// change so the worker repeats the eviction if this attempt failed.
func (s *noteService) changed(ctx context.Context, n *model.Note, action string) {
	users, err := s.audience(ctx, n)
	if err != nil {
		s.log.Sugar().Warnw("resolve note audience", "note_id", n.ID, "err", err)
		users = []uuid.UUID{n.AuthorID}
	}
	if err := s.cache.Invalidate(ctx, users...); err != nil {
		s.log.Sugar().Warnw("invalidate visible notes", "note_id", n.ID, "err", err)
	}
	if s.publisher == nil {
		return
	}
	ev := NoteChangedEvent{
		NoteID:    n.ID,
		AuthorID:  n.AuthorID,
		ProjectID: n.ProjectID,
		Action:    action,
	}
	if err := s.publisher.PublishJSON(ctx, s.cfg.RabbitMQ.Exchange.Events, RoutingNoteChanged, ev); err != nil {
		s.log.Sugar().Warnw("publish note event", "note_id", n.ID, "err", err)
	}
}
