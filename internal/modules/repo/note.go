package repo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/memodb-io/notespace/internal/modules/model"
	"gorm.io/gorm"
)

type NoteRepo interface {
	Create(ctx context.Context, n *model.Note) error
	Get(ctx context.Context, id uuid.UUID) (*model.Note, error)
	GetByPublicID(ctx context.Context, publicID uuid.UUID) (*model.Note, error)
	Update(ctx context.Context, n *model.Note, fields ...string) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListVisible(ctx context.Context, userID uuid.UUID) ([]model.NoteSummary, error)
	Search(ctx context.Context, userID uuid.UUID, query string, limit int) ([]model.NoteSummary, error)
}

type noteRepo struct{ db *gorm.DB }

func NewNoteRepo(db *gorm.DB) NoteRepo {
	return &noteRepo{db: db}
}

func (r *noteRepo) Create(ctx context.Context, n *model.Note) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *noteRepo) Get(ctx context.Context, id uuid.UUID) (*model.Note, error) {
	var n model.Note
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("id = ?", id).
		First(&n).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *noteRepo) GetByPublicID(ctx context.Context, publicID uuid.UUID) (*model.Note, error) {
	var n model.Note
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("public_id = ?", publicID).
		First(&n).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Update writes only the named columns; author_id, project_id and public_id are never listed by callers.
func (r *noteRepo) Update(ctx context.Context, n *model.Note, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(n).Select(fields).Updates(n).Error
}

func (r *noteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Note{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type noteSummaryRow struct {
	ID        uuid.UUID
	Title     string
	CreatedAt time.Time
}

// visibleTo restricts q to notes in projects the user belongs to plus the user's own
// project-less notes.
func (r *noteRepo) visibleTo(ctx context.Context, userID uuid.UUID) *gorm.DB {
	memberOf := r.db.Model(&model.Membership{}).Select("project_id").Where("user_id = ?", userID)
	return r.db.WithContext(ctx).Model(&model.Note{}).
		Distinct("notes.id", "notes.title", "notes.created_at").
		Where("(notes.project_id IN (?) OR (notes.project_id IS NULL AND notes.author_id = ?))", memberOf, userID)
}

func summaries(rows []noteSummaryRow) []model.NoteSummary {
	out := make([]model.NoteSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.NoteSummary{ID: row.ID, Title: row.Title})
	}
	return out
}

func (r *noteRepo) ListVisible(ctx context.Context, userID uuid.UUID) ([]model.NoteSummary, error) {
	var rows []noteSummaryRow
	err := r.visibleTo(ctx, userID).
		Order("notes.created_at DESC, notes.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return summaries(rows), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search matches title or content case-insensitively within the visible set.
func (r *noteRepo) Search(ctx context.Context, userID uuid.UUID, query string, limit int) ([]model.NoteSummary, error) {
	pattern := "%" + likeEscaper.Replace(query) + "%"
	q := r.visibleTo(ctx, userID).
		Where("(notes.title ILIKE ? OR notes.content ILIKE ?)", pattern, pattern).
		Order("notes.created_at DESC, notes.id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []noteSummaryRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return summaries(rows), nil
}
