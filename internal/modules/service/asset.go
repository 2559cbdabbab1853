package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"github.com/memodb-io/notespace/internal/config"
	"github.com/memodb-io/notespace/internal/infra/blob"
	"github.com/memodb-io/notespace/internal/modules/model"
	"github.com/memodb-io/notespace/internal/modules/repo"
	"github.com/memodb-io/notespace/internal/pkg/paging"
	"github.com/memodb-io/notespace/internal/pkg/utils/mime"
	"github.com/memodb-io/notespace/internal/pkg/utils/path"
	"go.uber.org/zap"
)

// ObjectStore is the subset of *blob.S3Deps the asset service uses.
type ObjectStore interface {
	UploadFormFile(ctx context.Context, key string, fh *multipart.FileHeader) (*blob.UploadedMeta, error)
	PresignGet(ctx context.Context, key string, expire time.Duration) (string, error)
	DeleteObject(ctx context.Context, key string) error
}

type AssetService interface {
	Upload(ctx context.Context, actorID, projectID uuid.UUID, in UploadAssetInput) (*model.Asset, error)
	List(ctx context.Context, actorID, projectID uuid.UUID, in ListAssetsInput) (*ListAssetsOutput, error)
	Get(ctx context.Context, actorID, projectID, assetID uuid.UUID) (*AssetWithURL, error)
	Delete(ctx context.Context, actorID, projectID, assetID uuid.UUID) error
}

type assetService struct {
	r           repo.AssetRepo
	memberships repo.MembershipRepo
	objects     ObjectStore
	cfg         *config.Config
	log         *zap.Logger
}

func NewAssetService(r repo.AssetRepo, memberships repo.MembershipRepo, objects ObjectStore, cfg *config.Config, log *zap.Logger) AssetService {
	return &assetService{
		r:           r,
		memberships: memberships,
		objects:     objects,
		cfg:         cfg,
		log:         log,
	}
}

type UploadAssetInput struct {
	File        *multipart.FileHeader
	Name        string
	AssetType   model.AssetType
	Description string
}

func (s *assetService) Upload(ctx context.Context, actorID, projectID uuid.UUID, in UploadAssetInput) (*model.Asset, error) {
	if in.File == nil {
		return nil, ErrMissingFile
	}
	if err := path.ValidateFilename(in.File.Filename); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilename, err)
	}
	if in.AssetType != "" && !in.AssetType.Valid() {
		return nil, ErrInvalidAssetType
	}
	if _, err := requireRole(ctx, s.memberships, actorID, projectID, model.Role.CanWrite); err != nil {
		return nil, err
	}

	key := path.StorageKey(&actorID, in.File.Filename)
	meta, err := s.objects.UploadFormFile(ctx, key, in.File)
	if err != nil {
		return nil, fmt.Errorf("upload asset: %w", err)
	}

	assetType := in.AssetType
	if assetType == "" {
		assetType = model.AssetType(mime.AssetKind(meta.MIME))
	}

	uploader := actorID
	a := &model.Asset{
		ProjectID:   projectID,
		UploaderID:  &uploader,
		Name:        in.Name,
		Bucket:      meta.Bucket,
		S3Key:       meta.Key,
		AssetType:   assetType,
		Description: in.Description,
		FileMeta: map[string]interface{}{
			model.FileMetaMIME:   meta.MIME,
			model.FileMetaSize:   meta.SizeB,
			model.FileMetaETag:   meta.ETag,
			model.FileMetaSHA256: meta.SHA256,
		},
	}
	if err := s.r.Create(ctx, a); err != nil {
		if delErr := s.objects.DeleteObject(ctx, meta.Key); delErr != nil {
			s.log.Sugar().Warnw("remove orphaned object", "key", meta.Key, "err", delErr)
		}
		return nil, fmt.Errorf("create asset record: %w", err)
	}

	if a.Name == "" {
		a.Name = path.TruncateName(path.BaseName(a.S3Key), path.MaxFilenameLength)
		if err := s.r.SetNameIfEmpty(ctx, a.ID, a.Name); err != nil {
			return nil, fmt.Errorf("backfill asset name: %w", err)
		}
	}
	return a, nil
}

type ListAssetsInput struct {
	Limit  int
	Cursor string
}

type ListAssetsOutput struct {
	Items      []*model.Asset `json:"items"`
	NextCursor string         `json:"next_cursor,omitempty"`
	HasMore    bool           `json:"has_more"`
}

func (s *assetService) List(ctx context.Context, actorID, projectID uuid.UUID, in ListAssetsInput) (*ListAssetsOutput, error) {
	if _, err := requireMember(ctx, s.memberships, actorID, projectID); err != nil {
		return nil, err
	}
	if in.Limit <= 0 {
		in.Limit = defaultPageSize
	}
	var (
		afterT  time.Time
		afterID uuid.UUID
		err     error
	)
	if in.Cursor != "" {
		afterT, afterID, err = paging.DecodeCursor(in.Cursor)
		if err != nil {
			return nil, err
		}
	}

	items, err := s.r.ListByProject(ctx, projectID, afterT, afterID, in.Limit+1)
	if err != nil {
		return nil, err
	}
	out := &ListAssetsOutput{Items: items}
	if len(items) > in.Limit {
		out.HasMore = true
		out.Items = items[:in.Limit]
		last := out.Items[len(out.Items)-1]
		out.NextCursor = paging.EncodeCursor(last.UploadedAt, last.ID)
	}
	return out, nil
}

type AssetWithURL struct {
	*model.Asset
	DownloadURL string `json:"download_url"`
}

func (s *assetService) Get(ctx context.Context, actorID, projectID, assetID uuid.UUID) (*AssetWithURL, error) {
	if _, err := requireMember(ctx, s.memberships, actorID, projectID); err != nil {
		return nil, err
	}
	a, err := s.r.Get(ctx, projectID, assetID)
	if err != nil {
		return nil, notFoundAs(err, ErrAssetNotFound)
	}
	url, err := s.objects.PresignGet(ctx, a.S3Key, time.Duration(s.cfg.S3.PresignExpireSec)*time.Second)
	if err != nil {
		return nil, fmt.Errorf("presign asset: %w", err)
	}
	return &AssetWithURL{Asset: a, DownloadURL: url}, nil
}

// Delete is allowed to the uploader and to project owners and admins. The stored
// object is removed after the row; a failure there only leaves an unreferenced object.
func (s *assetService) Delete(ctx context.Context, actorID, projectID, assetID uuid.UUID) error {
	m, err := requireMember(ctx, s.memberships, actorID, projectID)
	if err != nil {
		return err
	}
	a, err := s.r.Get(ctx, projectID, assetID)
	if err != nil {
		return notFoundAs(err, ErrAssetNotFound)
	}
	isUploader := a.UploaderID != nil && *a.UploaderID == actorID
	if !isUploader && !m.Role.CanManageMembers() {
		return ErrForbidden
	}

	if err := s.r.Delete(ctx, projectID, assetID); err != nil {
		return notFoundAs(err, ErrAssetNotFound)
	}
	if err := s.objects.DeleteObject(ctx, a.S3Key); err != nil {
		s.log.Sugar().Warnw("delete asset object", "key", a.S3Key, "err", err)
	}
	return nil
}
