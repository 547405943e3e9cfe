package note

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/revisehub/revisehub/core"
)

var (
	// errors
	ErrNotFound             = errors.New("note not found")
	ErrTitleAndFileRequired = errors.New("Title and file are required")
	ErrUnsupportedFileType  = errors.New("unsupported file type")

	allowedExts = map[string]struct{}{
		".pdf": {}, ".doc": {}, ".docx": {}, ".txt": {},
		".jpg": {}, ".jpeg": {}, ".png": {},
	}

	NowFunc = time.Now // mockable
)

const weekBuckets = 4

type (
	Repository interface {
		CreateNote(ctx context.Context, n Note) (Note, error)
		// QueryNotes returns the owner's notes sorted by most-recently-updated
		// first, excluding soft-deleted ones unless includeDeleted.
		QueryNotes(ctx context.Context, userID int64, includeDeleted bool) ([]Note, error)
		// GetNote filters by id AND owner in one lookup.
		GetNote(ctx context.Context, id, userID int64) (Note, error)
		UpdateNote(ctx context.Context, n Note) (Note, error)
	}

	Service interface {
		Create(ctx context.Context, userID int64, nn NewNote) (Note, error)
		Query(ctx context.Context, userID int64, includeDeleted bool) ([]Note, error)
		Update(ctx context.Context, id, userID int64, un UpdateNote) (Note, error)
		// Delete soft-deletes; the backing file is retained for now.
		Delete(ctx context.Context, id, userID int64) error
		MonthlyStats(ctx context.Context, userID int64) (MonthlyStats, error)
		// WeeklyCounts reports note-upload counts for 4 trailing 7-day
		// windows, newest first.
		WeeklyCounts(ctx context.Context, userID int64) ([]int, error)
	}

	service struct {
		repo    Repository
		storage core.FileStorage
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, storage core.FileStorage) Service {
	return &service{
		repo:    repo,
		storage: storage,
	}
}

func (svc *service) Create(ctx context.Context, userID int64, nn NewNote) (Note, error) {
	ext := strings.ToLower(filepath.Ext(nn.FileName))
	if _, ok := allowedExts[ext]; !ok {
		return Note{}, core.NewValidationError(ErrUnsupportedFileType, core.FieldError{
			Field: "file", Error: ErrUnsupportedFileType.Error(),
		})
	}

	// the storage write must complete before the record referencing it is committed
	key := fmt.Sprintf("%d-%s%s", NowFunc().UnixMilli(), uuid.New(), ext)
	if err := svc.storage.Save(ctx, key, nn.ContentType, nn.File); err != nil {
		return Note{}, errors.Wrap(err, "storing note file")
	}

	now := time.Now().UTC()
	n := Note{
		UserID:      userID,
		Title:       nn.Title,
		Description: nn.Description,
		Category:    nn.Category,
		FileKey:     key,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	n, err := svc.repo.CreateNote(ctx, n)
	if err != nil {
		return Note{}, err
	}
	n.FileURL = svc.storage.URL(n.FileKey)
	return n, nil
}

func (svc *service) Query(ctx context.Context, userID int64, includeDeleted bool) ([]Note, error) {
	notes, err := svc.repo.QueryNotes(ctx, userID, includeDeleted)
	if err != nil {
		return nil, err
	}
	for i := range notes {
		notes[i].FileURL = svc.storage.URL(notes[i].FileKey)
	}
	return notes, nil
}

func (svc *service) Update(ctx context.Context, id, userID int64, un UpdateNote) (Note, error) {
	n, err := svc.repo.GetNote(ctx, id, userID)
	if err != nil {
		return Note{}, err
	}

	if un.Title != nil {
		n.Title = *un.Title
	}
	if un.Description != nil {
		n.Description = *un.Description
	}
	if un.Category != nil {
		n.Category = *un.Category
	}
	if un.Favorite != nil {
		n.Favorite = *un.Favorite
	}
	n.UpdatedAt = time.Now().UTC()

	if n, err = svc.repo.UpdateNote(ctx, n); err != nil {
		return Note{}, err
	}
	n.FileURL = svc.storage.URL(n.FileKey)
	return n, nil
}

func (svc *service) Delete(ctx context.Context, id, userID int64) error {
	n, err := svc.repo.GetNote(ctx, id, userID)
	if err != nil {
		return err
	}
	n.IsDeleted = true
	n.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateNote(ctx, n)
	return err
}

func (svc *service) MonthlyStats(ctx context.Context, userID int64) (MonthlyStats, error) {
	notes, err := svc.repo.QueryNotes(ctx, userID, true /* includeDeleted */)
	if err != nil {
		return MonthlyStats{}, err
	}

	now := NowFunc()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	prevMonthStart := monthStart.AddDate(0, -1, 0)

	var stats MonthlyStats
	for _, n := range notes {
		created := n.CreatedAt.In(now.Location())
		switch {
		case !created.Before(monthStart) && created.Before(now):
			stats.ThisMonth++
		case !created.Before(prevMonthStart) && created.Before(monthStart):
			stats.PrevMonth++
		}
	}
	return stats, nil
}

func (svc *service) WeeklyCounts(ctx context.Context, userID int64) ([]int, error) {
	notes, err := svc.repo.QueryNotes(ctx, userID, true /* includeDeleted */)
	if err != nil {
		return nil, err
	}

	now := NowFunc()
	counts := make([]int, weekBuckets)
	for _, n := range notes {
		counts[WeekBucket(now, n.CreatedAt)]++
	}
	return counts, nil
}

// WeekBucket maps a timestamp to one of 4 trailing 7-day windows,
// index 0 being the most recent. The bucket is floor(age/7d) clamped to
// [0,3]; a timestamp exactly 7 days old lands in bucket 1.
func WeekBucket(now, t time.Time) int {
	age := now.Sub(t)
	if age < 0 {
		return 0
	}
	i := int(age / (7 * 24 * time.Hour))
	if i >= weekBuckets {
		return weekBuckets - 1
	}
	return i
}
