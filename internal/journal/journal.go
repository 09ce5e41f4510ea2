// Package journal keeps an audit trail of the mutating actions operators
// perform through the console.
package journal

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/simp-lee/shopadmin/internal/domain"
	"github.com/simp-lee/shopadmin/internal/pkg"
)

// Allowed fields for sorting and filtering in List queries.
var (
	allowedSortFields   = []string{"id", "resource", "verb", "outcome", "operator", "created_at"}
	allowedFilterFields = []string{"resource", "verb", "outcome", "operator", "record_key", "message"}
)

const defaultSort = "created_at:desc"

// Recorder stores one activity entry.
type Recorder interface {
	Record(ctx context.Context, a *domain.Activity) error
}

// Reader lists and prunes activity entries.
type Reader interface {
	List(ctx context.Context, req domain.PageRequest) (*domain.Page[domain.Activity], error)
	Get(ctx context.Context, id uint) (*domain.Activity, error)
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// Journal is the full repository surface.
type Journal interface {
	Recorder
	Reader
}

// Repository is a Journal backed by GORM.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository creates a Repository on db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// Migrate creates or updates the activity table.
func (r *Repository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&domain.Activity{}); err != nil {
		return mapError(err)
	}
	return nil
}

// Record inserts a.
func (r *Repository) Record(ctx context.Context, a *domain.Activity) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = r.now()
	}
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return mapError(err)
	}
	return nil
}

// List returns a page of activity, newest first unless req.Sort says otherwise.
func (r *Repository) List(ctx context.Context, req domain.PageRequest) (*domain.Page[domain.Activity], error) {
	var total int64
	base := r.db.WithContext(ctx).Model(&domain.Activity{}).
		Scopes(pkg.Filter(req, allowedFilterFields))

	if err := base.Count(&total).Error; err != nil {
		return nil, mapError(err)
	}

	var items []domain.Activity
	if err := base.Scopes(
		pkg.Paginate(req),
		pkg.Sort(req, allowedSortFields, defaultSort),
	).Find(&items).Error; err != nil {
		return nil, mapError(err)
	}

	return pkg.NewPage(items, total, req), nil
}

// Get returns one entry by id.
func (r *Repository) Get(ctx context.Context, id uint) (*domain.Activity, error) {
	var a domain.Activity
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, mapError(err)
	}
	return &a, nil
}

// Prune deletes entries created before the cutoff and records the pruning
// itself, atomically. It returns the number of deleted entries.
func (r *Repository) Prune(ctx context.Context, before time.Time) (int64, error) {
	var deleted int64
	err := pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		res := tx.Where("created_at < ?", before).Delete(&domain.Activity{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		if deleted == 0 {
			return nil
		}
		return tx.Create(&domain.Activity{
			Operator:  "system",
			Resource:  "activity",
			Verb:      "prune",
			Outcome:   domain.OutcomeSuccess,
			Message:   "pruned entries before " + before.UTC().Format(time.RFC3339),
			CreatedAt: r.now(),
		}).Error
	})
	if err != nil {
		return 0, mapError(err)
	}
	return deleted, nil
}

// mapError converts GORM errors to domain errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return domain.NewAppError(domain.CodeInternal, "journal error", err)
}

// Nop discards every entry; List always returns an empty page.
type Nop struct{}

// Record does nothing.
func (Nop) Record(context.Context, *domain.Activity) error { return nil }

// List returns an empty page.
func (Nop) List(_ context.Context, req domain.PageRequest) (*domain.Page[domain.Activity], error) {
	return pkg.NewPage[domain.Activity](nil, 0, req), nil
}

// Get always reports domain.ErrNotFound.
func (Nop) Get(context.Context, uint) (*domain.Activity, error) { return nil, domain.ErrNotFound }

// Prune does nothing.
func (Nop) Prune(context.Context, time.Time) (int64, error) { return 0, nil }
