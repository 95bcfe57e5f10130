package advocates

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/lexops/causelist/internal/cache"
	"github.com/lexops/causelist/internal/causelist"
	"github.com/lexops/causelist/internal/database"
)

// Directory exposes the advocate identities eligible for cause-list
// matching. Only verified and active advocates are returned.
type Directory interface {
	VerifiedActive(ctx context.Context) ([]causelist.Advocate, error)
}

// DBDirectory reads advocates from the database with a read-through cache;
// the directory changes far less often than the daily job runs.
type DBDirectory struct {
	db    *gorm.DB
	cache cache.Cache
}

func NewDBDirectory(db *gorm.DB, cache cache.Cache) *DBDirectory {
	return &DBDirectory{db: db, cache: cache}
}

func (d *DBDirectory) VerifiedActive(ctx context.Context) ([]causelist.Advocate, error) {
	if d.cache != nil {
		if cached, found := d.cache.Get(cache.DirectoryKey); found {
			if advs, ok := cached.([]causelist.Advocate); ok {
				return advs, nil
			}
		}
	}

	var rows []database.Advocate
	if err := d.db.WithContext(ctx).
		Where("verified = ? AND active = ?", true, true).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load advocate directory: %w", err)
	}

	advs := make([]causelist.Advocate, 0, len(rows))
	for _, row := range rows {
		advs = append(advs, causelist.Advocate{
			ID:   row.AdvocateID,
			Name: row.Name,
		})
	}

	if d.cache != nil {
		d.cache.Set(cache.DirectoryKey, advs)
	}

	return advs, nil
}
