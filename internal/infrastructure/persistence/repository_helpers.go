package persistence

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/shared"
	"gorm.io/gorm"
)

// versioned is implemented by domain aggregates through shared.BaseAggregateRoot
type versioned interface {
	GetID() uuid.UUID
	GetVersion() int
	PersistedVersion() int
	IsDirty() bool
	MarkPersisted()
}

// saveVersioned inserts new aggregates and updates stored ones guarded by the
// version they were loaded with. Unchanged aggregates are not written.
func saveVersioned(tx *gorm.DB, model any, aggregate versioned) error {
	if !aggregate.IsDirty() {
		return nil
	}
	if aggregate.PersistedVersion() == 0 {
		if err := tx.Create(model).Error; err != nil {
			return translateError(err)
		}
		aggregate.MarkPersisted()
		return nil
	}
	result := tx.Model(model).
		Where("id = ? AND version = ?", aggregate.GetID(), aggregate.PersistedVersion()).
		Select("*").
		Updates(model)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	aggregate.MarkPersisted()
	return nil
}

// notFound maps gorm.ErrRecordNotFound to shared.ErrNotFound
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

// translateError maps unique constraint violations of postgres and sqlite to
// shared.ErrAlreadyExists
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}
	msg := err.Error()
	if strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "UNIQUE constraint failed") {
		return shared.ErrAlreadyExists
	}
	return err
}

// likePattern escapes LIKE wildcards in a user supplied search term
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + strings.ToLower(r.Replace(strings.TrimSpace(term))) + "%"
}

// applyPaging orders the query and applies the window of filter
func applyPaging(query *gorm.DB, filter shared.Filter, sorting sortable, alias string) *gorm.DB {
	query = query.Order(sorting.orderBy(filter, alias))
	if filter.Limit > 0 {
		query = query.Offset(filter.Offset).Limit(filter.Limit)
	}
	return query
}
