package sql

import (
	"context"
	"errors"
	"fmt"
	"skillchain/internal/entity"
	"skillchain/internal/model"
	"strings"

	"gorm.io/gorm"
)

// GormRepository implements Repository using GORM
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new repository instance
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

var _ model.Repository = (*GormRepository)(nil)

// Transaction runs fn inside a database transaction.
func (r *GormRepository) Transaction(ctx context.Context, fn func(tx model.Repository) error) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepository{db: tx})
	})
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

var errNotInitialised = errors.New("repository not initialised")

// pageOf returns normalised paging parameters; nil means the first page.
func pageOf(params *entity.BaseParams) entity.BaseParams {
	var page entity.BaseParams
	if params != nil {
		page = *params
	}
	page.Normalise(defaultPageSize, maxPageSize)
	return page
}

func pageMeta(page entity.BaseParams, total int64) *entity.Meta {
	return &entity.Meta{Page: page.Page, PageSize: page.PageSize, Total: total}
}

// translateWriteError maps unique constraint violations onto gorm.ErrDuplicatedKey
// for drivers that do not translate them.
func translateWriteError(err error) error {
	if err == nil || errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique constraint failed"),
		strings.Contains(msg, "duplicate key value"),
		strings.Contains(msg, "duplicate entry"):
		return fmt.Errorf("%w: %v", gorm.ErrDuplicatedKey, err)
	}
	return err
}

// IsDuplicateKey reports whether err is a unique constraint violation.
func IsDuplicateKey(err error) bool {
	return errors.Is(translateWriteError(err), gorm.ErrDuplicatedKey)
}
