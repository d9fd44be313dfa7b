package sql

import (
	"context"
	"fmt"
	"skillchain/internal/entity"
	"strings"
)

// CreateProduct persists a product. Duplicate SKUs or passport ids yield gorm.ErrDuplicatedKey.
func (r *GormRepository) CreateProduct(ctx context.Context, product *entity.DbProduct) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if product == nil {
		return fmt.Errorf("product is nil")
	}
	return translateWriteError(r.db.WithContext(ctx).Create(product).Error)
}

func (r *GormRepository) GetProduct(ctx context.Context, id uint) (*entity.DbProduct, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	if id == 0 {
		return nil, fmt.Errorf("invalid product id")
	}
	var product entity.DbProduct
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepository) GetProductBySKU(ctx context.Context, sku string) (*entity.DbProduct, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	var product entity.DbProduct
	if err := r.db.WithContext(ctx).Where("sku = ?", strings.TrimSpace(sku)).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepository) GetProductByPassportID(ctx context.Context, passportID string) (*entity.DbProduct, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	var product entity.DbProduct
	if err := r.db.WithContext(ctx).Where("dpp_id = ?", strings.TrimSpace(passportID)).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// ListProducts returns paginated products, newest first.
func (r *GormRepository) ListProducts(ctx context.Context, params *entity.ProductQuery) ([]entity.DbProduct, *entity.Meta, error) {
	if r == nil || r.db == nil {
		return nil, nil, errNotInitialised
	}

	query := r.db.WithContext(ctx).Model(&entity.DbProduct{})
	var base *entity.BaseParams
	if params != nil {
		base = &params.BaseParams
		if params.FactoryID > 0 {
			query = query.Where("factory_id = ?", params.FactoryID)
		}
		if category := strings.TrimSpace(params.Category); category != "" {
			query = query.Where("category = ?", category)
		}
		if keyword := strings.TrimSpace(params.Keyword); keyword != "" {
			kw := "%" + strings.ToLower(keyword) + "%"
			query = query.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?", kw, kw)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	page := pageOf(base)
	var products []entity.DbProduct
	if err := query.Order("id DESC").Offset(page.Offset()).Limit(int(page.PageSize)).Find(&products).Error; err != nil {
		return nil, nil, err
	}
	return products, pageMeta(page, total), nil
}

func (r *GormRepository) UpdateProduct(ctx context.Context, id uint, updates entity.ProductUpdates) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if id == 0 {
		return fmt.Errorf("invalid product id")
	}
	if updates.IsEmpty() {
		return nil
	}
	return r.db.WithContext(ctx).Model(&entity.DbProduct{}).Where("id = ?", id).Updates(updates.ToMap()).Error
}

func (r *GormRepository) CreateBatch(ctx context.Context, batch *entity.DbBatch) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if batch == nil {
		return fmt.Errorf("batch is nil")
	}
	return translateWriteError(r.db.WithContext(ctx).Create(batch).Error)
}

func (r *GormRepository) GetBatch(ctx context.Context, id uint) (*entity.DbBatch, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	if id == 0 {
		return nil, fmt.Errorf("invalid batch id")
	}
	var batch entity.DbBatch
	if err := r.db.WithContext(ctx).First(&batch, id).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}

// ListBatches returns a product's batches, most recent first.
func (r *GormRepository) ListBatches(ctx context.Context, productID uint) ([]entity.DbBatch, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	var batches []entity.DbBatch
	if err := r.db.WithContext(ctx).Where("product_id = ?", productID).Order("start_date DESC, id DESC").Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}
