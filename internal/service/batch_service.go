package service

import (
	"context"
	"skillchain/internal/entity"
	"skillchain/internal/model"
	"skillchain/internal/qrcode"
	"skillchain/internal/rbac"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// BatchService tracks production batches of a product.
type BatchService struct {
	repo   model.Repository
	codes  *qrcode.Generator
	apiURL string
	now    func() time.Time
}

func NewBatchService(repo model.Repository, codes *qrcode.Generator, publicAPIURL string) *BatchService {
	return &BatchService{repo: repo, codes: codes, apiURL: publicAPIURL, now: time.Now}
}

// CreateBatch records a batch and makes it the product's current batch.
func (s *BatchService) CreateBatch(ctx context.Context, subject rbac.Subject, productID uint, req entity.BatchCreateRequest) (*entity.DbBatch, error) {
	if err := authorize(subject, rbac.CapManageProducts); err != nil {
		return nil, err
	}
	product, err := loadScopedProduct(ctx, s.repo, subject, productID)
	if err != nil {
		return nil, err
	}

	code := strings.TrimSpace(req.BatchCode)
	if code == "" {
		return nil, validationError("batch_code is required")
	}
	if req.Quantity <= 0 {
		return nil, validationError("quantity must be greater than 0")
	}
	start, err := parseOptionalDate("start_date", req.StartDate)
	if err != nil {
		return nil, err
	}
	if start == nil {
		start = timePtr(s.now().UTC())
	}
	end, err := parseOptionalDate("end_date", req.EndDate)
	if err != nil {
		return nil, err
	}
	if end != nil && end.Before(*start) {
		return nil, validationError("end_date must not be before start_date")
	}

	batch := &entity.DbBatch{
		ProductID: product.ID,
		BatchCode: code,
		Quantity:  req.Quantity,
		StartDate: *start,
		EndDate:   end,
	}
	err = s.repo.Transaction(ctx, func(tx model.Repository) error {
		if err := tx.CreateBatch(ctx, batch); err != nil {
			return err
		}
		return tx.UpdateProduct(ctx, product.ID, entity.ProductUpdates{BatchID: &batch.ID})
	})
	if err != nil {
		return nil, upstream("failed to create batch", err)
	}

	logrus.WithFields(logrus.Fields{"batch_id": batch.ID, "product_id": product.ID}).Info("batch created")
	return batch, nil
}

func (s *BatchService) ListBatches(ctx context.Context, subject rbac.Subject, productID uint) ([]entity.DbBatch, error) {
	if _, err := loadScopedProduct(ctx, s.repo, subject, productID); err != nil {
		return nil, err
	}
	batches, err := s.repo.ListBatches(ctx, productID)
	if err != nil {
		return nil, upstream("failed to load batches", err)
	}
	return batches, nil
}

// BatchCode renders the QR code printed on a batch's labels.
func (s *BatchService) BatchCode(ctx context.Context, subject rbac.Subject, batchID uint) ([]byte, error) {
	batch, err := s.repo.GetBatch(ctx, batchID)
	if err != nil {
		return nil, lookupError("batch", err)
	}
	if _, err := loadScopedProduct(ctx, s.repo, subject, batch.ProductID); err != nil {
		if KindOf(err) == KindNotFound {
			return nil, notFound("batch")
		}
		return nil, err
	}
	png, err := s.codes.PNG(qrcode.BatchURL(s.apiURL, batch.ID))
	if err != nil {
		return nil, upstream("failed to render batch code", err)
	}
	return png, nil
}
