package service

import (
	"context"
	"errors"
	"io"
	"skillchain/internal/entity"
	"skillchain/internal/model"
	"skillchain/internal/pdf"
	"skillchain/internal/qrcode"
	"skillchain/internal/rbac"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	categoryQRCodes     = "qrcodes"
	recentEventsInBrief = 10
)

var hundred = decimal.NewFromInt(100)

// PassportService owns products and their public digital product passports.
type PassportService struct {
	repo   model.Repository
	files  *FileIntake
	codes  *qrcode.Generator
	appURL string
}

func NewPassportService(repo model.Repository, files *FileIntake, codes *qrcode.Generator, publicAppURL string) *PassportService {
	return &PassportService{repo: repo, files: files, codes: codes, appURL: publicAppURL}
}

// CreateProduct registers a product, assigns it a passport id and renders its QR code.
// Nothing is persisted unless every step succeeds.
func (s *PassportService) CreateProduct(ctx context.Context, subject rbac.Subject, req entity.ProductCreateRequest) (*entity.DbProduct, error) {
	if err := authorize(subject, rbac.CapManageProducts); err != nil {
		return nil, err
	}

	factoryID, err := s.productFactory(ctx, subject, req.FactoryID)
	if err != nil {
		return nil, err
	}

	sku := strings.TrimSpace(req.SKU)
	name := strings.TrimSpace(req.Name)
	if sku == "" || name == "" {
		return nil, validationError("sku and name are required")
	}
	materials, err := validateMaterials(req.Materials)
	if err != nil {
		return nil, err
	}
	if err := validatePercentage("recycled_content_percentage", req.RecycledContentPct); err != nil {
		return nil, err
	}
	manufactured, err := parseOptionalDate("manufactured_date", req.ManufacturedDate)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetProductBySKU(ctx, sku); err == nil {
		return nil, ErrDuplicateSKU
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, upstream("failed to check sku", err)
	}

	product := &entity.DbProduct{
		FactoryID:          factoryID,
		SKU:                sku,
		Name:               name,
		Description:        strings.TrimSpace(req.Description),
		Category:           strings.TrimSpace(req.Category),
		PassportID:         uuid.NewString(),
		Materials:          materials,
		OriginCountry:      strings.TrimSpace(req.OriginCountry),
		RawMaterialSource:  strings.TrimSpace(req.RawMaterialSource),
		CarbonFootprintKg:  req.CarbonFootprintKg,
		WaterUsageLiters:   req.WaterUsageLiters,
		RecycledContentPct: req.RecycledContentPct,
		Certifications:     cleanStrings(req.Certifications),
		Images:             entity.StringArray{},
		ManufacturedDate:   manufactured,
	}

	var storedKey string
	err = s.repo.Transaction(ctx, func(tx model.Repository) error {
		if err := tx.CreateProduct(ctx, product); err != nil {
			return err
		}
		png, err := s.codes.PNG(qrcode.PassportURL(s.appURL, product.PassportID))
		if err != nil {
			return err
		}
		stored, err := s.files.StoreGenerated(ctx, png, categoryQRCodes, "dpp_"+product.PassportID, "png")
		if err != nil {
			return err
		}
		storedKey = stored.Key
		product.QRCodeURL = stored.URL
		return tx.UpdateProduct(ctx, product.ID, entity.ProductUpdates{QRCodeURL: &stored.URL})
	})
	if err != nil {
		if storedKey != "" {
			s.files.Delete(ctx, storedKey)
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateSKU
		}
		return nil, upstream("failed to create product", err)
	}

	logrus.WithFields(logrus.Fields{
		"product_id": product.ID,
		"dpp_id":     product.PassportID,
		"factory_id": factoryID,
	}).Info("product passport created")
	return product, nil
}

// productFactory picks the owning factory for a new product. Platform administrators
// name it explicitly; everyone else creates products for their own factory.
func (s *PassportService) productFactory(ctx context.Context, subject rbac.Subject, requested *uint) (uint, error) {
	var factoryID uint
	switch {
	case subject.IsPlatformAdmin():
		if requested == nil || *requested == 0 {
			return 0, validationError("factory_id is required")
		}
		factoryID = *requested
	case subject.HasFactory():
		factoryID = *subject.FactoryID
	default:
		return 0, validationError("user is not associated with a factory")
	}
	if _, err := s.repo.GetFactory(ctx, factoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, validationError("factory %d does not exist", factoryID)
		}
		return 0, upstream("failed to load factory", err)
	}
	return factoryID, nil
}

// ListProducts pages through the products visible to the caller.
func (s *PassportService) ListProducts(ctx context.Context, subject rbac.Subject, query entity.ProductQuery) ([]entity.DbProduct, *entity.Meta, error) {
	factoryID, err := scopedFactory(subject, query.FactoryID)
	if err != nil {
		return nil, nil, err
	}
	query.FactoryID = factoryID
	query.Normalise(20, 100)
	products, meta, err := s.repo.ListProducts(ctx, &query)
	if err != nil {
		return nil, nil, upstream("failed to load products", err)
	}
	return products, meta, nil
}

// GetProduct returns a product with its factory and the factory's latest compliance events.
func (s *PassportService) GetProduct(ctx context.Context, subject rbac.Subject, id uint) (*entity.ProductDetailResponse, error) {
	product, err := loadScopedProduct(ctx, s.repo, subject, id)
	if err != nil {
		return nil, err
	}

	detail := &entity.ProductDetailResponse{
		Product:                *product,
		RecentComplianceEvents: []entity.ComplianceEventBrief{},
	}
	factory, err := s.repo.GetFactory(ctx, product.FactoryID)
	switch {
	case err == nil:
		detail.Factory = factory
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, upstream("failed to load factory", err)
	}

	events, err := s.repo.ListComplianceEvents(ctx, &entity.ComplianceEventQuery{
		FactoryID: product.FactoryID,
		Limit:     recentEventsInBrief,
	})
	if err != nil {
		return nil, upstream("failed to load compliance events", err)
	}
	for _, event := range events {
		detail.RecentComplianceEvents = append(detail.RecentComplianceEvents, entity.ComplianceEventBrief{
			EventType: event.EventType,
			Status:    event.Status,
			Area:      event.Area,
			CreatedAt: event.CreatedAt,
		})
	}
	return detail, nil
}

// UpdateProduct applies a partial update. The passport id and SKU cannot be changed.
func (s *PassportService) UpdateProduct(ctx context.Context, subject rbac.Subject, id uint, req entity.ProductUpdateRequest) (*entity.DbProduct, error) {
	if err := authorize(subject, rbac.CapManageProducts); err != nil {
		return nil, err
	}
	product, err := loadScopedProduct(ctx, s.repo, subject, id)
	if err != nil {
		return nil, err
	}

	updates := entity.ProductUpdates{
		Description:        trimmedPtr(req.Description),
		Category:           trimmedPtr(req.Category),
		OriginCountry:      trimmedPtr(req.OriginCountry),
		RawMaterialSource:  trimmedPtr(req.RawMaterialSource),
		CarbonFootprintKg:  req.CarbonFootprintKg,
		WaterUsageLiters:   req.WaterUsageLiters,
		RecycledContentPct: req.RecycledContentPct,
		ComplianceVerified: req.ComplianceVerified,
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, validationError("name cannot be empty")
		}
		updates.Name = &name
	}
	if req.Materials != nil {
		materials, err := validateMaterials(req.Materials)
		if err != nil {
			return nil, err
		}
		updates.Materials = &materials
	}
	if err := validatePercentage("recycled_content_percentage", req.RecycledContentPct); err != nil {
		return nil, err
	}
	if req.Certifications != nil {
		certs := cleanStrings(req.Certifications)
		updates.Certifications = &certs
	}

	if err := s.repo.UpdateProduct(ctx, product.ID, updates); err != nil {
		return nil, upstream("failed to update product", err)
	}
	updated, err := s.repo.GetProduct(ctx, product.ID)
	if err != nil {
		return nil, lookupError("product", err)
	}
	return updated, nil
}

// AddImage stores a product photo and appends it to the product's images.
func (s *PassportService) AddImage(ctx context.Context, subject rbac.Subject, id uint, reader io.Reader, filename, contentType string) (*StoredFile, error) {
	if err := authorize(subject, rbac.CapManageProducts); err != nil {
		return nil, err
	}
	if _, err := loadScopedProduct(ctx, s.repo, subject, id); err != nil {
		return nil, err
	}

	stored, err := s.files.Save(ctx, reader, filename, contentType, CategoryProducts)
	if err != nil {
		return nil, err
	}
	err = s.repo.Transaction(ctx, func(tx model.Repository) error {
		product, err := tx.GetProduct(ctx, id)
		if err != nil {
			return err
		}
		images := append(entity.StringArray{}, product.Images...)
		images = append(images, stored.URL)
		return tx.UpdateProduct(ctx, id, entity.ProductUpdates{Images: &images})
	})
	if err != nil {
		s.files.Delete(ctx, stored.Key)
		return nil, upstream("failed to attach product image", err)
	}
	return stored, nil
}

// PublicView assembles the unauthenticated passport for a passport id.
func (s *PassportService) PublicView(ctx context.Context, passportID string) (*entity.PublicPassport, error) {
	product, err := s.repo.GetProductByPassportID(ctx, passportID)
	if err != nil {
		return nil, lookupError("product passport", err)
	}

	var manufacturer entity.Manufacturer
	factory, err := s.repo.GetFactory(ctx, product.FactoryID)
	switch {
	case err == nil:
		manufacturer = entity.Manufacturer{ID: factory.ID, Name: factory.Name, Location: factory.Location}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, upstream("failed to load factory", err)
	}

	counts, err := s.repo.CountComplianceEvents(ctx, product.FactoryID)
	if err != nil {
		return nil, upstream("failed to count compliance events", err)
	}
	events, err := s.repo.ListComplianceEvents(ctx, &entity.ComplianceEventQuery{FactoryID: product.FactoryID})
	if err != nil {
		return nil, upstream("failed to load compliance events", err)
	}

	return &entity.PublicPassport{
		PassportID:   product.PassportID,
		ProductName:  product.Name,
		Category:     product.Category,
		SKU:          product.SKU,
		Description:  product.Description,
		Manufacturer: manufacturer,
		Materials:    nonNilMaterials(product.Materials),
		EnvironmentalImpact: entity.EnvironmentalImpact{
			CarbonFootprintKg:  product.CarbonFootprintKg,
			WaterUsageLiters:   product.WaterUsageLiters,
			RecycledContentPct: product.RecycledContentPct,
		},
		Certifications: product.Certifications.ToSlice(),
		Origin: entity.Origin{
			Country:           product.OriginCountry,
			RawMaterialSource: product.RawMaterialSource,
		},
		ComplianceStatus: entity.ComplianceStatus{
			Verified:     product.ComplianceVerified,
			Score:        ComplianceRate(counts.Passed, counts.Total, 1).InexactFloat64(),
			TotalChecks:  counts.Total,
			PassedChecks: counts.Passed,
			ByType:       LatestByType(events),
		},
		SupplyChain: entity.SupplyChain{
			ManufacturedDate: product.ManufacturedDate,
			BatchTracking:    product.BatchID != nil,
		},
		Images:      product.Images.ToSlice(),
		QRCodeURL:   product.QRCodeURL,
		LastUpdated: product.UpdatedAt,
	}, nil
}

// PublicBatchView resolves a batch label to its product's public passport.
func (s *PassportService) PublicBatchView(ctx context.Context, batchID uint) (*entity.PublicPassport, error) {
	batch, err := s.repo.GetBatch(ctx, batchID)
	if err != nil {
		return nil, lookupError("batch", err)
	}
	product, err := s.repo.GetProduct(ctx, batch.ProductID)
	if err != nil {
		return nil, lookupError("batch", err)
	}
	view, err := s.PublicView(ctx, product.PassportID)
	if err != nil {
		return nil, err
	}
	view.Batch = &entity.PublicBatch{
		ID:        batch.ID,
		BatchCode: batch.BatchCode,
		Quantity:  batch.Quantity,
		StartDate: batch.StartDate,
		EndDate:   batch.EndDate,
	}
	return view, nil
}

// Verify reports whether passportID belongs to a registered product.
func (s *PassportService) Verify(ctx context.Context, passportID string) (*entity.PassportVerification, error) {
	product, err := s.repo.GetProductByPassportID(ctx, passportID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &entity.PassportVerification{Valid: false, Message: "Invalid DPP ID"}, nil
		}
		return nil, upstream("failed to load product passport", err)
	}

	result := &entity.PassportVerification{
		Valid:              true,
		ProductName:        product.Name,
		ComplianceVerified: &product.ComplianceVerified,
	}
	if factory, err := s.repo.GetFactory(ctx, product.FactoryID); err == nil {
		result.Manufacturer = factory.Name
	}
	return result, nil
}

// PassportPDF renders the public passport as a printable sheet.
func (s *PassportService) PassportPDF(ctx context.Context, passportID string) ([]byte, error) {
	view, err := s.PublicView(ctx, passportID)
	if err != nil {
		return nil, err
	}
	doc, err := pdf.PassportSheet(view, qrcode.PassportURL(s.appURL, view.PassportID))
	if err != nil {
		return nil, upstream("failed to render passport sheet", err)
	}
	return doc, nil
}

// loadScopedProduct fetches a product the caller may see; anything else is NotFound.
func loadScopedProduct(ctx context.Context, repo model.Repository, subject rbac.Subject, id uint) (*entity.DbProduct, error) {
	product, err := repo.GetProduct(ctx, id)
	if err != nil {
		return nil, lookupError("product", err)
	}
	if err := scopeError("product", rbac.AuthorizeOwnership(subject, product.FactoryID)); err != nil {
		return nil, err
	}
	return product, nil
}

// validateMaterials checks each component and that the composition does not exceed 100%.
func validateMaterials(materials []entity.Material) (entity.MaterialList, error) {
	out := make(entity.MaterialList, 0, len(materials))
	total := decimal.Zero
	for i, m := range materials {
		name := strings.TrimSpace(m.Material)
		if name == "" {
			return nil, validationError("materials[%d]: material name is required", i)
		}
		pct := decimal.NewFromFloat(m.Percentage)
		if !pct.IsPositive() || pct.GreaterThan(hundred) {
			return nil, validationError("materials[%d]: percentage must be greater than 0 and at most 100", i)
		}
		total = total.Add(pct)
		out = append(out, entity.Material{
			Material:      name,
			Percentage:    m.Percentage,
			Origin:        strings.TrimSpace(m.Origin),
			Certification: strings.TrimSpace(m.Certification),
		})
	}
	if total.GreaterThan(hundred) {
		return nil, validationError("material percentages add up to %s%%, must not exceed 100", total.String())
	}
	return out, nil
}

func validatePercentage(field string, value *float64) error {
	if value == nil {
		return nil
	}
	pct := decimal.NewFromFloat(*value)
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return validationError("%s must be between 0 and 100", field)
	}
	return nil
}

func nonNilMaterials(materials entity.MaterialList) []entity.Material {
	if materials == nil {
		return []entity.Material{}
	}
	return []entity.Material(materials)
}

func cleanStrings(values []string) entity.StringArray {
	out := entity.StringArray{}
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func trimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	return &trimmed
}

func timePtr(t time.Time) *time.Time {
	return &t
}
