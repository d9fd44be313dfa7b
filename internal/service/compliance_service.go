package service

import (
	"context"
	"errors"
	"io"
	"skillchain/internal/entity"
	"skillchain/internal/model"
	"skillchain/internal/rbac"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Compliance event types.
const (
	EventFireSafetyCheck = "FIRE_SAFETY_CHECK"
	EventPPEInspection   = "PPE_INSPECTION"
	EventBuildingAudit   = "BUILDING_AUDIT"
	EventChemicalTest    = "CHEMICAL_TEST"
	EventWorkerTraining  = "WORKER_TRAINING"
	EventOther           = "OTHER"
)

var (
	eventTypes = []string{
		EventFireSafetyCheck, EventPPEInspection, EventBuildingAudit,
		EventChemicalTest, EventWorkerTraining, EventOther,
	}
	eventStatuses = []string{
		entity.ComplianceStatusPass, entity.ComplianceStatusFail,
		entity.ComplianceStatusPending, entity.ComplianceStatusAttentionRequired,
	}
	evidenceTypes = []string{"CERTIFICATE", "TEST_REPORT", "PHOTO", "AUDIT_REPORT", "TRAINING_RECORD"}
)

const dateLayout = "2006-01-02"

// ComplianceService records and reports factory compliance events.
type ComplianceService struct {
	repo  model.Repository
	files *FileIntake
	now   func() time.Time
}

func NewComplianceService(repo model.Repository, files *FileIntake) *ComplianceService {
	return &ComplianceService{repo: repo, files: files, now: time.Now}
}

// RecordEvent appends an event for the caller's factory.
func (s *ComplianceService) RecordEvent(ctx context.Context, subject rbac.Subject, req entity.ComplianceEventCreateRequest) (*entity.DbComplianceEvent, error) {
	if err := authorize(subject, rbac.CapRecordEvents); err != nil {
		return nil, err
	}
	if !subject.HasFactory() {
		return nil, validationError("user is not associated with a factory")
	}

	eventType := strings.ToUpper(strings.TrimSpace(req.EventType))
	if !containsString(eventTypes, eventType) {
		return nil, validationError("invalid event type, allowed: %s", strings.Join(eventTypes, ", "))
	}
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if !containsString(eventStatuses, status) {
		return nil, validationError("invalid status, allowed: %s", strings.Join(eventStatuses, ", "))
	}
	area := strings.TrimSpace(req.Area)
	if area == "" {
		return nil, validationError("area is required")
	}
	evidence := strings.ToUpper(strings.TrimSpace(req.EvidenceType))
	if evidence != "" && !containsString(evidenceTypes, evidence) {
		return nil, validationError("invalid evidence type, allowed: %s", strings.Join(evidenceTypes, ", "))
	}
	expiry, err := parseOptionalDate("expiry_date", req.ExpiryDate)
	if err != nil {
		return nil, err
	}

	factoryID := *subject.FactoryID
	if req.BatchID != nil {
		if err := s.checkBatchInFactory(ctx, *req.BatchID, factoryID); err != nil {
			return nil, err
		}
	}

	event := &entity.DbComplianceEvent{
		FactoryID:    factoryID,
		UserID:       subject.UserID,
		BatchID:      req.BatchID,
		EventType:    eventType,
		Status:       status,
		Area:         area,
		EvidenceType: evidence,
		DocumentURLs: entity.StringArray{},
		ExpiryDate:   expiry,
		Notes:        strings.TrimSpace(req.Notes),
	}
	if err := s.repo.CreateComplianceEvent(ctx, event); err != nil {
		return nil, upstream("failed to record compliance event", err)
	}
	logrus.WithFields(logrus.Fields{
		"event_id":   event.ID,
		"factory_id": factoryID,
		"event_type": eventType,
		"status":     status,
	}).Info("compliance event recorded")
	return event, nil
}

func (s *ComplianceService) checkBatchInFactory(ctx context.Context, batchID, factoryID uint) error {
	batch, err := s.repo.GetBatch(ctx, batchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return validationError("batch %d does not exist", batchID)
		}
		return upstream("failed to load batch", err)
	}
	product, err := s.repo.GetProduct(ctx, batch.ProductID)
	if err != nil {
		return upstream("failed to load batch product", err)
	}
	if product.FactoryID != factoryID {
		return validationError("batch %d does not exist", batchID)
	}
	return nil
}

// Get returns one event visible to the caller.
func (s *ComplianceService) Get(ctx context.Context, subject rbac.Subject, id uint) (*entity.DbComplianceEvent, error) {
	event, err := s.repo.GetComplianceEvent(ctx, id)
	if err != nil {
		return nil, lookupError("compliance event", err)
	}
	if err := scopeError("compliance event", rbac.AuthorizeOwnership(subject, event.FactoryID)); err != nil {
		return nil, err
	}
	return event, nil
}

// List returns events newest first, restricted to the caller's factory unless the
// caller is a platform administrator.
func (s *ComplianceService) List(ctx context.Context, subject rbac.Subject, query entity.ComplianceEventQuery) ([]entity.DbComplianceEvent, error) {
	factoryID, err := scopedFactory(subject, query.FactoryID)
	if err != nil {
		return nil, err
	}
	query.FactoryID = factoryID
	if query.Status != "" {
		query.Status = strings.ToUpper(strings.TrimSpace(query.Status))
	}
	if query.EventType != "" {
		query.EventType = strings.ToUpper(strings.TrimSpace(query.EventType))
	}
	if query.Limit <= 0 || query.Limit > 500 {
		query.Limit = 100
	}
	events, err := s.repo.ListComplianceEvents(ctx, &query)
	if err != nil {
		return nil, upstream("failed to load compliance events", err)
	}
	return events, nil
}

// AttachDocument stores an evidence file and appends its URL to the event.
func (s *ComplianceService) AttachDocument(ctx context.Context, subject rbac.Subject, eventID uint, reader io.Reader, filename, contentType string) (*StoredFile, error) {
	if err := authorize(subject, rbac.CapRecordEvents); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, subject, eventID); err != nil {
		return nil, err
	}

	stored, err := s.files.Save(ctx, reader, filename, contentType, CategoryCompliance)
	if err != nil {
		return nil, err
	}

	err = s.repo.Transaction(ctx, func(tx model.Repository) error {
		event, err := tx.GetComplianceEvent(ctx, eventID)
		if err != nil {
			return err
		}
		urls := append(entity.StringArray{}, event.DocumentURLs...)
		urls = append(urls, stored.URL)
		return tx.UpdateComplianceEvent(ctx, eventID, entity.ComplianceEventUpdates{DocumentURLs: &urls})
	})
	if err != nil {
		s.files.Delete(ctx, stored.Key)
		return nil, upstream("failed to attach document", err)
	}
	return stored, nil
}

// Approve records the caller as approver. Approving again overwrites the approver and time.
func (s *ComplianceService) Approve(ctx context.Context, subject rbac.Subject, eventID uint) (*entity.DbComplianceEvent, error) {
	if err := authorize(subject, rbac.CapApproveEvents); err != nil {
		return nil, err
	}
	event, err := s.Get(ctx, subject, eventID)
	if err != nil {
		return nil, err
	}

	approvedAt := s.now().UTC()
	approver := subject.UserID
	if err := s.repo.UpdateComplianceEvent(ctx, event.ID, entity.ComplianceEventUpdates{
		ApprovedBy: &approver,
		ApprovedAt: &approvedAt,
	}); err != nil {
		return nil, upstream("failed to approve compliance event", err)
	}
	event.ApprovedBy = &approver
	event.ApprovedAt = &approvedAt
	logrus.WithFields(logrus.Fields{"event_id": event.ID, "approved_by": approver}).Info("compliance event approved")
	return event, nil
}

// Stats summarises outcomes for a factory. Non-administrators always see their own factory;
// administrators see the requested factory or, with none, the whole platform.
func (s *ComplianceService) Stats(ctx context.Context, subject rbac.Subject, factoryID uint) (*entity.ComplianceStats, error) {
	scoped, err := scopedFactory(subject, factoryID)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.CountComplianceEvents(ctx, scoped)
	if err != nil {
		return nil, upstream("failed to count compliance events", err)
	}
	return &entity.ComplianceStats{
		Total:   counts.Total,
		Passed:  counts.Passed,
		Failed:  counts.Failed,
		Pending: counts.Pending,
		Score:   ComplianceRate(counts.Passed, counts.Total, 0).IntPart(),
	}, nil
}

// ComplianceRate is passed/total as a percentage rounded half away from zero to places
// decimals. It is zero when there are no events.
func ComplianceRate(passed, total int64, places int32) decimal.Decimal {
	return percentage(passed, total, places)
}

func percentage(part, whole int64, places int32) decimal.Decimal {
	if whole <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(part).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(whole)).
		Round(places)
}

// LatestByType keeps the first event seen per type. events must be ordered newest first.
func LatestByType(events []entity.DbComplianceEvent) map[string]entity.TypeStatus {
	latest := make(map[string]entity.TypeStatus)
	for _, event := range events {
		if _, seen := latest[event.EventType]; seen {
			continue
		}
		latest[event.EventType] = entity.TypeStatus{
			Status: event.Status,
			Date:   event.CreatedAt,
			Area:   event.Area,
		}
	}
	return latest
}

// scopedFactory resolves which factory a listing or summary covers. Zero means every factory.
func scopedFactory(subject rbac.Subject, requested uint) (uint, error) {
	if subject.IsPlatformAdmin() {
		return requested, nil
	}
	if !subject.HasFactory() {
		return 0, validationError("user is not associated with a factory")
	}
	return *subject.FactoryID, nil
}

func parseOptionalDate(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		if parsed, err = time.Parse(time.RFC3339, value); err != nil {
			return nil, validationError("%s must be YYYY-MM-DD", field)
		}
	}
	return &parsed, nil
}
