package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/hr-letter-api/internal/dto"
	"github.com/noah-isme/hr-letter-api/internal/models"
	"github.com/noah-isme/hr-letter-api/internal/repository"
	appErrors "github.com/noah-isme/hr-letter-api/pkg/errors"
	"github.com/noah-isme/hr-letter-api/pkg/events"
)

// Lifecycle event types.
const (
	EventLetterRequestCreated      = "letter_request.created"
	EventLetterRequestTransitioned = "letter_request.transitioned"
)

const letterRequestCachePrefix = "letter_requests:list:"

type letterRequestStore interface {
	Create(ctx context.Context, req *models.LetterRequest) error
	GetByID(ctx context.Context, id string) (*models.LetterRequest, error)
	List(ctx context.Context, filter models.LetterRequestFilter) ([]models.LetterRequest, error)
	Count(ctx context.Context, filter models.LetterRequestFilter) (int, error)
	UpdateStatus(ctx context.Context, params repository.TransitionParams) error
}

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type documentIssuer interface {
	Issue(ctx context.Context, requestID string) (*models.LetterDocument, error)
	Revoke(ctx context.Context, requestID string) error
}

// LetterRequestService enforces the pending -> approved | rejected workflow.
type LetterRequestService struct {
	repo      letterRequestStore
	audit     auditLogger
	validator *validator.Validate
	logger    *zap.Logger

	cache     *CacheService
	cacheTTL  time.Duration
	events    events.Publisher
	documents documentIssuer
	metrics   *MetricsService

	allowRetransition bool
	now               func() time.Time
}

// LetterRequestServiceOption configures the service.
type LetterRequestServiceOption func(*LetterRequestService)

// WithLetterRequestCache enables read-through caching of listings.
func WithLetterRequestCache(cache *CacheService, ttl time.Duration) LetterRequestServiceOption {
	return func(s *LetterRequestService) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

// WithEventPublisher sets the lifecycle event sink.
func WithEventPublisher(publisher events.Publisher) LetterRequestServiceOption {
	return func(s *LetterRequestService) {
		if publisher != nil {
			s.events = publisher
		}
	}
}

// WithDocumentIssuer queues a letter document whenever a request is approved
// and revokes it when a correction moves the request away from approved.
func WithDocumentIssuer(issuer documentIssuer) LetterRequestServiceOption {
	return func(s *LetterRequestService) {
		s.documents = issuer
	}
}

// WithLetterMetrics records lifecycle counters.
func WithLetterMetrics(metrics *MetricsService) LetterRequestServiceOption {
	return func(s *LetterRequestService) {
		s.metrics = metrics
	}
}

// WithRetransition lets admins change the outcome of an already processed request.
func WithRetransition(allow bool) LetterRequestServiceOption {
	return func(s *LetterRequestService) {
		s.allowRetransition = allow
	}
}

// NewLetterRequestService constructs the service with defaults.
func NewLetterRequestService(repo letterRequestStore, audit auditLogger, validate *validator.Validate, logger *zap.Logger, opts ...LetterRequestServiceOption) *LetterRequestService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &LetterRequestService{
		repo:      repo,
		audit:     audit,
		validator: validate,
		logger:    logger,
		events:    events.NopPublisher{},
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Create files a new pending request. Employees may only file for themselves.
func (s *LetterRequestService) Create(ctx context.Context, req dto.CreateLetterRequest, actor models.Actor) (*models.LetterRequest, error) {
	req.EmployeeID = strings.TrimSpace(req.EmployeeID)
	req.EmployeeName = strings.TrimSpace(req.EmployeeName)
	req.LetterType = strings.TrimSpace(req.LetterType)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "employeeId, employeeName and letterType are required")
	}
	letterType, err := models.ParseLetterType(req.LetterType)
	if err != nil {
		return nil, appErrors.Validation(err, err.Error())
	}
	if !actor.CanActFor(req.EmployeeID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "employees may only request letters for themselves")
	}

	record := &models.LetterRequest{
		EmployeeID:   req.EmployeeID,
		EmployeeName: req.EmployeeName,
		LetterType:   letterType,
		Status:       models.LetterRequestStatusPending,
		RequestDate:  s.now().UTC(),
		AdminNotes:   "",
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create letter request")
	}

	s.emitAudit(ctx, actor, models.AuditActionLetterRequestCreate, record.ID, nil, record)
	s.cache.Invalidate(ctx, letterRequestCachePrefix+"*")
	s.publish(ctx, EventLetterRequestCreated, record, "")
	s.metrics.RecordLetterRequestCreated()
	return record, nil
}

// ListAll returns every request matching the query, newest first.
func (s *LetterRequestService) ListAll(ctx context.Context, query dto.LetterRequestQuery) ([]models.LetterRequest, error) {
	filter, err := buildLetterRequestFilter(query)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, filter)
}

// CountAll returns how many requests match the query's filters. Paging is ignored.
func (s *LetterRequestService) CountAll(ctx context.Context, query dto.LetterRequestQuery) (int, error) {
	filter, err := buildLetterRequestFilter(query)
	if err != nil {
		return 0, err
	}
	filter.Limit, filter.Offset = 0, 0

	start := time.Now()
	total, err := s.repo.Count(ctx, filter)
	s.metrics.ObserveDBQuery("letter_requests_count", time.Since(start))
	if err != nil {
		return 0, appErrors.Internal(err, "failed to count letter requests")
	}
	return total, nil
}

// ListByEmployee returns one employee's requests, newest first.
func (s *LetterRequestService) ListByEmployee(ctx context.Context, employeeID string, actor models.Actor) ([]models.LetterRequest, error) {
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "employeeId is required")
	}
	if !actor.CanActFor(employeeID) {
		return nil, appErrors.ErrForbidden
	}
	return s.list(ctx, models.LetterRequestFilter{EmployeeID: employeeID})
}

// Get returns a single request visible to the actor.
func (s *LetterRequestService) Get(ctx context.Context, id string, actor models.Actor) (*models.LetterRequest, error) {
	record, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanActFor(record.EmployeeID) {
		return nil, appErrors.ErrForbidden
	}
	return record, nil
}

// Transition records an admin decision on a pending request.
func (s *LetterRequestService) Transition(ctx context.Context, id string, req dto.TransitionLetterRequest, actor models.Actor) (*models.LetterRequest, error) {
	req.Status = models.LetterRequestStatus(strings.ToLower(strings.TrimSpace(string(req.Status))))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "status must be approved or rejected and adminNotes at most 2000 characters")
	}
	target := req.Status
	if !actor.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only admins can process letter requests")
	}

	record, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Status != models.LetterRequestStatusPending && !s.allowRetransition {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("letter request already %s", record.Status))
	}
	previous := *record

	now := s.now().UTC()
	notes := optionalString(req.AdminNotes)
	params := repository.TransitionParams{
		ID:             record.ID,
		ExpectedStatus: record.Status,
		Status:         target,
		AdminNotes:     notes,
		ProcessedDate:  now,
		ProcessedBy:    actor.ID,
	}
	if err := s.repo.UpdateStatus(ctx, params); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "letter request already processed")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update letter request")
	}

	record.Status = target
	record.ProcessedDate = &now
	processedBy := actor.ID
	record.ProcessedBy = &processedBy
	if notes != nil {
		record.AdminNotes = *notes
	}

	s.emitAudit(ctx, actor, models.AuditActionLetterRequestTransition, record.ID, &previous, record)
	s.cache.Invalidate(ctx, letterRequestCachePrefix+"*")
	s.publish(ctx, EventLetterRequestTransitioned, record, previous.Status)
	s.metrics.RecordTransition(target)

	if s.documents != nil {
		switch {
		case target == models.LetterRequestStatusApproved:
			if _, err := s.documents.Issue(ctx, record.ID); err != nil {
				s.logger.Warn("failed to queue letter document", zap.String("request_id", record.ID), zap.Error(err))
			}
		case previous.Status == models.LetterRequestStatusApproved:
			if err := s.documents.Revoke(ctx, record.ID); err != nil {
				s.logger.Warn("failed to revoke letter document", zap.String("request_id", record.ID), zap.Error(err))
			}
		}
	}
	return record, nil
}

func (s *LetterRequestService) load(ctx context.Context, id string) (*models.LetterRequest, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "id is required")
	}
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "letter request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load letter request")
	}
	return record, nil
}

func (s *LetterRequestService) list(ctx context.Context, filter models.LetterRequestFilter) ([]models.LetterRequest, error) {
	key := letterRequestCacheKey(filter)
	var cached []models.LetterRequest
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	start := time.Now()
	records, err := s.repo.List(ctx, filter)
	s.metrics.ObserveDBQuery("letter_requests_list", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list letter requests")
	}
	s.cache.Set(ctx, key, records, s.cacheTTL)
	return records, nil
}

func (s *LetterRequestService) emitAudit(ctx context.Context, actor models.Actor, action, resourceID string, before, after *models.LetterRequest) {
	if s.audit == nil {
		return
	}
	entry := &models.AuditLog{
		Action:     action,
		Resource:   models.AuditResourceLetterRequest,
		ResourceID: &resourceID,
		IPAddress:  actor.IPAddress,
		UserAgent:  actor.UserAgent,
	}
	if actor.ID != "" {
		actorID := actor.ID
		entry.ActorID = &actorID
	}
	if before != nil {
		entry.OldValues, _ = json.Marshal(before)
	}
	if after != nil {
		entry.NewValues, _ = json.Marshal(after)
	}
	if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to persist audit log", zap.String("action", action), zap.Error(err))
	}
}

func (s *LetterRequestService) publish(ctx context.Context, eventType string, record *models.LetterRequest, previous models.LetterRequestStatus) {
	payload := map[string]interface{}{"letterRequest": record}
	if previous != "" {
		payload["previousStatus"] = previous
	}
	if err := s.events.Publish(ctx, events.Event{Type: eventType, OccurredAt: s.now().UTC(), Payload: payload}); err != nil {
		s.logger.Warn("failed to publish event", zap.String("event_type", eventType), zap.String("request_id", record.ID), zap.Error(err))
	}
}

func buildLetterRequestFilter(query dto.LetterRequestQuery) (models.LetterRequestFilter, error) {
	filter := models.LetterRequestFilter{Limit: query.Limit, Offset: query.Offset}
	if query.Limit < 0 || query.Offset < 0 {
		return filter, appErrors.Clone(appErrors.ErrValidation, "limit and offset must not be negative")
	}
	if query.Status != "" {
		status := models.LetterRequestStatus(strings.ToLower(strings.TrimSpace(string(query.Status))))
		if !status.Valid() {
			return filter, appErrors.Clone(appErrors.ErrValidation, "status must be pending, approved or rejected")
		}
		filter.Status = status
	}
	if query.LetterType != "" {
		letterType, err := models.ParseLetterType(string(query.LetterType))
		if err != nil {
			return filter, appErrors.Validation(err, err.Error())
		}
		filter.LetterType = letterType
	}
	return filter, nil
}

func letterRequestCacheKey(filter models.LetterRequestFilter) string {
	return fmt.Sprintf("%semp=%s:status=%s:type=%s:limit=%d:offset=%d",
		letterRequestCachePrefix, filter.EmployeeID, filter.Status, filter.LetterType, filter.Limit, filter.Offset)
}

func optionalString(value string) *string {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil
	}
	return &v
}
