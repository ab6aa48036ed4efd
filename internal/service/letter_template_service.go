package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/hr-letter-api/internal/dto"
	"github.com/noah-isme/hr-letter-api/internal/models"
	"github.com/noah-isme/hr-letter-api/internal/repository"
	appErrors "github.com/noah-isme/hr-letter-api/pkg/errors"
)

type letterTemplateStore interface {
	Create(ctx context.Context, tpl *models.LetterTemplate) error
	GetByID(ctx context.Context, id string) (*models.LetterTemplate, error)
	GetByLetterType(ctx context.Context, letterType models.LetterType) (*models.LetterTemplate, error)
	List(ctx context.Context, letterType models.LetterType) ([]models.LetterTemplate, error)
	Update(ctx context.Context, tpl *models.LetterTemplate) error
	Delete(ctx context.Context, id string) error
}

// LetterTemplateService manages per letter type templates.
type LetterTemplateService struct {
	repo      letterTemplateStore
	audit     auditLogger
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLetterTemplateService constructs the service.
func NewLetterTemplateService(repo letterTemplateStore, audit auditLogger, validate *validator.Validate, logger *zap.Logger) *LetterTemplateService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LetterTemplateService{repo: repo, audit: audit, validator: validate, logger: logger}
}

// List returns templates, optionally only the one for a letter type.
func (s *LetterTemplateService) List(ctx context.Context, letterType string) ([]models.LetterTemplate, error) {
	var lt models.LetterType
	if strings.TrimSpace(letterType) != "" {
		parsed, err := models.ParseLetterType(letterType)
		if err != nil {
			return nil, appErrors.Validation(err, err.Error())
		}
		lt = parsed
	}
	templates, err := s.repo.List(ctx, lt)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list templates")
	}
	return templates, nil
}

// Get returns a template by id.
func (s *LetterTemplateService) Get(ctx context.Context, id string) (*models.LetterTemplate, error) {
	tpl, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "template not found")
		}
		return nil, appErrors.Internal(err, "failed to load template")
	}
	return tpl, nil
}

// Create stores a template. At most one template exists per letter type.
func (s *LetterTemplateService) Create(ctx context.Context, req dto.UpsertLetterTemplateRequest, actor models.Actor) (*models.LetterTemplate, error) {
	tpl, err := s.buildTemplate(req)
	if err != nil {
		return nil, err
	}
	if existing, err := s.repo.GetByLetterType(ctx, tpl.LetterType); err == nil && existing != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "template already exists for letter type")
	} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Internal(err, "failed to check template uniqueness")
	}
	if err := s.repo.Create(ctx, tpl); err != nil {
		return nil, s.mapWriteError(err, "failed to create template")
	}
	s.emitAudit(ctx, actor, models.AuditActionTemplateCreate, tpl.ID, nil, tpl)
	return tpl, nil
}

// Update replaces a template's fields.
func (s *LetterTemplateService) Update(ctx context.Context, id string, req dto.UpsertLetterTemplateRequest, actor models.Actor) (*models.LetterTemplate, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	tpl, err := s.buildTemplate(req)
	if err != nil {
		return nil, err
	}
	tpl.ID = current.ID
	if tpl.LetterType != current.LetterType {
		if other, err := s.repo.GetByLetterType(ctx, tpl.LetterType); err == nil && other != nil && other.ID != current.ID {
			return nil, appErrors.Clone(appErrors.ErrConflict, "template already exists for letter type")
		} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Internal(err, "failed to check template uniqueness")
		}
	}
	if err := s.repo.Update(ctx, tpl); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "template not found")
		}
		return nil, s.mapWriteError(err, "failed to update template")
	}
	s.emitAudit(ctx, actor, models.AuditActionTemplateUpdate, tpl.ID, current, tpl)
	return tpl, nil
}

// Delete removes a template.
func (s *LetterTemplateService) Delete(ctx context.Context, id string, actor models.Actor) error {
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "template not found")
		}
		return appErrors.Internal(err, "failed to delete template")
	}
	s.emitAudit(ctx, actor, models.AuditActionTemplateDelete, id, current, nil)
	return nil
}

func (s *LetterTemplateService) buildTemplate(req dto.UpsertLetterTemplateRequest) (*models.LetterTemplate, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.LetterType = strings.TrimSpace(req.LetterType)
	if req.GoogleDocURL != nil {
		trimmed := strings.TrimSpace(*req.GoogleDocURL)
		if trimmed == "" {
			req.GoogleDocURL = nil
		} else {
			req.GoogleDocURL = &trimmed
		}
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid template payload")
	}
	letterType, err := models.ParseLetterType(req.LetterType)
	if err != nil {
		return nil, appErrors.Validation(err, err.Error())
	}
	return &models.LetterTemplate{
		Name:         req.Name,
		LetterType:   letterType,
		Content:      req.Content,
		GoogleDocURL: req.GoogleDocURL,
	}, nil
}

func (s *LetterTemplateService) mapWriteError(err error, message string) error {
	if errors.Is(err, repository.ErrDuplicateLetterType) {
		return appErrors.Clone(appErrors.ErrConflict, "template already exists for letter type")
	}
	return appErrors.Internal(err, message)
}

func (s *LetterTemplateService) emitAudit(ctx context.Context, actor models.Actor, action, id string, before, after *models.LetterTemplate) {
	if s.audit == nil {
		return
	}
	entry := &models.AuditLog{
		Action:     action,
		Resource:   models.AuditResourceLetterTemplate,
		ResourceID: &id,
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
