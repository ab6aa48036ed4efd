package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/hr-letter-api/internal/dto"
	"github.com/noah-isme/hr-letter-api/internal/models"
	"github.com/noah-isme/hr-letter-api/internal/repository"
	appErrors "github.com/noah-isme/hr-letter-api/pkg/errors"
	"github.com/noah-isme/hr-letter-api/pkg/export"
	"github.com/noah-isme/hr-letter-api/pkg/jobs"
	"github.com/noah-isme/hr-letter-api/pkg/storage"
)

// JobTypeLetterDocument tags document issuance jobs on the queue.
const JobTypeLetterDocument = "letter_document"

type letterDocumentStore interface {
	Create(ctx context.Context, doc *models.LetterDocument) error
	GetByID(ctx context.Context, id string) (*models.LetterDocument, error)
	GetByRequestID(ctx context.Context, requestID string) (*models.LetterDocument, error)
	Update(ctx context.Context, id string, params repository.UpdateLetterDocumentParams) error
	ListQueued(ctx context.Context, limit int) ([]models.LetterDocument, error)
}

type letterRequestReader interface {
	GetByID(ctx context.Context, id string) (*models.LetterRequest, error)
}

type templateLookup interface {
	GetByLetterType(ctx context.Context, letterType models.LetterType) (*models.LetterTemplate, error)
}

type letterFileStore interface {
	Save(name string, data []byte) (string, error)
	Open(name string) (io.ReadCloser, error)
}

type jobDispatcher interface {
	Enqueue(ctx context.Context, job jobs.Job) error
}

// LetterDocumentService issues PDFs for approved requests and serves downloads.
type LetterDocumentService struct {
	repo     letterDocumentStore
	requests letterRequestReader
	queue    jobDispatcher
	files    letterFileStore
	signer   *storage.SignedURLSigner
	logger   *zap.Logger
}

// NewLetterDocumentService constructs the service.
func NewLetterDocumentService(repo letterDocumentStore, requests letterRequestReader, queue jobDispatcher, files letterFileStore, signer *storage.SignedURLSigner, logger *zap.Logger) *LetterDocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LetterDocumentService{
		repo:     repo,
		requests: requests,
		queue:    queue,
		files:    files,
		signer:   signer,
		logger:   logger,
	}
}

// Issue queues rendering of the letter for an approved request.
// Re-issuing resets the existing document row.
func (s *LetterDocumentService) Issue(ctx context.Context, requestID string) (*models.LetterDocument, error) {
	req, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != models.LetterRequestStatusApproved {
		return nil, appErrors.Clone(appErrors.ErrConflict, "letter request is not approved")
	}
	doc := &models.LetterDocument{
		RequestID: req.ID,
		Status:    models.LetterDocumentStatusQueued,
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, appErrors.Internal(err, "failed to create letter document")
	}
	if err := s.queue.Enqueue(ctx, jobs.Job{ID: doc.ID, Type: JobTypeLetterDocument}); err != nil {
		failed := models.LetterDocumentStatusFailed
		msg := "failed to enqueue document"
		now := time.Now().UTC()
		_ = s.repo.Update(context.WithoutCancel(ctx), doc.ID, repository.UpdateLetterDocumentParams{
			Status:       &failed,
			ErrorMessage: &msg,
			FinishedAt:   &now,
		})
		return nil, appErrors.Internal(err, "failed to enqueue letter document")
	}
	return doc, nil
}

// GetForRequest returns issuance progress. Employees only see their own.
func (s *LetterDocumentService) GetForRequest(ctx context.Context, requestID string, actor models.Actor) (*dto.LetterDocumentResponse, error) {
	req, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !actor.CanActFor(req.EmployeeID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot view another employee's letter")
	}
	if req.Status != models.LetterRequestStatusApproved {
		return nil, appErrors.Clone(appErrors.ErrConflict, "letter request is not approved")
	}
	doc, err := s.repo.GetByRequestID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "letter document not found")
		}
		return nil, appErrors.Internal(err, "failed to load letter document")
	}
	resp := dto.NewLetterDocumentResponse(doc)
	return &resp, nil
}

// ResolveDownload validates a signed token and opens the stored PDF.
func (s *LetterDocumentService) ResolveDownload(ctx context.Context, token string) (*dto.LetterDownload, error) {
	parsed, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	doc, err := s.repo.GetByID(ctx, parsed.DocumentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "letter document not found")
		}
		return nil, appErrors.Internal(err, "failed to load letter document")
	}
	if doc.Status != models.LetterDocumentStatusFinished {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "letter not ready")
	}
	if doc.FilePath == nil || *doc.FilePath != parsed.Path {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	req, err := s.loadRequest(ctx, doc.RequestID)
	if err != nil {
		return nil, err
	}
	if req.Status != models.LetterRequestStatusApproved {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "letter has been revoked")
	}
	file, err := s.files.Open(parsed.Path)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to open letter file")
	}
	return &dto.LetterDownload{Filename: filepath.Base(parsed.Path), Body: file}, nil
}

// Revoke withdraws the document of a request that is no longer approved.
// Its download link stops resolving. A request without a document is a no-op.
func (s *LetterDocumentService) Revoke(ctx context.Context, requestID string) error {
	doc, err := s.repo.GetByRequestID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return appErrors.Internal(err, "failed to load letter document")
	}
	failed := models.LetterDocumentStatusFailed
	msg := "letter request is no longer approved"
	cleared := ""
	now := time.Now().UTC()
	if err := s.repo.Update(ctx, doc.ID, repository.UpdateLetterDocumentParams{
		Status:       &failed,
		FilePath:     &cleared,
		ResultURL:    &cleared,
		ErrorMessage: &msg,
		FinishedAt:   &now,
	}); err != nil {
		return appErrors.Internal(err, "failed to revoke letter document")
	}
	s.logger.Info("letter document revoked", zap.String("document_id", doc.ID), zap.String("request_id", requestID))
	return nil
}

// RecoverPending replays unfinished documents after a restart.
func (s *LetterDocumentService) RecoverPending(ctx context.Context) {
	pending, err := s.repo.ListQueued(ctx, 50)
	if err != nil {
		s.logger.Sugar().Warnw("failed to recover queued letter documents", "error", err)
		return
	}
	for _, doc := range pending {
		if err := s.queue.Enqueue(ctx, jobs.Job{ID: doc.ID, Type: JobTypeLetterDocument}); err != nil {
			s.logger.Sugar().Warnw("failed to requeue letter document", "document_id", doc.ID, "error", err)
		}
	}
}

func (s *LetterDocumentService) loadRequest(ctx context.Context, id string) (*models.LetterRequest, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "letter request not found")
		}
		return nil, appErrors.Internal(err, "failed to load letter request")
	}
	return req, nil
}

// LetterDocumentWorkerConfig configures rendering and link generation.
type LetterDocumentWorkerConfig struct {
	// DownloadPrefix is prepended to the signed token to form ResultURL.
	DownloadPrefix string
	MaxRetries     int
}

// LetterDocumentWorker renders queued documents.
type LetterDocumentWorker struct {
	repo      letterDocumentStore
	requests  letterRequestReader
	templates templateLookup
	renderer  *export.LetterRenderer
	files     letterFileStore
	signer    *storage.SignedURLSigner
	cfg       LetterDocumentWorkerConfig
	logger    *zap.Logger
	now       func() time.Time
}

// NewLetterDocumentWorker constructs a worker.
func NewLetterDocumentWorker(repo letterDocumentStore, requests letterRequestReader, templates templateLookup, renderer *export.LetterRenderer, files letterFileStore, signer *storage.SignedURLSigner, cfg LetterDocumentWorkerConfig, logger *zap.Logger) *LetterDocumentWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if renderer == nil {
		renderer = export.NewLetterRenderer("")
	}
	return &LetterDocumentWorker{
		repo:      repo,
		requests:  requests,
		templates: templates,
		renderer:  renderer,
		files:     files,
		signer:    signer,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// Handle processes a queue job.
func (w *LetterDocumentWorker) Handle(ctx context.Context, job jobs.Job) error {
	doc, err := w.repo.GetByID(ctx, job.ID)
	if err != nil {
		return err
	}
	processing := models.LetterDocumentStatusProcessing
	attempts := job.Attempt + 1
	if err := w.repo.Update(ctx, doc.ID, repository.UpdateLetterDocumentParams{
		Status:   &processing,
		Attempts: &attempts,
	}); err != nil {
		return err
	}

	relPath, url, err := w.render(ctx, doc)
	if err != nil {
		msg := err.Error()
		if job.Attempt >= w.cfg.MaxRetries {
			failed := models.LetterDocumentStatusFailed
			now := w.now().UTC()
			if updateErr := w.repo.Update(ctx, doc.ID, repository.UpdateLetterDocumentParams{
				Status:       &failed,
				ErrorMessage: &msg,
				FinishedAt:   &now,
			}); updateErr != nil {
				w.logger.Sugar().Warnw("failed to mark letter document failed", "document_id", doc.ID, "error", updateErr)
			}
		} else {
			queued := models.LetterDocumentStatusQueued
			if updateErr := w.repo.Update(ctx, doc.ID, repository.UpdateLetterDocumentParams{
				Status:       &queued,
				ErrorMessage: &msg,
			}); updateErr != nil {
				w.logger.Sugar().Warnw("failed to mark letter document queued", "document_id", doc.ID, "error", updateErr)
			}
		}
		return err
	}

	finished := models.LetterDocumentStatusFinished
	now := w.now().UTC()
	clear := ""
	if err := w.repo.Update(ctx, doc.ID, repository.UpdateLetterDocumentParams{
		Status:       &finished,
		FilePath:     &relPath,
		ResultURL:    &url,
		ErrorMessage: &clear,
		FinishedAt:   &now,
	}); err != nil {
		w.logger.Sugar().Warnw("failed to mark letter document finished", "document_id", doc.ID, "error", err)
		return err
	}
	w.logger.Info("letter document issued", zap.String("document_id", doc.ID), zap.String("request_id", doc.RequestID))
	return nil
}

func (w *LetterDocumentWorker) render(ctx context.Context, doc *models.LetterDocument) (string, string, error) {
	req, err := w.requests.GetByID(ctx, doc.RequestID)
	if err != nil {
		return "", "", fmt.Errorf("load letter request: %w", err)
	}
	if req.Status != models.LetterRequestStatusApproved {
		return "", "", fmt.Errorf("letter request %s is %s", req.ID, req.Status)
	}

	body := defaultLetterBody
	if w.templates != nil {
		tpl, err := w.templates.GetByLetterType(ctx, req.LetterType)
		switch {
		case err == nil && strings.TrimSpace(tpl.Content) != "":
			body = tpl.Content
		case err != nil && !errors.Is(err, sql.ErrNoRows):
			return "", "", fmt.Errorf("load letter template: %w", err)
		}
	}

	issued := w.now().UTC()
	letter := export.Letter{
		Heading:   req.LetterType.Label(),
		Reference: req.ID,
		Date:      issued.Format("02 January 2006"),
		Recipient: req.EmployeeName + "\nEmployee ID: " + req.EmployeeID,
		Body:      export.FillPlaceholders(body, placeholderValues(req)),
		Signatory: w.renderer.Organisation,
	}
	pdf, err := w.renderer.Render(letter)
	if err != nil {
		return "", "", err
	}
	relPath, err := w.files.Save(req.ID+".pdf", pdf)
	if err != nil {
		return "", "", err
	}
	token, _, err := w.signer.Generate(doc.ID, relPath)
	if err != nil {
		return "", "", err
	}
	return relPath, strings.TrimRight(w.cfg.DownloadPrefix, "/") + "/" + token, nil
}

const defaultLetterBody = `This is to certify that {{employeeName}} (Employee ID {{employeeId}}) requested a {{letterType}} on {{requestDate}}.

The request was approved on {{processedDate}}.

{{adminNotes}}`

func placeholderValues(req *models.LetterRequest) map[string]string {
	values := map[string]string{
		models.PlaceholderEmployeeName: req.EmployeeName,
		models.PlaceholderEmployeeID:   req.EmployeeID,
		models.PlaceholderLetterType:   req.LetterType.Label(),
		models.PlaceholderRequestDate:  req.RequestDate.Format("02 January 2006"),
		models.PlaceholderAdminNotes:   req.AdminNotes,
	}
	if req.ProcessedDate != nil {
		values[models.PlaceholderProcessedDate] = req.ProcessedDate.Format("02 January 2006")
	} else {
		values[models.PlaceholderProcessedDate] = ""
	}
	return values
}
