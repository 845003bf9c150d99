// Package pipeline orchestrates one complaint submission end to end:
// allocate an identifier, render the report, deliver it, and land the
// audit row in the ledger.
package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"complaint-pipeline/internal/common/config"
	"complaint-pipeline/internal/common/errors"
	"complaint-pipeline/internal/common/logger"
	"complaint-pipeline/internal/common/metrics"
	"complaint-pipeline/internal/event"
	"complaint-pipeline/internal/ledger"
	"complaint-pipeline/internal/mailer"
	"complaint-pipeline/internal/normalize"
)

// Mailer delivers the report mail. Nil disables the step.
type Mailer interface {
	Send(ctx context.Context, msg *mailer.Message) error
}

// Storage uploads the report PDF and returns (path, sharedLink).
// Nil disables the step.
type Storage interface {
	Upload(ctx context.Context, filename string, data []byte) (string, string, error)
}

// Renderer produces the report PDF and keeps a local artifact copy.
type Renderer interface {
	Render(sub *event.Submission, complaintID string) ([]byte, error)
	WriteArtifact(filename string, data []byte) (string, error)
}

type Pipeline struct {
	cfg       *config.Config
	store     *ledger.Store
	allocator *ledger.Allocator
	renderer  Renderer
	mailer    Mailer
	storage   Storage
	logger    logger.Logger
}

// Result summarizes one run for logging and exit reporting. Collaborator
// failures are recorded here rather than failing the run.
type Result struct {
	ComplaintID string
	PDFFilename string
	Recipients  []string
	MailSent    bool
	MailError   string
	UploadPath  string
	UploadLink  string
	UploadError string
}

func New(cfg *config.Config, store *ledger.Store, alloc *ledger.Allocator, renderer Renderer, m Mailer, storage Storage, log logger.Logger) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		store:     store,
		allocator: alloc,
		renderer:  renderer,
		mailer:    m,
		storage:   storage,
		logger:    log,
	}
}

// Run processes a single submission to completion. Identifier
// allocation and the final ledger append are fatal when they fail; mail
// and upload are attempted best-effort and their outcome is recorded in
// the audit row either way.
func (p *Pipeline) Run(ctx context.Context, sub *event.Submission) (*Result, error) {
	runID := uuid.NewString()
	log := p.logger.WithFields(map[string]interface{}{"runId": runID})
	start := time.Now()
	defer func() {
		metrics.PipelineDuration.Observe(time.Since(start).Seconds())
	}()

	// The lock scope covers allocate-then-append so concurrent runs
	// cannot compute the same sequence. Without a configured lock the
	// race window remains; see ledger.Store.
	if err := p.store.Lock(); err != nil {
		metrics.SubmissionsProcessed.WithLabelValues("failed").Inc()
		return nil, errors.NewLedgerLockFailedError(err)
	}
	defer p.store.Unlock()

	complaintID, err := p.allocator.Allocate(sub.Timestamp)
	if err != nil {
		metrics.SubmissionsProcessed.WithLabelValues("failed").Inc()
		var exhausted *ledger.SequenceExhaustedError
		if stderrors.As(err, &exhausted) {
			return nil, errors.NewSequenceExhaustedError(err)
		}
		return nil, errors.NewLedgerIOFailedError(err)
	}

	result := &Result{
		ComplaintID: complaintID,
		PDFFilename: complaintID + ".pdf",
	}
	log = log.WithFields(map[string]interface{}{"complaintId": complaintID})
	log.Info("complaint identifier allocated", nil)

	pdfBytes, err := p.renderer.Render(sub, complaintID)
	if err != nil {
		metrics.SubmissionsProcessed.WithLabelValues("failed").Inc()
		return nil, errors.NewPDFRenderFailedError(err)
	}

	if path, err := p.renderer.WriteArtifact(result.PDFFilename, pdfBytes); err != nil {
		log.Warn("local artifact copy failed", map[string]interface{}{"error": err.Error()})
	} else {
		log.Info("local artifact written", map[string]interface{}{"path": path})
	}

	norm := normalize.Normalize(sub.Fields, sub.Sections)
	result.Recipients = p.buildRecipients(sub, norm.CustomerEmail)

	p.sendMail(ctx, log, sub, result, pdfBytes)
	p.upload(ctx, log, result, pdfBytes)

	rec := ledger.Record{
		ComplaintID:         complaintID,
		SubmissionTimestamp: sub.Timestamp,
		Recipients:          result.Recipients,
		CustomerEmail:       norm.CustomerEmail,
		Country:             norm.Country,
		ProductName:         norm.ProductName,
		LotSerialNo:         norm.LotSerialNo,
		ComplaintType:       norm.ComplaintType,
		PDFFilename:         result.PDFFilename,
		DropboxFilePath:     result.UploadPath,
		DropboxSharedLink:   result.UploadLink,
		GitHubRunURL:        p.cfg.Event.RunURL,
		AllFieldsKV:         normalize.Overflow(sub.Fields, sub.Sections),
	}

	// The audit row must not silently fail to land.
	if err := p.store.Append(rec); err != nil {
		metrics.SubmissionsProcessed.WithLabelValues("failed").Inc()
		return nil, errors.NewLedgerIOFailedError(err)
	}

	metrics.SubmissionsProcessed.WithLabelValues("success").Inc()
	log.Info("complaint recorded", map[string]interface{}{
		"mailSent":   result.MailSent,
		"uploadPath": result.UploadPath,
	})
	return result, nil
}

// buildRecipients forces the lab address first, then the customer, then
// whatever the submission itself carried. Order-preserving dedup.
func (p *Pipeline) buildRecipients(sub *event.Submission, customerEmail string) []string {
	var recipients []string
	seen := map[string]bool{}

	add := func(addr string) {
		if addr == "" || seen[addr] {
			return
		}
		seen[addr] = true
		recipients = append(recipients, addr)
	}

	add(p.cfg.Mail.LabEmail)
	add(customerEmail)
	if len(recipients) == 0 {
		for _, addr := range sub.EmailTo {
			add(addr)
		}
	}
	return recipients
}

func (p *Pipeline) sendMail(ctx context.Context, log logger.Logger, sub *event.Submission, result *Result, pdfBytes []byte) {
	if p.mailer == nil {
		return
	}
	if len(result.Recipients) == 0 {
		log.Warn("no recipients resolved, skipping mail", nil)
		return
	}

	subject := p.cfg.Mail.Subject
	if subject == "" {
		subject = fmt.Sprintf("%s – Complaint %s", sub.FormTitle, result.ComplaintID)
	}

	msg := &mailer.Message{
		To:             result.Recipients,
		Subject:        subject,
		Body:           p.cfg.Mail.Body,
		AttachmentName: result.PDFFilename,
		Attachment:     pdfBytes,
	}

	if err := p.mailer.Send(ctx, msg); err != nil {
		result.MailError = err.Error()
		metrics.SideEffectFailures.WithLabelValues("mail").Inc()
		log.Warn("email failed, continuing", map[string]interface{}{"error": err.Error()})
		return
	}
	result.MailSent = true
}

func (p *Pipeline) upload(ctx context.Context, log logger.Logger, result *Result, pdfBytes []byte) {
	if p.storage == nil {
		return
	}

	path, link, err := p.storage.Upload(ctx, result.PDFFilename, pdfBytes)
	if err != nil {
		result.UploadError = err.Error()
		metrics.SideEffectFailures.WithLabelValues("dropbox").Inc()
		log.Warn("upload failed, continuing", map[string]interface{}{"error": err.Error()})
		return
	}
	result.UploadPath = path
	result.UploadLink = link
}
