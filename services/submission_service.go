package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vukatravels/site/config"
	"github.com/vukatravels/site/logging"
	"github.com/vukatravels/site/mailer"
	"github.com/vukatravels/site/models"
	"github.com/vukatravels/site/repositories"
	"github.com/vukatravels/site/sheets"
)

// timeNow is swapped in tests
var timeNow = time.Now

// SubmitResult describes how a submission was handled
type SubmitResult struct {
	ID        string
	Discarded bool
	// Deferred is set when notification runs after the response
	Deferred bool
}

// SubmissionService runs the form submission pipeline
type SubmissionService interface {
	Submit(ctx context.Context, payload models.Payload, meta models.RequestMeta) (*SubmitResult, error)
	// Wait blocks until background notifications have finished
	Wait()
}

// NotifyOptions configures notification content and dispatch
type NotifyOptions struct {
	Mode    config.NotifyFailureMode
	Timeout time.Duration
	To      string
	From    string
	ReplyTo string
}

type submissionService struct {
	submissions repositories.SubmissionLog
	export      ExportService
	transport   mailer.Transport
	sheet       sheets.Sink
	mailErrors  *logging.DiagnosticLog
	sheetErrors *logging.DiagnosticLog
	opts        NotifyOptions
	logger      *zap.Logger

	wg sync.WaitGroup
}

// NewSubmissionService creates a submission service. sheet may be nil.
func NewSubmissionService(
	submissions repositories.SubmissionLog,
	export ExportService,
	transport mailer.Transport,
	sheet sheets.Sink,
	mailErrors, sheetErrors *logging.DiagnosticLog,
	opts NotifyOptions,
	logger *zap.Logger,
) SubmissionService {
	if opts.Mode == "" {
		opts.Mode = config.NotifyFatal
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &submissionService{
		submissions: submissions,
		export:      export,
		transport:   transport,
		sheet:       sheet,
		mailErrors:  mailErrors,
		sheetErrors: sheetErrors,
		opts:        opts,
		logger:      logger,
	}
}

// Submit validates, stores and announces one form post. Once the row is in
// the log the submission counts as accepted, whatever happens afterwards.
func (s *submissionService) Submit(ctx context.Context, payload models.Payload, meta models.RequestMeta) (*SubmitResult, error) {
	if payload.IsHoneypot() {
		s.logger.Info("Discarded honeypot submission", zap.String("ip", meta.IP))
		return &SubmitResult{Discarded: true}, nil
	}

	sub := models.NewSubmission(payload, meta, timeNow())
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	logger := s.logger.With(
		zap.String("submission_id", id),
		zap.String("form_type", sub.FormType),
	)

	if err := s.submissions.Append(ctx, models.SubmissionHeader, sub.Record()); err != nil {
		logger.Error("Failed to append submission", zap.Error(err))
		return nil, &models.StorageError{Err: err}
	}
	logger.Info("Stored submission", logging.Email("email", sub.Email))

	if err := s.export.Regenerate(ctx); err != nil {
		logger.Warn("Failed to regenerate export", zap.Error(err))
	}

	msg := ComposeNotification(sub, s.opts)
	// Notification outlives a client that hangs up mid-request
	detached := context.WithoutCancel(ctx)

	if s.opts.Mode == config.NotifyBestEffort {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.dispatch(detached, logger, sub, msg)
		}()
		return &SubmitResult{ID: id, Deferred: true}, nil
	}

	if err := s.dispatch(detached, logger, sub, msg); err != nil {
		return &SubmitResult{ID: id}, &models.NotificationError{Err: err}
	}
	return &SubmitResult{ID: id}, nil
}

// dispatch sends the notification then mirrors the row to the spreadsheet.
// Only the mail error is returned; spreadsheet failures are never fatal.
func (s *submissionService) dispatch(ctx context.Context, logger *zap.Logger, sub *models.Submission, msg mailer.Message) error {
	mailErr := s.sendMail(ctx, logger, sub, msg)
	s.appendSheet(ctx, logger, sub)
	return mailErr
}

func (s *submissionService) sendMail(ctx context.Context, logger *zap.Logger, sub *models.Submission, msg mailer.Message) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	err := s.transport.Send(ctx, msg)
	if err == nil {
		logger.Info("Sent notification", zap.String("transport", s.transport.Name()))
		return nil
	}

	logger.Error("Failed to send notification", zap.String("transport", s.transport.Name()), zap.Error(err))
	if werr := s.mailErrors.Write(logging.RedactText(err.Error()),
		zap.String("submitted_at", sub.SubmittedAt),
		zap.String("form_type", sub.FormType),
		zap.String("transport", s.transport.Name()),
	); werr != nil {
		logger.Warn("Failed to write mail error log", zap.String("path", s.mailErrors.Path()), zap.Error(werr))
	}
	return err
}

func (s *submissionService) appendSheet(ctx context.Context, logger *zap.Logger, sub *models.Submission) {
	if s.sheet == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	err := s.sheet.AppendRow(ctx, models.SubmissionHeader, sub.Record())
	if err == nil {
		logger.Debug("Appended submission to spreadsheet")
		return
	}

	logger.Warn("Failed to append submission to spreadsheet", zap.Error(err))
	if werr := s.sheetErrors.Write(logging.RedactText(err.Error()),
		zap.String("submitted_at", sub.SubmittedAt),
		zap.String("form_type", sub.FormType),
	); werr != nil {
		logger.Warn("Failed to write sheets error log", zap.String("path", s.sheetErrors.Path()), zap.Error(werr))
	}
}

func (s *submissionService) Wait() {
	s.wg.Wait()
}

// ComposeNotification builds the staff email for sub. Replies go to the
// submitter when an email address was given.
func ComposeNotification(sub *models.Submission, opts NotifyOptions) mailer.Message {
	replyTo := sub.Email
	if replyTo == "" {
		replyTo = opts.ReplyTo
	}
	if replyTo == "" {
		replyTo = opts.From
	}

	var lines []string
	for _, f := range sub.Fields() {
		if f.Value == "" {
			continue
		}
		lines = append(lines, models.FieldLabel(f.Name)+": "+f.Value)
	}

	return mailer.Message{
		To:      opts.To,
		From:    opts.From,
		ReplyTo: replyTo,
		Subject: "[Website] " + models.FieldLabel(sub.FormType) + " submission",
		Body:    strings.Join(lines, "\n"),
	}
}
