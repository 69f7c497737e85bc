package services

import (
	"go.uber.org/zap"

	"github.com/vukatravels/site/cache"
	"github.com/vukatravels/site/config"
	"github.com/vukatravels/site/logging"
	"github.com/vukatravels/site/mailer"
	"github.com/vukatravels/site/repositories"
	"github.com/vukatravels/site/sheets"
)

// Services holds all service instances
type Services struct {
	Submission   SubmissionService
	Export       ExportService
	Revalidation RevalidationService
	Blog         BlogService
	Activity     ActivityService
}

// Dependencies are the external collaborators the services are built from
type Dependencies struct {
	Config    *config.Config
	Repos     *repositories.Repositories
	Transport mailer.Transport
	Sheet     sheets.Sink
	Cache     cache.ContentCache
	CMS       ContentSource
	Logger    *zap.Logger
}

// NewServices creates and initializes all service instances
func NewServices(deps Dependencies) *Services {
	cfg := deps.Config
	export := NewExportService(deps.Repos.Submissions, deps.Repos.Export)

	return &Services{
		Submission: NewSubmissionService(
			deps.Repos.Submissions,
			export,
			deps.Transport,
			deps.Sheet,
			logging.NewDiagnosticLog(cfg.MailErrorLogPath()),
			logging.NewDiagnosticLog(cfg.SheetsErrorLogPath()),
			NotifyOptions{
				Mode:    cfg.Notify.FailureMode,
				Timeout: cfg.Notify.Timeout,
				To:      cfg.Mail.To,
				From:    cfg.Mail.From,
				ReplyTo: cfg.Mail.ReplyTo,
			},
			deps.Logger.Named("submission"),
		),
		Export:       export,
		Revalidation: NewRevalidationService(cfg.CMS.RevalidateSecret, deps.Cache, deps.Repos.Revalidations, deps.Logger.Named("revalidate")),
		Blog:         NewBlogService(deps.CMS, deps.Cache, deps.Logger.Named("blog")),
		Activity:     NewActivityService(deps.Repos.Audit, deps.Repos.Revalidations),
	}
}
