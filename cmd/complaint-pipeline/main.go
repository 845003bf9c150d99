package main

import (
	"context"
	"os"

	"go.uber.org/zap"

	"complaint-pipeline/internal/common/config"
	"complaint-pipeline/internal/common/logger"
	"complaint-pipeline/internal/common/metrics"
	"complaint-pipeline/internal/dropbox"
	"complaint-pipeline/internal/event"
	"complaint-pipeline/internal/ledger"
	"complaint-pipeline/internal/mailer"
	"complaint-pipeline/internal/pipeline"
	"complaint-pipeline/internal/report"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		// No config means no logger config either; bootstrap one.
		logger.New("info", "json").Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	ctx := context.Background()

	sub, err := event.LoadSubmission(cfg.Event.Path)
	if err != nil {
		log.Error("submission parse failed", map[string]interface{}{"error": err.Error()})
		return 1
	}

	store := ledger.NewStore(cfg.Ledger.Path, cfg.Ledger.LockPath, log)
	alloc := ledger.NewAllocator(store, log)
	renderer := report.NewRenderer(cfg.Report.OutputDir, log)

	sender, err := mailer.New(ctx, cfg.Mail, log)
	if err != nil {
		log.Error("mailer init failed", map[string]interface{}{"error": err.Error()})
		return 1
	}

	var storage pipeline.Storage
	if cfg.Dropbox.Enabled {
		storage = dropbox.NewUploader(cfg.Dropbox, log)
	}

	var mailSender pipeline.Mailer
	if sender != nil {
		mailSender = sender
	}

	p := pipeline.New(cfg, store, alloc, renderer, mailSender, storage, log)

	result, err := p.Run(ctx, sub)

	// The job exits right after, so telemetry goes out via push.
	if pushErr := metrics.Push(cfg.Metrics.PushgatewayURL, cfg.Metrics.JobName); pushErr != nil {
		log.Warn("metrics push failed", map[string]interface{}{"error": pushErr.Error()})
	}

	if err != nil {
		log.Error("pipeline run failed", map[string]interface{}{"error": err.Error()})
		return 1
	}

	log.Info("pipeline run complete", map[string]interface{}{
		"complaintId": result.ComplaintID,
		"pdf":         result.PDFFilename,
		"mailSent":    result.MailSent,
		"uploadPath":  result.UploadPath,
	})
	return 0
}
