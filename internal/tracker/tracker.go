// Package tracker orchestrates the disclosure processing pipeline:
// change detection, document download, trade extraction, notification,
// and repository commit. Cycles run one at a time; a cycle requested
// while another is in flight is skipped, never queued.
package tracker

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/finwatch/disclosure-tracker/internal/extract"
	"github.com/finwatch/disclosure-tracker/internal/repository"
	"github.com/finwatch/disclosure-tracker/pkg/models"
)

// Detector finds filings not yet recorded in the repository.
type Detector interface {
	// Check returns newly identified filings in listing order and
	// whether the aggregate entry count rose. It never fails; transport
	// errors yield (nil, false).
	Check(ctx context.Context) ([]models.Filing, bool)
}

// Downloader fetches raw document bytes from an absolute URL.
type Downloader interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

// Notifier delivers a formatted disclosure report. A nil error is the
// truthful send result that allows the filing to be committed.
type Notifier interface {
	Notify(filing models.Filing, trades []models.Trade, pdfData []byte) error
}

// Tracker runs the processing pipeline on a fixed schedule.
type Tracker struct {
	detector   Detector
	downloader Downloader
	extractor  extract.Extractor
	notifier   Notifier
	repo       *repository.Repository
	interval   time.Duration
	log        *slog.Logger

	// flight guards cycle entry: Idle when a permit is available,
	// Running otherwise. TryAcquire is the atomic transition.
	flight *semaphore.Weighted
}

// New assembles a tracker from its collaborators.
func New(det Detector, dl Downloader, ex extract.Extractor, n Notifier,
	repo *repository.Repository, interval time.Duration, log *slog.Logger) *Tracker {
	return &Tracker{
		detector:   det,
		downloader: dl,
		extractor:  ex,
		notifier:   n,
		repo:       repo,
		interval:   interval,
		log:        log,
		flight:     semaphore.NewWeighted(1),
	}
}

// Process runs one pipeline cycle unless one is already in flight, in
// which case the request is skipped and logged.
func (t *Tracker) Process(ctx context.Context) {
	if !t.flight.TryAcquire(1) {
		t.log.Info("previous cycle still running, skipping this execution")
		return
	}
	defer t.flight.Release(1)

	t.process(ctx)
}

// process executes one detect-download-extract-notify-commit cycle.
// Filings are handled strictly sequentially; a failure on one filing
// moves on to the next. Only a successful send commits the filing
// identity, so failed filings are naturally retried next cycle.
func (t *Tracker) process(ctx context.Context) {
	filings, countIncreased := t.detector.Check(ctx)

	if countIncreased && len(filings) == 0 {
		t.log.Info("total disclosure count increased but no new items found, will check again next cycle")
	}

	for _, filing := range filings {
		identity := filing.Identity()
		t.log.Info("processing disclosure", "identity", identity)

		data, err := t.downloader.Download(ctx, filing.DocumentURL)
		if err != nil {
			t.log.Error("failed to download document",
				"identity", identity, "url", filing.DocumentURL, "error", err)
			continue
		}

		trades := extract.FromPDF(data, t.extractor)

		if err := t.notifier.Notify(filing, trades, data); err != nil {
			t.log.Error("failed to send notification", "identity", identity, "error", err)
			continue
		}

		t.repo.Record(identity)
		t.repo.Persist()
	}
}

// Run executes an immediate first cycle, then one cycle per interval
// until ctx is cancelled. Cancellation interrupts the timer wait, not
// an in-flight cycle.
func (t *Tracker) Run(ctx context.Context) {
	t.log.Info("starting disclosure tracker", "interval", t.interval)

	t.Process(ctx)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.log.Info("shutting down disclosure tracker")
			return
		case <-ticker.C:
			t.Process(ctx)
		}
	}
}
