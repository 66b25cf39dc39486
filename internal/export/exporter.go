package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/schollz/progressbar/v3"

	"gcexport/internal/fileutil"
	"gcexport/internal/garmin"
	"gcexport/internal/logging"
	"gcexport/internal/services"
)

// ArchiveName is the raw page side-channel file inside the export directory.
const ArchiveName = "activities.json"

const lockName = ".gcexport.lock"

// pageLimit is the most the search endpoint is asked for in one request.
// conservativeChunk deliberately stays far below it whenever more than
// pageLimit activities remain: larger requests have been rejected server-side
// in the past, and that enforcement is undocumented. Do not "optimize" this.
const (
	pageLimit         = 100
	conservativeChunk = 10
)

// Options configures one export run.
type Options struct {
	Username  string
	Password  string
	Directory string
	Format    Format
	// Count is the number of recent activities to fetch; ignored when All.
	Count int
	All   bool
	Unzip bool
	// ShowProgress renders a terminal progress bar over the activity loop.
	ShowProgress bool
}

// Summary reports what a run did.
type Summary struct {
	Total       int
	Downloaded  int
	Skipped     int
	Empty       int
	CatalogRows int
}

// Exporter sequences a full run: authenticate once, page through the activity
// list, and process every activity completely (detail, device, artifact,
// catalog row) before the next. Strictly sequential, one request in flight at
// a time, activities processed in server order.
type Exporter struct {
	client *garmin.Client
	opts   Options
	logger *slog.Logger
}

// New constructs an Exporter.
func New(client *garmin.Client, opts Options, logger *slog.Logger) *Exporter {
	return &Exporter{
		client: client,
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "export"),
	}
}

// Run performs the export. Any error aborts immediately; nothing written so
// far is rolled back, and a rerun recovers through the idempotent
// per-artifact skip.
func (e *Exporter) Run(ctx context.Context) (Summary, error) {
	var summary Summary
	dir := e.opts.Directory

	if fileutil.Exists(dir) {
		e.logger.Warn("output directory already exists; skipping downloaded files and appending to the catalog",
			logging.String("directory", dir))
	} else if err := fileutil.EnsureDir(dir); err != nil {
		return summary, err
	}

	lock := flock.New(filepath.Join(dir, lockName))
	locked, err := lock.TryLock()
	if err != nil {
		return summary, fmt.Errorf("acquire export lock: %w", err)
	}
	if !locked {
		return summary, services.Wrap(services.ErrConfiguration, "export", "lock",
			fmt.Sprintf("another export is already running against %s", dir), nil)
	}
	defer func() { _ = lock.Unlock() }()

	if err := e.client.Authenticate(ctx, e.opts.Username, e.opts.Password); err != nil {
		return summary, err
	}

	catalog, existed, err := OpenCatalog(filepath.Join(dir, CatalogName))
	if err != nil {
		return summary, err
	}
	defer catalog.Close()
	if existed {
		e.logger.Info("appending to existing catalog")
	}

	archive, err := os.OpenFile(filepath.Join(dir, ArchiveName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return summary, fmt.Errorf("open page archive: %w", err)
	}
	defer archive.Close()

	enumerator := garmin.NewEnumerator(e.client, archive, logging.NewComponentLogger(e.logger, "enumerate"))
	devices := garmin.NewDeviceCache(e.client, dir, logging.NewComponentLogger(e.logger, "device"))
	downloader := NewArtifactDownloader(e.client, dir, e.opts.Format, e.opts.Unzip, e.logger)

	total := e.opts.Count
	if e.opts.All {
		total, err = enumerator.Total(ctx)
		if err != nil {
			return summary, err
		}
	}
	summary.Total = total

	var bar *progressbar.ProgressBar
	if e.opts.ShowProgress && total > 0 {
		bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("activities"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	processed := 0
	for processed < total {
		chunk := total - processed
		if chunk > pageLimit {
			chunk = conservativeChunk
		}

		page, err := enumerator.FetchPage(ctx, processed, chunk)
		if err != nil {
			return summary, err
		}
		if len(page) == 0 {
			e.logger.Warn("server returned no activities before the requested count was reached",
				logging.Int("processed", processed), logging.Int("requested", total))
			break
		}

		for i := range page {
			if err := e.processActivity(ctx, &page[i], devices, downloader, catalog, &summary); err != nil {
				return summary, err
			}
			if bar != nil {
				_ = bar.Add(1)
			}
		}
		processed += chunk
	}

	e.collectOriginals(dir)
	e.logger.Info("export finished",
		logging.Int("downloaded", summary.Downloaded),
		logging.Int("skipped", summary.Skipped),
		logging.Int("empty", summary.Empty),
		logging.Int("catalog_rows", summary.CatalogRows))
	return summary, nil
}

func (e *Exporter) processActivity(ctx context.Context, summary *garmin.ActivitySummary, devices *garmin.DeviceCache, downloader *ArtifactDownloader, catalog *Catalog, s *Summary) error {
	ctx = services.WithActivityID(ctx, summary.ActivityID)
	e.logger.Info("processing activity",
		logging.Int64(logging.FieldActivityID, summary.ActivityID),
		logging.String("name", summary.ActivityName))

	detail, err := e.client.FetchDetail(ctx, summary.ActivityID)
	if err != nil {
		return err
	}

	var device *garmin.Device
	if installationID := detail.InstallationID(); installationID != 0 {
		device, err = devices.Resolve(ctx, installationID)
		if err != nil {
			return err
		}
	}

	rec, err := NewRecord(summary, detail, device)
	if err != nil {
		return err
	}
	e.logActivity(rec)

	outcome, err := downloader.Download(ctx, rec)
	if err != nil {
		return err
	}
	if outcome == OutcomeSkipped {
		// The catalog row was written by the run that produced the artifact.
		s.Skipped++
		return nil
	}

	if err := catalog.Append(rec); err != nil {
		return err
	}
	s.CatalogRows++
	if outcome == OutcomeEmpty {
		s.Empty++
	} else {
		s.Downloaded++
	}
	return nil
}

func (e *Exporter) logActivity(rec *Record) {
	attrs := []any{
		logging.Int64(logging.FieldActivityID, rec.Summary.ActivityID),
		logging.String("start", rec.Start.Format("2006-01-02T15:04:05-07:00")),
	}
	if rec.Duration != nil {
		attrs = append(attrs, logging.String("duration", hhmmss(*rec.Duration)))
	}
	if rec.Summary.Distance != nil {
		attrs = append(attrs, logging.String("distance_km", fmt.Sprintf("%.3f", *rec.Summary.Distance/1000)))
	}
	e.logger.Debug("activity merged", attrs...)
}

// collectOriginals copies extracted FIT files into the todos directory, which
// is expected to exist already; the pipeline never creates it.
func (e *Exporter) collectOriginals(dir string) {
	dest := filepath.Join(dir, "todos")
	if !fileutil.Exists(dest) {
		e.logger.Debug("no todos directory, skipping FIT collection")
		return
	}
	matches, err := filepath.Glob(filepath.Join(dir, "*-Semana*", "*.fit"))
	if err != nil {
		e.logger.Warn("glob FIT files", logging.Error(err))
		return
	}
	for _, match := range matches {
		target := filepath.Join(dest, filepath.Base(match))
		if err := fileutil.CopyFile(match, target); err != nil {
			e.logger.Warn("copy FIT file", logging.String("file", match), logging.Error(err))
			continue
		}
		e.logger.Info("collected FIT file", logging.String("file", match))
	}
}
