package export

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"gcexport/internal/fileutil"
	"gcexport/internal/garmin"
	"gcexport/internal/logging"
	"gcexport/internal/services"
)

// Outcome reports what Download did for one activity.
type Outcome int

const (
	// OutcomeDownloaded is a fresh non-empty artifact on disk.
	OutcomeDownloaded Outcome = iota
	// OutcomeSkipped means the artifact (or its extracted sibling) already
	// existed; no request was made.
	OutcomeSkipped
	// OutcomeEmpty is a zero-length artifact written for a documented
	// no-data condition (no GPS track, no generated TCX, no original file).
	OutcomeEmpty
)

// ArtifactDownloader fetches the per-activity payload in one format,
// idempotently: an existing target file short-circuits before any network
// traffic, which is what makes a rerun after interruption safe.
type ArtifactDownloader struct {
	client *garmin.Client
	dir    string
	format Format
	unzip  bool
	logger *slog.Logger
}

// NewArtifactDownloader constructs a downloader rooted at dir.
func NewArtifactDownloader(client *garmin.Client, dir string, format Format, unzip bool, logger *slog.Logger) *ArtifactDownloader {
	return &ArtifactDownloader{
		client: client,
		dir:    dir,
		format: format,
		unzip:  unzip,
		logger: logging.NewComponentLogger(logger, "artifact"),
	}
}

// weekDir partitions artifacts by calendar year and ISO week of the begin
// timestamp, matching the layout of prior exports.
func (d *ArtifactDownloader) weekDir(r *Record) (string, error) {
	if r.Summary.BeginTimestamp == nil {
		return "", services.Wrap(services.ErrValidation, "artifact", "target path",
			fmt.Sprintf("activity %d has no begin timestamp", r.Summary.ActivityID), nil)
	}
	begin := timeFromMillis(*r.Summary.BeginTimestamp)
	_, week := begin.ISOWeek()
	return filepath.Join(d.dir, fmt.Sprintf("%d-Semana%d", begin.Year(), week)), nil
}

// Download fetches one activity's artifact. Two failure classes are
// downgraded to a zero-length artifact instead of propagating: HTTP 500 under
// TCX (no TCX was ever generated for manual GPX uploads) and HTTP 404 under
// original (manually entered activity, nothing was uploaded). Every other
// unexpected status aborts the run.
func (d *ArtifactDownloader) Download(ctx context.Context, r *Record) (Outcome, error) {
	id := r.Summary.ActivityID
	weekDir, err := d.weekDir(r)
	if err != nil {
		return 0, err
	}

	target := filepath.Join(weekDir, fmt.Sprintf("activity_%d%s", id, d.format.Ext()))
	if fileutil.Exists(target) {
		d.logger.Info("artifact already exists, skipping", logging.Int64(logging.FieldActivityID, id))
		return OutcomeSkipped, nil
	}
	if d.format == FormatOriginal {
		// Regardless of the unzip setting, an extracted FIT file counts as done.
		fitSibling := filepath.Join(weekDir, fmt.Sprintf("%d.fit", id))
		if fileutil.Exists(fitSibling) {
			d.logger.Info("extracted original already exists, skipping", logging.Int64(logging.FieldActivityID, id))
			return OutcomeSkipped, nil
		}
	}

	if err := fileutil.EnsureDir(weekDir); err != nil {
		return 0, err
	}

	data, err := d.fetch(ctx, id)
	if err != nil {
		data, err = d.downgrade(id, err)
		if err != nil {
			return 0, err
		}
	}

	if err := os.WriteFile(target, data, 0o644); err != nil {
		return 0, fmt.Errorf("write artifact %s: %w", target, err)
	}

	if d.format == FormatGPX && len(data) > 0 {
		d.inspectTrack(id, data)
	}
	if d.format == FormatOriginal && d.unzip {
		if err := d.extract(target, weekDir, id); err != nil {
			return 0, err
		}
	}

	if len(data) == 0 {
		return OutcomeEmpty, nil
	}
	return OutcomeDownloaded, nil
}

func (d *ArtifactDownloader) fetch(ctx context.Context, id int64) ([]byte, error) {
	switch d.format {
	case FormatTCX:
		return d.client.DownloadTCX(ctx, id)
	case FormatOriginal:
		return d.client.DownloadOriginal(ctx, id)
	default:
		return d.client.DownloadGPX(ctx, id)
	}
}

// downgrade maps the two documented per-format failure conditions to an empty
// artifact; anything else stays fatal.
func (d *ArtifactDownloader) downgrade(id int64, err error) ([]byte, error) {
	var statusErr *garmin.StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.Code == http.StatusInternalServerError && d.format == FormatTCX:
			d.logger.Info("no TCX generated for this activity, writing empty file",
				logging.Int64(logging.FieldActivityID, id))
			return nil, nil
		case statusErr.Code == http.StatusNotFound && d.format == FormatOriginal:
			d.logger.Info("no original file retained for this activity, writing empty file",
				logging.Int64(logging.FieldActivityID, id))
			return nil, nil
		}
	}
	return nil, services.Wrap(services.ErrTransport, "artifact", "download",
		fmt.Sprintf("activity %d", id), err)
}

// inspectTrack decides a diagnostic outcome only: a GPX without track points
// is a legitimate export (treadmill runs), a GPX that does not parse is worth
// a warning, neither fails the run.
func (d *ArtifactDownloader) inspectTrack(id int64, data []byte) {
	points, err := countTrackPoints(data)
	switch {
	case err != nil:
		d.logger.Warn("downloaded GPX does not parse as track markup",
			logging.Int64(logging.FieldActivityID, id), logging.Error(err))
	case points == 0:
		d.logger.Info("done, no track points found", logging.Int64(logging.FieldActivityID, id))
	default:
		d.logger.Info("done, GPX data saved",
			logging.Int64(logging.FieldActivityID, id), logging.Int("track_points", points))
	}
}

func (d *ArtifactDownloader) extract(archivePath, destDir string, id int64) error {
	info, err := os.Stat(archivePath)
	if err != nil {
		return fmt.Errorf("stat archive %s: %w", archivePath, err)
	}
	if info.Size() == 0 {
		// The empty archive is the idempotency marker; leave it in place.
		d.logger.Info("skipping empty archive", logging.Int64(logging.FieldActivityID, id))
		return nil
	}
	if err := extractZip(archivePath, destDir); err != nil {
		return fmt.Errorf("unpack archive for activity %d: %w", id, err)
	}
	if err := os.Remove(archivePath); err != nil {
		return fmt.Errorf("remove unpacked archive %s: %w", archivePath, err)
	}
	d.logger.Info("original artifact unpacked", logging.Int64(logging.FieldActivityID, id))
	return nil
}

func countTrackPoints(data []byte) (int, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	count := 0
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return count, err
		}
		if start, ok := token.(xml.StartElement); ok && start.Name.Local == "trkpt" {
			count++
		}
	}
}
