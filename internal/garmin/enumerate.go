package garmin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"gcexport/internal/logging"
)

// Enumerator pages through the account's activity list. Every raw page body
// is appended to the archive writer before parsing, so the remote response
// stays recoverable even when derivation logic downstream fails.
type Enumerator struct {
	client  *Client
	archive io.Writer
	logger  *slog.Logger
}

// NewEnumerator constructs an Enumerator. archive may be nil to disable the
// raw side-channel.
func NewEnumerator(client *Client, archive io.Writer, logger *slog.Logger) *Enumerator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Enumerator{client: client, archive: archive, logger: logger}
}

// FetchPage requests one page of activity summaries using an offset/limit
// query. Order is the server's (typically most-recent-first) and is preserved.
func (e *Enumerator) FetchPage(ctx context.Context, start, limit int) ([]ActivitySummary, error) {
	e.logger.Info("requesting activity page", logging.Int("start", start), logging.Int("limit", limit))
	body, err := e.client.do(ctx, e.client.endpoints.search(start, limit), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch activity page start=%d limit=%d: %w", start, limit, err)
	}

	if e.archive != nil {
		if _, err := e.archive.Write(body); err != nil {
			return nil, fmt.Errorf("archive activity page: %w", err)
		}
	}

	var items []ActivitySummary
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("parse activity page start=%d limit=%d: %w", start, limit, err)
	}
	e.logger.Debug("activity page parsed", logging.Int("count", len(items)))
	return items, nil
}

type totalEnvelope struct {
	Results struct {
		TotalFound int `json:"totalFound"`
	} `json:"results"`
}

// Total issues a one-item probe against the legacy search service and returns
// the account's total activity count from the response envelope. Used once
// per run when the caller asked for "all".
func (e *Enumerator) Total(ctx context.Context) (int, error) {
	body, err := e.client.do(ctx, e.client.endpoints.totalProbe(), nil)
	if err != nil {
		return 0, fmt.Errorf("probe activity total: %w", err)
	}
	var env totalEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return 0, fmt.Errorf("parse activity total: %w", err)
	}
	e.logger.Info("account activity total discovered", logging.Int("total", env.Results.TotalFound))
	return env.Results.TotalFound, nil
}
