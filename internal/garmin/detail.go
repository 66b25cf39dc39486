package garmin

import (
	"context"
	"fmt"

	"gcexport/internal/logging"
	"gcexport/internal/services"
)

// detailRetry is the policy applied around the fetch-and-parse step: retry
// while the parsed result is incomplete, up to attempts total requests. The
// remote service intermittently returns a well-formed detail with an empty
// summary (observed a handful of times per thousand calls); a plain HTTP
// error is never retried.
type detailRetry struct {
	attempts int
	complete func(*ActivityDetail) bool
}

var defaultDetailRetry = detailRetry{
	attempts: 3,
	complete: func(d *ActivityDetail) bool { return d.Summary != nil },
}

func (p detailRetry) run(fetch func() (*ActivityDetail, error)) (*ActivityDetail, bool, error) {
	for attempt := 1; attempt <= p.attempts; attempt++ {
		detail, err := fetch()
		if err != nil {
			return nil, false, err
		}
		if p.complete(detail) {
			return detail, true, nil
		}
	}
	return nil, false, nil
}

// FetchDetail retrieves and parses the detail record for one activity. An
// incomplete response (empty summaryDTO) is re-requested up to three times
// before failing with services.ErrIncompleteDetail; downstream merge and
// artifact naming depend on the summary, so the failure is fatal to the run.
func (c *Client) FetchDetail(ctx context.Context, activityID int64) (*ActivityDetail, error) {
	attempt := 0
	detail, ok, err := defaultDetailRetry.run(func() (*ActivityDetail, error) {
		attempt++
		if attempt > 1 {
			c.logger.Warn("detail summary empty, retrying",
				logging.Int64(logging.FieldActivityID, activityID),
				logging.Int("attempt", attempt))
		}
		body, err := c.do(ctx, c.endpoints.activity(activityID), nil)
		if err != nil {
			return nil, fmt.Errorf("fetch detail for activity %d: %w", activityID, err)
		}
		return parseDetail(body)
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, services.Wrap(services.ErrIncompleteDetail, "detail", "fetch",
			fmt.Sprintf("no summary after %d tries for activity %d", defaultDetailRetry.attempts, activityID), nil)
	}
	return detail, nil
}
