package garmin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gcexport/internal/logging"
)

// DeviceCache resolves device metadata by installation id, at most one fetch
// and one raw-file write per id per run. The cache also remembers lookups
// that returned no usable body (as nil), so those are never re-fetched
// either. Cache state is process-scoped and discarded at exit.
type DeviceCache struct {
	client  *Client
	dir     string
	logger  *slog.Logger
	devices map[int64]*Device
}

// NewDeviceCache constructs a DeviceCache persisting raw responses into dir.
func NewDeviceCache(client *Client, dir string, logger *slog.Logger) *DeviceCache {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &DeviceCache{
		client:  client,
		dir:     dir,
		logger:  logger,
		devices: make(map[int64]*Device),
	}
}

// Resolve returns the device record for installationID, consulting the cache
// before the network. A zero installation id means the activity carries no
// device metadata and resolves to nil without a lookup.
func (dc *DeviceCache) Resolve(ctx context.Context, installationID int64) (*Device, error) {
	if installationID == 0 {
		return nil, nil
	}
	if device, ok := dc.devices[installationID]; ok {
		return device, nil
	}

	dc.logger.Debug("fetching device details", logging.Int64("installation_id", installationID))
	body, err := dc.client.do(ctx, dc.client.endpoints.device(installationID), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch device %d: %w", installationID, err)
	}

	path := filepath.Join(dc.dir, fmt.Sprintf("device_%d.json", installationID))
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return nil, fmt.Errorf("write device file %s: %w", path, err)
	}

	if len(bytes.TrimSpace(body)) == 0 {
		dc.devices[installationID] = nil
		return nil, nil
	}

	var device Device
	if err := json.Unmarshal(body, &device); err != nil {
		return nil, fmt.Errorf("parse device %d: %w", installationID, err)
	}
	dc.devices[installationID] = &device
	return &device, nil
}
