package export

import (
	"fmt"
	"time"

	"gcexport/internal/garmin"
)

const naiveTimestampLayout = "2006-01-02 15:04:05"

// Record is the per-activity view consumed by the artifact downloader and the
// catalog projector: summary, detail, and device merged, with the start
// instant reconstructed from the paired naive timestamps.
type Record struct {
	Summary *garmin.ActivitySummary
	Detail  *garmin.ActivityDetail
	Device  *garmin.Device

	// Start carries the fixed offset recovered from the local/GMT pair.
	Start time.Time
	// Duration is the merged elapsed duration in seconds: the detail's
	// elapsedDuration when present, the summary's duration otherwise.
	Duration *float64
}

// NewRecord merges one activity's summary and detail. The device may be nil.
func NewRecord(summary *garmin.ActivitySummary, detail *garmin.ActivityDetail, device *garmin.Device) (*Record, error) {
	start, err := offsetTime(summary.StartTimeLocal, summary.StartTimeGMT)
	if err != nil {
		return nil, fmt.Errorf("activity %d: %w", summary.ActivityID, err)
	}
	rec := &Record{
		Summary: summary,
		Detail:  detail,
		Device:  device,
		Start:   start,
	}
	// A zero elapsed duration counts as absent so the summary duration
	// serves, matching how prior catalogs merged the pair.
	elapsed := rec.detailSummary().ElapsedDuration
	if elapsed != nil && *elapsed == 0 {
		elapsed = nil
	}
	rec.Duration = preferFloat(elapsed, summary.Duration)
	return rec, nil
}

// offsetTime builds an offset-aware instant from the two naive timestamps the
// service reports: the whole-minute difference between local and GMT becomes
// a fixed zone attached to the local value.
func offsetTime(local, gmt string) (time.Time, error) {
	localDT, err := time.Parse(naiveTimestampLayout, local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse local start time %q: %w", local, err)
	}
	gmtDT, err := time.Parse(naiveTimestampLayout, gmt)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse GMT start time %q: %w", gmt, err)
	}
	offsetMinutes := int(localDT.Sub(gmtDT).Minutes())
	zone := time.FixedZone("LCL", offsetMinutes*60)
	return time.Date(localDT.Year(), localDT.Month(), localDT.Day(),
		localDT.Hour(), localDT.Minute(), localDT.Second(), 0, zone), nil
}

// detailSummary returns the detail's summary sub-object, or an empty value so
// field access stays nil-safe.
func (r *Record) detailSummary() *garmin.DetailSummary {
	if r.Detail != nil && r.Detail.Summary != nil {
		return r.Detail.Summary
	}
	return &garmin.DetailSummary{}
}

// preferFloat implements the merge rule: the detail field wins when present,
// the summary field serves otherwise, absence in both yields nil.
func preferFloat(detail, summary *float64) *float64 {
	if detail != nil {
		return detail
	}
	return summary
}

// StartLatitude returns the merged begin latitude.
func (r *Record) StartLatitude() *float64 {
	return preferFloat(r.detailSummary().StartLatitude, r.Summary.StartLatitude)
}

// StartLongitude returns the merged begin longitude.
func (r *Record) StartLongitude() *float64 {
	return preferFloat(r.detailSummary().StartLongitude, r.Summary.StartLongitude)
}

// EndLatitude returns the merged end latitude.
func (r *Record) EndLatitude() *float64 {
	return preferFloat(r.detailSummary().EndLatitude, r.Summary.EndLatitude)
}

// EndLongitude returns the merged end longitude.
func (r *Record) EndLongitude() *float64 {
	return preferFloat(r.detailSummary().EndLongitude, r.Summary.EndLongitude)
}

// DurationSeconds returns the merged duration rounded to whole seconds.
func (r *Record) DurationSeconds() (int64, bool) {
	if r.Duration == nil {
		return 0, false
	}
	return int64(roundHalfUp(*r.Duration)), true
}

// End returns the activity end instant when the duration is known.
func (r *Record) End() (time.Time, bool) {
	secs, ok := r.DurationSeconds()
	if !ok {
		return time.Time{}, false
	}
	return r.Start.Add(time.Duration(secs) * time.Second), true
}

// typeIDs returns the activity's typeId and parentTypeId, defaulting both to
// the "other" category when the type descriptor is absent.
func (r *Record) typeIDs() (typeID, parentTypeID int) {
	if r.Summary.ActivityType == nil {
		return 4, 4
	}
	return r.Summary.ActivityType.TypeID, r.Summary.ActivityType.ParentTypeID
}
