package garmin

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ActivityType classifies an activity; typeId and parentTypeId drive the
// pace-vs-speed unit selection downstream.
type ActivityType struct {
	TypeID       int    `json:"typeId"`
	ParentTypeID int    `json:"parentTypeId"`
	TypeKey      string `json:"typeKey"`
}

// EventType is the secondary classification reported with each activity.
type EventType struct {
	TypeKey string `json:"typeKey"`
}

// ActivitySummary is one entry of the activity search response. Optional
// numeric fields are pointers so absence survives the JSON round trip.
type ActivitySummary struct {
	ActivityID     int64  `json:"activityId"`
	ActivityName   string `json:"activityName"`
	Description    string `json:"description"`
	StartTimeLocal string `json:"startTimeLocal"`
	StartTimeGMT   string `json:"startTimeGMT"`

	Duration     *float64 `json:"duration"`
	Distance     *float64 `json:"distance"`
	AverageSpeed *float64 `json:"averageSpeed"`

	MaxHR     *float64 `json:"maxHR"`
	AverageHR *float64 `json:"averageHR"`

	AverageBikingCadence *float64 `json:"averageBikingCadenceInRevPerMinute"`
	MaxBikingCadence     *float64 `json:"maxBikingCadenceInRevPerMinute"`
	Strokes              *float64 `json:"strokes"`

	MinTemperature *float64 `json:"minTemperature"`
	MaxTemperature *float64 `json:"maxTemperature"`

	ElevationCorrected bool `json:"elevationCorrected"`

	StartLatitude  *float64 `json:"startLatitude"`
	StartLongitude *float64 `json:"startLongitude"`
	EndLatitude    *float64 `json:"endLatitude"`
	EndLongitude   *float64 `json:"endLongitude"`

	BeginTimestamp *int64 `json:"beginTimestamp"`

	ActivityType *ActivityType `json:"activityType"`
	EventType    *EventType    `json:"eventType"`
}

// DetailSummary is the summaryDTO sub-object of an activity detail.
type DetailSummary struct {
	ElapsedDuration    *float64 `json:"elapsedDuration"`
	MovingDuration     *float64 `json:"movingDuration"`
	AverageMovingSpeed *float64 `json:"averageMovingSpeed"`
	MaxSpeed           *float64 `json:"maxSpeed"`

	ElevationGain *float64 `json:"elevationGain"`
	ElevationLoss *float64 `json:"elevationLoss"`
	MinElevation  *float64 `json:"minElevation"`
	MaxElevation  *float64 `json:"maxElevation"`

	Calories *float64 `json:"calories"`

	StartLatitude  *float64 `json:"startLatitude"`
	StartLongitude *float64 `json:"startLongitude"`
	EndLatitude    *float64 `json:"endLatitude"`
	EndLongitude   *float64 `json:"endLongitude"`
}

// DetailMetadata is the metadataDTO sub-object of an activity detail.
type DetailMetadata struct {
	DeviceApplicationInstallationID int64 `json:"deviceApplicationInstallationId"`
}

// ActivityDetail is the parsed detail record for one activity. Summary is nil
// when the remote service returned an empty or missing summaryDTO.
type ActivityDetail struct {
	ActivityID int64
	Summary    *DetailSummary
	Metadata   *DetailMetadata
}

// InstallationID returns the recording device's installation id, or zero when
// the detail carries no device metadata.
func (d *ActivityDetail) InstallationID() int64 {
	if d == nil || d.Metadata == nil {
		return 0
	}
	return d.Metadata.DeviceApplicationInstallationID
}

// Device is the device metadata resolved per installation id.
type Device struct {
	ProductDisplayName string `json:"productDisplayName"`
	VersionString      string `json:"versionString"`
}

type detailEnvelope struct {
	ActivityID int64           `json:"activityId"`
	Summary    json.RawMessage `json:"summaryDTO"`
	Metadata   *DetailMetadata `json:"metadataDTO"`
}

func parseDetail(raw []byte) (*ActivityDetail, error) {
	var env detailEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("parse activity detail: %w", err)
	}
	detail := &ActivityDetail{ActivityID: env.ActivityID, Metadata: env.Metadata}
	if emptyObject(env.Summary) {
		return detail, nil
	}
	var summary DetailSummary
	if err := json.Unmarshal(env.Summary, &summary); err != nil {
		return nil, fmt.Errorf("parse activity detail summary: %w", err)
	}
	detail.Summary = &summary
	return detail, nil
}

// emptyObject reports whether raw is absent, null, or an object with no keys.
// The incompleteness condition the retry loop guards against is a present but
// keyless summaryDTO, so key count is the test, not field values.
func emptyObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return true
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return false
	}
	return len(obj) == 0
}
