package export

import (
	"encoding/csv"
	"strings"
	"testing"

	"gcexport/internal/garmin"
)

func f64(v float64) *float64 { return &v }

func i64(v int64) *int64 { return &v }

func baseSummary() *garmin.ActivitySummary {
	return &garmin.ActivitySummary{
		ActivityID:     1001,
		ActivityName:   "Morning Run",
		StartTimeLocal: "2020-01-01 10:00:00",
		StartTimeGMT:   "2020-01-01 15:00:00",
		Duration:       f64(3600),
		BeginTimestamp: i64(1577890800000),
		ActivityType:   &garmin.ActivityType{TypeID: 1, ParentTypeID: 17, TypeKey: "running"},
		EventType:      &garmin.EventType{TypeKey: "uncategorized"},
	}
}

func makeRecord(t *testing.T, summary *garmin.ActivitySummary, detail *garmin.ActivityDetail, device *garmin.Device) *Record {
	t.Helper()
	if detail == nil {
		detail = &garmin.ActivityDetail{ActivityID: summary.ActivityID, Summary: &garmin.DetailSummary{}}
	}
	rec, err := NewRecord(summary, detail, device)
	if err != nil {
		t.Fatalf("new record: %v", err)
	}
	return rec
}

func parseRow(t *testing.T, row string) []string {
	t.Helper()
	reader := csv.NewReader(strings.NewReader(row))
	fields, err := reader.Read()
	if err != nil {
		t.Fatalf("parse catalog row %q: %v", row, err)
	}
	return fields
}

func TestTrunc6TruncatesNotRounds(t *testing.T) {
	cases := map[float64]string{
		1.1234567: "1.123456",
		0.0000009: "0.000000",
		45.5:      "45.500000",
	}
	for input, want := range cases {
		if got := trunc6(input); got != want {
			t.Fatalf("trunc6(%v) = %q, want %q", input, got, want)
		}
	}
}

func TestPaceOrSpeed(t *testing.T) {
	// 10 km/h running pace is six minutes per kilometer.
	if got := paceOrSpeed(1, 17, 10/3.6); got != "06:00" {
		t.Fatalf("running pace = %q, want 06:00", got)
	}
	// 36 km/h cycling stays a speed.
	if got := paceOrSpeed(10, 2, 10); got != "36.0" {
		t.Fatalf("cycling speed = %q, want 36.0", got)
	}
	// parentTypeId alone selects pace too.
	if got := paceOrSpeed(42, 9, 10/3.6); got != "06:00" {
		t.Fatalf("walking pace by parent type = %q, want 06:00", got)
	}
}

func TestHhmmss(t *testing.T) {
	cases := map[float64]string{
		3661:  "01:01:01",
		360:   "00:06:00",
		86400: "1 day, 0:00:00",
	}
	for input, want := range cases {
		if got := hhmmss(input); got != want {
			t.Fatalf("hhmmss(%v) = %q, want %q", input, got, want)
		}
	}
}

func TestOffsetReconstruction(t *testing.T) {
	rec := makeRecord(t, baseSummary(), nil, nil)
	if zone := rec.Start.Format("-07:00"); zone != "-05:00" {
		t.Fatalf("expected -05:00 offset, got %q", zone)
	}
	if rec.Start.Format("2006-01-02 15:04:05") != "2020-01-01 10:00:00" {
		t.Fatalf("local wall clock lost: %v", rec.Start)
	}
}

func TestHeaderAndRowArityMatch(t *testing.T) {
	header := parseRow(t, Header())
	row := parseRow(t, ProjectRow(makeRecord(t, baseSummary(), nil, nil)))
	if len(header) != len(catalogColumns) {
		t.Fatalf("header has %d columns, schema has %d", len(header), len(catalogColumns))
	}
	if len(row) != len(header) {
		t.Fatalf("row has %d cells for %d headers", len(row), len(header))
	}
	if header[0] != "Activity name" || header[len(header)-1] != "Sample count" {
		t.Fatalf("unexpected header boundaries: %q ... %q", header[0], header[len(header)-1])
	}
}

func TestQuoteDoubling(t *testing.T) {
	summary := baseSummary()
	summary.ActivityName = `He said "hi"`
	row := ProjectRow(makeRecord(t, summary, nil, nil))
	if !strings.HasPrefix(row, `"He said ""hi""",`) {
		t.Fatalf("embedded quotes not doubled: %q", row)
	}
}

func TestElevationMutualExclusivity(t *testing.T) {
	detail := &garmin.ActivityDetail{Summary: &garmin.DetailSummary{
		ElevationGain: f64(120.456),
		ElevationLoss: f64(119.454),
		MinElevation:  f64(10),
		MaxElevation:  f64(130.5),
	}}

	gainUncorrected, gainCorrected := 10, 35

	for _, corrected := range []bool{false, true} {
		summary := baseSummary()
		summary.ElevationCorrected = corrected
		fields := parseRow(t, ProjectRow(makeRecord(t, summary, detail, nil)))

		uncorrectedSet := fields[gainUncorrected] != ""
		correctedSet := fields[gainCorrected] != ""
		if uncorrectedSet == correctedSet {
			t.Fatalf("corrected=%v: exactly one elevation gain column must be set, got uncorrected=%q corrected=%q",
				corrected, fields[gainUncorrected], fields[gainCorrected])
		}
		if corrected != correctedSet {
			t.Fatalf("corrected=%v populated the wrong column pair", corrected)
		}
	}

	summary := baseSummary()
	summary.ElevationCorrected = false
	fields := parseRow(t, ProjectRow(makeRecord(t, summary, detail, nil)))
	if fields[gainUncorrected] != "120.46" {
		t.Fatalf("elevation gain rounding: got %q, want 120.46", fields[gainUncorrected])
	}
}

func TestReservedColumnsStayEmpty(t *testing.T) {
	summary := baseSummary()
	summary.MaxHR = f64(185)
	fields := parseRow(t, ProjectRow(makeRecord(t, summary, nil, nil)))

	// Min. heart rate, Avg. temp, and Sample count have no remote source.
	for _, idx := range []int{13, 20, 39} {
		if fields[idx] != "" {
			t.Fatalf("reserved column %d should be empty, got %q", idx, fields[idx])
		}
	}
	if fields[14] != "185" {
		t.Fatalf("max heart rate = %q, want 185", fields[14])
	}
}

func TestCoordinateZeroTreatedAsAbsent(t *testing.T) {
	summary := baseSummary()
	summary.StartLatitude = f64(0)
	summary.StartLongitude = f64(-71.0589012345)
	fields := parseRow(t, ProjectRow(makeRecord(t, summary, nil, nil)))

	if fields[31] != "" {
		t.Fatalf("zero latitude should render empty, got %q", fields[31])
	}
	if fields[32] != "-71.058902" {
		t.Fatalf("longitude = %q, want -71.058902", fields[32])
	}
}

func TestZeroElapsedDurationFallsBackToSummary(t *testing.T) {
	detail := &garmin.ActivityDetail{Summary: &garmin.DetailSummary{ElapsedDuration: f64(0)}}
	rec := makeRecord(t, baseSummary(), detail, nil)
	if rec.Duration == nil || *rec.Duration != 3600 {
		t.Fatalf("zero elapsed duration should yield the summary duration, got %v", rec.Duration)
	}
}

func TestZeroSpeedRendersEmptyCell(t *testing.T) {
	// A zero average speed on a pace-based type must not divide into an
	// infinite pace.
	summary := baseSummary()
	summary.AverageSpeed = f64(0)
	fields := parseRow(t, ProjectRow(makeRecord(t, summary, nil, nil)))
	if fields[6] != "" {
		t.Fatalf("zero speed should render empty, got %q", fields[6])
	}

	summary.ActivityType = &garmin.ActivityType{TypeID: 10, ParentTypeID: 2, TypeKey: "road_biking"}
	fields = parseRow(t, ProjectRow(makeRecord(t, summary, nil, nil)))
	if fields[6] != "" {
		t.Fatalf("zero speed should render empty for speed types too, got %q", fields[6])
	}
}

func TestDetailOverridesSummaryCoordinates(t *testing.T) {
	summary := baseSummary()
	summary.StartLatitude = f64(40.0)
	detail := &garmin.ActivityDetail{Summary: &garmin.DetailSummary{StartLatitude: f64(41.5)}}
	rec := makeRecord(t, summary, detail, nil)
	if lat := rec.StartLatitude(); lat == nil || *lat != 41.5 {
		t.Fatalf("detail coordinate should win, got %v", lat)
	}
}

func TestDeviceColumn(t *testing.T) {
	device := &garmin.Device{ProductDisplayName: "Forerunner 235", VersionString: "7.90"}
	fields := parseRow(t, ProjectRow(makeRecord(t, baseSummary(), nil, device)))
	if fields[27] != "Forerunner 235 7.90" {
		t.Fatalf("device column = %q", fields[27])
	}

	fields = parseRow(t, ProjectRow(makeRecord(t, baseSummary(), nil, nil)))
	if fields[27] != "" {
		t.Fatalf("device column should be empty without a device, got %q", fields[27])
	}
}

func TestEndTimestampDerivation(t *testing.T) {
	summary := baseSummary()
	detail := &garmin.ActivityDetail{Summary: &garmin.DetailSummary{ElapsedDuration: f64(5400.4)}}
	fields := parseRow(t, ProjectRow(makeRecord(t, summary, detail, nil)))

	// Detail elapsedDuration (5400s) wins over the summary duration (3600s).
	if fields[3] != "01:30:00" {
		t.Fatalf("duration column = %q, want 01:30:00", fields[3])
	}
	if fields[24] != "Wed, 01 Jan 2020 11:30" {
		t.Fatalf("end timestamp = %q", fields[24])
	}
	if fields[26] != "1577896200000" {
		t.Fatalf("end timestamp ms = %q", fields[26])
	}
}

func TestBeginTimestampColumns(t *testing.T) {
	fields := parseRow(t, ProjectRow(makeRecord(t, baseSummary(), nil, nil)))
	if fields[2] != "Wed, 01 Jan 2020 10:00" {
		t.Fatalf("begin timestamp = %q", fields[2])
	}
	if fields[25] != "1577890800000" {
		t.Fatalf("begin timestamp ms = %q", fields[25])
	}
	if fields[30] != "-05:00" {
		t.Fatalf("time zone column = %q", fields[30])
	}
	if fields[23] != "https://connect.garmin.com/modern/activity/1001" {
		t.Fatalf("permalink = %q", fields[23])
	}
}
