package export

import (
	"fmt"
	"strconv"
	"strings"
)

// almostRFC1123 is the display layout prior catalogs used; it differs from
// RFC 1123 in dropping seconds and the zone.
const almostRFC1123 = "Mon, 02 Jan 2006 15:04"

const permalinkBase = "https://connect.garmin.com/modern/activity/"

// cell is one rendered catalog field. Quoted cells are wrapped in double
// quotes with embedded quotes doubled; the two duration columns are written
// bare, as every prior catalog did.
type cell struct {
	text   string
	quoted bool
}

func emptyCell() cell          { return cell{quoted: true} }
func quotedCell(s string) cell { return cell{text: s, quoted: true} }
func bareCell(s string) cell   { return cell{text: s} }

func (c cell) render() string {
	if !c.quoted {
		return c.text
	}
	return `"` + strings.ReplaceAll(c.text, `"`, `""`) + `"`
}

// column pairs a header name with its extractor so header and row arity can
// never drift apart.
type column struct {
	header string
	value  func(r *Record) cell
}

func optionalFloat(v *float64, format func(float64) string) cell {
	if v == nil {
		return emptyCell()
	}
	return quotedCell(format(*v))
}

// uncorrectedElevation emits v only for activities without elevation
// correction; correctedElevation is its mutually exclusive counterpart.
func uncorrectedElevation(r *Record, v *float64) cell {
	if r.Summary.ElevationCorrected || v == nil {
		return emptyCell()
	}
	return quotedCell(roundTo2(*v))
}

func correctedElevation(r *Record, v *float64) cell {
	if !r.Summary.ElevationCorrected || v == nil {
		return emptyCell()
	}
	return quotedCell(roundTo2(*v))
}

// coordinate renders a merged latitude/longitude truncated to six decimals.
// A zero coordinate is treated as absent, like every catalog before this one.
func coordinate(v *float64) cell {
	if v == nil || *v == 0 {
		return emptyCell()
	}
	return quotedCell(trunc6(*v))
}

// speedCell renders a merged speed. A zero speed is treated as absent; it
// would otherwise divide to an infinite pace for pace-based types.
func speedCell(r *Record, mps *float64) cell {
	if mps == nil || *mps == 0 {
		return emptyCell()
	}
	typeID, parentTypeID := r.typeIDs()
	return quotedCell(paceOrSpeed(typeID, parentTypeID, *mps))
}

// reservedColumn marks fields no remote data point ever populates; the schema
// keeps the column so prior files stay row-compatible.
func reservedColumn(*Record) cell { return emptyCell() }

// catalogColumns is the fixed catalog schema: order and names must be
// reproduced exactly for compatibility with files from prior runs.
var catalogColumns = []column{
	{"Activity name", func(r *Record) cell {
		if r.Summary.ActivityName == "" {
			return emptyCell()
		}
		return quotedCell(r.Summary.ActivityName)
	}},
	{"Description", func(r *Record) cell {
		if r.Summary.Description == "" {
			return emptyCell()
		}
		return quotedCell(r.Summary.Description)
	}},
	{"Begin timestamp", func(r *Record) cell {
		return quotedCell(r.Start.Format(almostRFC1123))
	}},
	{"Duration (h:m:s)", func(r *Record) cell {
		if r.Duration == nil {
			return emptyCell()
		}
		return bareCell(hhmmss(roundHalfUp(*r.Duration)))
	}},
	{"Moving duration (h:m:s)", func(r *Record) cell {
		v := r.detailSummary().MovingDuration
		if v == nil {
			return emptyCell()
		}
		return bareCell(hhmmss(*v))
	}},
	{"Distance (km)", func(r *Record) cell {
		return optionalFloat(r.Summary.Distance, func(f float64) string {
			return fmt.Sprintf("%.5f", f/1000)
		})
	}},
	{"Average speed (km/h or min/km)", func(r *Record) cell {
		return speedCell(r, r.Summary.AverageSpeed)
	}},
	{"Average moving speed (km/h or min/km)", func(r *Record) cell {
		return speedCell(r, r.detailSummary().AverageMovingSpeed)
	}},
	{"Max. speed (km/h or min/km)", func(r *Record) cell {
		return speedCell(r, r.detailSummary().MaxSpeed)
	}},
	{"Elevation loss uncorrected (m)", func(r *Record) cell {
		return uncorrectedElevation(r, r.detailSummary().ElevationLoss)
	}},
	{"Elevation gain uncorrected (m)", func(r *Record) cell {
		return uncorrectedElevation(r, r.detailSummary().ElevationGain)
	}},
	{"Elevation min. uncorrected (m)", func(r *Record) cell {
		return uncorrectedElevation(r, r.detailSummary().MinElevation)
	}},
	{"Elevation max. uncorrected (m)", func(r *Record) cell {
		return uncorrectedElevation(r, r.detailSummary().MaxElevation)
	}},
	{"Min. heart rate (bpm)", reservedColumn},
	{"Max. heart rate (bpm)", func(r *Record) cell {
		return optionalFloat(r.Summary.MaxHR, func(f float64) string { return fmt.Sprintf("%.0f", f) })
	}},
	{"Average heart rate (bpm)", func(r *Record) cell {
		return optionalFloat(r.Summary.AverageHR, func(f float64) string { return fmt.Sprintf("%.0f", f) })
	}},
	{"Calories", func(r *Record) cell {
		return optionalFloat(r.detailSummary().Calories, func(f float64) string { return fmt.Sprintf("%.0f", f) })
	}},
	{"Avg. cadence (rpm)", func(r *Record) cell {
		return optionalFloat(r.Summary.AverageBikingCadence, floatString)
	}},
	{"Max. cadence (rpm)", func(r *Record) cell {
		return optionalFloat(r.Summary.MaxBikingCadence, floatString)
	}},
	{"Strokes", func(r *Record) cell {
		return optionalFloat(r.Summary.Strokes, floatString)
	}},
	{"Avg. temp (C)", reservedColumn},
	{"Min. temp (C)", func(r *Record) cell {
		return optionalFloat(r.Summary.MinTemperature, floatString)
	}},
	{"Max. temp (C)", func(r *Record) cell {
		return optionalFloat(r.Summary.MaxTemperature, floatString)
	}},
	{"Map", func(r *Record) cell {
		return quotedCell(fmt.Sprintf("%s%d", permalinkBase, r.Summary.ActivityID))
	}},
	{"End timestamp", func(r *Record) cell {
		end, ok := r.End()
		if !ok {
			return emptyCell()
		}
		return quotedCell(end.Format(almostRFC1123))
	}},
	{"Begin timestamp (ms)", func(r *Record) cell {
		if r.Summary.BeginTimestamp == nil {
			return emptyCell()
		}
		return quotedCell(strconv.FormatInt(*r.Summary.BeginTimestamp, 10))
	}},
	{"End timestamp (ms)", func(r *Record) cell {
		secs, ok := r.DurationSeconds()
		if !ok || r.Summary.BeginTimestamp == nil {
			return emptyCell()
		}
		return quotedCell(strconv.FormatInt(*r.Summary.BeginTimestamp+secs*1000, 10))
	}},
	{"Device", func(r *Record) cell {
		if r.Device == nil || r.Device.ProductDisplayName == "" {
			return emptyCell()
		}
		return quotedCell(r.Device.ProductDisplayName + " " + r.Device.VersionString)
	}},
	{"Activity type", func(r *Record) cell {
		if r.Summary.ActivityType == nil {
			return emptyCell()
		}
		return quotedCell(r.Summary.ActivityType.TypeKey)
	}},
	{"Event type", func(r *Record) cell {
		if r.Summary.EventType == nil {
			return emptyCell()
		}
		return quotedCell(r.Summary.EventType.TypeKey)
	}},
	{"Time zone", func(r *Record) cell {
		return quotedCell(r.Start.Format("-07:00"))
	}},
	{"Begin latitude (DD)", func(r *Record) cell { return coordinate(r.StartLatitude()) }},
	{"Begin longitude (DD)", func(r *Record) cell { return coordinate(r.StartLongitude()) }},
	{"End latitude (DD)", func(r *Record) cell { return coordinate(r.EndLatitude()) }},
	{"End longitude (DD)", func(r *Record) cell { return coordinate(r.EndLongitude()) }},
	{"Elevation gain corrected (m)", func(r *Record) cell {
		return correctedElevation(r, r.detailSummary().ElevationGain)
	}},
	{"Elevation loss corrected (m)", func(r *Record) cell {
		return correctedElevation(r, r.detailSummary().ElevationLoss)
	}},
	{"Elevation max. corrected (m)", func(r *Record) cell {
		return correctedElevation(r, r.detailSummary().MaxElevation)
	}},
	{"Elevation min. corrected (m)", func(r *Record) cell {
		return correctedElevation(r, r.detailSummary().MinElevation)
	}},
	{"Sample count", reservedColumn},
}

// Header returns the catalog header row.
func Header() string {
	headers := make([]string, len(catalogColumns))
	for i, col := range catalogColumns {
		headers[i] = col.header
	}
	return strings.Join(headers, ",") + "\n"
}

// ProjectRow serializes one merged record as a catalog line.
func ProjectRow(r *Record) string {
	cells := make([]string, len(catalogColumns))
	for i, col := range catalogColumns {
		cells[i] = col.value(r).render()
	}
	return strings.Join(cells, ",") + "\n"
}
