// Package export turns enumerated activities into local files: one artifact
// per activity (GPX, TCX, or the original upload) under year/ISO-week
// directories, plus one appended row per activity in the cumulative
// activities.csv catalog. The Exporter sequences the whole run.
package export
