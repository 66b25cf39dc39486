// Package garmin implements the Garmin Connect client used by the exporter:
// the SSO login handshake, paginated activity enumeration, per-activity detail
// retrieval with bounded retry, device metadata resolution, and the three
// artifact download endpoints.
package garmin
