// Package services defines the error taxonomy shared by the exporter
// components and small context annotations used for log correlation.
package services
