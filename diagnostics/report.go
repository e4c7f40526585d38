/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package diagnostics

import (
	"github.com/go-openapi/strfmt"

	"github.com/suparena/storekit/backend"
	storerrors "github.com/suparena/storekit/errors"
)

// Item is one stored entry ranked by size. Size is the byte-length proxy
// used throughout storekit: physical key length plus value length.
type Item struct {
	Key  string `json:"key"`
	Size uint64 `json:"size"`
}

// EngineReport is the per-engine slice of a Report.
type EngineReport struct {
	Name               string        `json:"name"`
	Scope              backend.Scope `json:"scope"`
	Namespace          string        `json:"namespace,omitempty"`
	Available          bool          `json:"available"`
	ItemCount          int           `json:"itemCount"`
	EstimatedSizeBytes uint64        `json:"estimatedSizeBytes"`
	QuotaPercentage    float64       `json:"quotaPercentage"`
	LargestItems       []Item        `json:"largestItems"`
}

// ReportError records one failure encountered while generating a report.
// Failures never abort report generation; they are collected here instead.
type ReportError struct {
	Engine    string          `json:"engine"`
	Operation string          `json:"operation"`
	Message   string          `json:"message"`
	Kind      storerrors.Kind `json:"kind,omitempty"`
}

// Host describes the process the report was generated in.
type Host struct {
	Hostname  string `json:"hostname"`
	OS        string `json:"os"`
	PID       int    `json:"pid"`
	GoVersion string `json:"goVersion"`
}

// Report is a point-in-time, read-only snapshot of storage usage and
// health. Reports are constructed fresh on each request and never
// persisted.
type Report struct {
	GeneratedAt strfmt.DateTime   `json:"generatedAt"`
	Host        Host              `json:"host"`
	Engines     []EngineReport    `json:"engines"`
	Estimate    *backend.Estimate `json:"estimate,omitempty"`
	Errors      []ReportError     `json:"errors,omitempty"`
}
