/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package diagnostics produces structured storage usage reports. It is a
// read-only analysis layer over registered engines; the one mutation it
// performs is the explicit ClearWithDiagnostics operation, which brackets
// the clear with before/after snapshots for an auditable delta.
package diagnostics

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"
	"time"

	"github.com/go-openapi/strfmt"
	"go.uber.org/zap"

	"github.com/suparena/storekit"
	"github.com/suparena/storekit/backend"
	storerrors "github.com/suparena/storekit/errors"
)

// topItems is how many entries LargestItems keeps, ranked descending.
const topItems = 5

// Runner generates reports over a Manager's registered engines.
type Runner struct {
	manager *storekit.Manager
	logger  *zap.Logger
}

// NewRunner creates a Runner over m.
func NewRunner(m *storekit.Manager, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{manager: m, logger: logger}
}

// Run generates a Report. Per-engine and per-key failures are recorded in
// the report's Errors and excluded from rankings; they never abort the
// report. The backend usage estimate, when a backend offers one, is the
// only awaited call.
func (r *Runner) Run(ctx context.Context) *Report {
	report := &Report{
		GeneratedAt: strfmt.DateTime(time.Now().UTC()),
		Host:        hostInfo(),
	}

	var estimator backend.Estimator
	r.manager.Each(func(name string, e *storekit.Engine) {
		report.Engines = append(report.Engines, r.engineReport(name, e, report))
		if est, ok := e.Backend().(backend.Estimator); ok && estimator == nil {
			estimator = est
		}
	})

	if estimator != nil {
		est, err := estimator.Estimate(ctx)
		if err != nil {
			report.Errors = append(report.Errors, ReportError{
				Engine:    "*",
				Operation: "estimate",
				Message:   err.Error(),
				Kind:      storerrors.KindOf(err),
			})
		} else {
			report.Estimate = &est
		}
	}
	return report
}

func (r *Runner) engineReport(name string, e *storekit.Engine, report *Report) EngineReport {
	er := EngineReport{
		Name:      name,
		Scope:     e.Scope(),
		Namespace: e.Namespace(),
		Available: e.Probe(),
	}
	if !er.Available {
		return er
	}

	items := make([]Item, 0)
	for _, physical := range e.PhysicalKeys() {
		raw, ok, err := e.Backend().GetItem(physical)
		if err != nil {
			report.Errors = append(report.Errors, ReportError{
				Engine:    name,
				Operation: fmt.Sprintf("read %q", physical),
				Message:   err.Error(),
				Kind:      storerrors.KindOf(err),
			})
			continue
		}
		if !ok {
			continue
		}
		size := uint64(len(physical) + len(raw))
		er.ItemCount++
		er.EstimatedSizeBytes += size
		items = append(items, Item{Key: physical, Size: size})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Size != items[j].Size {
			return items[i].Size > items[j].Size
		}
		return items[i].Key < items[j].Key
	})
	if len(items) > topItems {
		items = items[:topItems]
	}
	er.LargestItems = items
	er.QuotaPercentage = float64(er.EstimatedSizeBytes) / float64(backend.DefaultQuota) * 100
	return er
}

// ClearScope selects which engines ClearWithDiagnostics clears.
type ClearScope string

const (
	ClearLocal   ClearScope = "local"
	ClearSession ClearScope = "session"
	ClearBoth    ClearScope = "both"
)

// ClearResult carries the before/after snapshots around a clear.
type ClearResult struct {
	Before *Report `json:"before"`
	After  *Report `json:"after"`
}

// ClearWithDiagnostics snapshots a report, clears every engine whose scope
// matches, snapshots again, and returns both reports. Clear failures are
// recorded in the after-report's Errors.
func (r *Runner) ClearWithDiagnostics(ctx context.Context, scope ClearScope) ClearResult {
	before := r.Run(ctx)

	var clearErrs []ReportError
	r.manager.Each(func(name string, e *storekit.Engine) {
		if !scopeMatches(scope, e.Scope()) {
			return
		}
		if err := e.Clear(); err != nil {
			clearErrs = append(clearErrs, ReportError{
				Engine:    name,
				Operation: "clear",
				Message:   err.Error(),
				Kind:      storerrors.KindOf(err),
			})
		}
	})

	after := r.Run(ctx)
	after.Errors = append(after.Errors, clearErrs...)
	r.logger.Info("storage cleared",
		zap.String("scope", string(scope)),
		zap.Int("errors", len(clearErrs)))
	return ClearResult{Before: before, After: after}
}

func scopeMatches(scope ClearScope, s backend.Scope) bool {
	switch scope {
	case ClearBoth:
		return true
	case ClearLocal:
		return s == backend.Local
	case ClearSession:
		return s == backend.Session
	default:
		return false
	}
}

func hostInfo() Host {
	hostname, _ := os.Hostname()
	return Host{
		Hostname:  hostname,
		OS:        runtime.GOOS,
		PID:       os.Getpid(),
		GoVersion: runtime.Version(),
	}
}
