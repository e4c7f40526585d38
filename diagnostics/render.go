/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package diagnostics

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Render formats a Report as grouped, human-readable text for debug
// consoles. This is presentation only; the data contract is the Report
// itself.
func Render(r *Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Storage diagnostics — %s\n", time.Time(r.GeneratedAt).Format(time.RFC3339))
	fmt.Fprintf(&b, "Host: %s (%s, pid %d, %s)\n", r.Host.Hostname, r.Host.OS, r.Host.PID, r.Host.GoVersion)

	for _, er := range r.Engines {
		fmt.Fprintf(&b, "\n[%s] scope=%s", er.Name, er.Scope)
		if er.Namespace != "" {
			fmt.Fprintf(&b, " namespace=%s", er.Namespace)
		}
		b.WriteString("\n")
		if !er.Available {
			b.WriteString("  unavailable\n")
			continue
		}
		fmt.Fprintf(&b, "  items: %d, size: %s (%.2f%% of quota)\n",
			er.ItemCount, humanize.Bytes(er.EstimatedSizeBytes), er.QuotaPercentage)
		if len(er.LargestItems) > 0 {
			b.WriteString("  largest items:\n")
			for _, it := range er.LargestItems {
				fmt.Fprintf(&b, "    %-40s %s\n", it.Key, humanize.Bytes(it.Size))
			}
		}
	}

	if r.Estimate != nil {
		fmt.Fprintf(&b, "\nBackend estimate: %s of %s used\n",
			humanize.Bytes(r.Estimate.Usage), humanize.Bytes(r.Estimate.Quota))
	}

	if len(r.Errors) > 0 {
		b.WriteString("\nErrors during report generation:\n")
		for _, re := range r.Errors {
			fmt.Fprintf(&b, "  [%s] %s: %s", re.Engine, re.Operation, re.Message)
			if re.Kind != "" {
				fmt.Fprintf(&b, " (%s)", re.Kind)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}
