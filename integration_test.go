/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storekit_test

import (
	"context"
	"testing"

	"github.com/suparena/storekit"
	"github.com/suparena/storekit/diagnostics"
	"github.com/suparena/storekit/errlog"
	"github.com/suparena/storekit/tokens"
)

// TestEndToEnd exercises the full store set the way an application does:
// bootstrap once, write preferences and tokens, buffer a crash report, run
// diagnostics, log out.
func TestEndToEnd(t *testing.T) {
	dir := t.TempDir()

	stores, err := storekit.Bootstrap(dir, nil)
	if err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	defer stores.Close()

	// Preferences
	if err := storekit.Set(stores.UI, "theme", "dark"); err != nil {
		t.Fatalf("Failed to store theme: %v", err)
	}
	type session struct {
		ID     int  `json:"id"`
		Active bool `json:"active"`
	}
	if err := storekit.Set(stores.UI, "session", session{ID: 7, Active: true}); err != nil {
		t.Fatalf("Failed to store session: %v", err)
	}
	if got, _ := storekit.Get[string](stores.UI, "theme"); got != "dark" {
		t.Errorf("theme = %q, want dark", got)
	}
	if got, _ := storekit.Get[session](stores.UI, "session"); got.ID != 7 || !got.Active {
		t.Errorf("session = %+v", got)
	}

	// Tokens
	tok := tokens.New(stores.Auth, nil)
	if err := tok.SetTokens("a1", "r1"); err != nil {
		t.Fatalf("SetTokens failed: %v", err)
	}
	if tok.AccessToken() != "a1" || tok.RefreshToken() != "r1" {
		t.Error("token pair did not round trip")
	}

	// Crash buffer
	log := errlog.New(stores.ErrorLog, nil)
	if err := log.Append(errlog.Entry{Message: "render crashed", URL: "/settings"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if entries := log.All(); len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}

	// Diagnostics sees all three engines.
	runner := diagnostics.NewRunner(stores.Manager, nil)
	report := runner.Run(context.Background())
	if len(report.Engines) != 3 {
		t.Fatalf("expected 3 engine reports, got %d", len(report.Engines))
	}
	for _, er := range report.Engines {
		if !er.Available {
			t.Errorf("engine %q should be available", er.Name)
		}
	}
	if out := diagnostics.Render(report); out == "" {
		t.Error("rendered report should not be empty")
	}

	// Logout
	tok.ClearTokens()
	if tok.AccessToken() != "" || tok.RefreshToken() != "" {
		t.Error("tokens should be gone after ClearTokens")
	}

	// Preferences survive logout.
	if got := storekit.GetOr(stores.UI, "theme", ""); got != "dark" {
		t.Errorf("theme lost after logout: %q", got)
	}
}
