/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storekit

import (
	"errors"
	"reflect"
	"sort"
	"testing"

	"github.com/suparena/storekit/backend"
	"github.com/suparena/storekit/backend/memory"
	storerrors "github.com/suparena/storekit/errors"
	"github.com/suparena/storekit/notify"
)

func TestRawStringRoundTrip(t *testing.T) {
	e := New(memory.New())

	values := []string{"dark", "", "true", "42", `{"not":"parsed"}`, "null-ish but not null"}
	for _, v := range values {
		if err := Set(e, "k", v); err != nil {
			t.Fatalf("Set(%q) failed: %v", v, err)
		}
		got, ok := Get[string](e, "k")
		if !ok {
			t.Fatalf("Get after Set(%q) reported absent", v)
		}
		if got != v {
			t.Errorf("string round trip: got %q, want %q", got, v)
		}
	}
}

func TestStructRoundTrip(t *testing.T) {
	type session struct {
		ID     int  `json:"id"`
		Active bool `json:"active"`
	}

	e := New(memory.New())
	want := session{ID: 7, Active: true}
	if err := Set(e, "session", want); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok := Get[session](e, "session")
	if !ok {
		t.Fatal("Get reported absent")
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("struct round trip: got %+v, want %+v", got, want)
	}
}

func TestMissingKeyDefaults(t *testing.T) {
	e := New(memory.New())

	if _, ok := Get[string](e, "missing"); ok {
		t.Error("Get on missing key should report absent")
	}
	if got := GetOr(e, "missing", "fallback"); got != "fallback" {
		t.Errorf("GetOr = %q, want %q", got, "fallback")
	}
	if got := GetOr(e, "missing", 25); got != 25 {
		t.Errorf("GetOr = %d, want 25", got)
	}
}

func TestPlaceholderLiteralsTreatedAsAbsent(t *testing.T) {
	b := memory.New()
	e := New(b, WithNamespace("ui"))

	for _, raw := range []string{"undefined", "null"} {
		if err := b.SetItem("ui_ghost", raw); err != nil {
			t.Fatalf("backend SetItem failed: %v", err)
		}
		if _, ok := Get[string](e, "ghost"); ok {
			t.Errorf("literal %q should read as absent", raw)
		}
		if e.Has("ghost") {
			t.Errorf("Has should be false for literal %q", raw)
		}
	}
}

func TestNilSerializesToNullLiteral(t *testing.T) {
	b := memory.New()
	e := New(b)

	if err := Set[any](e, "gone", nil); err != nil {
		t.Fatalf("Set(nil) failed: %v", err)
	}
	raw, ok, err := b.GetItem("gone")
	if err != nil || !ok {
		t.Fatalf("backend GetItem: ok=%v err=%v", ok, err)
	}
	if raw != "null" {
		t.Errorf("nil stored as %q, want %q", raw, "null")
	}
	// And it reads back as absent.
	if _, ok := Get[any](e, "gone"); ok {
		t.Error("stored null should read as absent")
	}
}

func TestUnavailableBackend(t *testing.T) {
	b := memory.New().WithSetError(errors.New("backend down"))
	e := New(b) // probe fails

	if e.Available() {
		t.Fatal("engine should be unavailable when the probe write fails")
	}

	// Reads degrade to defaults.
	if _, ok := Get[string](e, "theme"); ok {
		t.Error("Get should report absent when unavailable")
	}
	if got := GetOr(e, "theme", "light"); got != "light" {
		t.Errorf("GetOr = %q, want default", got)
	}
	if e.Has("theme") || e.Size() != 0 || e.AllKeys() != nil {
		t.Error("introspection should return empty values when unavailable")
	}

	// Writes are loud.
	err := Set(e, "theme", "dark")
	if err == nil {
		t.Fatal("Set should fail when unavailable")
	}
	if !storerrors.IsStorageDisabled(err) {
		t.Errorf("Set error kind = %s, want StorageDisabled", storerrors.KindOf(err))
	}

	// Remove is a silent no-op.
	e.Remove("theme")
}

func TestSetQuotaError(t *testing.T) {
	b := memory.New().WithMaxBytes(64)
	e := New(b, WithNamespace("ui"))

	big := make([]byte, 128)
	for i := range big {
		big[i] = 'x'
	}
	err := Set(e, "huge", string(big))
	if err == nil {
		t.Fatal("Set should fail when over quota")
	}
	if !storerrors.IsQuotaExceeded(err) {
		t.Errorf("error kind = %s, want QuotaExceeded", storerrors.KindOf(err))
	}
}

func TestParseFallback(t *testing.T) {
	b := memory.New()
	e := New(b, WithNamespace("ui"))

	if err := b.SetItem("ui_legacy", "plain text written before json encoding"); err != nil {
		t.Fatalf("backend SetItem failed: %v", err)
	}

	// Undecodable values fall back to the raw string for string reads...
	got, ok := Get[string](e, "legacy")
	if !ok || got != "plain text written before json encoding" {
		t.Errorf("Get[string] = (%q, %v), want raw fallback", got, ok)
	}

	// ...and read as absent for typed reads.
	if _, ok := Get[int](e, "legacy"); ok {
		t.Error("Get[int] on undecodable value should report absent")
	}
}

func TestNamespacedClear(t *testing.T) {
	b := memory.New()
	ui := New(b, WithNamespace("ui"))
	auth := New(b, WithNamespace("auth"))

	if err := Set(ui, "theme", "dark"); err != nil {
		t.Fatal(err)
	}
	if err := Set(auth, "access_token", "a1"); err != nil {
		t.Fatal(err)
	}
	if err := b.SetItem("error_log", "[]"); err != nil {
		t.Fatal(err)
	}

	if err := ui.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	if ui.Size() != 0 {
		t.Errorf("ui engine should be empty, has %d keys", ui.Size())
	}
	if got := GetOr(auth, "access_token", ""); got != "a1" {
		t.Error("clearing the ui namespace must not touch the auth namespace")
	}
	if _, ok, _ := b.GetItem("error_log"); !ok {
		t.Error("clearing a namespaced engine must not touch un-prefixed keys")
	}
}

func TestUnnamespacedClearWipesBackend(t *testing.T) {
	b := memory.New()
	e := New(b)

	if err := Set(e, "a", "1"); err != nil {
		t.Fatal(err)
	}
	if err := b.SetItem("ui_theme", "dark"); err != nil {
		t.Fatal(err)
	}

	if err := e.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	keys, _ := b.Keys()
	if len(keys) != 0 {
		t.Errorf("un-namespaced Clear should wipe the backend, %d keys remain", len(keys))
	}
}

func TestIntrospection(t *testing.T) {
	b := memory.New()
	e := New(b, WithNamespace("ui"))

	if err := Set(e, "theme", "dark"); err != nil {
		t.Fatal(err)
	}
	if err := Set(e, "lang", "en"); err != nil {
		t.Fatal(err)
	}
	if err := b.SetItem("auth_access_token", "a1"); err != nil {
		t.Fatal(err)
	}

	if !e.Has("theme") {
		t.Error("Has(theme) should be true")
	}
	if e.Has("access_token") {
		t.Error("Has must not see other namespaces")
	}
	if e.Size() != 2 {
		t.Errorf("Size = %d, want 2", e.Size())
	}

	keys := e.AllKeys()
	sort.Strings(keys)
	if !reflect.DeepEqual(keys, []string{"lang", "theme"}) {
		t.Errorf("AllKeys = %v, want [lang theme]", keys)
	}
}

func TestStorageInfo(t *testing.T) {
	b := memory.New()
	e := New(b, WithNamespace("ui"))

	if err := Set(e, "theme", "dark"); err != nil {
		t.Fatal(err)
	}

	info := e.StorageInfo()
	if !info.Available {
		t.Fatal("info should report available")
	}
	want := uint64(len("ui_theme") + len("dark"))
	if info.Usage != want {
		t.Errorf("Usage = %d, want %d", info.Usage, want)
	}
	if info.Quota != backend.DefaultQuota {
		t.Errorf("Quota = %d, want default", info.Quota)
	}
	if info.PercentUsed <= 0 {
		t.Error("PercentUsed should be positive")
	}
}

func TestUpdate(t *testing.T) {
	e := New(memory.New())

	if err := Update(e, "count", func(n int) int { return n + 1 }); err != nil {
		t.Fatal(err)
	}
	if err := Update(e, "count", func(n int) int { return n + 1 }); err != nil {
		t.Fatal(err)
	}
	if got := GetOr(e, "count", 0); got != 2 {
		t.Errorf("count = %d, want 2", got)
	}
}

func TestChangeNotifications(t *testing.T) {
	hub := notify.NewHub()
	events, cancel := hub.Subscribe()
	defer cancel()

	e := New(memory.New(),
		WithNamespace("ui"),
		WithScope(backend.Local),
		WithNotifier(hub))

	if err := Set(e, "theme", "dark"); err != nil {
		t.Fatal(err)
	}
	ev := <-events
	if ev.Key != "ui_theme" {
		t.Errorf("event key = %q, want %q", ev.Key, "ui_theme")
	}
	if ev.NewValue == nil || *ev.NewValue != "dark" {
		t.Errorf("event value = %v, want dark", ev.NewValue)
	}
	if ev.Source != "local/ui" {
		t.Errorf("event source = %q, want local/ui", ev.Source)
	}

	e.Remove("theme")
	ev = <-events
	if ev.NewValue != nil {
		t.Error("removal event should carry a nil NewValue")
	}
}
