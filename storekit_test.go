/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storekit

import (
	"reflect"
	"testing"

	"github.com/suparena/storekit/backend/memory"
)

func TestManager(t *testing.T) {
	t.Run("RegisterAndGet", func(t *testing.T) {
		m := NewManager()
		e := New(memory.New(), WithNamespace("ui"))

		if err := m.Register("ui", e); err != nil {
			t.Fatalf("Failed to register: %v", err)
		}

		got, err := m.Get("ui")
		if err != nil {
			t.Fatalf("Failed to get: %v", err)
		}
		if got != e {
			t.Error("Get should return the registered engine")
		}
	})

	t.Run("DuplicateRegistration", func(t *testing.T) {
		m := NewManager()
		e := New(memory.New())

		if err := m.Register("ui", e); err != nil {
			t.Fatalf("Failed to register: %v", err)
		}
		if err := m.Register("ui", e); err == nil {
			t.Error("Duplicate registration should fail")
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		m := NewManager()
		if _, err := m.Get("nope"); err == nil {
			t.Error("Get on unknown name should fail")
		}
	})

	t.Run("NamesSorted", func(t *testing.T) {
		m := NewManager()
		for _, name := range []string{"ui", "auth", "errorlog"} {
			if err := m.Register(name, New(memory.New())); err != nil {
				t.Fatal(err)
			}
		}
		want := []string{"auth", "errorlog", "ui"}
		if got := m.Names(); !reflect.DeepEqual(got, want) {
			t.Errorf("Names = %v, want %v", got, want)
		}
	})

	t.Run("EachVisitsAllInOrder", func(t *testing.T) {
		m := NewManager()
		for _, name := range []string{"b", "a"} {
			if err := m.Register(name, New(memory.New())); err != nil {
				t.Fatal(err)
			}
		}
		var visited []string
		m.Each(func(name string, e *Engine) {
			visited = append(visited, name)
		})
		if !reflect.DeepEqual(visited, []string{"a", "b"}) {
			t.Errorf("Each visited %v, want [a b]", visited)
		}
	})
}

func TestBootstrap(t *testing.T) {
	dir := t.TempDir()

	stores, err := Bootstrap(dir, nil)
	if err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	defer stores.Close()

	if stores.Auth.Namespace() != AuthNamespace {
		t.Errorf("auth namespace = %q", stores.Auth.Namespace())
	}
	if stores.UI.Namespace() != UINamespace {
		t.Errorf("ui namespace = %q", stores.UI.Namespace())
	}
	if stores.ErrorLog.Namespace() != "" {
		t.Errorf("error log should be un-namespaced, got %q", stores.ErrorLog.Namespace())
	}

	for _, name := range []string{AuthEngine, UIEngine, ErrorLogEngine} {
		if _, err := stores.Manager.Get(name); err != nil {
			t.Errorf("engine %q not registered: %v", name, err)
		}
	}

	// The local scope persists across a re-bootstrap; the session scope
	// does not.
	if err := Set(stores.UI, "theme", "dark"); err != nil {
		t.Fatal(err)
	}
	if err := Set(stores.ErrorLog, "scratch", "x"); err != nil {
		t.Fatal(err)
	}
	stores.Close()

	again, err := Bootstrap(dir, nil)
	if err != nil {
		t.Fatalf("re-Bootstrap failed: %v", err)
	}
	defer again.Close()

	if got := GetOr(again.UI, "theme", ""); got != "dark" {
		t.Errorf("local value lost across bootstrap: %q", got)
	}
	if _, ok := Get[string](again.ErrorLog, "scratch"); ok {
		t.Error("session value should not survive a bootstrap")
	}
}
