package blocks

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCapabilityRegistry_NotifiesOnChange(t *testing.T) {
	reg := NewCapabilityRegistry()
	var seen []string
	unsubscribe := reg.Subscribe(func(name string, c Capability) {
		if c.Enabled {
			seen = append(seen, name+"=on")
		} else {
			seen = append(seen, name+"=off")
		}
	})

	reg.Set(CapabilityAdd, true)
	reg.Set(CapabilityAdd, true)
	reg.Set(CapabilityAdd, false)
	unsubscribe()
	reg.Set(CapabilityAdd, true)

	if diff := cmp.Diff([]string{"add=on", "add=off"}, seen); diff != "" {
		t.Fatalf("notifications mismatch (-want +got):\n%s", diff)
	}
}

func TestCapabilityRegistry_Extra(t *testing.T) {
	reg := NewCapabilityRegistry()
	reg.Set(CapabilitySplit, true)
	reg.SetExtra(CapabilitySplit, "mode", "cursor")

	got, ok := reg.Get(CapabilitySplit)
	if !ok || !got.Enabled || got.Extra["mode"] != "cursor" {
		t.Fatalf("unexpected capability %+v", got)
	}
	if diff := cmp.Diff([]string{"split"}, reg.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestCapabilities_QualifiedEntries(t *testing.T) {
	reg := NewCapabilityRegistry()
	reg.Set(CapabilityDuplicate, true)
	heading := NewCapabilities(reg, "heading")
	paragraph := NewCapabilities(reg, "paragraph")

	if !heading.Enabled(CapabilityDuplicate) || !paragraph.Enabled(CapabilityDuplicate) {
		t.Fatalf("base entry should apply to every type")
	}

	reg.Set(QualifiedCapability(CapabilityDuplicate, "heading"), false)
	if heading.Enabled(CapabilityDuplicate) {
		t.Fatalf("per-type entry should narrow the base entry")
	}
	if !paragraph.Enabled(CapabilityDuplicate) {
		t.Fatalf("other types are unaffected")
	}

	reg.Set(CapabilityDuplicate, false)
	reg.Set(QualifiedCapability(CapabilityDuplicate, "paragraph"), true)
	if paragraph.Enabled(CapabilityDuplicate) {
		t.Fatalf("a disabled base entry wins")
	}
}

func TestCapabilities_Invoke(t *testing.T) {
	reg := NewCapabilityRegistry()
	caps := NewCapabilities(reg, "")
	var got []any
	caps.bind(CapabilitySplit, func(args ...any) error {
		got = args
		return nil
	})

	if err := caps.Invoke(CapabilitySplit, "a", "b"); !errors.Is(err, ErrCapabilityDisabled) {
		t.Fatalf("missing entry: got %v", err)
	}
	reg.Set(CapabilitySplit, true)
	if err := caps.Invoke(CapabilitySplit, "a", "b"); err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if diff := cmp.Diff([]any{"a", "b"}, got); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}
	if err := caps.Invoke(CapabilityDuplicate); !errors.Is(err, ErrCapabilityDisabled) {
		t.Fatalf("unbound handler: got %v", err)
	}

	var nilCaps *Capabilities
	if nilCaps.Enabled(CapabilitySplit) || nilCaps.Has(CapabilitySplit) {
		t.Fatalf("nil view reports nothing enabled")
	}
}
