package lifecycle

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestNormalizeEventTrimsClonesAndDefaults(t *testing.T) {
	meta := map[string]any{"k": "v"}
	evt := Event{
		Verb:      " state.set ",
		StateType: " int ",
		Identity:  " callid:01 ",
		Channel:   " hooks ",
		Metadata:  meta,
	}

	got := NormalizeEvent(evt)

	if got.Verb != "state.set" || got.StateType != "int" || got.Identity != "callid:01" || got.Channel != "hooks" {
		t.Fatalf("unexpected trimming: %+v", got)
	}
	if got.ID == "" {
		t.Fatalf("expected an event ID to be assigned")
	}
	if got.OccurredAt.IsZero() {
		t.Fatalf("expected OccurredAt to be set")
	}
	got.Metadata["k"] = "changed"
	if evt.Metadata["k"] != "v" {
		t.Fatalf("expected original metadata untouched: %+v", evt.Metadata)
	}
}

func TestHooksNotifySkipsMissingVerb(t *testing.T) {
	capture := &CaptureHook{}
	hooks := Hooks{capture}
	if err := hooks.Notify(context.Background(), Event{Identity: "callid:01"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(capture.Events) != 0 {
		t.Fatalf("expected no events captured, got %d", len(capture.Events))
	}
}

func TestHooksNotifyFanOutAndJoinErrors(t *testing.T) {
	capture := &CaptureHook{}
	var ctxSeen bool
	hooks := Hooks{
		HookFunc(func(ctx context.Context, event Event) error {
			if ctx != nil {
				ctxSeen = true
			}
			return nil
		}),
		capture,
		HookFunc(func(context.Context, Event) error { return errors.New("boom1") }),
		nil,
		HookFunc(func(context.Context, Event) error { return errors.New("boom2") }),
	}

	err := hooks.Notify(nil, Event{Verb: "state.set", Identity: "callid:01"})
	if err == nil {
		t.Fatalf("expected joined error")
	}
	if msg := err.Error(); !strings.Contains(msg, "boom1") || !strings.Contains(msg, "boom2") {
		t.Fatalf("expected both errors joined, got %q", msg)
	}
	if !ctxSeen {
		t.Fatalf("expected context fallback to be non-nil")
	}
	if len(capture.Events) != 1 {
		t.Fatalf("expected event to be captured once, got %d", len(capture.Events))
	}
}

func TestHooksEnabled(t *testing.T) {
	if (Hooks{}).Enabled() {
		t.Fatalf("empty hook set should be disabled")
	}
	if !(Hooks{&CaptureHook{}}).Enabled() {
		t.Fatalf("non-empty hook set should be enabled")
	}
}
