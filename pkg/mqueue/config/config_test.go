package config

import (
	"testing"

	"github.com/jabolina/go-mqueue/pkg/mqueue/types"
)

func TestLimitsConfigResolveKeepsDefaultsForZeroFields(t *testing.T) {
	var cfg LimitsConfig
	got := cfg.Resolve()
	want := types.DefaultLimits()
	if got != want {
		t.Fatalf("expected an all-zero LimitsConfig to resolve to types.DefaultLimits, got %#v", got)
	}
}

func TestLimitsConfigResolveOverridesSetFields(t *testing.T) {
	cfg := LimitsConfig{MaxQueues: 4, MaxGroups: 2, MaxQueuesPerGroup: 1}
	got := cfg.Resolve()

	if got.MaxQueues != 4 || got.MaxGroups != 2 || got.MaxQueuesPerGroup != 1 {
		t.Fatalf("expected the non-zero fields to override, got %#v", got)
	}
	if got.MaxQueueSize != types.MaxQueueSize || got.MaxPriorityAreaSize != types.MaxPriorityAreaSize {
		t.Fatalf("expected the fields LimitsConfig doesn't carry to keep their compiled-in defaults, got %#v", got)
	}
}
