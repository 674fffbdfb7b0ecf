package main

import (
	"errors"
	"testing"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/spf13/cobra"
)

func TestMaxDeviation(t *testing.T) {
	a := resultOf([][]float64{{0, 0}, {1, 2}, {0.5, 0}})
	b := resultOf([][]float64{{0, 5}, {0.75, 0}})
	if got := maxDeviation(a, b); got != 0.25 {
		t.Errorf("maxDeviation = %g, want 0.25", got)
	}
}

func resultOf(states [][]float64) *dynamo.Result {
	r := &dynamo.Result{}
	for _, s := range states {
		r.States = append(r.States, dynamo.State(s))
	}
	return r
}

func TestLoadConfigFlagsOverrideDefaults(t *testing.T) {
	cmd := &cobra.Command{Use: "run"}
	addSpringFlags(cmd)
	if err := cmd.ParseFlags([]string{"--force=300", "--time=2", "--target=0.5"}); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { preset = "" })

	cfg, sc, err := loadConfig(cmd, "")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Run.Duration != 2 {
		t.Errorf("duration = %g, want 2", cfg.Run.Duration)
	}
	if sc.Force == nil || *sc.Force != 300 {
		t.Errorf("force = %v, want 300", sc.Force)
	}
	if sc.Drag != nil {
		t.Errorf("drag should stay unset, got %v", *sc.Drag)
	}
	if len(sc.Target) != 1 || sc.Target[0] != 0.5 {
		t.Errorf("target = %v, want [0.5]", sc.Target)
	}
}

func TestLoadConfigUnknownPreset(t *testing.T) {
	cmd := &cobra.Command{Use: "run"}
	addSpringFlags(cmd)
	if err := cmd.ParseFlags([]string{"--preset=nope"}); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { preset = "" })

	if _, _, err := loadConfig(cmd, ""); !errors.Is(err, dynamo.ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
}

func TestLoadConfigUnknownSpring(t *testing.T) {
	cmd := &cobra.Command{Use: "run"}
	addSpringFlags(cmd)

	if _, _, err := loadConfig(cmd, "missing"); !errors.Is(err, dynamo.ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
}
