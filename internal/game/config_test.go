package game

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTuning(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadTuning_OverridesOnlyGivenKeys(t *testing.T) {
	path := writeTuning(t, `
agent:
  deception_chance: 0.75
  max_attack_attempts: 5
fortification:
  board_weight: 1.5
`)
	got, err := LoadTuning(path)
	if err != nil {
		t.Fatalf("LoadTuning: %v", err)
	}
	if got.Agent.DeceptionChance != 0.75 || got.Agent.MaxAttackAttempts != 5 {
		t.Fatalf("agent overrides not applied: %+v", got.Agent)
	}
	if got.Fort.BoardWeight != 1.5 {
		t.Fatalf("board weight = %.2f", got.Fort.BoardWeight)
	}
	if got.Agent.DetectionRange != defaultAgentConfig.DetectionRange {
		t.Fatalf("detection range lost its default: %.2f", got.Agent.DetectionRange)
	}
	if got.Boarding != defaultBoardingConfig {
		t.Fatalf("boarding block changed: %+v", got.Boarding)
	}
}

func TestLoadTuning_Errors(t *testing.T) {
	_, err := LoadTuning(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("missing file: got %v, want a wrapped not-exist error", err)
	}

	_, err = LoadTuning(writeTuning(t, "agent: [not, a, map]"))
	if err == nil || !strings.Contains(err.Error(), "parse tuning") {
		t.Fatalf("bad yaml: got %v", err)
	}

	_, err = LoadTuning(writeTuning(t, `
agent:
  deception_chance: 2
  decision_interval: 0
`))
	if err == nil {
		t.Fatal("invalid values accepted")
	}
	for _, want := range []string{"deception_chance", "decision_interval"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestTuning_MarshalReloads(t *testing.T) {
	tun := DefaultTuning()
	tun.Agent.JumpHeight = 3.25
	data, err := tun.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "jump_height: 3.25") {
		t.Fatalf("marshalled yaml missing jump_height:\n%s", data)
	}
	got, err := LoadTuning(writeTuning(t, string(data)))
	if err != nil {
		t.Fatal(err)
	}
	if got != tun {
		t.Fatalf("reloaded tuning differs:\n got %+v\nwant %+v", got, tun)
	}
}

func TestDefaultTuning_Valid(t *testing.T) {
	if err := DefaultTuning().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}
