package normalization

import "testing"

type level string

const (
	levelDebug level = "debug"
	levelInfo  level = "info"
	levelWarn  level = "warn"
)

func newLevelNormalizer() *Normalizer[level] {
	return NewNormalizer(map[string]level{
		"debug": levelDebug,
		"info":  levelInfo,
		"warn":  levelWarn,
	}, levelInfo).WithAliases(map[string]level{
		"warning": levelWarn,
		"verbose": levelDebug,
	})
}

func TestNormalize(t *testing.T) {
	n := newLevelNormalizer()

	tests := []struct {
		name  string
		input string
		want  level
	}{
		{"exact match", "warn", levelWarn},
		{"case folded", "WARN", levelWarn},
		{"trimmed", "  debug  ", levelDebug},
		{"alias", "warning", levelWarn},
		{"alias case folded", " Verbose ", levelDebug},
		{"unknown falls back to default", "loud", levelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeWithError(t *testing.T) {
	n := newLevelNormalizer()

	got, err := n.NormalizeWithError("WARNING")
	if err != nil {
		t.Fatalf("NormalizeWithError(alias) returned error: %v", err)
	}
	if got != levelWarn {
		t.Errorf("NormalizeWithError(alias) = %v, want %v", got, levelWarn)
	}

	if _, err := n.NormalizeWithError("loud"); err == nil {
		t.Error("NormalizeWithError(unknown) should return error")
	}
}

func TestCanonicalExcludesAliases(t *testing.T) {
	got := newLevelNormalizer().Canonical()
	want := []string{"debug", "info", "warn"}
	if len(got) != len(want) {
		t.Fatalf("Canonical() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Canonical()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
