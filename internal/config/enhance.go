package config

import "time"

// EnhanceConfig groups the per-pass enhancement settings. Every pass is
// on by default; a nil Enabled pointer means the user did not opt out.
type EnhanceConfig struct {
	Math         MathConfig         `yaml:"math,omitempty"`
	CopyButton   CopyButtonConfig   `yaml:"copy_button,omitempty"`
	SmoothScroll SmoothScrollConfig `yaml:"smooth_scroll,omitempty"`
	Tables       TablesConfig       `yaml:"tables,omitempty"`
	Assets       AssetsConfig       `yaml:"assets,omitempty"`
}

// MathConfig shapes the MathJax configuration script.
type MathConfig struct {
	Enabled             *bool      `yaml:"enabled,omitempty"`
	Inline              [][]string `yaml:"inline,omitempty"`
	Display             [][]string `yaml:"display,omitempty"`
	ProcessEscapes      *bool      `yaml:"process_escapes,omitempty"`
	ProcessEnvironments *bool      `yaml:"process_environments,omitempty"`
	IgnoreClass         string     `yaml:"ignore_class,omitempty"`
	ProcessClass        string     `yaml:"process_class,omitempty"`
}

// CopyButtonConfig controls the clipboard buttons added to code blocks.
type CopyButtonConfig struct {
	Enabled      *bool  `yaml:"enabled,omitempty"`
	IdleGlyph    string `yaml:"idle_glyph,omitempty"`
	SuccessGlyph string `yaml:"success_glyph,omitempty"`
	RevertAfter  string `yaml:"revert_after,omitempty"`
}

// RevertDuration returns the parsed revert window. Validation guarantees
// the configured value parses, so the fallback only covers zero values.
func (c CopyButtonConfig) RevertDuration() time.Duration {
	d, err := time.ParseDuration(c.RevertAfter)
	if err != nil || d <= 0 {
		return 2 * time.Second
	}
	return d
}

// SmoothScrollConfig controls in-page anchor navigation.
type SmoothScrollConfig struct {
	Enabled *bool `yaml:"enabled,omitempty"`
}

// TablesConfig controls responsive table wrapping.
type TablesConfig struct {
	Enabled      *bool  `yaml:"enabled,omitempty"`
	WrapperClass string `yaml:"wrapper_class,omitempty"`
}

// AssetsConfig controls injection of the shipped stylesheet and runtime.
type AssetsConfig struct {
	Inject *bool `yaml:"inject,omitempty"`
}

// enabled resolves an opt-out pointer: nil means on.
func enabled(flag *bool) bool {
	return flag == nil || *flag
}

// MathEnabled reports whether the MathJax pass runs.
func (e EnhanceConfig) MathEnabled() bool { return enabled(e.Math.Enabled) }

// CopyButtonEnabled reports whether the copy button pass runs.
func (e EnhanceConfig) CopyButtonEnabled() bool { return enabled(e.CopyButton.Enabled) }

// SmoothScrollEnabled reports whether anchor binding runs.
func (e EnhanceConfig) SmoothScrollEnabled() bool { return enabled(e.SmoothScroll.Enabled) }

// TablesEnabled reports whether table wrapping runs.
func (e EnhanceConfig) TablesEnabled() bool { return enabled(e.Tables.Enabled) }

// AssetsEnabled reports whether asset tag injection runs.
func (e EnhanceConfig) AssetsEnabled() bool { return enabled(e.Assets.Inject) }
