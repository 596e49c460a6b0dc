package site

import (
	"git.home.luguber.info/inful/docenhance/internal/config"
	"git.home.luguber.info/inful/docenhance/internal/enhance"
)

// OptionsFromConfig maps the validated configuration onto enhancer
// options. Opt-out pointers resolve to enabled when nil; delimiter pairs
// arrive validated as two-element slices.
func OptionsFromConfig(cfg *config.Config) enhance.Options {
	return enhance.Options{
		Math: enhance.MathOptions{
			Disabled: !cfg.Enhance.MathEnabled(),
			Config:   mathConfigFromSettings(cfg.Enhance.Math),
		},
		CopyButton: enhance.CopyButtonOptions{
			Disabled:     !cfg.Enhance.CopyButtonEnabled(),
			IdleGlyph:    cfg.Enhance.CopyButton.IdleGlyph,
			SuccessGlyph: cfg.Enhance.CopyButton.SuccessGlyph,
			RevertAfter:  cfg.Enhance.CopyButton.RevertDuration(),
		},
		Scroll: enhance.ScrollOptions{
			Disabled: !cfg.Enhance.SmoothScrollEnabled(),
		},
		Tables: enhance.TableOptions{
			Disabled:     !cfg.Enhance.TablesEnabled(),
			WrapperClass: cfg.Enhance.Tables.WrapperClass,
		},
		Assets: enhance.AssetOptions{
			Disabled: !cfg.Enhance.AssetsEnabled(),
			BasePath: cfg.Site.AssetBase,
		},
	}
}

func mathConfigFromSettings(mc config.MathConfig) enhance.MathConfig {
	out := enhance.MathConfig{
		ProcessEscapes:      mc.ProcessEscapes == nil || *mc.ProcessEscapes,
		ProcessEnvironments: mc.ProcessEnvironments == nil || *mc.ProcessEnvironments,
		IgnoreHTMLClass:     mc.IgnoreClass,
		ProcessHTMLClass:    mc.ProcessClass,
	}
	for _, pair := range mc.Inline {
		if len(pair) == 2 {
			out.InlineMath = append(out.InlineMath, enhance.DelimiterPair{pair[0], pair[1]})
		}
	}
	for _, pair := range mc.Display {
		if len(pair) == 2 {
			out.DisplayMath = append(out.DisplayMath, enhance.DelimiterPair{pair[0], pair[1]})
		}
	}
	return out
}
