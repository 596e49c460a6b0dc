package site

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/docenhance/internal/enhance"
)

// writeAssets places the shipped stylesheet, runtime script and MathJax
// configuration under the asset directory inside the site root. Files are
// written atomically so a concurrent web server never observes a truncated
// asset. Returns the number of files written.
func writeAssets(root, assetBase string, enhancer *enhance.Enhancer) (int, error) {
	dir := filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(assetBase, "/")))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create asset directory %s: %w", dir, err)
	}

	mathJS, err := enhancer.MathConfigJS()
	if err != nil {
		return 0, fmt.Errorf("render mathjax config: %w", err)
	}

	files := []struct {
		name string
		data []byte
	}{
		{"enhance.css", enhance.StylesheetCSS()},
		{"enhance.js", enhance.RuntimeJS()},
		{"mathjax-config.js", mathJS},
	}

	written := 0
	for _, f := range files {
		if err := writeFileAtomic(filepath.Join(dir, f.name), f.data); err != nil {
			return written, fmt.Errorf("write asset %s: %w", f.name, err)
		}
		written++
	}
	return written, nil
}

// writeFileAtomic writes data to path via a temp file and rename, keeping
// the previous content intact if the write fails partway.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	// #nosec G306 -- site artifacts are world readable
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
