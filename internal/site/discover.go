package site

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/docenhance/internal/logfields"
)

// IsHTMLPage reports whether path names a page the enhancer should process.
func IsHTMLPage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	}
	return false
}

// discoverPages walks the site root and collects every HTML page, in
// deterministic order. Hidden entries, the enhancement asset directory and
// paths matching the exclude globs are skipped. Exclude globs match
// against the slash-separated site-relative path.
func discoverPages(root string, excludes []string, assetBase string) ([]PageFile, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve root %s: %w", ErrDiscovery, root, err)
	}

	assetDir := ""
	if assetBase != "" {
		assetDir = filepath.Join(absRoot, filepath.FromSlash(strings.TrimPrefix(assetBase, "/")))
	}

	var pages []PageFile
	err = filepath.Walk(absRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, relErr := filepath.Rel(absRoot, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			if path == absRoot {
				return nil
			}
			// Never descend into our own asset output or hidden directories.
			if assetDir != "" && path == assetDir {
				return filepath.SkipDir
			}
			if strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			if MatchesExclude(rel, excludes) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(info.Name(), ".") {
			return nil
		}
		if !IsHTMLPage(path) {
			return nil
		}
		if MatchesExclude(rel, excludes) {
			slog.Debug("Page excluded by pattern", logfields.Path(rel))
			return nil
		}

		pages = append(pages, PageFile{Path: path, Rel: rel})
		slog.Debug("Discovered page", logfields.Path(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: walk %s: %w", ErrDiscovery, root, err)
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i].Rel < pages[j].Rel })
	slog.Info("Page discovery complete", slog.Int("pages", len(pages)), logfields.Path(root))
	return pages, nil
}

// MatchesExclude reports whether rel matches any exclude glob. Patterns
// are matched against the full relative path and against the base name, so
// "drafts/*" and "*.partial.html" both behave naturally.
func MatchesExclude(rel string, excludes []string) bool {
	base := filepath.Base(rel)
	for _, pattern := range excludes {
		if ok, err := filepath.Match(pattern, rel); err == nil && ok {
			return true
		}
		if ok, err := filepath.Match(pattern, base); err == nil && ok {
			return true
		}
	}
	return false
}
