// Package gitinfo resolves the git position of a site root so run reports
// can record which revision of the site was enhanced.
package gitinfo

import (
	"fmt"

	"github.com/go-git/go-git/v5"
)

// Provenance records the git position of a directory at run time.
type Provenance struct {
	Commit string `json:"commit"`
	Branch string `json:"branch,omitempty"`
	Dirty  bool   `json:"dirty,omitempty"`
}

// Resolve opens the repository containing dir, searching parent
// directories the way the git CLI does, and captures its HEAD position.
// Returns an error when dir is not inside a work tree; callers treat that
// as "no provenance", not as a failure.
func Resolve(dir string) (*Provenance, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}

	p := &Provenance{Commit: head.Hash().String()}
	if head.Name().IsBranch() {
		p.Branch = head.Name().Short()
	}
	if wt, err := repo.Worktree(); err == nil {
		if status, err := wt.Status(); err == nil {
			p.Dirty = !status.IsClean()
		}
	}
	return p, nil
}

// Short returns the abbreviated commit hash for log lines.
func (p *Provenance) Short() string {
	if p == nil || len(p.Commit) < 8 {
		return ""
	}
	return p.Commit[:8]
}
