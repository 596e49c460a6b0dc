package site

import "context"

// StageName is a strongly-typed identifier for a run stage. All canonical
// stages are declared as constants here for compile-time safety.
type StageName string

// Canonical stage names.
const (
	StageDiscoverPages StageName = "discover_pages"
	StageEnhancePages  StageName = "enhance_pages"
	StageWriteAssets   StageName = "write_assets"
	StageFinalize      StageName = "finalize"
)

// Stage is a discrete unit of work in an enhancement run.
type Stage func(ctx context.Context, rs *RunState) error

// StageDef pairs a stage name with its executing function.
type StageDef struct {
	Name StageName
	Fn   Stage
}
