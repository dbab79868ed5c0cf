// Package ir turns a validated lang/ast.Program into a flat, emission-ready
// intermediate representation: template and BASED_ON blocks expanded,
// OUTLET_REF overrides materialized onto the target outlet's timeline,
// lifecycle intervals flattened, and data blocks normalized.
//
// Grounded on mdsl-rs/src/ir/transformer.rs's AST-to-IR mapping, generalized
// from its partial per-construct handling to the full four-block
// (identity/lifecycle/characteristics/metadata) merge spec.md §4.5
// describes. Value bags reuse lang/ast's Field/Value types directly rather
// than a parallel IRExpression enum (transformer.rs's approach): Go favors
// reusing an existing shape over duplicating it when nothing about the
// target representation differs structurally from the source.
package ir

import (
	"github.com/mdsl-lang/mdslc/lang/ast"
)

// Program is the fully lowered compilation unit: every template/BASED_ON/
// override expansion applied, ready for tables_view/graph_view projection.
type Program struct {
	Units        []*ast.Unit
	Vocabularies []*ast.Vocabulary
	Catalogs     []*ast.Catalog
	Families     []*Family

	Tables *TablesView
	Graph  *GraphView
}

// Family mirrors ast.Family but with every Outlet fully expanded.
type Family struct {
	Name             string
	Outlets          []*Outlet
	DiachronicLinks  []*ast.DiachronicLink
	SynchronousLinks []*ast.SynchronousLink
	Events           []*ast.Event
	DataBlocks       []*NormalizedDataBlock
}

// Outlet is an outlet with template/BASED_ON inheritance already folded
// into Blocks, and any OUTLET_REF override layers targeting it attached as
// a period-scoped patch sequence.
type Outlet struct {
	ID              int64
	DeclaredName    string
	ExtendsTemplate string
	BasedOn         int64
	HasBasedOn      bool
	Blocks          OutletBlocks
	Overrides       []OverrideSegment
}

// OutletBlocks is the fully merged, resolved form of ast.OutletBlocks: no
// nil-vs-present ambiguity left to resolve, variables substituted.
type OutletBlocks struct {
	Identity        *Identity
	Lifecycle       []LifecycleSegment
	Characteristics []*ast.Field
	Metadata        []*ast.Field
}

// Identity is an outlet's resolved identity block.
type Identity struct {
	ID               int64
	HasID            bool
	Title            string
	URL              string
	HistoricalTitles []NormalizedTitle
}

// NormalizedTitle is one historical_titles entry with its period flattened
// to plain from/to strings ("" To means open-ended).
type NormalizedTitle struct {
	Title string
	From  string
	To    string
}

// LifecycleSegment is one canonical status interval after flattening. To
// == "" represents an open/CURRENT end.
type LifecycleSegment struct {
	Status         string
	From           string
	To             string
	PrecisionStart string
	PrecisionEnd   string
	Attrs          []*ast.Field
}

// OverrideSegment is one FOR_PERIOD layer materialized against its target
// outlet's base (template/BASED_ON-expanded) blocks. Snapshot already has
// the patch merged on top of the outlet's base blocks, so a consumer
// resolving a point in time only has to find the matching window.
//
// Segments are kept in declaration order, not sorted by date: spec.md
// §4.5.4 defines "later overrides earlier" by declaration order, and two
// overlapping windows are a warning (semantic.checkOverridePeriods), not a
// merge rule this layer has to arbitrate.
type OverrideSegment struct {
	From     string
	To       string
	Snapshot OutletBlocks
}

// NormalizedDataBlock is a DATA FOR block with metrics flattened and
// sources resolved to a catalog index.
type NormalizedDataBlock struct {
	OutletID    int64
	Aggregation []*ast.Field
	Years       []*NormalizedYear
}

// NormalizedYear is one YEAR entry with resolved metrics.
type NormalizedYear struct {
	Year    int
	Metrics []*NormalizedMetric
}

// NormalizedMetric is one metric record with its source resolved against
// the program's catalogs.
type NormalizedMetric struct {
	Name        string
	Value       float64
	Unit        string
	SourceName  string
	SourceIndex int // index into the flattened Sources list, -1 if unresolved
	Comment     string
}
