package ast

import "github.com/mdsl-lang/mdslc/sourcemap"

// Stmt is any top-level (or family-body) statement.
type Stmt interface {
	Span() sourcemap.Span
}

// Program is the ordered sequence of files reachable from a compilation
// root, in the order the import graph was resolved (imports before
// importer, per spec.md §6). Program owns every Family, Unit, Vocabulary,
// Template, Catalog and Variable declared anywhere in the graph.
type Program struct {
	Files []*File
}

// File is one source file's parsed content.
type File struct {
	ID         sourcemap.FileID
	Path       string
	Imports    []*Import
	Statements []Stmt
}

// Import is a resolved `IMPORT "path";` statement.
type Import struct {
	Spanned
	Path string // as written, relative to the importing file
}

// Let is a `LET name = value;` module-scoped variable binding.
type Let struct {
	Spanned
	Name  string
	Value Value
}

// FieldTypeKind distinguishes the primitive Unit field types.
type FieldTypeKind int

const (
	FieldID FieldTypeKind = iota
	FieldText
	FieldNumber
	FieldBoolean
	FieldCategory
)

// FieldType is a Unit field's declared type.
type FieldType struct {
	Kind       FieldTypeKind
	TextLen    int      // only meaningful for FieldText; 0 means unbounded
	Categories []string // only meaningful for FieldCategory
}

// UnitField is one field of a Unit schema declaration.
type UnitField struct {
	Spanned
	Name       string
	Type       FieldType
	PrimaryKey bool
}

// Unit is a named schema declaration with ordered typed fields.
type Unit struct {
	Spanned
	Name   string
	Fields []*UnitField
}

// VocabEntry is one `key: "value"` pair inside a vocabulary group. The key
// may have been written as a bare number or a bare identifier; Key always
// holds its text form, Numeric records which it was.
type VocabEntry struct {
	Spanned
	Key     string
	Numeric bool
	Value   string
}

// VocabGroup is one inner group of a Vocabulary.
type VocabGroup struct {
	Spanned
	Name    string
	Entries []*VocabEntry
}

// Vocabulary is a named enumeration made of one or more groups.
type Vocabulary struct {
	Spanned
	Name   string
	Groups []*VocabGroup
}

// Source is one entry of a Catalog.
type Source struct {
	Spanned
	Name           string
	DisplayName    string
	FullName       string
	Description    string
	AnmiComponents map[string]float64
	MapsToTable    string
	Annotations    []*Annotation
}

// Catalog is a named collection of Source entries.
type Catalog struct {
	Spanned
	Name    string
	Sources []*Source
}

// OutletBlocks are the four optional partial blocks shared by Template,
// Outlet and the per-period override layers of OutletRef. Each field is
// nil when absent, so "child overrides parent" merge logic (ir package)
// can tell "not specified" from "specified empty".
type OutletBlocks struct {
	Identity        *IdentityBlock
	Lifecycle       *LifecycleBlock
	Characteristics *CharacteristicsBlock
	Metadata        *MetadataBlock
}

// HistoricalTitle is one entry of identity.historical_titles.
type HistoricalTitle struct {
	Spanned
	Title  string
	Period *DateRange
}

// IdentityBlock is an outlet's identity information.
type IdentityBlock struct {
	Spanned
	ID               int64
	HasID            bool
	Title            string
	URL              string
	HistoricalTitles []*HistoricalTitle
}

// LifecycleInterval is one status interval of a lifecycle timeline.
type LifecycleInterval struct {
	Spanned
	Status         string
	From           Value // DateLit
	To             Value // DateLit, possibly Current
	PrecisionStart string
	PrecisionEnd   string
	Annotations    []*Annotation
	Extra          []*Field // arbitrary nested key=value attributes
}

// LifecycleBlock is the ordered sequence of status intervals.
type LifecycleBlock struct {
	Spanned
	Intervals []*LifecycleInterval
}

// CharacteristicsBlock is a free-form key->value bag, some values nested
// objects (distribution, editorial_stance).
type CharacteristicsBlock struct {
	Spanned
	Fields []*Field
}

// MetadataBlock is a free-form key->scalar bag.
type MetadataBlock struct {
	Spanned
	Fields []*Field
}

// Template is a named, reusable partial outlet used via EXTENDS TEMPLATE.
type Template struct {
	Spanned
	Name string
	OutletBlocks
}

// Outlet is a fully declared outlet: numeric id, optional inheritance, and
// the four partial blocks.
type Outlet struct {
	Spanned
	DeclaredName    string // the quoted name following OUTLET, informational
	NumericID       int64
	ExtendsTemplate string // "" if none
	BasedOn         int64
	HasBasedOn      bool
	Annotations     []*Annotation
	OutletBlocks
}

// ForPeriod is one `FOR_PERIOD <from> TO <to> { blocks }` attribute layer
// inside an OVERRIDE FROM block.
type ForPeriod struct {
	Spanned
	From Value
	To   Value
	OutletBlocks
}

// Override is one `OVERRIDE FROM <date> { ... }` block, containing one or
// more period-scoped layers.
type Override struct {
	Spanned
	From    Value
	Periods []*ForPeriod
}

// OutletRef references an outlet declared elsewhere by numeric id and may
// attach override layers to its timeline.
type OutletRef struct {
	Spanned
	TargetID        int64
	TitleHint       string // informational only, per spec.md §9 Open Question 3
	HasTitleHint    bool
	InheritsFrom    int64
	HasInheritsFrom bool
	InheritsUntil   Value
	Overrides       []*Override
}

// DiachronicLink is a directed, time-stamped edge between two outlets.
type DiachronicLink struct {
	Spanned
	Name                Name
	Predecessor         int64
	Successor           int64
	EventDate           Value // DateLit or DateRange
	RelationshipType    string
	TriggeredByEvent    string
	HasTriggeredByEvent bool
	Annotations         []*Annotation
}

// LinkEndpoint is one side of a SynchronousLink.
type LinkEndpoint struct {
	ID   int64
	Role string
}

// SynchronousLink is a contemporaneous, role-tagged edge between two
// outlets.
type SynchronousLink struct {
	Spanned
	Name              Name
	Outlet1           LinkEndpoint
	Outlet2           LinkEndpoint
	RelationshipType  string
	Period            Value // DateRange
	Details           string
	CreatedByEvent    string
	HasCreatedByEvent bool
}

// EventParticipant is one entry of an Event's entities map.
type EventParticipant struct {
	Key         string // the map key (participant name)
	ID          int64
	Role        string
	StakeBefore *float64
	StakeAfter  *float64
	Sp          sourcemap.Span
}

// Event is a named temporal occurrence that may trigger links.
type Event struct {
	Spanned
	Name        string
	Type        string
	Date        Value // DateLit (possibly Current)
	Status      string
	Entities    []*EventParticipant
	Impact      map[string]Value
	Metadata    map[string]Value
	Annotations []*Annotation
}

// Metric is one metric record inside a DataYear.
type Metric struct {
	Spanned
	Name    string
	Value   float64
	Unit    string
	Source  string
	Comment string
}

// DataYear is one `YEAR <n> { metrics }` entry of a DataBlock.
type DataYear struct {
	Spanned
	Year    int
	Metrics []*Metric
}

// DataBlock is a `DATA FOR <outlet_id> { ... }` block.
type DataBlock struct {
	Spanned
	OutletID    int64
	Aggregation map[string]Value
	Years       []*DataYear
}

// Family is a named grouping of outlets, refs, data, links and events.
type Family struct {
	Spanned
	Name             string
	Outlets          []*Outlet
	OutletRefs       []*OutletRef
	Templates        []*Template
	DataBlocks       []*DataBlock
	DiachronicLinks  []*DiachronicLink
	SynchronousLinks []*SynchronousLink
	Events           []*Event
}

// the blank assignments below make the intent ("these types implement
// Stmt") grep-discoverable without forcing every type through an explicit
// interface method it would otherwise never need.
var (
	_ Stmt = (*Import)(nil)
	_ Stmt = (*Let)(nil)
	_ Stmt = (*Unit)(nil)
	_ Stmt = (*Vocabulary)(nil)
	_ Stmt = (*Catalog)(nil)
	_ Stmt = (*Template)(nil)
	_ Stmt = (*Family)(nil)
	_ Stmt = (*DataBlock)(nil)
	_ Stmt = (*DiachronicLink)(nil)
	_ Stmt = (*SynchronousLink)(nil)
	_ Stmt = (*Event)(nil)
)
