// Package config holds the emission-time knobs shared by the SQL and
// Cypher backends: dialect selection, check-constraint emission,
// overlapping-override warnings and Cypher label/relationship prefixing.
//
// Grounded on leapsql's dialect.Builder (pack
// other_examples/leapstack-labs-leapsql__dialect.go): a plain struct plus a
// fluent Builder, rather than functional options, matching that package's
// construction style.
package config

// Dialect selects the SQL emission shape. Ansi is the safe default per
// spec.md §9's Open Question 4; Postgres differs from Ansi only in
// emitting CREATE TABLE IF NOT EXISTS; Anmi recreates the legacy
// graphv3 schema the original ANMI media-outlet database used.
type Dialect int

const (
	DialectAnsi Dialect = iota
	DialectPostgres
	DialectAnmi
)

func (d Dialect) String() string {
	switch d {
	case DialectAnsi:
		return "ansi"
	case DialectPostgres:
		return "postgres"
	case DialectAnmi:
		return "anmi"
	default:
		return "unknown"
	}
}

// ParseDialect maps a CLI/config string onto a Dialect. Unrecognized
// input falls back to DialectAnsi; the CLI layer decides whether that is
// worth a warning.
func ParseDialect(s string) Dialect {
	switch s {
	case "postgres":
		return DialectPostgres
	case "anmi":
		return DialectAnmi
	default:
		return DialectAnsi
	}
}

// EmitConfig is the full set of backend emission knobs for one compiler
// invocation.
type EmitConfig struct {
	Dialect                  Dialect
	CypherPrefix             string // node-label / relationship-type prefix, default ""
	SQLCheckConstraints      bool   // emit CHECK(...) for CATEGORY(...) fields
	WarnOverlappingOverrides bool   // semantic.checkOverridePeriods toggle
}

// Default returns the spec's stated-safe defaults: ansi dialect, check
// constraints on, override-overlap warnings on, no Cypher prefix.
func Default() EmitConfig {
	return EmitConfig{
		Dialect:                  DialectAnsi,
		CypherPrefix:             "",
		SQLCheckConstraints:      true,
		WarnOverlappingOverrides: true,
	}
}

// Builder provides a fluent API for constructing an EmitConfig, mirroring
// leapsql's dialect.Builder.
type Builder struct {
	cfg EmitConfig
}

// NewBuilder starts from Default.
func NewBuilder() *Builder {
	b := &Builder{cfg: Default()}
	return b
}

func (b *Builder) WithDialect(d Dialect) *Builder {
	b.cfg.Dialect = d
	return b
}

func (b *Builder) WithCypherPrefix(prefix string) *Builder {
	b.cfg.CypherPrefix = prefix
	return b
}

func (b *Builder) WithSQLCheckConstraints(on bool) *Builder {
	b.cfg.SQLCheckConstraints = on
	return b
}

func (b *Builder) WithWarnOverlappingOverrides(on bool) *Builder {
	b.cfg.WarnOverlappingOverrides = on
	return b
}

func (b *Builder) Build() EmitConfig {
	return b.cfg
}
