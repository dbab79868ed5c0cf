package config

import "testing"

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Dialect != DialectAnsi {
		t.Fatalf("expected ansi default, got %v", cfg.Dialect)
	}
	if !cfg.SQLCheckConstraints || !cfg.WarnOverlappingOverrides {
		t.Fatalf("expected check constraints and override warnings on by default: %+v", cfg)
	}
	if cfg.CypherPrefix != "" {
		t.Fatalf("expected empty cypher prefix by default, got %q", cfg.CypherPrefix)
	}
}

func TestBuilderFluentOverrides(t *testing.T) {
	cfg := NewBuilder().
		WithDialect(DialectPostgres).
		WithCypherPrefix("mdsl_").
		WithSQLCheckConstraints(false).
		WithWarnOverlappingOverrides(false).
		Build()

	if cfg.Dialect != DialectPostgres {
		t.Fatalf("expected postgres dialect, got %v", cfg.Dialect)
	}
	if cfg.CypherPrefix != "mdsl_" {
		t.Fatalf("expected prefix mdsl_, got %q", cfg.CypherPrefix)
	}
	if cfg.SQLCheckConstraints || cfg.WarnOverlappingOverrides {
		t.Fatalf("expected both toggles off: %+v", cfg)
	}
}

func TestParseDialect(t *testing.T) {
	cases := map[string]Dialect{
		"ansi":     DialectAnsi,
		"postgres": DialectPostgres,
		"anmi":     DialectAnmi,
		"bogus":    DialectAnsi,
		"":         DialectAnsi,
	}
	for in, want := range cases {
		if got := ParseDialect(in); got != want {
			t.Errorf("ParseDialect(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestDialectString(t *testing.T) {
	if DialectAnsi.String() != "ansi" || DialectPostgres.String() != "postgres" || DialectAnmi.String() != "anmi" {
		t.Fatalf("unexpected dialect names: %s %s %s", DialectAnsi, DialectPostgres, DialectAnmi)
	}
}
