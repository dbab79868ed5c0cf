package cyphergen

import (
	"strings"

	"github.com/mdsl-lang/mdslc/config"
)

// generateConstraints emits the fixed constraint and index set spec.md
// §4.7 names, with the configured prefix applied to every label and
// constraint/index name.
func generateConstraints(cfg config.EmitConfig) string {
	pfx := cfg.CypherPrefix
	var b strings.Builder

	b.WriteString("// CONSTRAINTS AND INDEXES\n\n")

	b.WriteString("CREATE CONSTRAINT " + pfx + "media_outlet_id_unique IF NOT EXISTS FOR (o:" + pfx + "media_outlet) REQUIRE o.id_mo IS UNIQUE;\n")
	b.WriteString("CREATE CONSTRAINT " + pfx + "family_name_unique IF NOT EXISTS FOR (f:" + pfx + "Family) REQUIRE f.name IS UNIQUE;\n")
	b.WriteString("CREATE CONSTRAINT " + pfx + "template_name_unique IF NOT EXISTS FOR (t:" + pfx + "Template) REQUIRE t.name IS UNIQUE;\n")
	b.WriteString("CREATE CONSTRAINT " + pfx + "vocabulary_name_unique IF NOT EXISTS FOR (v:" + pfx + "Vocabulary) REQUIRE v.name IS UNIQUE;\n\n")

	b.WriteString("CREATE INDEX " + pfx + "media_outlet_title_index IF NOT EXISTS FOR (o:" + pfx + "media_outlet) ON (o.mo_title);\n")
	b.WriteString("CREATE INDEX " + pfx + "family_name_index IF NOT EXISTS FOR (f:" + pfx + "Family) ON (f.name);\n")
	b.WriteString("CREATE INDEX " + pfx + "market_data_year_index IF NOT EXISTS FOR (d:" + pfx + "MarketData) ON (d.year);\n")
	b.WriteString("CREATE INDEX " + pfx + "metric_name_index IF NOT EXISTS FOR (m:" + pfx + "Metric) ON (m.name);\n\n")

	return b.String()
}
