package sqlgen

import (
	"strings"

	"github.com/mdsl-lang/mdslc/config"
	"github.com/mdsl-lang/mdslc/lang/ast"
)

func createTableClause(cfg config.EmitConfig) string {
	if cfg.Dialect == config.DialectPostgres {
		return "CREATE TABLE IF NOT EXISTS "
	}
	return "CREATE TABLE "
}

// generateCoreSchema emits the fixed core schema named in spec.md §4.6,
// plus the supplemented outlet_historical_titles/events/event_entities
// tables (DESIGN.md Open Question 11 and its sibling for identity's
// historical_titles, which the named list otherwise has nowhere to put).
func generateCoreSchema(cfg config.EmitConfig) string {
	var b strings.Builder
	ct := createTableClause(cfg)

	b.WriteString("-- CORE SCHEMA\n\n")

	b.WriteString(ct + "families (\n")
	b.WriteString("    name VARCHAR(255) PRIMARY KEY\n")
	b.WriteString(");\n\n")

	b.WriteString(ct + "templates (\n")
	b.WriteString("    name VARCHAR(255) PRIMARY KEY\n")
	b.WriteString(");\n\n")

	b.WriteString(ct + "media_outlets (\n")
	b.WriteString("    id INTEGER PRIMARY KEY,\n")
	b.WriteString("    family_name VARCHAR(255) NOT NULL,\n")
	b.WriteString("    declared_name VARCHAR(255),\n")
	b.WriteString("    extends_template VARCHAR(255),\n")
	b.WriteString("    based_on INTEGER,\n")
	b.WriteString("    FOREIGN KEY (family_name) REFERENCES families(name),\n")
	b.WriteString("    FOREIGN KEY (extends_template) REFERENCES templates(name),\n")
	b.WriteString("    FOREIGN KEY (based_on) REFERENCES media_outlets(id)\n")
	b.WriteString(");\n\n")

	b.WriteString(ct + "outlet_identity (\n")
	b.WriteString("    outlet_id INTEGER PRIMARY KEY,\n")
	b.WriteString("    title VARCHAR(255) NOT NULL,\n")
	b.WriteString("    url VARCHAR(255),\n")
	b.WriteString("    FOREIGN KEY (outlet_id) REFERENCES media_outlets(id)\n")
	b.WriteString(");\n\n")

	b.WriteString(ct + "outlet_historical_titles (\n")
	b.WriteString("    outlet_id INTEGER NOT NULL,\n")
	b.WriteString("    title VARCHAR(255) NOT NULL,\n")
	b.WriteString("    period_from DATE,\n")
	b.WriteString("    period_to DATE,\n")
	b.WriteString("    FOREIGN KEY (outlet_id) REFERENCES media_outlets(id)\n")
	b.WriteString(");\n\n")

	b.WriteString(ct + "outlet_lifecycle (\n")
	b.WriteString("    outlet_id INTEGER NOT NULL,\n")
	b.WriteString("    status VARCHAR(100) NOT NULL,\n")
	b.WriteString("    period_from DATE,\n")
	b.WriteString("    period_to DATE,\n")
	b.WriteString("    precision_start VARCHAR(50),\n")
	b.WriteString("    precision_end VARCHAR(50),\n")
	b.WriteString("    FOREIGN KEY (outlet_id) REFERENCES media_outlets(id)\n")
	b.WriteString(");\n\n")

	b.WriteString(ct + "outlet_characteristics (\n")
	b.WriteString("    outlet_id INTEGER NOT NULL,\n")
	b.WriteString("    characteristic_name VARCHAR(100) NOT NULL,\n")
	b.WriteString("    characteristic_value TEXT,\n")
	b.WriteString("    FOREIGN KEY (outlet_id) REFERENCES media_outlets(id)\n")
	b.WriteString(");\n\n")

	b.WriteString(ct + "outlet_metadata (\n")
	b.WriteString("    outlet_id INTEGER NOT NULL,\n")
	b.WriteString("    metadata_name VARCHAR(100) NOT NULL,\n")
	b.WriteString("    metadata_value TEXT,\n")
	b.WriteString("    FOREIGN KEY (outlet_id) REFERENCES media_outlets(id)\n")
	b.WriteString(");\n\n")

	b.WriteString(ct + "relationships (\n")
	b.WriteString("    family_name VARCHAR(255) NOT NULL,\n")
	b.WriteString("    name VARCHAR(255) NOT NULL,\n")
	b.WriteString("    relationship_type VARCHAR(50) NOT NULL,\n")
	b.WriteString("    PRIMARY KEY (family_name, name),\n")
	b.WriteString("    FOREIGN KEY (family_name) REFERENCES families(name)\n")
	b.WriteString(");\n\n")

	b.WriteString(ct + "diachronic_relationships (\n")
	b.WriteString("    family_name VARCHAR(255) NOT NULL,\n")
	b.WriteString("    name VARCHAR(255) NOT NULL,\n")
	b.WriteString("    predecessor_id INTEGER NOT NULL,\n")
	b.WriteString("    successor_id INTEGER NOT NULL,\n")
	b.WriteString("    event_start DATE,\n")
	b.WriteString("    event_end DATE,\n")
	b.WriteString("    relationship_subtype VARCHAR(100),\n")
	b.WriteString("    triggered_by_event VARCHAR(255),\n")
	b.WriteString("    FOREIGN KEY (family_name, name) REFERENCES relationships(family_name, name),\n")
	b.WriteString("    FOREIGN KEY (predecessor_id) REFERENCES media_outlets(id),\n")
	b.WriteString("    FOREIGN KEY (successor_id) REFERENCES media_outlets(id)\n")
	b.WriteString(");\n\n")

	b.WriteString(ct + "synchronous_relationships (\n")
	b.WriteString("    family_name VARCHAR(255) NOT NULL,\n")
	b.WriteString("    name VARCHAR(255) NOT NULL,\n")
	b.WriteString("    outlet_1_id INTEGER NOT NULL,\n")
	b.WriteString("    outlet_1_role VARCHAR(100),\n")
	b.WriteString("    outlet_2_id INTEGER NOT NULL,\n")
	b.WriteString("    outlet_2_role VARCHAR(100),\n")
	b.WriteString("    relationship_subtype VARCHAR(100),\n")
	b.WriteString("    period_start DATE,\n")
	b.WriteString("    period_end DATE,\n")
	b.WriteString("    details TEXT,\n")
	b.WriteString("    created_by_event VARCHAR(255),\n")
	b.WriteString("    FOREIGN KEY (family_name, name) REFERENCES relationships(family_name, name),\n")
	b.WriteString("    FOREIGN KEY (outlet_1_id) REFERENCES media_outlets(id),\n")
	b.WriteString("    FOREIGN KEY (outlet_2_id) REFERENCES media_outlets(id)\n")
	b.WriteString(");\n\n")

	b.WriteString(ct + "market_data (\n")
	b.WriteString("    outlet_id INTEGER NOT NULL,\n")
	b.WriteString("    data_year INTEGER NOT NULL,\n")
	b.WriteString("    metric_name VARCHAR(100) NOT NULL,\n")
	b.WriteString("    metric_value DECIMAL(15,2),\n")
	b.WriteString("    metric_unit VARCHAR(50),\n")
	b.WriteString("    source_name VARCHAR(100),\n")
	b.WriteString("    comment TEXT,\n")
	b.WriteString("    FOREIGN KEY (outlet_id) REFERENCES media_outlets(id)\n")
	b.WriteString(");\n\n")

	b.WriteString(ct + "data_aggregation (\n")
	b.WriteString("    outlet_id INTEGER NOT NULL,\n")
	b.WriteString("    aggregation_name VARCHAR(100) NOT NULL,\n")
	b.WriteString("    aggregation_value VARCHAR(100) NOT NULL,\n")
	b.WriteString("    FOREIGN KEY (outlet_id) REFERENCES media_outlets(id)\n")
	b.WriteString(");\n\n")

	b.WriteString(ct + "vocabularies (\n")
	b.WriteString("    name VARCHAR(255) NOT NULL,\n")
	b.WriteString("    vocab_group VARCHAR(255) NOT NULL,\n")
	b.WriteString("    PRIMARY KEY (name, vocab_group)\n")
	b.WriteString(");\n\n")

	b.WriteString(ct + "vocabulary_entries (\n")
	b.WriteString("    vocab_name VARCHAR(255) NOT NULL,\n")
	b.WriteString("    vocab_group VARCHAR(255) NOT NULL,\n")
	b.WriteString("    entry_key VARCHAR(100) NOT NULL,\n")
	b.WriteString("    entry_value TEXT NOT NULL,\n")
	b.WriteString("    FOREIGN KEY (vocab_name, vocab_group) REFERENCES vocabularies(name, vocab_group)\n")
	b.WriteString(");\n\n")

	b.WriteString(ct + "sources (\n")
	b.WriteString("    catalog_name VARCHAR(255) NOT NULL,\n")
	b.WriteString("    name VARCHAR(255) NOT NULL,\n")
	b.WriteString("    display_name VARCHAR(255),\n")
	b.WriteString("    full_name VARCHAR(255),\n")
	b.WriteString("    description TEXT,\n")
	b.WriteString("    maps_to_table VARCHAR(255),\n")
	b.WriteString("    PRIMARY KEY (catalog_name, name)\n")
	b.WriteString(");\n\n")

	b.WriteString(ct + "events (\n")
	b.WriteString("    name VARCHAR(255) PRIMARY KEY,\n")
	b.WriteString("    event_type VARCHAR(100) NOT NULL,\n")
	b.WriteString("    event_date DATE,\n")
	b.WriteString("    status VARCHAR(100)\n")
	b.WriteString(");\n\n")

	b.WriteString(ct + "event_entities (\n")
	b.WriteString("    event_name VARCHAR(255) NOT NULL,\n")
	b.WriteString("    participant_key VARCHAR(255) NOT NULL,\n")
	b.WriteString("    outlet_id INTEGER NOT NULL,\n")
	b.WriteString("    role VARCHAR(100),\n")
	b.WriteString("    stake_before DECIMAL(10,2),\n")
	b.WriteString("    stake_after DECIMAL(10,2),\n")
	b.WriteString("    FOREIGN KEY (event_name) REFERENCES events(name),\n")
	b.WriteString("    FOREIGN KEY (outlet_id) REFERENCES media_outlets(id)\n")
	b.WriteString(");\n\n")

	return b.String()
}

// generateUnitTable emits one declared UNIT's CREATE TABLE per spec.md
// §4.6's type mapping.
func generateUnitTable(u *ast.Unit, cfg config.EmitConfig) string {
	var b strings.Builder
	b.WriteString("-- Table for unit: " + u.Name + "\n")
	b.WriteString(createTableClause(cfg) + strings.ToLower(u.Name) + " (\n")

	defs := make([]string, 0, len(u.Fields))
	checks := make([]string, 0)
	for _, f := range u.Fields {
		def := "    " + f.Name + " " + unitFieldSQLType(f)
		if f.PrimaryKey && f.Type.Kind != ast.FieldID {
			def += " PRIMARY KEY"
		}
		defs = append(defs, def)
		if f.Type.Kind == ast.FieldCategory && cfg.SQLCheckConstraints && len(f.Type.Categories) > 0 {
			checks = append(checks, "    "+categoryCheck(f.Name, f.Type.Categories))
		}
	}
	defs = append(defs, checks...)
	b.WriteString(strings.Join(defs, ",\n"))
	b.WriteString("\n);\n")
	return b.String()
}
