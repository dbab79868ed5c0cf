package sqlgen

import (
	"sort"
	"strings"

	"github.com/mdsl-lang/mdslc/ir"
)

// diachronicRelationTables and synchronousRelationTables name the numbered
// graphv3 relationship tables, grounded verbatim on
// mdsl-rs/src/codegen/sql_anmi.rs's generate_relationship_tables list.
// A relationship_type that matches one of these names (case-insensitive)
// routes to its table; anything else falls back to the first table of
// its kind.
var diachronicRelationTables = []string{
	"11_succession", "12_amalgamation", "13_new_distribution_area",
	"14_new_sector", "15_interruption", "16_split_off", "17_merger", "18_offshoot",
}

var synchronousRelationTables = []string{
	"21_main_media_outlet", "22_umbrella", "23_collaboration",
}

func anmiRelationTableFor(tables []string, relationshipType string) string {
	norm := strings.ToLower(strings.ReplaceAll(relationshipType, " ", "_"))
	for _, t := range tables {
		if strings.HasSuffix(t, norm) {
			return t
		}
	}
	return tables[0]
}

// generateAnmi recreates the legacy graphv3 schema the original ANMI
// media-outlet database used: mo_constant/mo_year plus numbered
// relationship tables, in place of the generalized core schema. Selected
// by config.EmitConfig.Dialect == DialectAnmi. Grounded on
// mdsl-rs/src/codegen/sql_anmi.rs.
func generateAnmi(p *ir.Program) string {
	var b strings.Builder
	b.WriteString("-- Generated ANMI-compatible SQL from MDSL\n")
	b.WriteString("-- recreates the graphv3 schema structure\n\n")
	b.WriteString("CREATE SCHEMA IF NOT EXISTS graphv3;\n\n")

	b.WriteString(anmiCoreSchema())
	b.WriteString(anmiRelationshipSchema())

	sourceIDs := anmiSourceIDs(p)

	b.WriteString("-- Populate vocabularies\n")
	for _, v := range p.Vocabularies {
		table := ""
		switch v.Name {
		case "SECTOR":
			table = "graphv3.sectors"
		case "DISTRIBUTION_AREA":
			table = "graphv3.distribution_areas"
		default:
			continue
		}
		col := "sector_name"
		idCol := "id_sector"
		if table == "graphv3.distribution_areas" {
			col, idCol = "area_name", "id_area"
		}
		for _, g := range v.Groups {
			for _, e := range g.Entries {
				if !e.Numeric {
					continue
				}
				b.WriteString("INSERT INTO " + table + " (" + idCol + ", " + col + ") VALUES (" + e.Key + ", " + quoted(e.Value) + ") ON CONFLICT DO NOTHING;\n")
			}
		}
	}
	b.WriteString("\n")

	b.WriteString("-- Populate sources\n")
	names := make([]string, 0, len(sourceIDs))
	for name := range sourceIDs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		b.WriteString("INSERT INTO graphv3.sources_names (id_source, source_name) VALUES (" + intSQL(int64(sourceIDs[name])) + ", " + quoted(name) + ") ON CONFLICT DO NOTHING;\n")
	}
	b.WriteString("\n")

	b.WriteString("-- Insert media outlets\n")
	for _, fam := range p.Families {
		for _, o := range fam.Outlets {
			b.WriteString(anmiOutletInsert(o))
		}
	}
	b.WriteString("\n")

	b.WriteString("-- Insert market data\n")
	for _, fam := range p.Families {
		for _, db := range fam.DataBlocks {
			for _, y := range db.Years {
				b.WriteString(anmiYearInsert(db.OutletID, y, sourceIDs))
			}
		}
	}
	b.WriteString("\n")

	b.WriteString("-- Insert relationships\n")
	for _, row := range p.Tables.DiachronicRelationships {
		table := anmiRelationTableFor(diachronicRelationTables, row.RelationshipType)
		b.WriteString("INSERT INTO graphv3." + table + " (id_pred, id_succ, e_s, e_e) VALUES (" +
			intSQL(row.Predecessor) + ", " + intSQL(row.Successor) + ", " + sqlOrNull(row.EventFrom) + ", " + sqlOrNull(row.EventTo) + ");\n")
	}
	for _, row := range p.Tables.SynchronousRelationships {
		table := anmiRelationTableFor(synchronousRelationTables, row.RelationshipType)
		b.WriteString("INSERT INTO graphv3." + table + " (id_mo_1, id_mo_2, p_s, p_e) VALUES (" +
			intSQL(row.Outlet1ID) + ", " + intSQL(row.Outlet2ID) + ", " + sqlOrNull(row.PeriodFrom) + ", " + sqlOrNull(row.PeriodTo) + ");\n")
	}

	return b.String()
}

func anmiCoreSchema() string {
	var b strings.Builder
	b.WriteString("-- ANMI core tables\n\n")
	b.WriteString("CREATE TABLE IF NOT EXISTS graphv3.mo_constant (\n")
	b.WriteString("    id_mo INTEGER PRIMARY KEY,\n")
	b.WriteString("    mo_title VARCHAR(120),\n")
	b.WriteString("    id_sector INTEGER,\n")
	b.WriteString("    mandate INTEGER,\n")
	b.WriteString("    location VARCHAR(25),\n")
	b.WriteString("    primary_distr_area INTEGER,\n")
	b.WriteString("    local INTEGER,\n")
	b.WriteString("    language VARCHAR(5),\n")
	b.WriteString("    start_date DATE,\n")
	b.WriteString("    end_date DATE,\n")
	b.WriteString("    editorial_line_s TEXT,\n")
	b.WriteString("    comments TEXT\n")
	b.WriteString(");\n\n")

	b.WriteString("CREATE TABLE IF NOT EXISTS graphv3.mo_year (\n")
	b.WriteString("    id_mo INTEGER,\n")
	b.WriteString("    year INTEGER,\n")
	b.WriteString("    circulation INTEGER,\n")
	b.WriteString("    circulation_source INTEGER,\n")
	b.WriteString("    unique_users INTEGER,\n")
	b.WriteString("    unique_users_source INTEGER,\n")
	b.WriteString("    reach_nat DECIMAL(5,2),\n")
	b.WriteString("    reach_nat_source INTEGER,\n")
	b.WriteString("    reach_reg DECIMAL(5,2),\n")
	b.WriteString("    reach_reg_source INTEGER,\n")
	b.WriteString("    market_share DECIMAL(5,2),\n")
	b.WriteString("    market_share_source INTEGER,\n")
	b.WriteString("    PRIMARY KEY (id_mo, year),\n")
	b.WriteString("    FOREIGN KEY (id_mo) REFERENCES graphv3.mo_constant(id_mo)\n")
	b.WriteString(");\n\n")

	b.WriteString("CREATE TABLE IF NOT EXISTS graphv3.sources_names (\n")
	b.WriteString("    id_source INTEGER PRIMARY KEY,\n")
	b.WriteString("    source_name VARCHAR(100)\n")
	b.WriteString(");\n\n")

	b.WriteString("CREATE TABLE IF NOT EXISTS graphv3.sectors (\n")
	b.WriteString("    id_sector INTEGER PRIMARY KEY,\n")
	b.WriteString("    sector_name VARCHAR(100)\n")
	b.WriteString(");\n\n")

	b.WriteString("CREATE TABLE IF NOT EXISTS graphv3.distribution_areas (\n")
	b.WriteString("    id_area INTEGER PRIMARY KEY,\n")
	b.WriteString("    area_name VARCHAR(100)\n")
	b.WriteString(");\n\n")
	return b.String()
}

func anmiRelationshipSchema() string {
	var b strings.Builder
	b.WriteString("-- Relationship tables\n\n")
	for _, t := range diachronicRelationTables {
		b.WriteString("CREATE TABLE IF NOT EXISTS graphv3." + t + " (\n")
		b.WriteString("    id_pred INTEGER,\n")
		b.WriteString("    id_succ INTEGER,\n")
		b.WriteString("    e_s DATE,\n")
		b.WriteString("    e_e DATE,\n")
		b.WriteString("    PRIMARY KEY (id_pred, id_succ),\n")
		b.WriteString("    FOREIGN KEY (id_pred) REFERENCES graphv3.mo_constant(id_mo),\n")
		b.WriteString("    FOREIGN KEY (id_succ) REFERENCES graphv3.mo_constant(id_mo)\n")
		b.WriteString(");\n\n")
	}
	for _, t := range synchronousRelationTables {
		b.WriteString("CREATE TABLE IF NOT EXISTS graphv3." + t + " (\n")
		b.WriteString("    id_mo_1 INTEGER,\n")
		b.WriteString("    id_mo_2 INTEGER,\n")
		b.WriteString("    p_s DATE,\n")
		b.WriteString("    p_e DATE,\n")
		b.WriteString("    PRIMARY KEY (id_mo_1, id_mo_2),\n")
		b.WriteString("    FOREIGN KEY (id_mo_1) REFERENCES graphv3.mo_constant(id_mo),\n")
		b.WriteString("    FOREIGN KEY (id_mo_2) REFERENCES graphv3.mo_constant(id_mo)\n")
		b.WriteString(");\n\n")
	}
	return b.String()
}

// anmiSourceIDs assigns a stable 1-based id to every distinct metric
// source name referenced anywhere in market data, in first-seen order.
func anmiSourceIDs(p *ir.Program) map[string]int {
	ids := map[string]int{}
	next := 1
	for _, fam := range p.Families {
		for _, db := range fam.DataBlocks {
			for _, y := range db.Years {
				for _, m := range y.Metrics {
					if m.SourceName == "" {
						continue
					}
					if _, ok := ids[m.SourceName]; !ok {
						ids[m.SourceName] = next
						next++
					}
				}
			}
		}
	}
	return ids
}

// anmiOutletInsert extracts the subset of an outlet's identity/
// characteristics/lifecycle/metadata fields that the legacy mo_constant
// schema names, mirroring sql_anmi.rs's field-by-name extraction.
func anmiOutletInsert(o *ir.Outlet) string {
	title := ""
	if o.Blocks.Identity != nil {
		title = o.Blocks.Identity.Title
	}
	var sector, mandate, area, local, location, language string
	for _, f := range o.Blocks.Characteristics {
		switch f.Name {
		case "sector":
			sector = ir.RenderValue(f.Value)
		case "mandate":
			mandate = ir.RenderValue(f.Value)
		case "location":
			location = ir.RenderValue(f.Value)
		case "primary_distribution_area":
			area = ir.RenderValue(f.Value)
		case "local":
			local = ir.RenderValue(f.Value)
		case "language":
			language = ir.RenderValue(f.Value)
		}
	}
	var editorial, comments string
	for _, f := range o.Blocks.Metadata {
		switch f.Name {
		case "editorial_line":
			editorial = ir.RenderValue(f.Value)
		case "comments":
			comments = ir.RenderValue(f.Value)
		}
	}
	var startDate, endDate string
	if len(o.Blocks.Lifecycle) > 0 {
		startDate = o.Blocks.Lifecycle[0].From
		endDate = o.Blocks.Lifecycle[0].To
	}

	return "INSERT INTO graphv3.mo_constant (id_mo, mo_title, id_sector, mandate, location, primary_distr_area, local, language, start_date, end_date, editorial_line_s, comments) VALUES (" +
		intSQL(o.ID) + ", " + sqlOrNull(title) + ", " + intOrNull(sector) + ", " + intOrNull(mandate) + ", " + sqlOrNull(location) + ", " +
		intOrNull(area) + ", " + intOrNull(local) + ", " + sqlOrNull(language) + ", " + sqlOrNull(startDate) + ", " + sqlOrNull(endDate) + ", " +
		sqlOrNull(editorial) + ", " + sqlOrNull(comments) + ");\n"
}

func anmiYearInsert(outletID int64, y *ir.NormalizedYear, sourceIDs map[string]int) string {
	cols := map[string]struct {
		value, source string
	}{}
	for _, m := range y.Metrics {
		cols[m.Name] = struct{ value, source string }{floatSQL(m.Value), sourceColSQL(sourceIDs, m.SourceName)}
	}
	col := func(name string) string {
		if c, ok := cols[name]; ok {
			return c.value
		}
		return "NULL"
	}
	src := func(name string) string {
		if c, ok := cols[name]; ok {
			return c.source
		}
		return "NULL"
	}
	return "INSERT INTO graphv3.mo_year (id_mo, year, circulation, circulation_source, unique_users, unique_users_source, reach_nat, reach_nat_source, reach_reg, reach_reg_source, market_share, market_share_source) VALUES (" +
		intSQL(outletID) + ", " + intSQL(int64(y.Year)) + ", " +
		col("circulation") + ", " + src("circulation") + ", " +
		col("unique_users") + ", " + src("unique_users") + ", " +
		col("reach_nat") + ", " + src("reach_nat") + ", " +
		col("reach_reg") + ", " + src("reach_reg") + ", " +
		col("market_share") + ", " + src("market_share") + ");\n"
}

func sourceColSQL(ids map[string]int, name string) string {
	if id, ok := ids[name]; ok {
		return intSQL(int64(id))
	}
	return "NULL"
}

// intOrNull renders a characteristics field already flattened to text by
// ir.RenderValue: empty means the field was absent, so NULL; anmi's
// sector/mandate/area/local columns are all INTEGER-typed.
func intOrNull(s string) string {
	if s == "" {
		return "NULL"
	}
	return s
}
