package sqlgen

import (
	"strings"

	"github.com/mdsl-lang/mdslc/ir"
)

func insertSource(row ir.SourceRow) string {
	return "INSERT INTO sources (catalog_name, name, display_name, full_name, description, maps_to_table) VALUES (" +
		quoted(row.CatalogName) + ", " + quoted(row.Name) + ", " + sqlOrNull(row.DisplayName) + ", " +
		sqlOrNull(row.FullName) + ", " + sqlOrNull(row.Description) + ", " + sqlOrNull(row.MapsToTable) + ");\n"
}

func writeVocabularyInserts(b *strings.Builder, p *ir.Program) {
	for _, row := range p.Tables.Vocabularies {
		b.WriteString("INSERT INTO vocabularies (name, vocab_group) VALUES (" + quoted(row.Name) + ", " + quoted(row.Group) + ");\n")
	}
	for _, row := range p.Tables.VocabularyEntries {
		b.WriteString("INSERT INTO vocabulary_entries (vocab_name, vocab_group, entry_key, entry_value) VALUES (" +
			quoted(row.VocabName) + ", " + quoted(row.Group) + ", " + quoted(row.Key) + ", " + quoted(row.Value) + ");\n")
	}
}

// writeFamilyInserts emits, in spec.md §4.6's canonical order (families,
// then per-outlet identity/lifecycle/characteristics/metadata/data), the
// insert statements for every family and outlet in declaration order.
func writeFamilyInserts(b *strings.Builder, p *ir.Program) {
	for _, row := range p.Tables.Templates {
		b.WriteString("INSERT INTO templates (name) VALUES (" + quoted(row.Name) + ");\n")
	}
	for _, row := range p.Tables.Families {
		b.WriteString("INSERT INTO families (name) VALUES (" + quoted(row.Name) + ");\n")
	}
	for _, row := range p.Tables.Outlets {
		b.WriteString("-- Outlet " + intSQL(row.ID) + "\n")
		b.WriteString("INSERT INTO media_outlets (id, family_name, declared_name, extends_template, based_on) VALUES (" +
			intSQL(row.ID) + ", " + quoted(row.FamilyName) + ", " + sqlOrNull(row.DeclaredName) + ", " +
			sqlOrNull(row.ExtendsTemplate) + ", " + basedOnSQL(row) + ");\n")
		writeOutletBlockInserts(b, p, row.ID)
	}
}

func basedOnSQL(row ir.OutletRow) string {
	if !row.HasBasedOn {
		return "NULL"
	}
	return intSQL(row.BasedOn)
}

func writeOutletBlockInserts(b *strings.Builder, p *ir.Program, outletID int64) {
	for _, row := range p.Tables.OutletIdentity {
		if row.OutletID != outletID {
			continue
		}
		b.WriteString("INSERT INTO outlet_identity (outlet_id, title, url) VALUES (" +
			intSQL(row.OutletID) + ", " + quoted(row.Title) + ", " + sqlOrNull(row.URL) + ");\n")
	}
	for _, row := range p.Tables.HistoricalTitles {
		if row.OutletID != outletID {
			continue
		}
		b.WriteString("INSERT INTO outlet_historical_titles (outlet_id, title, period_from, period_to) VALUES (" +
			intSQL(row.OutletID) + ", " + quoted(row.Title) + ", " + sqlOrNull(row.From) + ", " + sqlOrNull(row.To) + ");\n")
	}
	for _, row := range p.Tables.OutletLifecycle {
		if row.OutletID != outletID {
			continue
		}
		b.WriteString("INSERT INTO outlet_lifecycle (outlet_id, status, period_from, period_to, precision_start, precision_end) VALUES (" +
			intSQL(row.OutletID) + ", " + quoted(row.Status) + ", " + sqlOrNull(row.From) + ", " + sqlOrNull(row.To) + ", " +
			sqlOrNull(row.PrecisionStart) + ", " + sqlOrNull(row.PrecisionEnd) + ");\n")
	}
	for _, row := range p.Tables.OutletCharacteristics {
		if row.OutletID != outletID {
			continue
		}
		b.WriteString("INSERT INTO outlet_characteristics (outlet_id, characteristic_name, characteristic_value) VALUES (" +
			intSQL(row.OutletID) + ", " + quoted(row.Key) + ", " + sqlOrNull(row.Value) + ");\n")
	}
	for _, row := range p.Tables.OutletMetadata {
		if row.OutletID != outletID {
			continue
		}
		b.WriteString("INSERT INTO outlet_metadata (outlet_id, metadata_name, metadata_value) VALUES (" +
			intSQL(row.OutletID) + ", " + quoted(row.Key) + ", " + sqlOrNull(row.Value) + ");\n")
	}
	for _, row := range p.Tables.DataAggregation {
		if row.OutletID != outletID {
			continue
		}
		b.WriteString("INSERT INTO data_aggregation (outlet_id, aggregation_name, aggregation_value) VALUES (" +
			intSQL(row.OutletID) + ", " + quoted(row.Key) + ", " + sqlOrNull(row.Value) + ");\n")
	}
}

func writeRelationshipInserts(b *strings.Builder, p *ir.Program) {
	for _, row := range p.Tables.DiachronicRelationships {
		b.WriteString("INSERT INTO relationships (family_name, name, relationship_type) VALUES (" +
			quoted(row.FamilyName) + ", " + quoted(row.Name) + ", 'diachronic');\n")
		b.WriteString("INSERT INTO diachronic_relationships (family_name, name, predecessor_id, successor_id, event_start, event_end, relationship_subtype, triggered_by_event) VALUES (" +
			quoted(row.FamilyName) + ", " + quoted(row.Name) + ", " + intSQL(row.Predecessor) + ", " + intSQL(row.Successor) + ", " +
			sqlOrNull(row.EventFrom) + ", " + sqlOrNull(row.EventTo) + ", " + sqlOrNull(row.RelationshipType) + ", " + sqlOrNull(row.TriggeredByEvent) + ");\n")
	}
	for _, row := range p.Tables.SynchronousRelationships {
		b.WriteString("INSERT INTO relationships (family_name, name, relationship_type) VALUES (" +
			quoted(row.FamilyName) + ", " + quoted(row.Name) + ", 'synchronous');\n")
		b.WriteString("INSERT INTO synchronous_relationships (family_name, name, outlet_1_id, outlet_1_role, outlet_2_id, outlet_2_role, relationship_subtype, period_start, period_end, details, created_by_event) VALUES (" +
			quoted(row.FamilyName) + ", " + quoted(row.Name) + ", " + intSQL(row.Outlet1ID) + ", " + sqlOrNull(row.Outlet1Role) + ", " +
			intSQL(row.Outlet2ID) + ", " + sqlOrNull(row.Outlet2Role) + ", " + sqlOrNull(row.RelationshipType) + ", " +
			sqlOrNull(row.PeriodFrom) + ", " + sqlOrNull(row.PeriodTo) + ", " + sqlOrNull(row.Details) + ", " + sqlOrNull(row.CreatedByEvent) + ");\n")
	}
}

func writeMarketDataInserts(b *strings.Builder, p *ir.Program) {
	for _, row := range p.Tables.MarketData {
		b.WriteString("INSERT INTO market_data (outlet_id, data_year, metric_name, metric_value, metric_unit, source_name, comment) VALUES (" +
			intSQL(row.OutletID) + ", " + intSQL(int64(row.Year)) + ", " + quoted(row.Metric) + ", " + floatSQL(row.Value) + ", " +
			sqlOrNull(row.Unit) + ", " + sqlOrNull(row.Source) + ", " + sqlOrNull(row.Comment) + ");\n")
	}
}

func writeEventInserts(b *strings.Builder, p *ir.Program) {
	for _, row := range p.Tables.Events {
		b.WriteString("INSERT INTO events (name, event_type, event_date, status) VALUES (" +
			quoted(row.Name) + ", " + quoted(row.Type) + ", " + sqlOrNull(row.Date) + ", " + sqlOrNull(row.Status) + ");\n")
	}
	for _, row := range p.Tables.EventEntities {
		b.WriteString("INSERT INTO event_entities (event_name, participant_key, outlet_id, role, stake_before, stake_after) VALUES (" +
			quoted(row.EventName) + ", " + quoted(row.Key) + ", " + intSQL(row.OutletID) + ", " + sqlOrNull(row.Role) + ", " +
			stakeSQL(row.StakeBefore) + ", " + stakeSQL(row.StakeAfter) + ");\n")
	}
}

func stakeSQL(v *float64) string {
	if v == nil {
		return "NULL"
	}
	return floatSQL(*v)
}
