package ir

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mdsl-lang/mdslc/lang/ast"
)

// TablesView is the row-flattened projection the SQL backend consumes.
// Row order within every slice matches spec.md §4.6's determinism rule:
// families by declaration order, outlets within a family by declaration
// order, blocks within an outlet in identity/lifecycle/characteristics/
// metadata/data order, relationship inserts after all outlet inserts.
type TablesView struct {
	Families                 []FamilyRow
	Templates                []TemplateRow
	Outlets                  []OutletRow
	OutletIdentity           []IdentityRow
	HistoricalTitles         []HistoricalTitleRow
	OutletLifecycle          []LifecycleRow
	OutletCharacteristics    []KVRow
	OutletMetadata           []KVRow
	Vocabularies             []VocabRow
	VocabularyEntries        []VocabEntryRow
	Sources                  []SourceRow
	Events                   []EventRow
	EventEntities            []EventEntityRow
	DiachronicRelationships  []DiachronicRow
	SynchronousRelationships []SynchronousRow
	MarketData               []MarketDataRow
	DataAggregation          []AggregationRow
}

type FamilyRow struct{ Name string }

type TemplateRow struct{ Name string }

type OutletRow struct {
	ID              int64
	FamilyName      string
	DeclaredName    string
	ExtendsTemplate string
	BasedOn         int64
	HasBasedOn      bool
}

type IdentityRow struct {
	OutletID int64
	Title    string
	URL      string
}

type HistoricalTitleRow struct {
	OutletID int64
	Title    string
	From     string
	To       string
}

type LifecycleRow struct {
	OutletID       int64
	Status         string
	From           string
	To             string
	PrecisionStart string
	PrecisionEnd   string
}

type KVRow struct {
	OutletID int64
	Key      string
	Value    string
}

type VocabRow struct {
	Name  string
	Group string
}

type VocabEntryRow struct {
	VocabName string
	Group     string
	Key       string
	Value     string
}

type SourceRow struct {
	CatalogName string
	Name        string
	DisplayName string
	FullName    string
	Description string
	MapsToTable string
}

type EventRow struct {
	Name   string
	Type   string
	Date   string
	Status string
}

type EventEntityRow struct {
	EventName   string
	Key         string
	OutletID    int64
	Role        string
	StakeBefore *float64
	StakeAfter  *float64
}

type DiachronicRow struct {
	FamilyName       string
	Name             string
	Predecessor      int64
	Successor        int64
	EventFrom        string
	EventTo          string
	RelationshipType string
	TriggeredByEvent string
}

type SynchronousRow struct {
	FamilyName       string
	Name             string
	Outlet1ID        int64
	Outlet1Role      string
	Outlet2ID        int64
	Outlet2Role      string
	RelationshipType string
	PeriodFrom       string
	PeriodTo         string
	Details          string
	CreatedByEvent   string
}

type MarketDataRow struct {
	OutletID int64
	Year     int
	Metric   string
	Value    float64
	Unit     string
	Source   string
	Comment  string
}

type AggregationRow struct {
	OutletID int64
	Key      string
	Value    string
}

func buildTablesView(p *Program) *TablesView {
	tv := &TablesView{}

	for _, u := range p.Units {
		_ = u // units get their own CREATE TABLE, not a core-schema row
	}
	for _, v := range p.Vocabularies {
		for _, g := range v.Groups {
			tv.Vocabularies = append(tv.Vocabularies, VocabRow{Name: v.Name, Group: g.Name})
			for _, e := range g.Entries {
				tv.VocabularyEntries = append(tv.VocabularyEntries, VocabEntryRow{
					VocabName: v.Name, Group: g.Name, Key: e.Key, Value: e.Value,
				})
			}
		}
	}
	for _, cat := range p.Catalogs {
		for _, src := range cat.Sources {
			tv.Sources = append(tv.Sources, SourceRow{
				CatalogName: cat.Name,
				Name:        src.Name,
				DisplayName: src.DisplayName,
				FullName:    src.FullName,
				Description: src.Description,
				MapsToTable: src.MapsToTable,
			})
		}
	}

	seenTemplates := map[string]bool{}
	for _, fam := range p.Families {
		tv.Families = append(tv.Families, FamilyRow{Name: fam.Name})

		for _, o := range fam.Outlets {
			tv.Outlets = append(tv.Outlets, OutletRow{
				ID: o.ID, FamilyName: fam.Name, DeclaredName: o.DeclaredName,
				ExtendsTemplate: o.ExtendsTemplate, BasedOn: o.BasedOn, HasBasedOn: o.HasBasedOn,
			})
			if o.ExtendsTemplate != "" && !seenTemplates[o.ExtendsTemplate] {
				seenTemplates[o.ExtendsTemplate] = true
				tv.Templates = append(tv.Templates, TemplateRow{Name: o.ExtendsTemplate})
			}
			appendOutletBlockRows(tv, o.ID, o.Blocks)
		}

		for _, dl := range fam.DiachronicLinks {
			from, to := dateRangeText(dl.EventDate)
			tv.DiachronicRelationships = append(tv.DiachronicRelationships, DiachronicRow{
				FamilyName: fam.Name, Name: dl.Name.Text, Predecessor: dl.Predecessor,
				Successor: dl.Successor, EventFrom: from, EventTo: to,
				RelationshipType: dl.RelationshipType, TriggeredByEvent: dl.TriggeredByEvent,
			})
		}
		for _, sl := range fam.SynchronousLinks {
			from, to := dateRangeText(sl.Period)
			tv.SynchronousRelationships = append(tv.SynchronousRelationships, SynchronousRow{
				FamilyName: fam.Name, Name: sl.Name.Text,
				Outlet1ID: sl.Outlet1.ID, Outlet1Role: sl.Outlet1.Role,
				Outlet2ID: sl.Outlet2.ID, Outlet2Role: sl.Outlet2.Role,
				RelationshipType: sl.RelationshipType, PeriodFrom: from, PeriodTo: to,
				Details: sl.Details, CreatedByEvent: sl.CreatedByEvent,
			})
		}
		for _, ev := range fam.Events {
			tv.Events = append(tv.Events, EventRow{
				Name: ev.Name, Type: ev.Type, Date: dateText(ev.Date), Status: ev.Status,
			})
			for _, p := range ev.Entities {
				tv.EventEntities = append(tv.EventEntities, EventEntityRow{
					EventName: ev.Name, Key: p.Key, OutletID: p.ID, Role: p.Role,
					StakeBefore: p.StakeBefore, StakeAfter: p.StakeAfter,
				})
			}
		}
		for _, db := range fam.DataBlocks {
			for _, f := range db.Aggregation {
				tv.DataAggregation = append(tv.DataAggregation, AggregationRow{
					OutletID: db.OutletID, Key: f.Name, Value: RenderValue(f.Value),
				})
			}
			for _, y := range db.Years {
				for _, m := range y.Metrics {
					tv.MarketData = append(tv.MarketData, MarketDataRow{
						OutletID: db.OutletID, Year: y.Year, Metric: m.Name,
						Value: m.Value, Unit: m.Unit, Source: m.SourceName, Comment: m.Comment,
					})
				}
			}
		}
	}
	return tv
}

func appendOutletBlockRows(tv *TablesView, outletID int64, blocks OutletBlocks) {
	if blocks.Identity != nil {
		tv.OutletIdentity = append(tv.OutletIdentity, IdentityRow{
			OutletID: outletID, Title: blocks.Identity.Title, URL: blocks.Identity.URL,
		})
		for _, ht := range blocks.Identity.HistoricalTitles {
			tv.HistoricalTitles = append(tv.HistoricalTitles, HistoricalTitleRow{
				OutletID: outletID, Title: ht.Title, From: ht.From, To: ht.To,
			})
		}
	}
	for _, seg := range blocks.Lifecycle {
		tv.OutletLifecycle = append(tv.OutletLifecycle, LifecycleRow{
			OutletID: outletID, Status: seg.Status, From: seg.From, To: seg.To,
			PrecisionStart: seg.PrecisionStart, PrecisionEnd: seg.PrecisionEnd,
		})
	}
	for _, f := range blocks.Characteristics {
		tv.OutletCharacteristics = append(tv.OutletCharacteristics, KVRow{
			OutletID: outletID, Key: f.Name, Value: RenderValue(f.Value),
		})
	}
	for _, f := range blocks.Metadata {
		tv.OutletMetadata = append(tv.OutletMetadata, KVRow{
			OutletID: outletID, Key: f.Name, Value: RenderValue(f.Value),
		})
	}
}

// dateRangeText splits an event_date/period Value into its from/to text.
// A bare single date (no "TO") parses as a *ast.StringLit or *ast.DateLit
// depending on position; both fall through to dateText rather than being
// dropped, so the value still lands in the "from" column/property.
func dateRangeText(v ast.Value) (from, to string) {
	switch d := v.(type) {
	case *ast.DateRange:
		return dateText(d.From), dateText(d.To)
	default:
		return dateText(d), ""
	}
}

// RenderValue stringifies a resolved ast.Value for a flat row cell.
// Nested objects/arrays render as a readable "key=value; ..." form rather
// than JSON: the SQL/Cypher backends treat every cell as opaque text, and
// spec.md names no structured-value column type for these bags.
func RenderValue(v ast.Value) string {
	switch val := v.(type) {
	case nil:
		return ""
	case *ast.StringLit:
		return val.Val
	case *ast.NumberLit:
		if val.Raw != "" {
			return val.Raw
		}
		return strconv.FormatFloat(val.Val, 'f', -1, 64)
	case *ast.BoolLit:
		return strconv.FormatBool(val.Val)
	case *ast.DateLit:
		if val.Current {
			return "CURRENT"
		}
		return val.Text
	case *ast.VarRef:
		return "$" + val.Name
	case *ast.ObjectLit:
		parts := make([]string, 0, len(val.Fields))
		for _, f := range val.Fields {
			parts = append(parts, f.Name+"="+RenderValue(f.Value))
		}
		return strings.Join(parts, "; ")
	case *ast.ArrayLit:
		parts := make([]string, 0, len(val.Elems))
		for _, e := range val.Elems {
			parts = append(parts, RenderValue(e))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// GraphView is the node/edge projection the Cypher backend consumes.
// Nodes for constructs with a natural key (outlet id, family/template/
// vocabulary/source name) use that key verbatim; constructs with no
// natural key of their own (an identity/lifecycle/characteristic/metadata
// block, or a vocabulary entry/market-data point) are keyed off their
// owning outlet or vocabulary plus a discriminator, so the same input
// always produces the same key and emission stays reproducible.
type GraphView struct {
	Nodes []GraphNode
	Edges []GraphEdge
}

type GraphNode struct {
	Label string
	Key   string
	Props []*ast.Field
}

type GraphEdge struct {
	Type      string
	FromLabel string
	FromKey   string
	ToLabel   string
	ToKey     string
	Props     []*ast.Field
}

func buildGraphView(p *Program) *GraphView {
	gv := &GraphView{}

	strField := func(name, val string) *ast.Field {
		return &ast.Field{Name: name, Value: &ast.StringLit{Val: val}}
	}
	numField := func(name string, val float64) *ast.Field {
		return &ast.Field{Name: name, Value: &ast.NumberLit{Val: val, Raw: strconv.FormatFloat(val, 'f', -1, 64)}}
	}

	seenTemplates := map[string]bool{}
	for _, v := range p.Vocabularies {
		gv.Nodes = append(gv.Nodes, GraphNode{Label: "Vocabulary", Key: v.Name})
		for _, g := range v.Groups {
			for _, e := range g.Entries {
				key := v.Name + ":" + g.Name + ":" + e.Key
				gv.Nodes = append(gv.Nodes, GraphNode{Label: "VocabularyEntry", Key: key,
					Props: []*ast.Field{strField("group", g.Name), strField("key", e.Key), strField("value", e.Value)}})
				gv.Edges = append(gv.Edges, GraphEdge{Type: "HAS_ENTRY", FromLabel: "Vocabulary", FromKey: v.Name, ToLabel: "VocabularyEntry", ToKey: key})
			}
		}
	}
	for _, cat := range p.Catalogs {
		for _, src := range cat.Sources {
			gv.Nodes = append(gv.Nodes, GraphNode{Label: "Source", Key: src.Name,
				Props: []*ast.Field{strField("catalog", cat.Name), strField("display_name", src.DisplayName), strField("full_name", src.FullName)}})
		}
	}

	for _, fam := range p.Families {
		gv.Nodes = append(gv.Nodes, GraphNode{Label: "Family", Key: fam.Name})

		for _, o := range fam.Outlets {
			outletKey := strconv.FormatInt(o.ID, 10)
			gv.Nodes = append(gv.Nodes, GraphNode{Label: "Outlet", Key: outletKey, Props: outletProps(o)})
			gv.Edges = append(gv.Edges, GraphEdge{Type: "HAS_OUTLET", FromLabel: "Family", FromKey: fam.Name, ToLabel: "Outlet", ToKey: outletKey})

			if o.ExtendsTemplate != "" {
				if !seenTemplates[o.ExtendsTemplate] {
					seenTemplates[o.ExtendsTemplate] = true
					gv.Nodes = append(gv.Nodes, GraphNode{Label: "Template", Key: o.ExtendsTemplate})
				}
				gv.Edges = append(gv.Edges, GraphEdge{Type: "EXTENDS_TEMPLATE", FromLabel: "Outlet", FromKey: outletKey, ToLabel: "Template", ToKey: o.ExtendsTemplate})
			}
			if o.HasBasedOn {
				gv.Edges = append(gv.Edges, GraphEdge{Type: "BASED_ON", FromLabel: "Outlet", FromKey: outletKey, ToLabel: "Outlet", ToKey: strconv.FormatInt(o.BasedOn, 10)})
			}

			appendOutletBlockNodes(gv, outletKey, o.Blocks, strField)
		}

		for _, ev := range fam.Events {
			gv.Nodes = append(gv.Nodes, GraphNode{Label: "Event", Key: ev.Name, Props: []*ast.Field{
				strField("type", ev.Type), strField("date", dateText(ev.Date)), strField("status", ev.Status),
			}})
			for _, ent := range ev.Entities {
				gv.Edges = append(gv.Edges, GraphEdge{Type: "HAS_ENTITY", FromLabel: "Event", FromKey: ev.Name,
					ToLabel: "Outlet", ToKey: strconv.FormatInt(ent.ID, 10), Props: []*ast.Field{strField("role", ent.Role)}})
			}
		}

		for _, dl := range fam.DiachronicLinks {
			from, to := dateRangeText(dl.EventDate)
			linkProps := []*ast.Field{strField("name", dl.Name.Text), strField("relationship_type", dl.RelationshipType), strField("event_from", from), strField("event_to", to)}
			if dl.HasTriggeredByEvent {
				linkProps = append(linkProps, strField("triggered_by_event", dl.TriggeredByEvent))
			}
			gv.Edges = append(gv.Edges, GraphEdge{
				Type:      "DIACHRONIC_LINK",
				FromLabel: "Outlet", FromKey: strconv.FormatInt(dl.Predecessor, 10),
				ToLabel: "Outlet", ToKey: strconv.FormatInt(dl.Successor, 10),
				Props: linkProps,
			})
			if dl.HasTriggeredByEvent {
				gv.Edges = append(gv.Edges, GraphEdge{Type: "TRIGGERED_BY_EVENT", FromLabel: "Outlet", FromKey: strconv.FormatInt(dl.Predecessor, 10), ToLabel: "Event", ToKey: dl.TriggeredByEvent})
			}
		}
		for _, sl := range fam.SynchronousLinks {
			from, to := dateRangeText(sl.Period)
			linkProps := []*ast.Field{strField("name", sl.Name.Text), strField("relationship_type", sl.RelationshipType), strField("period_from", from), strField("period_to", to)}
			if sl.HasCreatedByEvent {
				linkProps = append(linkProps, strField("created_by_event", sl.CreatedByEvent))
			}
			gv.Edges = append(gv.Edges, GraphEdge{
				Type:      "SYNCHRONOUS_LINK",
				FromLabel: "Outlet", FromKey: strconv.FormatInt(sl.Outlet1.ID, 10),
				ToLabel: "Outlet", ToKey: strconv.FormatInt(sl.Outlet2.ID, 10),
				Props: linkProps,
			})
			if sl.HasCreatedByEvent {
				gv.Edges = append(gv.Edges, GraphEdge{Type: "CREATED_BY_EVENT", FromLabel: "Outlet", FromKey: strconv.FormatInt(sl.Outlet1.ID, 10), ToLabel: "Event", ToKey: sl.CreatedByEvent})
			}
		}
		for _, db := range fam.DataBlocks {
			for _, y := range db.Years {
				for _, m := range y.Metrics {
					key := strconv.FormatInt(db.OutletID, 10) + ":" + strconv.Itoa(y.Year) + ":" + m.Name
					gv.Nodes = append(gv.Nodes, GraphNode{Label: "MarketData", Key: key, Props: []*ast.Field{
						strField("metric", m.Name), numField("value", m.Value), strField("unit", m.Unit),
						numField("year", float64(y.Year)),
					}})
					gv.Edges = append(gv.Edges, GraphEdge{Type: "HAS_MARKET_DATA", FromLabel: "Outlet", FromKey: strconv.FormatInt(db.OutletID, 10), ToLabel: "MarketData", ToKey: key})
				}
			}
		}
	}
	return gv
}

func outletProps(o *Outlet) []*ast.Field {
	if o.Blocks.Identity == nil {
		return nil
	}
	return []*ast.Field{
		{Name: "title", Value: &ast.StringLit{Val: o.Blocks.Identity.Title}},
		{Name: "url", Value: &ast.StringLit{Val: o.Blocks.Identity.URL}},
	}
}

func appendOutletBlockNodes(gv *GraphView, outletKey string, blocks OutletBlocks, strField func(string, string) *ast.Field) {
	if blocks.Identity != nil {
		key := outletKey + ":identity"
		gv.Nodes = append(gv.Nodes, GraphNode{Label: "Identity", Key: key, Props: []*ast.Field{
			strField("title", blocks.Identity.Title), strField("url", blocks.Identity.URL),
		}})
		gv.Edges = append(gv.Edges, GraphEdge{Type: "HAS_IDENTITY", FromLabel: "Outlet", FromKey: outletKey, ToLabel: "Identity", ToKey: key})
	}
	for i, seg := range blocks.Lifecycle {
		key := outletKey + ":lifecycle:" + strconv.Itoa(i)
		gv.Nodes = append(gv.Nodes, GraphNode{Label: "Lifecycle", Key: key, Props: []*ast.Field{
			strField("status", seg.Status), strField("from", seg.From), strField("to", seg.To),
		}})
		gv.Edges = append(gv.Edges, GraphEdge{Type: "HAS_LIFECYCLE", FromLabel: "Outlet", FromKey: outletKey, ToLabel: "Lifecycle", ToKey: key})
	}
	for _, f := range blocks.Characteristics {
		key := outletKey + ":characteristic:" + f.Name
		gv.Nodes = append(gv.Nodes, GraphNode{Label: "Characteristic", Key: key, Props: []*ast.Field{
			strField("name", f.Name), strField("value", RenderValue(f.Value)),
		}})
		gv.Edges = append(gv.Edges, GraphEdge{Type: "HAS_CHARACTERISTIC", FromLabel: "Outlet", FromKey: outletKey, ToLabel: "Characteristic", ToKey: key})
	}
	for _, f := range blocks.Metadata {
		key := outletKey + ":metadata:" + f.Name
		gv.Nodes = append(gv.Nodes, GraphNode{Label: "Metadata", Key: key, Props: []*ast.Field{
			strField("name", f.Name), strField("value", RenderValue(f.Value)),
		}})
		gv.Edges = append(gv.Edges, GraphEdge{Type: "HAS_METADATA", FromLabel: "Outlet", FromKey: outletKey, ToLabel: "Metadata", ToKey: key})
	}
}
