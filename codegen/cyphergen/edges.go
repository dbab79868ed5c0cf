package cyphergen

import (
	"strings"

	"github.com/mdsl-lang/mdslc/config"
	"github.com/mdsl-lang/mdslc/ir"
)

// generateEdges wires every graph edge with a MATCH...MATCH...CREATE
// statement, mirroring mdsl-rs/src/codegen/cypher.rs's relationship
// emission shape. Both endpoints are re-matched by their natural key
// rather than carried as bound variables from the node-creation phase,
// since nodes and edges are emitted as separate statement batches.
func generateEdges(p *ir.Program, cfg config.EmitConfig) string {
	var b strings.Builder
	b.WriteString("// RELATIONSHIPS\n\n")

	for _, e := range p.Graph.Edges {
		from := matchClause(cfg, "a", e.FromLabel, e.FromKey)
		to := matchClause(cfg, "b", e.ToLabel, e.ToKey)
		relType := cfg.CypherPrefix + e.Type

		props := ""
		if len(e.Props) > 0 {
			parts := make([]string, 0, len(e.Props))
			for _, f := range e.Props {
				parts = append(parts, f.Name+": "+cypherValue(f.Value))
			}
			props = " {" + strings.Join(parts, ", ") + "}"
		}

		b.WriteString("MATCH " + from + " MATCH " + to + " CREATE (a)-[:" + relType + props + "]->(b);\n")
	}

	return b.String()
}
