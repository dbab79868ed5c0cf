package cyphergen

import (
	"strings"

	"github.com/mdsl-lang/mdslc/config"
	"github.com/mdsl-lang/mdslc/ir"
)

// generateNodes emits one CREATE per graph node, per spec.md §4.7: "One
// CREATE per family, template, vocabulary+entry, outlet, identity/
// characteristic/metadata/lifecycle node." GraphView already carries one
// node per such construct (plus the supplemented Event/MarketData
// nodes), so this just renders each node generically off its Label/Key/
// Props rather than special-casing every entity kind.
func generateNodes(p *ir.Program, cfg config.EmitConfig) string {
	var b strings.Builder
	b.WriteString("// NODES\n\n")

	for _, n := range p.Graph.Nodes {
		label := cfg.CypherPrefix + cypherLabel(n.Label)
		keyProp, numeric := keyProperty(n.Label)
		keyVal := quotedCypher(n.Key)
		if numeric {
			keyVal = n.Key
		}

		parts := []string{keyProp + ": " + keyVal}
		for _, f := range n.Props {
			parts = append(parts, cypherPropName(n.Label, f.Name)+": "+cypherValue(f.Value))
		}

		b.WriteString("CREATE (:" + label + " {" + strings.Join(parts, ", ") + "});\n")
	}

	return b.String()
}

// matchClause renders the MATCH pattern for one endpoint of an edge,
// keyed the same way its CREATE statement was.
func matchClause(cfg config.EmitConfig, alias, irLabel, key string) string {
	label := cfg.CypherPrefix + cypherLabel(irLabel)
	keyProp, numeric := keyProperty(irLabel)
	keyVal := quotedCypher(key)
	if numeric {
		keyVal = key
	}
	return "(" + alias + ":" + label + " {" + keyProp + ": " + keyVal + "})"
}
