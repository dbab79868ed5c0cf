// Package cyphergen emits Cypher CREATE/MATCH statements from a lowered
// ir.Program's GraphView. It follows the same comment-headered,
// strings.Builder emission style as codegen/sqlgen, and mirrors the
// MATCH...MATCH...CREATE relationship-wiring shape and backslash-escaping
// rules of mdsl-rs/src/codegen/cypher.rs.
package cyphergen

import (
	"strings"

	"github.com/mdsl-lang/mdslc/config"
	"github.com/mdsl-lang/mdslc/ir"
)

// Generate emits the Cypher text for p under cfg.
func Generate(p *ir.Program, cfg config.EmitConfig) string {
	var b strings.Builder

	b.WriteString("// Generated Cypher from MDSL\n")
	b.WriteString("// CREATE statements for a property-graph load\n\n")

	b.WriteString(generateConstraints(cfg))
	b.WriteString(generateNodes(p, cfg))
	b.WriteString("\n")
	b.WriteString(generateEdges(p, cfg))

	return b.String()
}
