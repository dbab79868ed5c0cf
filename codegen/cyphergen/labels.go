package cyphergen

// cypherLabel maps an IR GraphNode.Label onto the literal label
// spec.md §4.7's constraint/index section names. Every entity keeps its
// generic capitalized IR label except the outlet, which the constraint
// and index bullets both name as the legacy "media_outlet"/"id_mo"/
// "mo_title" schema (carried over from mdsl-rs/src/codegen/cypher.rs's
// mdsl_media_outlet target) rather than the "Outlet" label the
// relationship bullets use. Both spellings name the same node; this
// package treats "media_outlet" as canonical since two of the four
// constraint/index lines spell it out explicitly.
func cypherLabel(irLabel string) string {
	if irLabel == "Outlet" {
		return "media_outlet"
	}
	return irLabel
}

// keyProperty returns the property name spec.md's constraint section
// uses as a node's natural unique key, and whether that key renders as
// a bare number (outlet ids) or a quoted string (every name-keyed
// entity). Entities with no natural key of their own (an identity/
// lifecycle/characteristic/metadata block, a vocabulary entry, a market
// data point) get a synthetic "uid" property instead.
func keyProperty(irLabel string) (name string, numeric bool) {
	switch irLabel {
	case "Outlet":
		return "id_mo", true
	case "Family", "Template", "Vocabulary", "Source", "Event":
		return "name", false
	default:
		return "uid", false
	}
}

// cypherPropName renames an IR node property to the name spec.md's
// index section literally names, for the one case where the two
// diverge: the outlet's title property is indexed as mo_title.
func cypherPropName(irLabel, name string) string {
	if irLabel == "Outlet" && name == "title" {
		return "mo_title"
	}
	return name
}
