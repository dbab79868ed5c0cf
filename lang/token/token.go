// Package token defines the lexical tokens of MDSL.
//
// Grounded on the TokenType/Token shape of tokenmodel/dsl/lexer.go,
// generalized from the S-expression DSL's eight token kinds to the full
// keyword and punctuation set a context-sensitive, brace-delimited grammar
// needs.
package token

import (
	"fmt"
	"strings"

	"github.com/mdsl-lang/mdslc/sourcemap"
)

// Kind identifies the lexical category of a Token.
type Kind int

const (
	EOF Kind = iota
	Ident
	Number
	String
	Variable   // $name
	Annotation // @name

	LBrace
	RBrace
	LParen
	RParen
	LBracket
	RBracket
	Comma
	Semicolon
	Colon
	Equals
	Dot
	Arrow // -> (date ranges and diachronic notations use TO instead, kept for symmetry with other pack DSLs)

	kwBegin
	KwImport
	KwLet
	KwUnit
	KwVocabulary
	KwCatalog
	KwSource
	KwTemplate
	KwOutlet
	KwFamily
	KwGroup
	KwBasedOn
	KwExtends
	KwData
	KwFor
	KwYear
	KwMetrics
	KwAggregation
	KwDiachronicLink
	KwSynchronousLink
	KwEvent
	KwPredecessor
	KwSuccessor
	KwEventDate
	KwRelationshipType
	KwPeriod
	KwDetails
	KwIdentity
	KwLifecycle
	KwStatus
	KwCharacteristics
	KwMetadata
	KwDistribution
	KwFrom
	KwTo
	KwCurrent
	KwPrimary
	KwKey
	KwID
	KwText
	KwNumber
	KwBoolean
	KwCategory
	KwTrue
	KwFalse
	KwOverride
	KwForPeriod
	KwInheritsFrom
	KwUntil
	KwType
	KwDate
	KwEntities
	KwImpact
	KwStakeBefore
	KwStakeAfter
	KwTriggeredByEvent
	KwCreatedByEvent
	KwOutletRef
	kwEnd
)

var names = map[Kind]string{
	EOF: "EOF", Ident: "IDENT", Number: "NUMBER", String: "STRING",
	Variable: "VARIABLE", Annotation: "ANNOTATION",
	LBrace: "{", RBrace: "}", LParen: "(", RParen: ")",
	LBracket: "[", RBracket: "]", Comma: ",", Semicolon: ";",
	Colon: ":", Equals: "=", Dot: ".", Arrow: "->",

	KwImport: "IMPORT", KwLet: "LET", KwUnit: "UNIT", KwVocabulary: "VOCABULARY",
	KwCatalog: "CATALOG", KwSource: "SOURCE", KwTemplate: "TEMPLATE", KwOutlet: "OUTLET",
	KwFamily: "FAMILY", KwGroup: "GROUP", KwBasedOn: "BASED_ON", KwExtends: "EXTENDS",
	KwData: "DATA", KwFor: "FOR", KwYear: "YEAR", KwMetrics: "METRICS",
	KwAggregation: "AGGREGATION", KwDiachronicLink: "DIACHRONIC_LINK",
	KwSynchronousLink: "SYNCHRONOUS_LINK", KwEvent: "EVENT", KwPredecessor: "PREDECESSOR",
	KwSuccessor: "SUCCESSOR", KwEventDate: "EVENT_DATE", KwRelationshipType: "RELATIONSHIP_TYPE",
	KwPeriod: "PERIOD", KwDetails: "DETAILS", KwIdentity: "IDENTITY", KwLifecycle: "LIFECYCLE",
	KwStatus: "STATUS", KwCharacteristics: "CHARACTERISTICS", KwMetadata: "METADATA",
	KwDistribution: "DISTRIBUTION", KwFrom: "FROM", KwTo: "TO", KwCurrent: "CURRENT",
	KwPrimary: "PRIMARY", KwKey: "KEY", KwID: "ID", KwText: "TEXT", KwNumber: "NUMBER",
	KwBoolean: "BOOLEAN", KwCategory: "CATEGORY", KwTrue: "TRUE", KwFalse: "FALSE",
	KwOverride: "OVERRIDE", KwForPeriod: "FOR_PERIOD", KwInheritsFrom: "INHERITS_FROM",
	KwUntil: "UNTIL", KwType: "TYPE", KwDate: "DATE", KwEntities: "ENTITIES",
	KwImpact: "IMPACT", KwStakeBefore: "STAKE_BEFORE", KwStakeAfter: "STAKE_AFTER",
	KwTriggeredByEvent: "TRIGGERED_BY_EVENT", KwCreatedByEvent: "CREATED_BY_EVENT",
	KwOutletRef: "OUTLET_REF",
}

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsKeyword reports whether k is one of the canonical MDSL keywords.
func (k Kind) IsKeyword() bool { return k > kwBegin && k < kwEnd }

// keywords maps the upper-cased literal to its canonical Kind. Matching is
// case-insensitive at lookup time (see LookupKeyword).
var keywords map[string]Kind

func init() {
	keywords = make(map[string]Kind, int(kwEnd-kwBegin))
	for k := kwBegin + 1; k < kwEnd; k++ {
		keywords[names[k]] = k
	}
}

// LookupKeyword resolves a bare word to its keyword Kind, case-insensitively,
// or reports ok=false if the word isn't a keyword.
func LookupKeyword(word string) (Kind, bool) {
	k, ok := keywords[strings.ToUpper(word)]
	return k, ok
}

// SoftKeywords are keyword kinds that the parser also accepts as ordinary
// field-name identifiers, per spec: "type, date, entities, impact, status,
// period, details, role, id, source, unit, value, comment" are reusable as
// field names. "role", "value" and "comment" are never reserved words at
// all (no KwRole/KwValue/KwComment exists), so they always lex as Ident;
// this set covers the words that ARE keywords but must still be acceptable
// as field names. It also holds the keywords that name fields inside link,
// event and characteristics bodies (predecessor, successor, event_date,
// relationship_type, triggered_by_event, created_by_event, stake_before,
// stake_after, metadata, distribution).
var SoftKeywords = map[Kind]bool{
	KwType: true, KwDate: true, KwEntities: true, KwImpact: true,
	KwStatus: true, KwPeriod: true, KwDetails: true, KwID: true,
	KwSource: true, KwUnit: true,
	KwPredecessor: true, KwSuccessor: true, KwEventDate: true,
	KwRelationshipType: true, KwTriggeredByEvent: true, KwCreatedByEvent: true,
	KwStakeBefore: true, KwStakeAfter: true, KwMetadata: true, KwDistribution: true,
}

// Token is a single lexical token with its source span.
type Token struct {
	Kind    Kind
	Literal string
	Span    sourcemap.Span
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)", t.Kind, t.Literal)
}
