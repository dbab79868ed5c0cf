// Package parser turns a token stream into a lang/ast tree.
//
// Grounded on metamodel/dsl/parser.go's two-token-lookahead shape
// (Parser{lexer, cur, peek Token} with expect/expectSymbol/expectIdentifier
// helpers and per-clause dispatch on the current keyword), generalized to
// the full grammar of spec.md §4.3. Where the teacher's parser returns on
// the first error, this one records a diagnostic and synchronizes to the
// next statement boundary so a single mistake in a large family doesn't
// blank out the rest of the file's diagnostics.
package parser

import (
	"strconv"
	"strings"

	"github.com/mdsl-lang/mdslc/diag"
	"github.com/mdsl-lang/mdslc/lang/ast"
	"github.com/mdsl-lang/mdslc/lang/lexer"
	"github.com/mdsl-lang/mdslc/lang/token"
	"github.com/mdsl-lang/mdslc/sourcemap"
)

// Parser consumes a lexer's token stream with one token of lookahead.
type Parser struct {
	lex *lexer.Lexer

	cur  token.Token
	peek token.Token

	file sourcemap.FileID
	errs *diag.Sink
}

// New creates a Parser positioned at the first token of src.
func New(file sourcemap.FileID, src string) *Parser {
	p := &Parser{lex: lexer.New(file, src), file: file, errs: diag.NewSink()}
	p.next()
	p.next()
	return p
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.lex.Next()
}

// Parse scans and parses one file's full content.
func Parse(file sourcemap.FileID, path, src string) (*ast.File, *diag.Sink) {
	p := New(file, src)
	f := &ast.File{ID: file, Path: path}
	for p.cur.Kind != token.EOF {
		if p.cur.Kind == token.KwImport {
			f.Imports = append(f.Imports, p.parseImport())
			continue
		}
		stmt := p.parseStatement()
		if stmt != nil {
			f.Statements = append(f.Statements, stmt)
		}
	}
	p.errs.Merge(p.lex.Errors())
	return f, p.errs
}

// ---- error helpers -------------------------------------------------------

func (p *Parser) errorUnexpected(want string) {
	p.errs.Errorf(p.cur.Span, diag.KindUnexpectedToken, "expected %s, got %s", want, p.cur)
}

// expect consumes cur if it has kind k, else records an error and leaves
// cur in place so the caller's synchronize call can see it.
func (p *Parser) expect(k token.Kind) bool {
	if p.cur.Kind != k {
		p.errorUnexpected(k.String())
		return false
	}
	p.next()
	return true
}

func (p *Parser) expectString() string {
	if p.cur.Kind != token.String {
		p.errorUnexpected("string literal")
		return ""
	}
	lit := p.cur.Literal
	p.next()
	return lit
}

func (p *Parser) expectNumber() float64 {
	if p.cur.Kind != token.Number {
		p.errorUnexpected("number")
		return 0
	}
	f, err := strconv.ParseFloat(p.cur.Literal, 64)
	if err != nil {
		p.errs.Errorf(p.cur.Span, diag.KindInvalidNumber, "invalid number %q", p.cur.Literal)
	}
	p.next()
	return f
}

func (p *Parser) expectIdent() string {
	if p.cur.Kind != token.Ident {
		p.errorUnexpected("identifier")
		return ""
	}
	lit := p.cur.Literal
	p.next()
	return lit
}

// expectBareOrStringName accepts either an identifier or a quoted string
// where the grammar allows a name in either form, returning its text. A
// keyword in the bare-name position (e.g. `UNIT Outlet`) is taken as the
// name, in its canonical lower-case form.
func (p *Parser) expectBareOrStringName() string {
	if p.cur.Kind == token.String {
		return p.expectString()
	}
	if p.cur.Kind.IsKeyword() {
		lit := strings.ToLower(p.cur.Literal)
		p.next()
		return lit
	}
	return p.expectIdent()
}

func (p *Parser) parseName() ast.Name {
	switch p.cur.Kind {
	case token.String:
		sp := p.cur.Span
		text := p.cur.Literal
		p.next()
		return ast.Name{Text: text, Quoted: true, Sp: sp}
	case token.Ident:
		sp := p.cur.Span
		text := p.cur.Literal
		p.next()
		return ast.Name{Text: text, Quoted: false, Sp: sp}
	default:
		p.errorUnexpected("name")
		sp := p.cur.Span
		p.next()
		return ast.Name{Sp: sp}
	}
}

// parseFieldName accepts an ordinary identifier, or any soft keyword used
// as a field name (e.g. `type = "merger"` inside an EVENT body), returning
// its canonical lower-case text.
func (p *Parser) parseFieldName() (string, sourcemap.Span) {
	tok := p.cur
	if tok.Kind == token.Ident {
		p.next()
		return tok.Literal, tok.Span
	}
	if token.SoftKeywords[tok.Kind] {
		p.next()
		return strings.ToLower(tok.Literal), tok.Span
	}
	p.errorUnexpected("field name")
	p.next()
	return tok.Literal, tok.Span
}

func (p *Parser) consumeOptionalSeparator() {
	if p.cur.Kind == token.Comma || p.cur.Kind == token.Semicolon {
		p.next()
	}
}

// isTopLevelStart reports whether k begins a new top-level or family-body
// statement.
func isTopLevelStart(k token.Kind) bool {
	switch k {
	case token.KwImport, token.KwLet, token.KwUnit, token.KwVocabulary, token.KwCatalog,
		token.KwTemplate, token.KwFamily, token.KwData, token.KwDiachronicLink,
		token.KwSynchronousLink, token.KwEvent, token.KwOutlet, token.KwOutletRef:
		return true
	}
	return false
}

// synchronizeTop skips tokens, without consuming braces as balance, until
// it reaches EOF or a token that starts a new top-level (or family-body)
// statement. Most MDSL statements close with '}' rather than ';', so
// recovery here has to recognize the next statement's keyword directly
// instead of looking for a depth-balanced terminator.
func (p *Parser) synchronizeTop() {
	for p.cur.Kind != token.EOF && !isTopLevelStart(p.cur.Kind) {
		p.next()
	}
}

// synchronize skips tokens until it has consumed a statement-ending ';' at
// brace depth 0 (relative to the call site) or a closing '}' that balances
// an opening brace seen along the way, so one bad field or sub-block
// doesn't abort the rest of the enclosing construct.
func (p *Parser) synchronize() {
	depth := 0
	for {
		switch p.cur.Kind {
		case token.EOF:
			return
		case token.LBrace:
			depth++
			p.next()
		case token.RBrace:
			if depth == 0 {
				p.next()
				return
			}
			depth--
			p.next()
		case token.Semicolon:
			if depth == 0 {
				p.next()
				return
			}
			p.next()
		default:
			p.next()
		}
	}
}

// ---- top-level and family-body statements --------------------------------

func (p *Parser) parseStatement() ast.Stmt {
	switch p.cur.Kind {
	case token.KwLet:
		return p.parseLet()
	case token.KwUnit:
		return p.parseUnit()
	case token.KwVocabulary:
		return p.parseVocabulary()
	case token.KwCatalog:
		return p.parseCatalog()
	case token.KwTemplate:
		return p.parseTemplate()
	case token.KwFamily:
		return p.parseFamily()
	case token.KwData:
		return p.parseDataBlock()
	case token.KwDiachronicLink:
		return p.parseDiachronicLink()
	case token.KwSynchronousLink:
		return p.parseSynchronousLink()
	case token.KwEvent:
		return p.parseEvent()
	default:
		p.errorUnexpected("a top-level declaration")
		p.synchronizeTop()
		return nil
	}
}

func (p *Parser) parseImport() *ast.Import {
	start := p.cur.Span
	p.next() // IMPORT
	path := p.expectString()
	if p.cur.Kind == token.Semicolon {
		p.next()
	}
	return &ast.Import{Spanned: ast.Spanned{Sp: start}, Path: path}
}

func (p *Parser) parseLet() *ast.Let {
	start := p.cur.Span
	p.next() // LET
	name, _ := p.parseFieldName()
	p.expect(token.Equals)
	val := p.parseValue()
	if p.cur.Kind == token.Semicolon {
		p.next()
	}
	return &ast.Let{Spanned: ast.Spanned{Sp: start}, Name: name, Value: val}
}

// ---- UNIT -----------------------------------------------------------------

func (p *Parser) parseUnit() *ast.Unit {
	start := p.cur.Span
	p.next() // UNIT
	name := p.expectBareOrStringName()
	u := &ast.Unit{Spanned: ast.Spanned{Sp: start}, Name: name}
	if !p.expect(token.LBrace) {
		p.synchronize()
		return u
	}
	for p.cur.Kind != token.RBrace && p.cur.Kind != token.EOF {
		fname, fspan := p.parseFieldName()
		if !p.expect(token.Colon) {
			p.synchronize()
			continue
		}
		ft := p.parseFieldType()
		uf := &ast.UnitField{Spanned: ast.Spanned{Sp: fspan}, Name: fname, Type: ft}
		if p.cur.Kind == token.KwPrimary {
			p.next()
			p.expect(token.KwKey)
			uf.PrimaryKey = true
		}
		u.Fields = append(u.Fields, uf)
		p.consumeOptionalSeparator()
	}
	p.expect(token.RBrace)
	return u
}

func (p *Parser) parseFieldType() ast.FieldType {
	switch p.cur.Kind {
	case token.KwID:
		p.next()
		return ast.FieldType{Kind: ast.FieldID}
	case token.KwText:
		p.next()
		n := 0
		if p.cur.Kind == token.LParen {
			p.next()
			n = int(p.expectNumber())
			p.expect(token.RParen)
		}
		return ast.FieldType{Kind: ast.FieldText, TextLen: n}
	case token.KwNumber:
		p.next()
		return ast.FieldType{Kind: ast.FieldNumber}
	case token.KwBoolean:
		p.next()
		return ast.FieldType{Kind: ast.FieldBoolean}
	case token.KwCategory:
		p.next()
		var cats []string
		if p.expect(token.LParen) {
			for p.cur.Kind != token.RParen && p.cur.Kind != token.EOF {
				cats = append(cats, p.expectString())
				if p.cur.Kind == token.Comma {
					p.next()
				}
			}
			p.expect(token.RParen)
		}
		return ast.FieldType{Kind: ast.FieldCategory, Categories: cats}
	default:
		p.errorUnexpected("ID, TEXT, NUMBER, BOOLEAN or CATEGORY")
		p.next()
		return ast.FieldType{}
	}
}

// ---- VOCABULARY -------------------------------------------------------------

func (p *Parser) parseVocabulary() *ast.Vocabulary {
	start := p.cur.Span
	p.next() // VOCABULARY
	name := p.expectBareOrStringName()
	v := &ast.Vocabulary{Spanned: ast.Spanned{Sp: start}, Name: name}
	if !p.expect(token.LBrace) {
		p.synchronize()
		return v
	}
	for p.cur.Kind != token.RBrace && p.cur.Kind != token.EOF {
		gname, gspan := p.parseFieldName()
		group := &ast.VocabGroup{Spanned: ast.Spanned{Sp: gspan}, Name: gname}
		if p.expect(token.LBrace) {
			for p.cur.Kind != token.RBrace && p.cur.Kind != token.EOF {
				var key string
				var numeric bool
				entrySpan := p.cur.Span
				if p.cur.Kind == token.Number {
					key = p.cur.Literal
					numeric = true
					p.next()
				} else {
					key, _ = p.parseFieldName()
				}
				p.expect(token.Colon)
				val := p.expectString()
				group.Entries = append(group.Entries, &ast.VocabEntry{
					Spanned: ast.Spanned{Sp: entrySpan}, Key: key, Numeric: numeric, Value: val,
				})
				p.consumeOptionalSeparator()
			}
			p.expect(token.RBrace)
		}
		v.Groups = append(v.Groups, group)
		p.consumeOptionalSeparator()
	}
	p.expect(token.RBrace)
	return v
}

// ---- CATALOG / SOURCE -------------------------------------------------------

func (p *Parser) parseCatalog() *ast.Catalog {
	start := p.cur.Span
	p.next() // CATALOG
	name := p.expectBareOrStringName()
	cat := &ast.Catalog{Spanned: ast.Spanned{Sp: start}, Name: name}
	if !p.expect(token.LBrace) {
		p.synchronize()
		return cat
	}
	for p.cur.Kind == token.KwSource {
		cat.Sources = append(cat.Sources, p.parseSource())
	}
	p.expect(token.RBrace)
	return cat
}

func (p *Parser) parseSource() *ast.Source {
	start := p.cur.Span
	p.next() // SOURCE
	name := p.expectBareOrStringName()
	src := &ast.Source{Spanned: ast.Spanned{Sp: start}, Name: name, AnmiComponents: map[string]float64{}}
	if !p.expect(token.LBrace) {
		p.synchronize()
		return src
	}
	fields, anns := p.parseFieldListAndAnnotations(token.RBrace)
	p.expect(token.RBrace)
	src.Annotations = anns
	for _, f := range fields {
		switch f.Name {
		case "display_name":
			src.DisplayName = stringVal(f.Value)
		case "full_name":
			src.FullName = stringVal(f.Value)
		case "description":
			src.Description = stringVal(f.Value)
		case "anmi_source_id_components":
			if obj, ok := f.Value.(*ast.ObjectLit); ok {
				for _, cf := range obj.Fields {
					if n, ok := cf.Value.(*ast.NumberLit); ok {
						src.AnmiComponents[cf.Name] = n.Val
					}
				}
			}
		}
	}
	for _, a := range anns {
		if a.Name == "maps_to_table" {
			src.MapsToTable = stringVal(a.Value)
		}
	}
	return src
}

// ---- generic field/annotation lists ----------------------------------------

// parseFieldListAndAnnotations parses `name = value` pairs and `@name`
// annotations, in any order, tolerating trailing ',' or ';' separators,
// until stop is reached. It is the one routine every object-shaped
// construct (object literals, IDENTITY/CHARACTERISTICS/METADATA bodies,
// SOURCE/EVENT/link bodies) is built on.
func (p *Parser) parseFieldListAndAnnotations(stop token.Kind) ([]*ast.Field, []*ast.Annotation) {
	var fields []*ast.Field
	var anns []*ast.Annotation
	for p.cur.Kind != stop && p.cur.Kind != token.EOF {
		if p.cur.Kind == token.Annotation {
			anns = append(anns, p.parseAnnotation())
			p.consumeOptionalSeparator()
			continue
		}
		name, nameSpan := p.parseFieldName()
		if !p.expect(token.Equals) {
			p.synchronize()
			continue
		}
		val := p.parseValue()
		fields = append(fields, &ast.Field{Name: name, NameSpan: nameSpan, Value: val})
		p.consumeOptionalSeparator()
	}
	return fields, anns
}

func (p *Parser) parseAnnotation() *ast.Annotation {
	start := p.cur.Span
	name := p.cur.Literal
	p.next()
	var val ast.Value
	switch p.cur.Kind {
	case token.Equals:
		p.next()
		val = p.parseValue()
	case token.String, token.Number, token.KwTrue, token.KwFalse, token.Variable, token.LBrace, token.LBracket:
		val = p.parseValue()
	}
	sp := start
	if val != nil {
		sp = sourcemap.Merge(start, val.Span())
	}
	return &ast.Annotation{Spanned: ast.Spanned{Sp: sp}, Name: name, Value: val}
}

// ---- values -----------------------------------------------------------------

func (p *Parser) parseValue() ast.Value {
	switch p.cur.Kind {
	case token.String:
		sp := p.cur.Span
		lit := p.cur.Literal
		p.next()
		if p.cur.Kind == token.KwTo {
			p.next()
			to := p.parseDateEnd()
			from := &ast.DateLit{Spanned: ast.Spanned{Sp: sp}, Text: lit}
			return &ast.DateRange{Spanned: ast.Spanned{Sp: sourcemap.Merge(sp, to.Span())}, From: from, To: to}
		}
		return &ast.StringLit{Spanned: ast.Spanned{Sp: sp}, Val: lit}
	case token.KwCurrent:
		sp := p.cur.Span
		p.next()
		return &ast.DateLit{Spanned: ast.Spanned{Sp: sp}, Current: true}
	case token.Number:
		return p.parseNumberLit()
	case token.KwTrue:
		sp := p.cur.Span
		p.next()
		return &ast.BoolLit{Spanned: ast.Spanned{Sp: sp}, Val: true}
	case token.KwFalse:
		sp := p.cur.Span
		p.next()
		return &ast.BoolLit{Spanned: ast.Spanned{Sp: sp}, Val: false}
	case token.Variable:
		sp := p.cur.Span
		name := p.cur.Literal
		p.next()
		return &ast.VarRef{Spanned: ast.Spanned{Sp: sp}, Name: name}
	case token.LBrace:
		return p.parseObjectLit()
	case token.LBracket:
		return p.parseArrayLit()
	default:
		p.errorUnexpected("a value")
		sp := p.cur.Span
		p.next()
		return &ast.StringLit{Spanned: ast.Spanned{Sp: sp}}
	}
}

// parseDateEnd parses the end of a `<date> TO <end>` range, where end is
// either another date string or CURRENT.
func (p *Parser) parseDateEnd() ast.Value {
	if p.cur.Kind == token.KwCurrent {
		sp := p.cur.Span
		p.next()
		return &ast.DateLit{Spanned: ast.Spanned{Sp: sp}, Current: true}
	}
	sp := p.cur.Span
	lit := p.expectString()
	return &ast.DateLit{Spanned: ast.Spanned{Sp: sp}, Text: lit}
}

func (p *Parser) parseNumberLit() *ast.NumberLit {
	tok := p.cur
	p.next()
	f, err := strconv.ParseFloat(tok.Literal, 64)
	if err != nil {
		p.errs.Errorf(tok.Span, diag.KindInvalidNumber, "invalid number %q", tok.Literal)
	}
	return &ast.NumberLit{Spanned: ast.Spanned{Sp: tok.Span}, Val: f, Raw: tok.Literal, Integral: !strings.Contains(tok.Literal, ".")}
}

func (p *Parser) parseObjectLit() *ast.ObjectLit {
	start := p.cur.Span
	p.next() // {
	fields, anns := p.parseFieldListAndAnnotations(token.RBrace)
	end := p.cur.Span
	p.expect(token.RBrace)
	for _, a := range anns {
		fields = append(fields, &ast.Field{Name: "@" + a.Name, NameSpan: a.Sp, Value: a.Value})
	}
	return &ast.ObjectLit{Spanned: ast.Spanned{Sp: sourcemap.Merge(start, end)}, Fields: fields}
}

func (p *Parser) parseArrayLit() *ast.ArrayLit {
	start := p.cur.Span
	p.next() // [
	var elems []ast.Value
	for p.cur.Kind != token.RBracket && p.cur.Kind != token.EOF {
		elems = append(elems, p.parseValue())
		p.consumeOptionalSeparator()
	}
	end := p.cur.Span
	p.expect(token.RBracket)
	return &ast.ArrayLit{Spanned: ast.Spanned{Sp: sourcemap.Merge(start, end)}, Elems: elems}
}

func stringVal(v ast.Value) string {
	switch t := v.(type) {
	case *ast.StringLit:
		return t.Val
	case *ast.DateLit:
		if t.Current {
			return "CURRENT"
		}
		return t.Text
	}
	return ""
}

func numberVal(v ast.Value) float64 {
	if n, ok := v.(*ast.NumberLit); ok {
		return n.Val
	}
	return 0
}

// ---- TEMPLATE / outlet blocks -----------------------------------------------

func (p *Parser) parseTemplate() *ast.Template {
	start := p.cur.Span
	p.next() // TEMPLATE
	p.expect(token.KwOutlet)
	name := p.expectString()
	t := &ast.Template{Spanned: ast.Spanned{Sp: start}, Name: name}
	if !p.expect(token.LBrace) {
		p.synchronize()
		return t
	}
	var anns []*ast.Annotation
	p.parseOutletBlocksBody(&t.OutletBlocks, &anns)
	return t
}

// parseOutletBlocksBody consumes IDENTITY/LIFECYCLE/CHARACTERISTICS/
// METADATA sub-blocks and bare annotations until a closing '}', which it
// also consumes. Shared by TEMPLATE, OUTLET and FOR_PERIOD bodies.
func (p *Parser) parseOutletBlocksBody(dst *ast.OutletBlocks, anns *[]*ast.Annotation) {
	for p.cur.Kind != token.RBrace && p.cur.Kind != token.EOF {
		switch p.cur.Kind {
		case token.KwIdentity:
			dst.Identity = p.parseIdentityBlock()
		case token.KwLifecycle:
			dst.Lifecycle = p.parseLifecycleBlock()
		case token.KwCharacteristics:
			dst.Characteristics = p.parseCharacteristicsBlock()
		case token.KwMetadata:
			dst.Metadata = p.parseMetadataBlock()
		case token.Annotation:
			a := p.parseAnnotation()
			if anns != nil {
				*anns = append(*anns, a)
			}
			p.consumeOptionalSeparator()
		default:
			p.errorUnexpected("IDENTITY, LIFECYCLE, CHARACTERISTICS, METADATA or an annotation")
			p.synchronize()
		}
	}
	p.expect(token.RBrace)
}

func (p *Parser) parseIdentityBlock() *ast.IdentityBlock {
	start := p.cur.Span
	p.next() // IDENTITY
	ib := &ast.IdentityBlock{Spanned: ast.Spanned{Sp: start}}
	if !p.expect(token.LBrace) {
		p.synchronize()
		return ib
	}
	fields, _ := p.parseFieldListAndAnnotations(token.RBrace)
	p.expect(token.RBrace)
	for _, f := range fields {
		switch f.Name {
		case "id":
			if n, ok := f.Value.(*ast.NumberLit); ok {
				ib.ID = int64(n.Val)
				ib.HasID = true
			}
		case "title":
			ib.Title = stringVal(f.Value)
		case "url":
			ib.URL = stringVal(f.Value)
		case "historical_titles":
			if arr, ok := f.Value.(*ast.ArrayLit); ok {
				for _, el := range arr.Elems {
					obj, ok := el.(*ast.ObjectLit)
					if !ok {
						continue
					}
					ht := &ast.HistoricalTitle{Spanned: ast.Spanned{Sp: obj.Sp}, Title: stringVal(obj.Get("title"))}
					if dr, ok := obj.Get("period").(*ast.DateRange); ok {
						ht.Period = dr
					}
					ib.HistoricalTitles = append(ib.HistoricalTitles, ht)
				}
			}
		}
	}
	return ib
}

func (p *Parser) parseLifecycleBlock() *ast.LifecycleBlock {
	start := p.cur.Span
	p.next() // LIFECYCLE
	lb := &ast.LifecycleBlock{Spanned: ast.Spanned{Sp: start}}
	if !p.expect(token.LBrace) {
		p.synchronize()
		return lb
	}
	for p.cur.Kind != token.RBrace && p.cur.Kind != token.EOF {
		if p.cur.Kind != token.KwStatus {
			p.errorUnexpected("STATUS")
			p.synchronize()
			continue
		}
		lb.Intervals = append(lb.Intervals, p.parseLifecycleInterval())
	}
	p.expect(token.RBrace)
	return lb
}

func (p *Parser) parseLifecycleInterval() *ast.LifecycleInterval {
	start := p.cur.Span
	p.next() // STATUS
	status := p.expectString()
	interval := &ast.LifecycleInterval{Spanned: ast.Spanned{Sp: start}, Status: status}
	p.expect(token.KwFrom)
	interval.From = p.parseDateEnd()
	if p.cur.Kind == token.KwTo {
		p.next()
		interval.To = p.parseDateEnd()
	} else if p.cur.Kind == token.KwCurrent {
		sp := p.cur.Span
		p.next()
		interval.To = &ast.DateLit{Spanned: ast.Spanned{Sp: sp}, Current: true}
	}
	if p.cur.Kind == token.LBrace {
		p.next()
		fields, anns := p.parseFieldListAndAnnotations(token.RBrace)
		p.expect(token.RBrace)
		interval.Annotations = anns
		for _, f := range fields {
			switch f.Name {
			case "precision_start":
				interval.PrecisionStart = stringVal(f.Value)
			case "precision_end":
				interval.PrecisionEnd = stringVal(f.Value)
			default:
				interval.Extra = append(interval.Extra, f)
			}
		}
	}
	return interval
}

func (p *Parser) parseCharacteristicsBlock() *ast.CharacteristicsBlock {
	start := p.cur.Span
	p.next() // CHARACTERISTICS
	cb := &ast.CharacteristicsBlock{Spanned: ast.Spanned{Sp: start}}
	if !p.expect(token.LBrace) {
		p.synchronize()
		return cb
	}
	fields, _ := p.parseFieldListAndAnnotations(token.RBrace)
	p.expect(token.RBrace)
	cb.Fields = fields
	return cb
}

func (p *Parser) parseMetadataBlock() *ast.MetadataBlock {
	start := p.cur.Span
	p.next() // METADATA
	mb := &ast.MetadataBlock{Spanned: ast.Spanned{Sp: start}}
	if !p.expect(token.LBrace) {
		p.synchronize()
		return mb
	}
	fields, _ := p.parseFieldListAndAnnotations(token.RBrace)
	p.expect(token.RBrace)
	mb.Fields = fields
	return mb
}

// ---- FAMILY / OUTLET / OUTLET_REF -------------------------------------------

func (p *Parser) parseFamily() *ast.Family {
	start := p.cur.Span
	p.next() // FAMILY
	name := p.expectString()
	fam := &ast.Family{Spanned: ast.Spanned{Sp: start}, Name: name}
	if !p.expect(token.LBrace) {
		p.synchronize()
		return fam
	}
	for p.cur.Kind != token.RBrace && p.cur.Kind != token.EOF {
		switch p.cur.Kind {
		case token.KwOutlet:
			fam.Outlets = append(fam.Outlets, p.parseOutlet())
		case token.KwOutletRef:
			fam.OutletRefs = append(fam.OutletRefs, p.parseOutletRef())
		case token.KwTemplate:
			fam.Templates = append(fam.Templates, p.parseTemplate())
		case token.KwData:
			fam.DataBlocks = append(fam.DataBlocks, p.parseDataBlock())
		case token.KwDiachronicLink:
			fam.DiachronicLinks = append(fam.DiachronicLinks, p.parseDiachronicLink())
		case token.KwSynchronousLink:
			fam.SynchronousLinks = append(fam.SynchronousLinks, p.parseSynchronousLink())
		case token.KwEvent:
			fam.Events = append(fam.Events, p.parseEvent())
		default:
			p.errorUnexpected("OUTLET, OUTLET_REF, TEMPLATE, DATA, DIACHRONIC_LINK, SYNCHRONOUS_LINK or EVENT")
			p.synchronizeTop()
		}
	}
	p.expect(token.RBrace)
	return fam
}

func (p *Parser) parseOutlet() *ast.Outlet {
	start := p.cur.Span
	p.next() // OUTLET
	o := &ast.Outlet{Spanned: ast.Spanned{Sp: start}}
	if p.cur.Kind == token.String {
		o.DeclaredName = p.cur.Literal
		p.next()
	}
	switch p.cur.Kind {
	case token.KwExtends:
		p.next()
		p.expect(token.KwTemplate)
		o.ExtendsTemplate = p.expectString()
	case token.KwBasedOn:
		p.next()
		o.BasedOn = int64(p.expectNumber())
		o.HasBasedOn = true
	}
	if !p.expect(token.LBrace) {
		p.synchronize()
		return o
	}
	p.parseOutletBlocksBody(&o.OutletBlocks, &o.Annotations)
	if o.Identity != nil && o.Identity.HasID {
		o.NumericID = o.Identity.ID
	}
	return o
}

func (p *Parser) parseOutletRef() *ast.OutletRef {
	start := p.cur.Span
	p.next() // OUTLET_REF
	ref := &ast.OutletRef{Spanned: ast.Spanned{Sp: start}}
	ref.TargetID = int64(p.expectNumber())
	for {
		switch p.cur.Kind {
		case token.LBracket:
			p.next()
			ref.TitleHint = p.expectString()
			ref.HasTitleHint = true
			p.expect(token.RBracket)
		case token.KwInheritsFrom:
			p.next()
			ref.InheritsFrom = int64(p.expectNumber())
			ref.HasInheritsFrom = true
			if p.cur.Kind == token.KwUntil {
				p.next()
				ref.InheritsUntil = p.parseDateEnd()
			}
		default:
			goto blocks
		}
	}
blocks:
	if !p.expect(token.LBrace) {
		p.synchronize()
		return ref
	}
	for p.cur.Kind != token.RBrace && p.cur.Kind != token.EOF {
		if p.cur.Kind != token.KwOverride {
			p.errorUnexpected("OVERRIDE")
			p.synchronize()
			continue
		}
		ref.Overrides = append(ref.Overrides, p.parseOverride())
	}
	p.expect(token.RBrace)
	return ref
}

func (p *Parser) parseOverride() *ast.Override {
	start := p.cur.Span
	p.next() // OVERRIDE
	p.expect(token.KwFrom)
	from := p.parseDateEnd()
	ov := &ast.Override{Spanned: ast.Spanned{Sp: start}, From: from}
	if !p.expect(token.LBrace) {
		p.synchronize()
		return ov
	}
	for p.cur.Kind != token.RBrace && p.cur.Kind != token.EOF {
		if p.cur.Kind != token.KwForPeriod {
			p.errorUnexpected("FOR_PERIOD")
			p.synchronize()
			continue
		}
		ov.Periods = append(ov.Periods, p.parseForPeriod())
	}
	p.expect(token.RBrace)
	return ov
}

func (p *Parser) parseForPeriod() *ast.ForPeriod {
	start := p.cur.Span
	p.next() // FOR_PERIOD
	from := p.parseDateEnd()
	fp := &ast.ForPeriod{Spanned: ast.Spanned{Sp: start}, From: from}
	if p.cur.Kind == token.KwTo {
		p.next()
		fp.To = p.parseDateEnd()
	} else if p.cur.Kind == token.KwCurrent {
		sp := p.cur.Span
		p.next()
		fp.To = &ast.DateLit{Spanned: ast.Spanned{Sp: sp}, Current: true}
	}
	if !p.expect(token.LBrace) {
		p.synchronize()
		return fp
	}
	p.parseOutletBlocksBody(&fp.OutletBlocks, nil)
	return fp
}

// ---- DATA -------------------------------------------------------------------

func (p *Parser) parseDataBlock() *ast.DataBlock {
	start := p.cur.Span
	p.next() // DATA
	p.expect(token.KwFor)
	id := int64(p.expectNumber())
	db := &ast.DataBlock{Spanned: ast.Spanned{Sp: start}, OutletID: id, Aggregation: map[string]ast.Value{}}
	if !p.expect(token.LBrace) {
		p.synchronize()
		return db
	}
	for p.cur.Kind != token.RBrace && p.cur.Kind != token.EOF {
		switch p.cur.Kind {
		case token.KwAggregation:
			p.next()
			if p.expect(token.LBrace) {
				fields, _ := p.parseFieldListAndAnnotations(token.RBrace)
				p.expect(token.RBrace)
				for _, f := range fields {
					db.Aggregation[f.Name] = f.Value
				}
			}
		case token.KwYear:
			yearSpan := p.cur.Span
			p.next()
			year := int(p.expectNumber())
			dy := &ast.DataYear{Spanned: ast.Spanned{Sp: yearSpan}, Year: year}
			if p.expect(token.LBrace) {
				metricFields, _ := p.parseFieldListAndAnnotations(token.RBrace)
				p.expect(token.RBrace)
				for _, f := range metricFields {
					m := &ast.Metric{Spanned: ast.Spanned{Sp: f.NameSpan}, Name: f.Name}
					if obj, ok := f.Value.(*ast.ObjectLit); ok {
						m.Value = numberVal(obj.Get("value"))
						m.Unit = stringVal(obj.Get("unit"))
						m.Source = stringVal(obj.Get("source"))
						m.Comment = stringVal(obj.Get("comment"))
					} else {
						m.Value = numberVal(f.Value)
					}
					dy.Metrics = append(dy.Metrics, m)
				}
			}
			db.Years = append(db.Years, dy)
		default:
			p.errorUnexpected("AGGREGATION or YEAR")
			p.synchronize()
		}
	}
	p.expect(token.RBrace)
	return db
}

// ---- DIACHRONIC_LINK / SYNCHRONOUS_LINK -------------------------------------

func (p *Parser) parseDiachronicLink() *ast.DiachronicLink {
	start := p.cur.Span
	p.next() // DIACHRONIC_LINK
	name := p.parseName()
	dl := &ast.DiachronicLink{Spanned: ast.Spanned{Sp: start}, Name: name}
	if !p.expect(token.LBrace) {
		p.synchronize()
		return dl
	}
	fields, anns := p.parseFieldListAndAnnotations(token.RBrace)
	p.expect(token.RBrace)
	dl.Annotations = anns
	for _, f := range fields {
		switch f.Name {
		case "predecessor":
			dl.Predecessor = int64(numberVal(f.Value))
		case "successor":
			dl.Successor = int64(numberVal(f.Value))
		case "event_date":
			dl.EventDate = f.Value
		case "relationship_type":
			dl.RelationshipType = stringVal(f.Value)
		case "triggered_by_event":
			dl.TriggeredByEvent = stringVal(f.Value)
			dl.HasTriggeredByEvent = true
		}
	}
	return dl
}

func (p *Parser) parseSynchronousLink() *ast.SynchronousLink {
	start := p.cur.Span
	p.next() // SYNCHRONOUS_LINK
	name := p.parseName()
	sl := &ast.SynchronousLink{Spanned: ast.Spanned{Sp: start}, Name: name}
	if !p.expect(token.LBrace) {
		p.synchronize()
		return sl
	}
	fields, _ := p.parseFieldListAndAnnotations(token.RBrace)
	p.expect(token.RBrace)
	for _, f := range fields {
		switch f.Name {
		case "outlet_1":
			sl.Outlet1 = parseEndpoint(f.Value)
		case "outlet_2":
			sl.Outlet2 = parseEndpoint(f.Value)
		case "relationship_type":
			sl.RelationshipType = stringVal(f.Value)
		case "period":
			sl.Period = f.Value
		case "details":
			sl.Details = stringVal(f.Value)
		case "created_by_event":
			sl.CreatedByEvent = stringVal(f.Value)
			sl.HasCreatedByEvent = true
		}
	}
	return sl
}

func parseEndpoint(v ast.Value) ast.LinkEndpoint {
	ep := ast.LinkEndpoint{}
	if obj, ok := v.(*ast.ObjectLit); ok {
		ep.ID = int64(numberVal(obj.Get("id")))
		ep.Role = stringVal(obj.Get("role"))
	}
	return ep
}

// ---- EVENT --------------------------------------------------------------

func (p *Parser) parseEvent() *ast.Event {
	start := p.cur.Span
	p.next() // EVENT
	name := p.parseName()
	ev := &ast.Event{
		Spanned:  ast.Spanned{Sp: start},
		Name:     name.Text,
		Impact:   map[string]ast.Value{},
		Metadata: map[string]ast.Value{},
	}
	if !p.expect(token.LBrace) {
		p.synchronize()
		return ev
	}
	fields, anns := p.parseFieldListAndAnnotations(token.RBrace)
	p.expect(token.RBrace)
	ev.Annotations = anns
	for _, f := range fields {
		switch f.Name {
		case "type":
			ev.Type = stringVal(f.Value)
		case "date":
			ev.Date = f.Value
		case "status":
			ev.Status = stringVal(f.Value)
		case "entities":
			if obj, ok := f.Value.(*ast.ObjectLit); ok {
				for _, pf := range obj.Fields {
					part := &ast.EventParticipant{Key: pf.Name, Sp: pf.NameSpan}
					if pobj, ok := pf.Value.(*ast.ObjectLit); ok {
						part.ID = int64(numberVal(pobj.Get("id")))
						part.Role = stringVal(pobj.Get("role"))
						if n, ok := pobj.Get("stake_before").(*ast.NumberLit); ok {
							v := n.Val
							part.StakeBefore = &v
						}
						if n, ok := pobj.Get("stake_after").(*ast.NumberLit); ok {
							v := n.Val
							part.StakeAfter = &v
						}
					}
					ev.Entities = append(ev.Entities, part)
				}
			}
		case "impact":
			if obj, ok := f.Value.(*ast.ObjectLit); ok {
				for _, pf := range obj.Fields {
					ev.Impact[pf.Name] = pf.Value
				}
			}
		case "metadata":
			if obj, ok := f.Value.(*ast.ObjectLit); ok {
				for _, pf := range obj.Fields {
					ev.Metadata[pf.Name] = pf.Value
				}
			}
		}
	}
	return ev
}
