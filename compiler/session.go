// Package compiler drives the lex -> parse -> analyze -> lower -> emit
// pipeline behind a single Session, the way tokenmodel/dsl's ParseSchema
// chains Parse and Interpret into one entry point, generalized here into
// a full multi-stage batch with its own state container.
package compiler

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mdsl-lang/mdslc/config"
	"github.com/mdsl-lang/mdslc/diag"
	"github.com/mdsl-lang/mdslc/semantic"
	"github.com/mdsl-lang/mdslc/sourcemap"
)

// Session owns every piece of state one compilation batch produces: the
// source map, the symbol table semantic analysis fills in, the
// diagnostic sink every pass appends to, and a build id tagging the run
// in logs. Nothing here outlives the batch, per spec.md §5's shared-
// resource policy: no entity is reused across invocations.
type Session struct {
	SM      *sourcemap.Map
	Sym     *semantic.Symbols
	Diags   *diag.Sink
	Cfg     config.EmitConfig
	Log     zerolog.Logger
	BuildID uuid.UUID
}

// New starts a fresh Session with an empty source map and diagnostic
// sink under cfg, logging through log.
func New(cfg config.EmitConfig, log zerolog.Logger) *Session {
	buildID := uuid.New()
	return &Session{
		SM:      sourcemap.New(),
		Diags:   diag.NewSink(),
		Cfg:     cfg,
		Log:     log.With().Str("build_id", buildID.String()).Logger(),
		BuildID: buildID,
	}
}
