// Package viewer initializes item page: it resolves item from page path,
// loads its record, renders it and wires narration toggle.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"scpview/common"
	"scpview/record"
	"scpview/render"
	"scpview/speech"
	"scpview/transcript"
)

type Options struct {
	// Path of the item page, item identifier is derived from it.
	Path string
	// Extension of the page file, common.DefaultPageExt when empty.
	Ext string

	Loader      record.Loader
	Surface     render.Surface
	Renderer    *render.Renderer
	Transcripts *transcript.Builder
	// Controller may be nil when narration is not needed.
	Controller *speech.Controller
	Log        *zap.Logger
}

// Page is an initialized item page.
type Page struct {
	ID     string
	Record *record.Record

	surface     render.Surface
	transcripts *transcript.Builder
	controller  *speech.Controller
	log         *zap.Logger

	once       sync.Once
	transcript string
}

// Open initializes page. Record load and parse failures are logged and
// returned, nothing is rendered in that case.
func Open(ctx context.Context, opts Options) (*Page, error) {
	if opts.Loader == nil || opts.Surface == nil || opts.Renderer == nil || opts.Transcripts == nil || opts.Log == nil {
		return nil, errors.New("page options are incomplete")
	}
	ext := opts.Ext
	if len(ext) == 0 {
		ext = common.DefaultPageExt
	}

	id := common.ItemIDFromPath(opts.Path, ext)
	log := opts.Log.With(zap.String("id", id))

	rec, err := opts.Loader.Load(ctx, id)
	if err != nil {
		var perr *record.ParseError
		if errors.As(err, &perr) {
			log.Error("Unable to parse item record", zap.String("key", perr.Key), zap.Error(err))
		} else {
			log.Error("Unable to load item record", zap.String("key", record.KeyFor(id)), zap.Error(err))
		}
		return nil, err
	}

	if err := opts.Renderer.Render(opts.Surface, rec); err != nil {
		return nil, fmt.Errorf("unable to render item %s: %w", id, err)
	}
	log.Debug("Item rendered", zap.String("path", opts.Path))

	return &Page{
		ID:          id,
		Record:      rec,
		surface:     opts.Surface,
		transcripts: opts.Transcripts,
		controller:  opts.Controller,
		log:         log,
	}, nil
}

// Transcript returns narration text of the page record. It is built on first
// use.
func (p *Page) Transcript() string {
	p.once.Do(func() {
		p.transcript = p.transcripts.Build(p.Record)
		p.log.Debug("Narration transcript", zap.String("text", p.transcript))
	})
	return p.transcript
}

// PlayDescription handles activation of the play description control.
func (p *Page) PlayDescription() (speech.State, error) {
	if p.controller == nil {
		return speech.StateIdle, errors.New("narration is not configured")
	}
	button, ok := p.surface.Target(render.TargetPlayDescription)
	if !ok {
		return speech.StateIdle, fmt.Errorf("%w: %s", render.ErrMissingTarget, render.TargetPlayDescription)
	}
	return p.controller.Toggle(p.Transcript(), button)
}
