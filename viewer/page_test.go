package viewer

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"go.uber.org/zap/zaptest"

	"scpview/content"
	"scpview/record"
	"scpview/render"
	"scpview/speech"
	"scpview/transcript"
)

type engine struct {
	mu      sync.Mutex
	spoken  []*speech.Utterance
	cancels int
}

func (e *engine) Speak(u *speech.Utterance) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.spoken = append(e.spoken, u)
	return nil
}

func (e *engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancels++
}

func site() fstest.MapFS {
	return fstest.MapFS{
		"data/SCP-173.json": {Data: []byte(`{
			"item": "SCP-173",
			"objectClass": "Euclid",
			"description": ["Statue #1.", "Moves N/A when observed."],
			"appendix": [{"title": "A", "content": ["x", "y"]}]
		}`)},
		"data/SCP-999.json": {Data: []byte(`["not", "an", "object"]`)},
	}
}

type fixture struct {
	doc    *render.Document
	engine *engine
	opts   Options
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	doc, err := render.ParseDocument(bytes.NewReader(render.DefaultPage))
	if err != nil {
		t.Fatalf("ParseDocument() error = %v", err)
	}
	log := zaptest.NewLogger(t)
	eng := &engine{}
	return &fixture{
		doc:    doc,
		engine: eng,
		opts: Options{
			Path:        "/scp/scp-173.html",
			Loader:      record.NewFSLoader(site()),
			Surface:     doc,
			Renderer:    render.NewRenderer(),
			Transcripts: transcript.New(content.NewSanitizer("N/A", content.Substitution{From: "#", To: "number"})),
			Controller:  speech.NewController(eng, nil, log),
			Log:         log,
		},
	}
}

func (f *fixture) page(t *testing.T) string {
	t.Helper()
	data, err := f.doc.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	return string(data)
}

func TestOpen(t *testing.T) {
	f := newFixture(t)

	p, err := Open(context.Background(), f.opts)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if p.ID != "SCP-173" || p.Record.ObjectClass != "Euclid" {
		t.Errorf("unexpected page %q %+v", p.ID, p.Record)
	}
	out := f.page(t)
	for _, want := range []string{
		`<h1 id="item">SCP-173</h1>`,
		`<span id="objectClass">Euclid</span>`,
		`<div id="appendix" style="display: block"><b>A</b><br/>x<br/>y</div>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("page does not contain %s", want)
		}
	}
}

func TestOpen_Failures(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		check func(error) bool
	}{
		{
			name: "not found",
			path: "scp-404.html",
			check: func(err error) bool {
				var lerr *record.LoadError
				return errors.As(err, &lerr) && errors.Is(err, record.ErrNotFound)
			},
		},
		{
			name: "malformed",
			path: "scp-999.html",
			check: func(err error) bool {
				var perr *record.ParseError
				return errors.As(err, &perr)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			before := f.page(t)
			f.opts.Path = tt.path

			p, err := Open(context.Background(), f.opts)
			if p != nil || !tt.check(err) {
				t.Fatalf("Open() = %v, %v", p, err)
			}
			if f.page(t) != before {
				t.Error("page must stay untouched on failure")
			}
		})
	}
}

func TestOpen_Incomplete(t *testing.T) {
	f := newFixture(t)
	f.opts.Loader = nil
	if _, err := Open(context.Background(), f.opts); err == nil {
		t.Error("expected error")
	}
}

func TestPage_PlayDescription(t *testing.T) {
	f := newFixture(t)
	p, err := Open(context.Background(), f.opts)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	state, err := p.PlayDescription()
	if err != nil || state != speech.StateSpeaking {
		t.Fatalf("PlayDescription() = %s, %v", state, err)
	}
	if !strings.Contains(f.page(t), `<button id="playDescription">Stop Description</button>`) {
		t.Error("button label must switch to stop")
	}

	want := "Item Number: SCP-173\nObject Class: Euclid\nDescription: Statue number1. Moves  when observed.\nAppendix: A: x y"
	if got := f.engine.spoken[0].Text; got != want {
		t.Errorf("narrated:\n%q\nwant:\n%q", got, want)
	}

	state, err = p.PlayDescription()
	if err != nil || state != speech.StateIdle {
		t.Fatalf("PlayDescription() = %s, %v", state, err)
	}
	if !strings.Contains(f.page(t), `<button id="playDescription">Play Description</button>`) {
		t.Error("button label must switch back to play")
	}
	if f.engine.cancels != 1 {
		t.Errorf("cancels = %d", f.engine.cancels)
	}

	// cancelled task completing late changes nothing
	f.engine.spoken[0].OnEnd()
	if f.opts.Controller.State() != speech.StateIdle {
		t.Error("late completion must be ignored")
	}
}

func TestPage_PlayDescriptionWithoutNarration(t *testing.T) {
	f := newFixture(t)
	f.opts.Controller = nil
	p, err := Open(context.Background(), f.opts)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := p.PlayDescription(); err == nil {
		t.Error("expected error")
	}
}
