package state

import (
	"bytes"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"scpview/content"
	"scpview/content/text"
	"scpview/record"
	"scpview/render"
	"scpview/speech"
	"scpview/transcript"
)

// OpenSource opens configured record collection, location argument when not
// empty overrides configured one.
func (e *LocalEnv) OpenSource(location string) (record.Source, error) {
	if len(location) == 0 {
		location = e.Cfg.Source.Location
	}
	src, err := record.OpenSource(e.Cfg.Source.Kind, location, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to open %s record source %q: %w", e.Cfg.Source.Kind, location, err)
	}
	e.Log.Debug("Record source opened", zap.Stringer("kind", e.Cfg.Source.Kind), zap.String("location", location))
	return src, nil
}

// Sanitizer returns narration text sanitizer.
func (e *LocalEnv) Sanitizer() *content.Sanitizer {
	subst := make([]content.Substitution, 0, len(e.Cfg.Narration.Substitutions))
	for _, s := range e.Cfg.Narration.Substitutions {
		subst = append(subst, content.Substitution{From: s.From, To: s.To})
	}
	return content.NewSanitizer(e.Cfg.Narration.Sentinel, subst...)
}

// Transcripts returns transcript builder.
func (e *LocalEnv) Transcripts() *transcript.Builder {
	return transcript.New(e.Sanitizer())
}

// Renderer returns field renderer.
func (e *LocalEnv) Renderer() *render.Renderer {
	return render.NewRenderer(render.WithImagesPrefix(e.Cfg.Page.Images.Prefix))
}

// PageTemplate returns HTML page used as display surface.
func (e *LocalEnv) PageTemplate() ([]byte, error) {
	if len(e.Cfg.Page.TemplatePath) == 0 {
		return render.DefaultPage, nil
	}
	data, err := os.ReadFile(e.Cfg.Page.TemplatePath)
	if err != nil {
		return nil, fmt.Errorf("unable to read page template from %q: %w", e.Cfg.Page.TemplatePath, err)
	}
	return data, nil
}

// NewDocument parses page template into fresh display surface.
func (e *LocalEnv) NewDocument(tmpl []byte) (*render.Document, error) {
	return render.ParseDocument(bytes.NewReader(tmpl))
}

// Selector returns voice selector.
func (e *LocalEnv) Selector(log *zap.Logger) (*speech.Selector, error) {
	return speech.NewSelector(e.Cfg.Narration.Voice.Language, e.Cfg.Narration.Voice.FallbackPrefix, log)
}

// Engine returns configured synthesizer.
func (e *LocalEnv) Engine(log *zap.Logger) *speech.CommandEngine {
	cfg := &e.Cfg.Narration.Engine

	opts := []speech.EngineOption{speech.WithArgs(cfg.Args...), speech.WithVoiceFlag(cfg.VoiceFlag)}
	if cfg.SplitSentences {
		lang, err := language.Parse(e.Cfg.Narration.Voice.Language)
		if err != nil {
			// validated already
			lang = language.English
		}
		opts = append(opts, speech.WithSplitter(text.NewSplitter(lang, log)))
	}
	return speech.NewCommandEngine(cfg.Command, log, opts...)
}

// Controller returns playback controller over the engine.
func (e *LocalEnv) Controller(engine speech.Engine, sel *speech.Selector, log *zap.Logger, opts ...speech.ControllerOption) *speech.Controller {
	opts = append([]speech.ControllerOption{speech.WithLabels(e.Cfg.Narration.PlayLabel, e.Cfg.Narration.StopLabel)}, opts...)
	return speech.NewController(engine, sel, log, opts...)
}
