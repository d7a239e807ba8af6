// Package publish renders item pages into static HTML files.
package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"scpview/record"
	"scpview/render"
	"scpview/state"
	"scpview/transcript"
	"scpview/viewer"
)

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("render")

	dst := cmd.String("out")
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}

	env.Overwrite = cmd.Bool("overwrite")
	if cmd.Bool("transcripts") {
		env.Cfg.Page.Transcripts = true
	}

	src, err := env.OpenSource(cmd.String("source"))
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, src.Close())
	}()

	pages := cmd.Args().Slice()
	if cmd.Bool("all") {
		if len(pages) > 0 {
			log.Warn("Malformed command line, items are enumerated from source", zap.Strings("ignoring", pages))
		}
		lister, ok := src.(record.Lister)
		if !ok {
			return fmt.Errorf("%s record source cannot enumerate items", env.Cfg.Source.Kind)
		}
		ids, err := lister.List(ctx)
		if err != nil {
			return fmt.Errorf("unable to enumerate items: %w", err)
		}
		pages = make([]string, 0, len(ids))
		for _, id := range ids {
			pages = append(pages, id+env.Cfg.Page.Extension)
		}
	}
	if len(pages) == 0 {
		return errors.New("no items to render have been specified")
	}

	tmpl, err := env.PageTemplate()
	if err != nil {
		return err
	}

	log.Info("Processing starting", zap.String("destination", dst), zap.Int("items", len(pages)))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, pages, tmpl, dst, env, log)
}

// process renders every page, failure of a single item does not stop
// processing. All failures are returned together.
func process(ctx context.Context, src record.Source, pages []string, tmpl []byte, dst string, env *state.LocalEnv, log *zap.Logger) error {
	var (
		errs   error
		failed int
		p      = &pipeline{
			src:         src,
			tmpl:        tmpl,
			dst:         dst,
			renderer:    env.Renderer(),
			transcripts: env.Transcripts(),
			assets:      render.NewAssets(env.Cfg.Page.Images.MaxWidth, log),
			env:         env,
			log:         log,
		}
	)
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}
		if err := p.processItem(ctx, page); err != nil {
			log.Error("Unable to render item", zap.String("page", page), zap.Error(err))
			errs = multierr.Append(errs, err)
			failed++
			env.Failed++
			continue
		}
		env.Rendered++
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d items failed: %w", failed, len(pages), errs)
	}
	return nil
}

type pipeline struct {
	src         record.Source
	tmpl        []byte
	dst         string
	renderer    *render.Renderer
	transcripts *transcript.Builder
	assets      *render.Assets
	env         *state.LocalEnv
	log         *zap.Logger
}

// processItem renders single item page. "page" is item page path (or just
// item id with page extension), item id is derived from it.
func (p *pipeline) processItem(ctx context.Context, page string) (rerr error) {
	var id, outputName string

	p.log.Debug("Rendering starting", zap.String("page", page))
	defer func(start time.Time) {
		// image processing should not bring whole run down
		if r := recover(); r != nil {
			p.log.Error("Rendering ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("rendering panic: %v", r)
		} else if rerr == nil {
			p.log.Info("Item rendered", zap.String("id", id), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName))
		}
	}(time.Now())

	doc, err := p.env.NewDocument(p.tmpl)
	if err != nil {
		return err
	}
	view, err := viewer.Open(ctx, viewer.Options{
		Path:        page,
		Ext:         p.env.Cfg.Page.Extension,
		Loader:      p.src,
		Surface:     doc,
		Renderer:    p.renderer,
		Transcripts: p.transcripts,
		Log:         p.log,
	})
	if err != nil {
		return err
	}
	id = view.ID

	outputName = buildOutputPath(id, view.Record, p.dst, p.env)
	if err := p.prepareOutput(outputName); err != nil {
		return err
	}

	data, err := doc.Bytes()
	if err != nil {
		return fmt.Errorf("unable to serialize page: %w", err)
	}
	if err := os.WriteFile(outputName, data, 0644); err != nil {
		return fmt.Errorf("unable to write page: %w", err)
	}

	if p.env.Cfg.Page.Transcripts {
		name := strings.TrimSuffix(outputName, filepath.Ext(outputName)) + ".txt"
		if err := os.WriteFile(name, []byte(view.Transcript()+"\n"), 0644); err != nil {
			return fmt.Errorf("unable to write transcript: %w", err)
		}
	}

	if err := copyImage(ctx, p.src, view.Record, outputName, p.assets, p.env, p.log); err != nil {
		return err
	}

	// Store rendering result for debugging
	if p.env.Rpt != nil {
		p.env.Rpt.StoreData(fmt.Sprintf("record-%s.txt", id), []byte(view.Record.String()))
		p.env.Rpt.Store(fmt.Sprintf("result-%s%s", id, filepath.Ext(outputName)), outputName)
	}
	return nil
}

func (p *pipeline) prepareOutput(outputName string) error {
	if _, err := os.Stat(outputName); err == nil {
		if !p.env.Overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		p.log.Warn("Overwriting existing file", zap.String("file", outputName))
		return os.Remove(outputName)
	} else if !os.IsNotExist(err) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	return nil
}
