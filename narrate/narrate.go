// Package narrate implements subcommands which work with item narration:
// printing transcripts, reading items aloud and listing voices.
package narrate

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"scpview/record"
	"scpview/render"
	"scpview/speech"
	"scpview/state"
	"scpview/viewer"
)

// openPage loads and renders single item page.
func openPage(ctx context.Context, env *state.LocalEnv, src record.Source, path string, ctrl *speech.Controller, out io.Writer, log *zap.Logger) (*viewer.Page, *render.Document, error) {
	tmpl, err := env.PageTemplate()
	if err != nil {
		return nil, nil, err
	}
	doc, err := env.NewDocument(tmpl)
	if err != nil {
		return nil, nil, err
	}
	p, err := viewer.Open(ctx, viewer.Options{
		Path:        path,
		Ext:         env.Cfg.Page.Extension,
		Loader:      src,
		Surface:     &console{Document: doc, out: out},
		Renderer:    env.Renderer(),
		Transcripts: env.Transcripts(),
		Controller:  ctrl,
		Log:         log,
	})
	if err != nil {
		return nil, nil, err
	}
	return p, doc, nil
}

func pageArg(cmd *cli.Command, log *zap.Logger) (string, error) {
	page := cmd.Args().Get(0)
	if len(page) == 0 {
		return "", errors.New("no item page has been specified")
	}
	if cmd.Args().Len() > 1 {
		log.Warn("Malformed command line, too many items", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}
	return page, nil
}

// Transcript prints narration transcript of the item.
func Transcript(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("transcript")

	page, err := pageArg(cmd, log)
	if err != nil {
		return err
	}
	src, err := env.OpenSource(cmd.String("source"))
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, src.Close())
	}()

	p, _, err := openPage(ctx, env, src, page, nil, io.Discard, log)
	if err != nil {
		return err
	}
	text := p.Transcript()
	env.Rpt.StoreData(fmt.Sprintf("transcript-%s.txt", p.ID), []byte(text))

	if _, err := fmt.Fprintln(cmd.Root().Writer, text); err != nil {
		return fmt.Errorf("unable to write transcript: %w", err)
	}
	return nil
}

// Narrate reads item aloud. Enter toggles narration, narration ending
// naturally, end of input or interrupt end the program.
func Narrate(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("narrate")

	page, err := pageArg(cmd, log)
	if err != nil {
		return err
	}
	src, err := env.OpenSource(cmd.String("source"))
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, src.Close())
	}()

	engine := env.Engine(log)
	defer engine.Close()

	sel, err := env.Selector(log)
	if err != nil {
		return err
	}
	defer sel.Watch(engine)()
	if err := engine.Refresh(ctx); err != nil {
		log.Warn("Unable to list synthesizer voices, default voice will be used", zap.Error(err))
	}

	states := make(chan speech.State, 16)
	ctrl := env.Controller(engine, sel, log, speech.WithObserver(func(s speech.State) {
		select {
		case states <- s:
		default:
		}
	}))

	out := cmd.Root().Writer
	p, doc, err := openPage(ctx, env, src, page, ctrl, out, log)
	if err != nil {
		return err
	}
	if data, err := doc.Bytes(); err == nil {
		env.Rpt.StoreData(fmt.Sprintf("page-%s%s", p.ID, env.Cfg.Page.Extension), data)
	}
	env.Rpt.StoreData(fmt.Sprintf("record-%s.txt", p.ID), []byte(p.Record.String()))
	env.Rpt.StoreData(fmt.Sprintf("transcript-%s.txt", p.ID), []byte(p.Transcript()))

	log.Info("Narration starting", zap.String("id", p.ID))
	defer func(start time.Time) {
		log.Info("Narration completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return loop(ctx, p, ctrl, stdinOr(cmd.Root().Reader), states, log)
}

// loop drives the toggle from input lines. Idle notifications caused by user
// toggles are expected, any other one means narration ended by itself.
func loop(ctx context.Context, p *viewer.Page, ctrl *speech.Controller, in io.Reader, states <-chan speech.State, log *zap.Logger) error {
	if _, err := p.PlayDescription(); err != nil {
		return err
	}

	lines := make(chan struct{})
	done := make(chan struct{})
	defer close(done)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- struct{}{}:
			case <-ctx.Done():
				return
			case <-done:
				return
			}
		}
	}()

	var expected int
	for {
		select {
		case <-ctx.Done():
			ctrl.Stop()
			log.Info("Narration interrupted")
			return nil
		case _, ok := <-lines:
			if !ok {
				ctrl.Stop()
				return nil
			}
			st, err := p.PlayDescription()
			if err != nil {
				return err
			}
			if st == speech.StateIdle {
				expected++
			}
		case st := <-states:
			if st != speech.StateIdle {
				continue
			}
			if expected > 0 {
				expected--
				continue
			}
			return nil
		}
	}
}

// console mirrors play control label changes to the terminal.
type console struct {
	*render.Document
	out io.Writer
}

func (c *console) Target(name string) (render.Target, bool) {
	t, ok := c.Document.Target(name)
	if !ok || name != render.TargetPlayDescription {
		return t, ok
	}
	return &consoleButton{Target: t, out: c.out}, true
}

type consoleButton struct {
	render.Target
	out io.Writer
}

func (b *consoleButton) SetText(text string) {
	b.Target.SetText(text)
	fmt.Fprintf(b.out, "[%s] press Enter to toggle\n", text)
}

// stdinOr returns reader unless it is nil.
func stdinOr(r io.Reader) io.Reader {
	if r == nil {
		return os.Stdin
	}
	return r
}
