package narrate

import (
	"context"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"scpview/speech"
	"scpview/state"
)

// Voices lists synthesizer voices marking the one narration would use.
func Voices(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("voices")

	engine := env.Engine(log)
	defer engine.Close()

	sel, err := env.Selector(log)
	if err != nil {
		return err
	}
	voices, err := engine.Voices(ctx)
	if err != nil {
		return err
	}
	return printVoices(cmd.Root().Writer, sel, voices, log)
}

func printVoices(out io.Writer, sel *speech.Selector, voices []speech.Voice, log *zap.Logger) error {
	sort.SliceStable(voices, func(i, j int) bool {
		if voices[i].Lang != voices[j].Lang {
			return natural.Less(voices[i].Lang, voices[j].Lang)
		}
		return natural.Less(voices[i].Name, voices[j].Name)
	})
	picked, ok := sel.Pick(voices)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "\tLANGUAGE\tNAME\tID")
	for _, v := range voices {
		mark := ""
		if ok && v == picked {
			mark = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", mark, v.Lang, v.Name, v.ID)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("unable to write voices: %w", err)
	}

	if ok {
		log.Info("Voice selected", zap.Stringer("voice", picked), zap.String("target", sel.Target()))
	} else {
		log.Info("No suitable voice, synthesizer default will be used", zap.String("target", sel.Target()), zap.String("prefix", sel.Prefix()))
	}
	return nil
}
