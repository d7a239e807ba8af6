package speech

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"scpview/content/text"
)

// DefaultCommand is the synthesizer used when nothing else is configured.
const DefaultCommand = "espeak-ng"

// CommandEngine narrates by running external synthesizer once per chunk of
// text: "<command> [args] [voice flag, voice id] <chunk>". Cancellation kills
// running synthesizer and prevents next chunks from starting.
type CommandEngine struct {
	VoiceHub

	command   string
	args      []string
	voiceFlag string
	splitter  *text.Splitter
	log       *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type EngineOption func(*CommandEngine)

// WithArgs sets arguments passed to synthesizer before the text.
func WithArgs(args ...string) EngineOption {
	return func(e *CommandEngine) {
		e.args = append([]string(nil), args...)
	}
}

// WithVoiceFlag sets synthesizer flag used to pass voice id, empty flag
// disables voice selection.
func WithVoiceFlag(flag string) EngineOption {
	return func(e *CommandEngine) {
		e.voiceFlag = flag
	}
}

// WithSplitter makes engine speak text sentence by sentence.
func WithSplitter(s *text.Splitter) EngineOption {
	return func(e *CommandEngine) {
		e.splitter = s
	}
}

func NewCommandEngine(command string, log *zap.Logger, opts ...EngineOption) *CommandEngine {
	if len(command) == 0 {
		command = DefaultCommand
	}
	e := &CommandEngine{command: command, log: log.Named("engine")}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Speak implements Engine. Task in flight, if any, is cancelled first.
func (e *CommandEngine) Speak(u *Utterance) error {
	if _, err := exec.LookPath(e.command); err != nil {
		return fmt.Errorf("synthesizer is not available: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
	}
	e.cancel = cancel
	e.wg.Add(1)
	e.mu.Unlock()

	go e.run(ctx, cancel, u)
	return nil
}

// Cancel implements Engine.
func (e *CommandEngine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

// Close cancels narration in flight and waits for it to end.
func (e *CommandEngine) Close() {
	e.Cancel()
	e.wg.Wait()
}

func (e *CommandEngine) run(ctx context.Context, cancel context.CancelFunc, u *Utterance) {
	defer e.wg.Done()
	defer func() {
		if u.OnEnd != nil {
			u.OnEnd()
		}
	}()
	defer cancel()

	log := e.log.With(zap.Stringer("task", u.ID))
	for chunk := range e.splitter.Chunks(u.Text) {
		if ctx.Err() != nil {
			log.Debug("Narration cancelled")
			return
		}
		var stderr bytes.Buffer
		cmd := exec.CommandContext(ctx, e.command, e.argsFor(u.Voice, chunk)...)
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			if ctx.Err() != nil {
				log.Debug("Narration cancelled")
				return
			}
			log.Warn("Synthesizer failed", zap.Error(err), zap.String("stderr", strings.TrimSpace(stderr.String())))
			return
		}
	}
	log.Debug("Narration completed")
}

func (e *CommandEngine) argsFor(voice *Voice, chunk string) []string {
	args := append([]string(nil), e.args...)
	if voice != nil && len(e.voiceFlag) > 0 {
		id := voice.ID
		if len(id) == 0 {
			id = voice.Name
		}
		args = append(args, e.voiceFlag, id)
	}
	return append(args, chunk)
}

// Voices implements VoiceSource by asking synthesizer for the list of its
// voices ("<command> [args] --voices", espeak-ng table format).
func (e *CommandEngine) Voices(ctx context.Context) ([]Voice, error) {
	out, err := exec.CommandContext(ctx, e.command, append(append([]string(nil), e.args...), "--voices")...).Output()
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) && len(ee.Stderr) > 0 {
			return nil, fmt.Errorf("unable to list voices: %w: %s", err, strings.TrimSpace(string(ee.Stderr)))
		}
		return nil, fmt.Errorf("unable to list voices: %w", err)
	}
	return ParseVoices(out), nil
}

// Refresh lists synthesizer voices and publishes them to subscribers.
func (e *CommandEngine) Refresh(ctx context.Context) error {
	voices, err := e.Voices(ctx)
	if err != nil {
		return err
	}
	e.Publish(voices)
	return nil
}

// ParseVoices reads espeak-ng voice table:
//
//	Pty Language       Age/Gender VoiceName          File                 Other Languages
//	 5  en-gb           --/M      English_(Great_Britain) gmw/en
//
// Language tags are canonicalized (en-gb becomes en-GB) so they could be
// compared with BCP 47 tags, original language is kept as voice id.
func ParseVoices(data []byte) []Voice {
	var voices []Voice
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 4 || fields[0] == "Pty" {
			continue
		}
		v := Voice{Name: fields[3], Lang: fields[1], ID: fields[1]}
		if tag, err := language.Parse(fields[1]); err == nil {
			v.Lang = tag.String()
		}
		voices = append(voices, v)
	}
	return voices
}
