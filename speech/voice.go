// Package speech narrates item transcripts: it picks a voice, drives the
// play/stop toggle and talks to the synthesizer.
package speech

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// DefaultLanguage is the voice language narration prefers.
const DefaultLanguage = "en-KE"

// Voice is a synthesizer voice. ID is what engine needs to select the voice,
// when empty Name is used.
type Voice struct {
	Name    string
	Lang    string
	ID      string
	Default bool
}

func (v Voice) String() string {
	return fmt.Sprintf("%s (%s)", v.Name, v.Lang)
}

// VoiceNotifier delivers voice availability changes. Subscribe registers
// callback invoked with the full list every time availability changes,
// including initial discovery. Returned function cancels subscription.
type VoiceNotifier interface {
	Subscribe(fn func([]Voice)) (cancel func())
}

// VoiceSource knows which voices are available.
type VoiceSource interface {
	VoiceNotifier
	Voices(ctx context.Context) ([]Voice, error)
}

// Selector keeps currently selected voice.
type Selector struct {
	target string
	prefix string
	log    *zap.Logger

	mu       sync.Mutex
	selected *Voice
}

// NewSelector returns selector preferring voices with language tag exactly
// equal to target and falling back to the first voice which tag starts with
// prefix. Empty prefix is derived from target base language.
func NewSelector(target, prefix string, log *zap.Logger) (*Selector, error) {
	if len(target) == 0 {
		target = DefaultLanguage
	}
	if len(prefix) == 0 {
		tag, err := language.Parse(target)
		if err != nil {
			return nil, fmt.Errorf("unable to parse voice language %q: %w", target, err)
		}
		base, _ := tag.Base()
		prefix = base.String()
	}
	return &Selector{target: target, prefix: prefix, log: log}, nil
}

// Target returns preferred language tag.
func (s *Selector) Target() string {
	return s.target
}

// Prefix returns fallback language prefix.
func (s *Selector) Prefix() string {
	return s.prefix
}

// Pick applies selection rule to the list without changing selector state.
func (s *Selector) Pick(voices []Voice) (Voice, bool) {
	for _, v := range voices {
		if v.Lang == s.target {
			return v, true
		}
	}
	for _, v := range voices {
		if strings.HasPrefix(v.Lang, s.prefix) {
			return v, true
		}
	}
	return Voice{}, false
}

// OnVoicesChanged recomputes selection from scratch.
func (s *Selector) OnVoicesChanged(voices []Voice) {
	for _, v := range voices {
		s.log.Debug("Voice available", zap.String("name", v.Name), zap.String("lang", v.Lang))
	}

	v, ok := s.Pick(voices)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !ok {
		s.selected = nil
		s.log.Debug("No suitable voice found, platform default will be used", zap.String("target", s.target), zap.String("prefix", s.prefix))
		return
	}
	s.selected = &v
	s.log.Debug("Voice selected", zap.Stringer("voice", v))
}

// Selected returns current selection, false when nothing is selected.
func (s *Selector) Selected() (Voice, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selected == nil {
		return Voice{}, false
	}
	return *s.selected, true
}

// Watch subscribes selector to voice availability notifications.
func (s *Selector) Watch(src VoiceNotifier) (cancel func()) {
	return src.Subscribe(s.OnVoicesChanged)
}
