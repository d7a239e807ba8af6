// Package text splits narration text into pieces narration engine can speak
// one at a time.
package text

import (
	"iter"
	"strings"
	"unicode"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

type Splitter struct {
	*sentences.DefaultSentenceTokenizer
}

// NewSplitter returns sentence splitter for the language or nil when there is
// no tokenizer model for it. Nil splitter is usable - it does not split.
func NewSplitter(lang language.Tag, log *zap.Logger) *Splitter {
	base, confidence := lang.Base()
	if confidence == language.No {
		log.Warn("Unable to determine language base, turning off sentence splitting", zap.Stringer("tag", lang))
		return nil
	}
	if base.String() != "en" {
		log.Warn("Unable to find suitable sentence tokenizer model, turning off sentence splitting", zap.Stringer("language", lang))
		return nil
	}
	tok, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		log.Warn("Unable to load sentences tokenizer data", zap.Stringer("tag", lang), zap.Error(err))
		return nil
	}
	return &Splitter{tok}
}

// Split returns slice of sentences.
func (s *Splitter) Split(in string) []string {
	var result []string
	for sentence := range s.Sentences(in) {
		result = append(result, sentence)
	}
	return result
}

// Sentences returns an iterator over sentences. Tokenizer attaches white
// space trailing a sentence to the next one, here it is moved back so every
// sentence starts with a non-space.
func (s *Splitter) Sentences(in string) iter.Seq[string] {
	return func(yield func(string) bool) {
		if s == nil {
			yield(in)
			return
		}

		tokens := s.Tokenize(in)
		for i := 0; i < len(tokens)-1; i++ {
			text, next := tokens[i].Text, tokens[i+1].Text
			for idx, sym := range next {
				if !unicode.IsSpace(sym) {
					text += next[:idx]
					tokens[i+1].Text = next[idx:]
					break
				}
			}
			if !yield(text) {
				return
			}
		}
		if len(tokens) > 0 {
			yield(tokens[len(tokens)-1].Text)
		}
	}
}

// Chunks returns pieces of narration text to be spoken one after another:
// every non-empty line is split into sentences, pieces are trimmed and empty
// ones dropped.
func (s *Splitter) Chunks(in string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for line := range strings.Lines(in) {
			line = strings.TrimSpace(line)
			if len(line) == 0 {
				continue
			}
			for sentence := range s.Sentences(line) {
				sentence = strings.TrimSpace(sentence)
				if len(sentence) == 0 {
					continue
				}
				if !yield(sentence) {
					return
				}
			}
		}
	}
}
