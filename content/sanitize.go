// Package content turns record markup into text suitable for narration.
package content

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// StripMarkup returns text content of the markup fragment - what browser
// would show with all tags removed and character references resolved.
func StripMarkup(text string) string {
	if len(text) == 0 {
		return ""
	}
	var (
		b strings.Builder
		z = html.NewTokenizer(strings.NewReader(text))
	)
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF is the only error strings.Reader could produce
			return b.String()
		case html.TextToken:
			b.WriteString(z.Token().Data)
		}
	}
}

// Substitution replaces symbol which narration engines tend to skip or
// mispronounce with readable text.
type Substitution struct {
	From string
	To   string
}

// Sanitizer removes placeholder (sentinel) token meaning "value is not
// available" from narration text and makes symbols speakable.
type Sanitizer struct {
	sentinel string
	re       *regexp.Regexp
	subst    *strings.Replacer
}

// NewSanitizer returns sanitizer for sentinel token. Empty sentinel disables
// placeholder removal.
func NewSanitizer(sentinel string, substitutions ...Substitution) *Sanitizer {
	s := &Sanitizer{sentinel: sentinel}
	if len(sentinel) > 0 {
		s.re = regexp.MustCompile(wholeWord(sentinel))
	}
	if len(substitutions) > 0 {
		pairs := make([]string, 0, len(substitutions)*2)
		for _, p := range substitutions {
			pairs = append(pairs, p.From, p.To)
		}
		s.subst = strings.NewReplacer(pairs...)
	}
	return s
}

// wholeWord builds pattern matching token only when it is not a part of a
// longer word. Word boundary is only meaningful next to word characters, so it
// is added only on sides where token starts or ends with one.
func wholeWord(token string) string {
	pattern := regexp.QuoteMeta(token)
	first, _ := utf8.DecodeRuneInString(token)
	last, _ := utf8.DecodeLastRuneInString(token)
	if isWordChar(first) {
		pattern = `\b` + pattern
	}
	if isWordChar(last) {
		pattern += `\b`
	}
	return pattern
}

func isWordChar(r rune) bool {
	return r == '_' || r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

func (s *Sanitizer) Sentinel() string {
	return s.sentinel
}

// IsSentinel reports whether value is the placeholder itself.
func (s *Sanitizer) IsSentinel(value string) bool {
	return len(s.sentinel) > 0 && value == s.sentinel
}

// RemovePlaceholder removes every whole-word occurrence of the sentinel and
// trims surrounding white space. Spacing inside the text is left as is.
func (s *Sanitizer) RemovePlaceholder(text string) string {
	if s.re != nil {
		text = s.re.ReplaceAllLiteralString(text, "")
	}
	return strings.TrimSpace(text)
}

// Speakable applies configured symbol substitutions.
func (s *Sanitizer) Speakable(text string) string {
	if s.subst == nil {
		return text
	}
	return s.subst.Replace(text)
}

// Narration is the complete pipeline for a piece of record markup: strip
// markup, substitute symbols, remove placeholder.
func (s *Sanitizer) Narration(markup string) string {
	return s.RemovePlaceholder(s.Speakable(StripMarkup(markup)))
}
