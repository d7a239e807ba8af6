package text

import (
	"slices"
	"strings"
	"testing"
	"unicode"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"golang.org/x/text/language"
)

func TestNewSplitter(t *testing.T) {
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))

	t.Run("English language", func(t *testing.T) {
		if tok := NewSplitter(language.English, logger); tok == nil {
			t.Fatal("Expected tokenizer for English, got nil")
		}
	})

	t.Run("English regional variant", func(t *testing.T) {
		if tok := NewSplitter(language.MustParse("en-KE"), logger); tok == nil {
			t.Fatal("Expected tokenizer for en-KE, got nil")
		}
	})

	t.Run("Unsupported language", func(t *testing.T) {
		if tok := NewSplitter(language.Afrikaans, logger); tok != nil {
			t.Fatal("Expected nil for unsupported language")
		}
	})
}

func TestSplit(t *testing.T) {
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))

	t.Run("Nil tokenizer", func(t *testing.T) {
		var tok *Splitter
		result := tok.Split("This is a test. This is another test.")
		if len(result) != 1 || result[0] != "This is a test. This is another test." {
			t.Errorf("Expected original text, got %q", result)
		}
	})

	t.Run("Simple English sentences", func(t *testing.T) {
		tok := NewSplitter(language.English, logger)
		result := tok.Split("This is a test. This is another test.")
		want := []string{"This is a test.", "This is another test."}
		if len(result) != len(want) {
			t.Fatalf("Split() = %q, want %q", result, want)
		}
		for i := range want {
			if strings.TrimSpace(result[i]) != want[i] {
				t.Errorf("sentence %d = %q, want %q", i, result[i], want[i])
			}
			if len(result[i]) > 0 && unicode.IsSpace(rune(result[i][0])) {
				t.Errorf("sentence %d starts with space: %q", i, result[i])
			}
		}
	})

	t.Run("Empty text", func(t *testing.T) {
		tok := NewSplitter(language.English, logger)
		if result := tok.Split(""); len(result) != 0 {
			t.Errorf("Split(\"\") = %q, want nothing", result)
		}
	})
}

func TestChunks(t *testing.T) {
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	in := "Item Number: SCP-173\nObject Class: Euclid\n\nDescription: It moves. It is fast.\n"

	t.Run("with tokenizer", func(t *testing.T) {
		tok := NewSplitter(language.English, logger)
		got := slices.Collect(tok.Chunks(in))
		want := []string{"Item Number: SCP-173", "Object Class: Euclid", "Description: It moves.", "It is fast."}
		if !slices.Equal(got, want) {
			t.Errorf("Chunks() = %q, want %q", got, want)
		}
	})

	t.Run("nil tokenizer splits lines only", func(t *testing.T) {
		var tok *Splitter
		got := slices.Collect(tok.Chunks(in))
		want := []string{"Item Number: SCP-173", "Object Class: Euclid", "Description: It moves. It is fast."}
		if !slices.Equal(got, want) {
			t.Errorf("Chunks() = %q, want %q", got, want)
		}
	})

	t.Run("early stop", func(t *testing.T) {
		var tok *Splitter
		var got []string
		for c := range tok.Chunks(in) {
			got = append(got, c)
			break
		}
		if len(got) != 1 {
			t.Errorf("iteration did not stop, got %q", got)
		}
	})
}
