package content

import "testing"

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "<b>Hi</b> there", "Hi there"},
		{"empty", "", ""},
		{"plain", "no markup at all", "no markup at all"},
		{"nested", `<p>One <i>two <a href="x">three</a></i></p>`, "One two three"},
		{"line breaks", "a<br>b<br/>c", "abc"},
		{"entities", "5 &lt; 6 &amp;&amp; 7 &gt; 3", "5 < 6 && 7 > 3"},
		{"comment", "before<!-- hidden -->after", "beforeafter"},
		{"unclosed", "<strong>bold", "bold"},
		{"stray bracket", "a < b", "a < b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripMarkup(tt.in); got != tt.want {
				t.Errorf("StripMarkup(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRemovePlaceholder(t *testing.T) {
	s := NewSanitizer("N/A")
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"inside", "Value N/A and more", "Value  and more"},
		{"only token", "N/A", ""},
		{"leading", "N/A leading", "leading"},
		{"trailing", "Class: N/A\n", "Class:"},
		{"repeated", "N/A, N/A, N/A", ", ,"},
		{"substring of longer word", "UNAVAILABLE", "UNAVAILABLE"},
		{"glued to letters", "XN/AY", "XN/AY"},
		{"case sensitive", "n/a stays", "n/a stays"},
		{"empty", "", ""},
		{"spaces only", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.RemovePlaceholder(tt.in); got != tt.want {
				t.Errorf("RemovePlaceholder(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRemovePlaceholder_BracketedSentinel(t *testing.T) {
	s := NewSanitizer("[DATA EXPUNGED]")
	if got := s.RemovePlaceholder("Origin: [DATA EXPUNGED] in 19[DATA EXPUNGED]"); got != "Origin:  in 19" {
		t.Errorf("RemovePlaceholder() = %q", got)
	}
}

func TestRemovePlaceholder_Disabled(t *testing.T) {
	s := NewSanitizer("")
	if got := s.RemovePlaceholder("  N/A  "); got != "N/A" {
		t.Errorf("RemovePlaceholder() with empty sentinel = %q", got)
	}
	if s.IsSentinel("") {
		t.Error("empty value must not be sentinel when sentinel is disabled")
	}
}

func TestSanitizer_Narration(t *testing.T) {
	s := NewSanitizer("N/A", Substitution{From: "#", To: "number"})
	got := s.Narration("<p>Item #4 is N/A</p>")
	if want := "Item number4 is"; got != want {
		t.Errorf("Narration() = %q, want %q", got, want)
	}
	if !s.IsSentinel("N/A") || s.IsSentinel("N/A ") {
		t.Error("IsSentinel must match exact token only")
	}
	if s.Sentinel() != "N/A" {
		t.Errorf("Sentinel() = %q", s.Sentinel())
	}
	if got := NewSanitizer("N/A").Speakable("#1"); got != "#1" {
		t.Errorf("Speakable() without substitutions = %q", got)
	}
}
