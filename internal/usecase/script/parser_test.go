package script

import (
	"reflect"
	"strings"
	"testing"

	"github.com/johnquangdev/script-workspace/internal/domain/entities"
)

func TestParseScriptMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []entities.ParsedSection
	}{
		{
			name: "bullets and numbers",
			in:   "# A\nhello\n# B\n- one\n1. two",
			want: []entities.ParsedSection{{Title: "A", Body: "hello"}, {Title: "B", Body: "one\ntwo"}},
		},
		{
			name: "empty section dropped",
			in:   "# A\n# B\ntext",
			want: []entities.ParsedSection{{Title: "B", Body: "text"}},
		},
		{
			name: "no headings",
			in:   "just some text\n- and a bullet",
			want: []entities.ParsedSection{},
		},
		{
			name: "preamble discarded",
			in:   "intro line\n## Chapter\nbody",
			want: []entities.ParsedSection{{Title: "Chapter", Body: "body"}},
		},
		{
			name: "crlf and blank lines",
			in:   "# A\r\n\r\nfirst\r\n   \r\nsecond\r\n",
			want: []entities.ParsedSection{{Title: "A", Body: "first\nsecond"}},
		},
		{
			name: "hash without space is body",
			in:   "# A\n#hashtag\n###\ttabbed",
			want: []entities.ParsedSection{{Title: "A", Body: "#hashtag"}},
		},
		{
			name: "markers stripped once",
			in:   "# A\n- - nested\n* 3. item\n12.no space",
			want: []entities.ParsedSection{{Title: "A", Body: "- nested\nitem\nno space"}},
		},
		{
			name: "empty title dropped",
			in:   "#   \nbody\n# T\nx",
			want: []entities.ParsedSection{{Title: "T", Body: "x"}},
		},
		{
			name: "marker only body dropped",
			in:   "# A\n-\n# B\nok",
			want: []entities.ParsedSection{{Title: "B", Body: "ok"}},
		},
		{
			name: "duplicate titles kept",
			in:   "# Same\none\n# Same\none",
			want: []entities.ParsedSection{{Title: "Same", Body: "one"}, {Title: "Same", Body: "one"}},
		},
		{
			name: "ideographic space",
			in:   "#　第一章\n　本文です　",
			want: []entities.ParsedSection{{Title: "第一章", Body: "本文です"}},
		},
		{
			name: "indented heading is body",
			in:   "# A\n  # not a heading",
			want: []entities.ParsedSection{{Title: "A", Body: "# not a heading"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseScriptMarkdown(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %#v want %#v", got, tt.want)
			}
		})
	}
}

func TestParseScriptMarkdown_NonEmptyInvariant(t *testing.T) {
	inputs := []string{
		"",
		"#",
		"# \n\n\n",
		"# a\n- \n1. \n# b\n*\n",
		"### x\n  - y\n#### \nz",
		strings.Repeat("# t\n- \n", 50),
		"#\t\t\n#\ttitle\n\tbody\t",
	}
	for _, in := range inputs {
		for _, s := range ParseScriptMarkdown(in) {
			if s.Title == "" || s.Body == "" {
				t.Fatalf("input %q produced empty field: %#v", in, s)
			}
			if strings.TrimSpace(s.Title) != s.Title || strings.TrimSpace(s.Body) != s.Body {
				t.Fatalf("input %q produced untrimmed section: %#v", in, s)
			}
		}
	}
}

func TestParseScriptMarkdown_Idempotent(t *testing.T) {
	in := "# One\nalpha\n## Two\n- beta\n- gamma"
	first := ParseScriptMarkdown(in)
	second := ParseScriptMarkdown(in)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("parser is not pure: %#v vs %#v", first, second)
	}
}

func TestSanitizeLine(t *testing.T) {
	tests := map[string]string{
		"- item":   "item",
		"* item":   "item",
		"-item":    "item",
		"1. item":  "item",
		"10.item":  "item",
		"- 2. x":   "x",
		"1. - x":   "- x",
		"1 item":   "1 item",
		"** bold":  "* bold",
		"plain":    "plain",
		"123":      "123",
	}
	for in, want := range tests {
		if got := sanitizeLine(in); got != want {
			t.Fatalf("sanitizeLine(%q) = %q want %q", in, got, want)
		}
	}
}
