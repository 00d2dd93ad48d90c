package section

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"crlf to lf", "a\r\nb\r\n", "a\nb\n"},
		{"lone cr", "a\rb", "a\nb"},
		{"trailing spaces trimmed", "a   \nb\t\n", "a\nb\n"},
		{"blank runs collapse to two", "a\n\n\n\n\nb", "a\n\n\nb"},
		{"two blanks kept", "a\n\n\nb", "a\n\n\nb"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("preamble and sections", func(t *testing.T) {
		t.Parallel()
		doc := Parse("# Title\n\n## Overview\n\nBody text.\n\n## Details\n\nMore.")
		if doc.PreambleText != "# Title\n" {
			t.Errorf("PreambleText = %q", doc.PreambleText)
		}
		want := []string{"Overview", "Details"}
		got := doc.Headings()
		if strings.Join(got, "|") != strings.Join(want, "|") {
			t.Errorf("Headings() = %v, want %v", got, want)
		}
	})

	t.Run("no headings becomes preamble", func(t *testing.T) {
		t.Parallel()
		doc := Parse("just prose\nwith no structure")
		if len(doc.Sections) != 0 {
			t.Fatalf("Sections = %v, want none", doc.Sections)
		}
		if doc.PreambleText != "just prose\nwith no structure" {
			t.Errorf("PreambleText = %q", doc.PreambleText)
		}
	})

	t.Run("deeper headings stay in body", func(t *testing.T) {
		t.Parallel()
		doc := Parse("## Top\n\n### Nested\n\ncontent")
		sec, ok := doc.Find("Top")
		if !ok {
			t.Fatal("Top section not found")
		}
		if !strings.Contains(sec.Body, "### Nested") {
			t.Errorf("nested heading missing from body: %q", sec.Body)
		}
		if _, ok := doc.Find("Nested"); ok {
			t.Error("### heading should not be a top-level section")
		}
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()
		doc := Parse("")
		if doc.PreambleText != "" || len(doc.Sections) != 0 {
			t.Errorf("Parse(\"\") = %+v, want empty doc", doc)
		}
	})
}

func TestSerializeRoundTrip(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"# Title\n\n## A\n\nbody a\n\n## B\n\nbody b",
		"## A\n## B",
		"## Only",
		"no headings at all",
		"",
		"## A\n\n### Sub\n\nnested body",
	}
	for _, in := range inputs {
		in := in
		t.Run(in, func(t *testing.T) {
			t.Parallel()
			norm := Normalize(in)
			got := Parse(in).Serialize()
			if got != norm {
				t.Errorf("round trip mismatch:\n in: %q\nout: %q", norm, got)
			}
		})
	}
}

func TestFind(t *testing.T) {
	t.Parallel()
	doc := Parse("## Overview\n\ntext\n\n## Details\n\nmore")

	if _, ok := doc.Find("Overview"); !ok {
		t.Error("Overview not found")
	}
	// Lookup is case-sensitive.
	if _, ok := doc.Find("overview"); ok {
		t.Error("lowercase lookup should miss")
	}
	if _, ok := doc.Find("Absent"); ok {
		t.Error("Absent should miss")
	}
}

func TestSubRange(t *testing.T) {
	t.Parallel()

	body := "intro\n\n### First\n\nalpha\n\n### Second\n\nbeta"

	t.Run("middle block ends at next sub-heading", func(t *testing.T) {
		t.Parallel()
		start, end, ok := SubRange(body, "First")
		if !ok {
			t.Fatal("First not found")
		}
		block := body[start:end]
		if !strings.HasPrefix(block, "### First") {
			t.Errorf("block = %q, want prefix \"### First\"", block)
		}
		if strings.Contains(block, "### Second") {
			t.Errorf("block leaked into next sub-heading: %q", block)
		}
		if !strings.Contains(block, "alpha") {
			t.Errorf("block missing content: %q", block)
		}
	})

	t.Run("last block runs to end", func(t *testing.T) {
		t.Parallel()
		start, end, ok := SubRange(body, "Second")
		if !ok {
			t.Fatal("Second not found")
		}
		if body[start:end] != "### Second\n\nbeta" {
			t.Errorf("block = %q", body[start:end])
		}
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()
		if _, _, ok := SubRange(body, "Third"); ok {
			t.Error("found a sub-heading that does not exist")
		}
	})
}

func TestSubBody(t *testing.T) {
	t.Parallel()
	doc := Parse("## API\n\n### Request\n\nfields here\n\n### Response\n\ncodes here")

	body, ok := doc.SubBody("API", "Request")
	if !ok {
		t.Fatal("Request not found")
	}
	if !strings.Contains(body, "fields here") || strings.Contains(body, "### Response") {
		t.Errorf("SubBody = %q", body)
	}

	if _, ok := doc.SubBody("Missing", "Request"); ok {
		t.Error("missing primary section should miss")
	}
}

func TestAppendSection(t *testing.T) {
	t.Parallel()
	doc := Parse("## A\n\nbody")
	doc.AppendSection("Clarifications", "\n- open question\n")

	sec, ok := doc.Find("Clarifications")
	if !ok {
		t.Fatal("appended section not found")
	}
	if sec.Level != 2 {
		t.Errorf("Level = %d, want 2", sec.Level)
	}
	if got := doc.Headings(); got[len(got)-1] != "Clarifications" {
		t.Errorf("appended section not last: %v", got)
	}
}
