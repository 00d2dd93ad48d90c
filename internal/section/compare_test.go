package section

import (
	"strings"
	"testing"
)

func headingsEqual(t *testing.T, got, want []string) {
	t.Helper()
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("changed sections = %v, want %v", got, want)
	}
}

func TestCompare(t *testing.T) {
	t.Parallel()

	t.Run("identical content is empty", func(t *testing.T) {
		t.Parallel()
		doc := "# T\n\n## A\n\nbody\n\n## B\n\nmore"
		cs := Compare(doc, doc)
		if !cs.Empty() {
			t.Errorf("Changed = %v, want empty", cs.Changed)
		}
		if !cs.FromBaseline {
			t.Error("FromBaseline = false, want true")
		}
	})

	t.Run("whitespace-only edits are empty", func(t *testing.T) {
		t.Parallel()
		cs := Compare("## A\n\nbody\n", "## A   \r\n\r\nbody\r\n")
		if !cs.Empty() {
			t.Errorf("Changed = %v, want empty", cs.Changed)
		}
	})

	t.Run("edited section reported", func(t *testing.T) {
		t.Parallel()
		cs := Compare("## A\n\nold\n\n## B\n\nsame", "## A\n\nnew\n\n## B\n\nsame")
		headingsEqual(t, cs.Changed, []string{"A"})
	})

	t.Run("added section reported in new order", func(t *testing.T) {
		t.Parallel()
		cs := Compare("## B\n\nsame", "## A\n\nfresh\n\n## B\n\nsame")
		headingsEqual(t, cs.Changed, []string{"A"})
	})

	t.Run("removed section reported last", func(t *testing.T) {
		t.Parallel()
		cs := Compare("## A\n\nedit me\n\n## Gone\n\nbye", "## A\n\nedited")
		headingsEqual(t, cs.Changed, []string{"A", "Gone"})
	})

	t.Run("preamble change uses pseudo-section", func(t *testing.T) {
		t.Parallel()
		cs := Compare("# Old Title\n\n## A\n\nbody", "# New Title\n\n## A\n\nbody")
		headingsEqual(t, cs.Changed, []string{Preamble})
	})

	t.Run("no headings degrades to preamble diff", func(t *testing.T) {
		t.Parallel()
		cs := Compare("plain prose", "different prose")
		headingsEqual(t, cs.Changed, []string{Preamble})
	})

	t.Run("summary names sections and line counts", func(t *testing.T) {
		t.Parallel()
		cs := Compare("## A\n\none\ntwo", "## A\n\none\nthree\nfour")
		if !strings.Contains(cs.Summary, "A") {
			t.Errorf("Summary = %q, want section name", cs.Summary)
		}
		if !strings.Contains(cs.Summary, "+2/-1") {
			t.Errorf("Summary = %q, want +2/-1", cs.Summary)
		}
	})
}

func TestFullChange(t *testing.T) {
	t.Parallel()

	t.Run("every section changed", func(t *testing.T) {
		t.Parallel()
		cs := FullChange("# T\n\n## A\n\nx\n\n## B\n\ny")
		headingsEqual(t, cs.Changed, []string{Preamble, "A", "B"})
		if cs.FromBaseline {
			t.Error("FromBaseline = true, want false")
		}
	})

	t.Run("never empty", func(t *testing.T) {
		t.Parallel()
		cs := FullChange("")
		if cs.Empty() {
			t.Error("FullChange of empty content must still report a change")
		}
	})
}

func TestLineDelta(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		old, new    string
		added, rmvd int
	}{
		{"no change", "a\nb", "a\nb", 0, 0},
		{"pure addition", "a", "a\nb\nc", 2, 0},
		{"pure removal", "a\nb\nc", "a", 0, 2},
		{"replacement", "a\nb", "a\nc", 1, 1},
		{"reorder is free", "a\nb", "b\na", 0, 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			added, removed := lineDelta(tt.old, tt.new)
			if added != tt.added || removed != tt.rmvd {
				t.Errorf("lineDelta = (+%d,-%d), want (+%d,-%d)", added, removed, tt.added, tt.rmvd)
			}
		})
	}
}
