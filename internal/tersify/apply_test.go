package tersify

import (
	"strings"
	"testing"

	"github.com/papercrane/cascade/internal/section"
)

const reqBody = "# Crusher\n\n" +
	"## Overview\n\n" +
	"Splits rocks on demand.\n\n" +
	"## Functional Requirements\n\n" +
	"- FR-7: accept rocks up to 20kg.\n" +
	"- FR-8: emit gravel metrics hourly.\n" +
	"- FR-9: shut down on overheat.\n\n" +
	"## Clarifications\n\n" +
	"- [NEEDS CLARIFICATION: metric retention?]\n"

func TestApplyRemoveFrom(t *testing.T) {
	t.Parallel()

	t.Run("removes only the named content", func(t *testing.T) {
		t.Parallel()
		out, rep := Apply(reqBody, []Action{
			ParseAction("Remove from Functional Requirements", "- FR-8: emit gravel metrics hourly."),
		})
		if len(rep.Applied) != 1 || len(rep.NotApplied) != 0 {
			t.Fatalf("report = %+v", rep)
		}
		if strings.Contains(out, "FR-8") {
			t.Error("FR-8 still present")
		}
		if !strings.Contains(out, "- FR-7: accept rocks up to 20kg.") ||
			!strings.Contains(out, "- FR-9: shut down on overheat.") {
			t.Errorf("sibling lines damaged:\n%s", out)
		}
		if !strings.Contains(out, "Splits rocks on demand.") {
			t.Error("unrelated section modified")
		}
	})

	t.Run("absent content is not applied, not an error", func(t *testing.T) {
		t.Parallel()
		out, rep := Apply(reqBody, []Action{
			ParseAction("Remove from Functional Requirements", "- FR-99: never existed."),
		})
		if len(rep.NotApplied) != 1 || len(rep.Applied) != 0 {
			t.Fatalf("report = %+v", rep)
		}
		if out != section.Parse(reqBody).Serialize() {
			t.Error("document changed despite no match")
		}
	})

	t.Run("absent section is not applied", func(t *testing.T) {
		t.Parallel()
		_, rep := Apply(reqBody, []Action{
			ParseAction("Remove from Ghost Section", "anything"),
		})
		if len(rep.NotApplied) != 1 {
			t.Fatalf("report = %+v", rep)
		}
	})

	t.Run("sub-heading scopes the removal", func(t *testing.T) {
		t.Parallel()
		body := "## API\n\n" +
			"### Request\n\n- shared field name\n\n" +
			"### Response\n\n- shared field name\n"
		out, rep := Apply(body, []Action{
			ParseAction("Remove from API / Response", "- shared field name"),
		})
		if len(rep.Applied) != 1 {
			t.Fatalf("report = %+v", rep)
		}
		doc := section.Parse(out)
		reqPart, _ := doc.SubBody("API", "Request")
		respPart, _ := doc.SubBody("API", "Response")
		if !strings.Contains(reqPart, "shared field name") {
			t.Error("removal leaked into the Request sub-heading")
		}
		if strings.Contains(respPart, "shared field name") {
			t.Error("targeted content not removed")
		}
	})
}

func TestApplyAddTo(t *testing.T) {
	t.Parallel()

	t.Run("appends to existing section", func(t *testing.T) {
		t.Parallel()
		out, rep := Apply(reqBody, []Action{
			ParseAction("Add to Clarifications", "- [NEEDS CLARIFICATION: who reads the metrics?]"),
		})
		if len(rep.Applied) != 1 {
			t.Fatalf("report = %+v", rep)
		}
		doc := section.Parse(out)
		sec, ok := doc.Find("Clarifications")
		if !ok {
			t.Fatal("Clarifications section missing")
		}
		if !strings.Contains(sec.Body, "metric retention?") || !strings.Contains(sec.Body, "who reads the metrics?") {
			t.Errorf("section body = %q", sec.Body)
		}
		if n := strings.Count(out, "## Clarifications"); n != 1 {
			t.Errorf("found %d Clarifications sections, want 1", n)
		}
	})

	t.Run("case mismatch creates canonical section", func(t *testing.T) {
		t.Parallel()
		body := "## Overview\n\ntext\n"
		out, _ := Apply(body, []Action{
			ParseAction("Add to Open Questions", "- needs an owner"),
		})
		doc := section.Parse(out)
		if _, ok := doc.Find("Open Questions"); ok {
			t.Error("alias heading created instead of canonical")
		}
		sec, ok := doc.Find("Clarifications")
		if !ok {
			t.Fatal("canonical Clarifications section not created")
		}
		if !strings.Contains(sec.Body, "needs an owner") {
			t.Errorf("section body = %q", sec.Body)
		}
	})

	t.Run("two aliases in one batch share a section", func(t *testing.T) {
		t.Parallel()
		body := "## Overview\n\ntext\n"
		out, rep := Apply(body, []Action{
			ParseAction("Add to Open Questions", "- first"),
			ParseAction("Add to Clarifications", "- second"),
		})
		if len(rep.Applied) != 2 {
			t.Fatalf("report = %+v", rep)
		}
		if n := strings.Count(out, "## Clarifications"); n != 1 {
			t.Errorf("found %d Clarifications sections, want 1:\n%s", n, out)
		}
		if !strings.Contains(out, "- first") || !strings.Contains(out, "- second") {
			t.Errorf("content missing:\n%s", out)
		}
	})

	t.Run("non-alias miss creates the named section", func(t *testing.T) {
		t.Parallel()
		out, _ := Apply(reqBody, []Action{
			ParseAction("Add to Deployment Notes", "- ships fridays"),
		})
		doc := section.Parse(out)
		if _, ok := doc.Find("Deployment Notes"); !ok {
			t.Error("named section not created")
		}
	})

	t.Run("missing sub-heading is created inside the primary", func(t *testing.T) {
		t.Parallel()
		out, _ := Apply("## API\n\nintro\n", []Action{
			ParseAction("Add to API / Error Codes", "- 429 on throttle"),
		})
		doc := section.Parse(out)
		body, ok := doc.SubBody("API", "Error Codes")
		if !ok {
			t.Fatalf("sub-heading not created:\n%s", out)
		}
		if !strings.Contains(body, "429 on throttle") {
			t.Errorf("sub-heading body = %q", body)
		}
	})
}

func TestApplyMixedBatch(t *testing.T) {
	t.Parallel()

	out, rep := Apply(reqBody, []Action{
		ParseAction("Remove from Functional Requirements", "- FR-8: emit gravel metrics hourly."),
		ParseAction("Frobnicate the Overview", "junk"),
		ParseAction("None", ""),
		ParseAction("Add to Clarifications", "- [NEEDS CLARIFICATION: new question]"),
	})

	if len(rep.Applied) != 2 {
		t.Errorf("Applied = %+v, want 2", rep.Applied)
	}
	if len(rep.Unknown) != 1 || rep.Unknown[0].Raw != "Frobnicate the Overview" {
		t.Errorf("Unknown = %+v", rep.Unknown)
	}
	if len(rep.NoOps) != 1 {
		t.Errorf("NoOps = %+v", rep.NoOps)
	}
	if strings.Contains(out, "FR-8") {
		t.Error("removal not applied")
	}
	if !strings.Contains(out, "new question") {
		t.Error("addition not applied")
	}
	if strings.Contains(out, "junk") {
		t.Error("unknown action mutated the document")
	}
}

func TestApplySequentialFold(t *testing.T) {
	t.Parallel()

	// The second removal targets content only present after the first one
	// has already run; order matters.
	body := "## Items\n\n- keep\n- drop one\n- drop two\n"
	out, rep := Apply(body, []Action{
		ParseAction("Remove from Items", "- drop one"),
		ParseAction("Remove from Items", "- drop two"),
	})
	if len(rep.Applied) != 2 {
		t.Fatalf("report = %+v", rep)
	}
	if strings.Contains(out, "drop") {
		t.Errorf("out = %q", out)
	}
	if !strings.Contains(out, "- keep") {
		t.Errorf("out = %q", out)
	}
}

func TestApplyUnknownOnlyLeavesDocumentAlone(t *testing.T) {
	t.Parallel()

	out, rep := Apply(reqBody, []Action{
		ParseAction("Rewrite everything", "nope"),
	})
	if len(rep.Unknown) != 1 || len(rep.Applied) != 0 {
		t.Fatalf("report = %+v", rep)
	}
	if out != section.Parse(reqBody).Serialize() {
		t.Error("unknown action mutated the document")
	}
}
