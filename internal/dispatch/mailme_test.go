package dispatch

import (
	"strings"
	"testing"
)

func TestSynthesizeSubject(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{
			"needs-to-be pattern",
			"the gutter needs to be replaced before winter",
			"the gutter needs to be replaced",
		},
		{
			"need-to-be plural",
			"the tiles need to be fixed, cost 200 euros",
			"the tiles need to be fixed",
		},
		{
			"first sentence fallback",
			"the roof needs repair, cost 500 euros",
			"the roof needs repair, cost 500 euros",
		},
		{
			"truncated to 100 chars",
			strings.Repeat("a", 150),
			strings.Repeat("a", 100),
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := synthesizeSubject(c.content); got != c.want {
				t.Errorf("synthesizeSubject(%q) = %q, want %q", c.content, got, c.want)
			}
		})
	}
}

func TestSegmentContent(t *testing.T) {
	body := segmentContent("the roof needs repair, cost 500 euros, call me later")

	if len(body.workItems) != 1 || body.workItems[0] != "the roof needs repair" {
		t.Errorf("workItems = %v", body.workItems)
	}
	if len(body.estimates) != 1 || body.estimates[0] != "cost 500 euros" {
		t.Errorf("estimates = %v", body.estimates)
	}
	if len(body.other) != 1 || body.other[0] != "call me later" {
		t.Errorf("other = %v", body.other)
	}
}

func TestSegmentContentWorkItemWins(t *testing.T) {
	// A segment matching both vocabularies lands in work items.
	body := segmentContent("we need two days for the job")
	if len(body.workItems) != 1 || len(body.estimates) != 0 {
		t.Errorf("expected work item, got %+v", body)
	}
}

func TestMailBodyRender(t *testing.T) {
	body := segmentContent("the roof needs repair, cost 500 euros")
	rendered := body.render()

	if !strings.Contains(rendered, "Work Items:") {
		t.Errorf("missing Work Items section:\n%s", rendered)
	}
	if !strings.Contains(rendered, "Estimates:") {
		t.Errorf("missing Estimates section:\n%s", rendered)
	}
	if !strings.Contains(rendered, "- cost 500 euros") {
		t.Errorf("missing cost line:\n%s", rendered)
	}
}

func TestMailMePrefixStripping(t *testing.T) {
	cases := []string{
		"mail me the roof needs repair",
		"Mail me: the roof needs repair",
		"  mail me, the roof needs repair",
	}
	for _, text := range cases {
		got := reMailMePrefix.ReplaceAllString(text, "")
		if !strings.HasPrefix(got, "the roof") {
			t.Errorf("prefix not stripped from %q: got %q", text, got)
		}
	}
}
