package google

import (
	"strings"
	"testing"
)

func TestBuildRFC822(t *testing.T) {
	raw := buildRFC822("anna@example.com", "Roof repair", "Work Items:\n- the roof needs repair\n")

	header, body, found := strings.Cut(raw, "\r\n\r\n")
	if !found {
		t.Fatal("missing blank line between header and body")
	}
	if !strings.Contains(header, "To: anna@example.com") {
		t.Errorf("header missing To: %q", header)
	}
	if !strings.Contains(header, "Subject: Roof repair") {
		t.Errorf("header missing Subject: %q", header)
	}
	if !strings.HasPrefix(body, "Work Items:") {
		t.Errorf("body = %q", body)
	}
}
