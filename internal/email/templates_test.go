package email

import (
	"strings"
	"testing"
)

func TestAckHTMLGreeting(t *testing.T) {
	html := ackHTML("Ada")
	if !strings.Contains(html, "Hi Ada,") {
		t.Error("ack email should greet the applicant by name")
	}
	if !strings.Contains(html, "photos of your home") {
		t.Error("ack email should ask for home photos")
	}
}

func TestAckHTMLGenericGreeting(t *testing.T) {
	html := ackHTML("")
	if !strings.Contains(html, "Hi there,") {
		t.Error("missing name should fall back to a generic greeting")
	}
}

func TestApprovalHTML(t *testing.T) {
	html := approvalHTML("Grace")
	if !strings.Contains(html, "Hi Grace,") {
		t.Error("approval email should greet the applicant by name")
	}
	if !strings.Contains(html, "accepted into SwapSpace") {
		t.Error("approval email should state acceptance")
	}
	if !strings.Contains(html, "app.swap-space.com/signup") {
		t.Error("approval email should link to signup")
	}
}
