package policy

import (
	"strings"
	"testing"
)

func TestRedactPII(t *testing.T) {
	input := "Email me at sam@example.com or +1 (555) 123-9876."
	out, changed := RedactPII(input)
	if !changed {
		t.Fatalf("changed = false, want true")
	}
	for _, marker := range []string{"[REDACTED_EMAIL]", "[REDACTED_PHONE]"} {
		if !strings.Contains(out, marker) {
			t.Fatalf("output missing marker %q: %q", marker, out)
		}
	}
}

func TestRedactorText(t *testing.T) {
	script := `{"systemPrompt":"The caller's phone number is: +15551234567"}`

	if got := (Redactor{}).Text(script); got != script {
		t.Fatalf("disabled Text() = %q, want unchanged", got)
	}
	got := Redactor{Enabled: true}.Text(script)
	if strings.Contains(got, "5551234567") {
		t.Fatalf("enabled Text() leaked number: %q", got)
	}
}

func TestRedactorCaller(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"+15551234567", "********4567"},
		{"123", "***"},
		{"", ""},
	}
	r := Redactor{Enabled: true}
	for _, tc := range cases {
		if got := r.Caller(tc.in); got != tc.want {
			t.Fatalf("Caller(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
	if got := (Redactor{}).Caller("+15551234567"); got != "+15551234567" {
		t.Fatalf("disabled Caller() = %q", got)
	}
}
