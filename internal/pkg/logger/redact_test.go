package logger

import "testing"

func TestRedactEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"john.doe@example.com", "jo***@example.com"},
		{"ab@example.com", "***@example.com"},
		{"x@example.com", "***@example.com"},
		{"not-an-email", "***@***"},
		{"two@ats@here", "***@***"},
	}

	for _, tc := range cases {
		if got := RedactEmail(tc.in); got != tc.want {
			t.Errorf("RedactEmail(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRedactPIIValueByKey(t *testing.T) {
	got := redactPIIValue("contactEmail", "jane.roe@example.com")
	if got != "ja***@example.com" {
		t.Errorf("expected redacted email, got %q", got)
	}
}

func TestRedactPIIValueEmbeddedEmail(t *testing.T) {
	got := redactPIIValue("detail", "delivery failed for bob.smith@example.com today")
	want := "delivery failed for bo***@example.com today"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
