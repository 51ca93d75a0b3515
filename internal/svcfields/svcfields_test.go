package svcfields

import "testing"

func TestSubsystem(t *testing.T) {
	t.Parallel()
	cases := []struct {
		parts []string
		want  string
	}{
		{parts: nil, want: ""},
		{parts: []string{"client", "gateway"}, want: "client.gateway"},
		{parts: []string{" mcp. ", "", ".tools"}, want: "mcp.tools"},
	}
	for _, tc := range cases {
		if got := Subsystem(tc.parts...); got != tc.want {
			t.Fatalf("Subsystem(%q) = %q, want %q", tc.parts, got, tc.want)
		}
	}
}

func TestWithSubsystemNilLogger(t *testing.T) {
	t.Parallel()
	if WithSubsystem(nil, "client") == nil {
		t.Fatalf("expected a usable logger")
	}
}
