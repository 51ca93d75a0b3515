package correlation

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/xid"
)

func TestNormalize(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "abc-123", want: "abc-123", ok: true},
		{in: "  xyz  ", want: "xyz", ok: true},
		{in: ""},
		{in: "   "},
		{in: strings.Repeat("a", MaxIDLength+1)},
		{in: "bad\x01suffix"},
	}
	for _, tc := range cases {
		got, ok := Normalize(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("Normalize(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestWithAndID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	if ID(ctx) != "" {
		t.Fatalf("expected no id on a bare context")
	}
	if ID(With(ctx, "\x01")) != "" {
		t.Fatalf("invalid id must be ignored")
	}
	ctx = With(ctx, " call-1 ")
	if got := ID(ctx); got != "call-1" {
		t.Fatalf("ID = %q, want call-1", got)
	}
}

func TestEnsureKeepsExistingID(t *testing.T) {
	t.Parallel()
	ctx := With(context.Background(), "keep-me")
	got, id := Ensure(ctx)
	if id != "keep-me" || ID(got) != "keep-me" {
		t.Fatalf("Ensure replaced an existing id: %q", id)
	}
	fresh, id := Ensure(context.Background())
	if id == "" || ID(fresh) != id {
		t.Fatalf("Ensure did not attach a generated id")
	}
	if _, err := xid.FromString(id); err != nil {
		t.Fatalf("generated id %q is not an xid: %v", id, err)
	}
}
