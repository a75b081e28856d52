package address

import (
	"strings"
	"testing"

	apperrors "github.com/louisbranch/socialledger/internal/platform/errors"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain", input: "GALICE", want: "GALICE"},
		{name: "trims", input: "  GBOB\n", want: "GBOB"},
		{name: "case preserved", input: "gAbC", want: "gAbC"},
		{name: "unicode allowed", input: "ålice", want: "ålice"},
		{name: "max length", input: strings.Repeat("a", MaxLength), want: strings.Repeat("a", MaxLength)},
		{name: "empty", input: "   ", wantErr: true},
		{name: "too long", input: strings.Repeat("a", MaxLength+1), wantErr: true},
		{name: "inner space", input: "a b", wantErr: true},
		{name: "control", input: "a\x00b", wantErr: true},
		{name: "invalid utf8", input: "a\xffb", wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := Parse(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.input)
				}
				if apperrors.CodeOf(err) != apperrors.CodeInvalidArgument {
					t.Fatalf("code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeInvalidArgument)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse %q: %v", tc.input, err)
			}
			if string(got) != tc.want {
				t.Fatalf("Parse(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestMustParsePanicsOnInvalid(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	MustParse("")
}
