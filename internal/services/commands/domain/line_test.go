package domain

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseLine(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		line      string
		operation string
		refs      []Ref
	}{
		{
			name:      "single ref",
			line:      "UPDATE ! module:m1",
			operation: "UPDATE",
			refs:      []Ref{{Type: "module", ID: "m1"}},
		},
		{
			name:      "multiple refs",
			line:      "UPDATE ! page:42 >> module:html-7",
			operation: "UPDATE",
			refs:      []Ref{{Type: "page", ID: "42"}, {Type: "module", ID: "html-7"}},
		},
		{
			name:      "unknown ref type passes through",
			line:      "DELETE ! widget:abc",
			operation: "DELETE",
			refs:      []Ref{{Type: "widget", ID: "abc"}},
		},
		{
			name:      "ref id keeps embedded colons",
			line:      "UPDATE ! module:a:b",
			operation: "UPDATE",
			refs:      []Ref{{Type: "module", ID: "a:b"}},
		},
		{
			name:      "no refs",
			line:      "CLEAN",
			operation: "CLEAN",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			operation, refs, err := ParseLine(tc.line)
			if err != nil {
				t.Fatalf("parse line %q: %v", tc.line, err)
			}
			if operation != tc.operation {
				t.Fatalf("operation = %q, want %q", operation, tc.operation)
			}
			if !reflect.DeepEqual(refs, tc.refs) {
				t.Fatalf("refs = %v, want %v", refs, tc.refs)
			}
		})
	}
}

func TestParseLineMalformed(t *testing.T) {
	t.Parallel()

	for _, line := range []string{"", "   ", " ! module:m1", "UPDATE ! ", "UPDATE ! module:m1 >> ", "UPDATE ! nodelimiter"} {
		if _, _, err := ParseLine(line); !errors.Is(err, ErrMalformedLine) {
			t.Fatalf("parse %q: err = %v, want ErrMalformedLine", line, err)
		}
	}
}

func TestLineRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []struct {
		operation string
		refs      []Ref
	}{
		{operation: "UPDATE", refs: []Ref{{Type: "module", ID: "m1"}}},
		{operation: "DELETE", refs: []Ref{{Type: "page", ID: "12"}, {Type: "module", ID: "html-3"}}},
		{operation: "INSERT", refs: []Ref{{Type: "page", ID: "1"}, {Type: "module", ID: "a"}, {Type: "user", ID: "u-9"}}},
	}
	for _, tc := range cases {
		line := RenderLine(tc.operation, tc.refs)
		operation, refs, err := ParseLine(line)
		if err != nil {
			t.Fatalf("parse rendered line %q: %v", line, err)
		}
		if operation != tc.operation {
			t.Fatalf("operation = %q, want %q", operation, tc.operation)
		}
		if !reflect.DeepEqual(refs, tc.refs) {
			t.Fatalf("refs = %v, want %v", refs, tc.refs)
		}
	}
}

func TestRenderLineFormat(t *testing.T) {
	t.Parallel()

	line := RenderLine("UPDATE", []Ref{{Type: "page", ID: "42"}, {Type: "module", ID: "html-7"}})
	want := "UPDATE ! page:42 >> module:html-7"
	if line != want {
		t.Fatalf("line = %q, want %q", line, want)
	}
}
