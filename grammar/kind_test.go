package grammar

import (
	"errors"
	"regexp"
	"testing"
)

// matchWhole anchors a fragment and reports whether s matches it entirely.
func matchWhole(t *testing.T, pattern, s string) bool {
	t.Helper()
	re, err := regexp.Compile(`\A(?:` + pattern + `)\z`)
	if err != nil {
		t.Fatalf("compile %q: %v", pattern, err)
	}
	return re.MatchString(s)
}

func TestScalarConformance(t *testing.T) {
	cases := []struct {
		kind    Kind
		valid   []string
		invalid []string
	}{
		{Year, []string{"2023", "0001"}, []string{"20233", "202", "-2023", ""}},
		{Integer, []string{"0", "42", "-7", "007"}, []string{"1.5", "", "-", "abc"}},
		{IntegerComma, []string{"1,234,567", "1234567", "987", "-1,234", "12,3"}, []string{"", ",123", "1,", "abc"}},
		{Number, []string{"-12.50", "3", "3.1", "0.25", "-7"}, []string{"12.345", ".5", "3.", ""}},
		{NullableInteger, []string{"12", "-3", "null"}, []string{"NULL", "nil", ""}},
		{NullableNumber, []string{"-12.50", "null", "7"}, []string{"12.345", "none", ""}},
		{String, []string{`"hello"`, `"with \" escape"`, `"a"`}, []string{`""`, `"unterminated`, `plain`, `"has " quote"`}},
		{Boolean, []string{"true", "false"}, []string{"True", "yes", ""}},
		{Null, []string{"null"}, []string{"nil", "NULL", ""}},
	}

	for _, tc := range cases {
		t.Run(tc.kind.String(), func(t *testing.T) {
			pattern, err := tc.kind.Pattern()
			if err != nil {
				t.Fatalf("Pattern: %v", err)
			}
			for _, s := range tc.valid {
				if !matchWhole(t, pattern, s) {
					t.Errorf("%q should match %q", s, pattern)
				}
			}
			for _, s := range tc.invalid {
				if matchWhole(t, pattern, s) {
					t.Errorf("%q should not match %q", s, pattern)
				}
			}
		})
	}
}

func TestStringLengthCap(t *testing.T) {
	pattern, err := String.Pattern()
	if err != nil {
		t.Fatal(err)
	}

	body := make([]byte, DefaultStringMax)
	for i := range body {
		body[i] = 'x'
	}
	if !matchWhole(t, pattern, `"`+string(body)+`"`) {
		t.Errorf("string of %d characters should match", DefaultStringMax)
	}
	if matchWhole(t, pattern, `"`+string(body)+`x"`) {
		t.Errorf("string of %d characters should not match", DefaultStringMax+1)
	}
}

func TestParseKind(t *testing.T) {
	for name, want := range kindNames {
		got, err := ParseKind(name)
		if err != nil {
			t.Fatalf("ParseKind(%q): %v", name, err)
		}
		if got != want {
			t.Errorf("ParseKind(%q) = %v, want %v", name, got, want)
		}
	}

	if _, err := ParseKind("decimal"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("ParseKind(\"decimal\") = %v, want ErrUnknownKind", err)
	}
}
