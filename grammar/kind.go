package grammar

import "fmt"

// Kind is a scalar value kind. Each kind maps to exactly one regular
// expression fragment matching its textual representation.
type Kind int

const (
	Year Kind = iota
	Integer
	IntegerComma
	Number
	NullableInteger
	NullableNumber
	String
	Boolean
	Null
)

// DefaultStringMax bounds the length of generated string bodies. Constrained
// decoding needs every quantifier bounded, so strings carry an explicit cap.
const DefaultStringMax = 42

// stringBody matches one character of a JSON string body: anything except
// control characters, '"' and '\', or a backslash-escaped '"' or '\'.
const stringBody = `([^"\\\x00-\x1F\x7F-\x9F]|\\["\\])`

var kindNames = map[string]Kind{
	"year":             Year,
	"integer":          Integer,
	"integer_comma":    IntegerComma,
	"number":           Number,
	"nullable_integer": NullableInteger,
	"nullable_number":  NullableNumber,
	"string":           String,
	"boolean":          Boolean,
	"null":             Null,
}

// ParseKind resolves a scalar kind name from a schema file. Unknown names are
// a configuration error and fail immediately rather than falling back to a
// default pattern.
func ParseKind(name string) (Kind, error) {
	k, ok := kindNames[name]
	if !ok {
		return 0, fmt.Errorf("%w %q", ErrUnknownKind, name)
	}
	return k, nil
}

func (k Kind) String() string {
	for name, kk := range kindNames {
		if kk == k {
			return name
		}
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// pattern returns the regex fragment for the kind. The integer_comma
// alternation is deliberately permissive about digit grouping; see the
// package documentation.
func (k Kind) pattern(stringMax int) string {
	switch k {
	case Year:
		return `\d{4}`
	case Integer:
		return `-?\d+`
	case IntegerComma:
		// Permissive about digit grouping: 12,3 is accepted alongside
		// 1,234,567. Group repetition is bounded like every other
		// quantifier here.
		return `((-?\d+)(,\d+){0,4}|(\d+))`
	case Number:
		return `(-?\d+(?:\.\d{1,2})?)`
	case NullableInteger:
		return `(-?\d+|null)`
	case NullableNumber:
		return `((-?\d+(?:\.\d{1,2})?)|null)`
	case String:
		return fmt.Sprintf(`"%s{1,%d}"`, stringBody, stringMax)
	case Boolean:
		return `(true|false)`
	case Null:
		return `null`
	}
	return ""
}

// Pattern returns the regex fragment for the kind, using DefaultStringMax
// for string bodies.
func (k Kind) Pattern() (string, error) {
	p := k.pattern(DefaultStringMax)
	if p == "" {
		return "", fmt.Errorf("%w Kind(%d)", ErrUnknownKind, int(k))
	}
	return p, nil
}
