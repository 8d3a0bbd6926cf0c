package grammar

import (
	"fmt"
	"regexp"
	"strings"
)

// identRe limits function and parameter names to what the call syntax can
// carry without escaping.
var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ParameterSpec is one parameter of a function signature.
type ParameterSpec struct {
	Name     string
	Type     TypeDescriptor
	Required bool
}

// FunctionSignature declares one callable function: a name and an ordered
// parameter list. Required parameters always appear, in order; optional
// parameters may each be present or absent, but any that are present keep
// their declared order.
type FunctionSignature struct {
	Name   string
	Params []ParameterSpec
}

// FunctionCatalog is an ordered list of function signatures with unique
// names.
type FunctionCatalog struct {
	funcs []FunctionSignature
	names map[string]bool
}

// NewCatalog builds a catalog, rejecting duplicate or invalid function
// names.
func NewCatalog(funcs ...FunctionSignature) (*FunctionCatalog, error) {
	c := &FunctionCatalog{names: make(map[string]bool)}
	for _, f := range funcs {
		if err := c.Add(f); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Add appends a signature to the catalog.
func (c *FunctionCatalog) Add(f FunctionSignature) error {
	if !identRe.MatchString(f.Name) {
		return fmt.Errorf("function name %q is not a valid identifier", f.Name)
	}
	if c.names == nil {
		c.names = make(map[string]bool)
	}
	if c.names[f.Name] {
		return fmt.Errorf("duplicate function %q", f.Name)
	}
	c.names[f.Name] = true
	c.funcs = append(c.funcs, f)
	return nil
}

// Functions returns the declared signatures in order.
func (c *FunctionCatalog) Functions() []FunctionSignature {
	return c.funcs
}

// Compile emits a regex matching exactly one well-formed call to exactly one
// declared function. Each function's pattern is wrapped in a non-capturing
// group and the alternatives joined with `|`: the generator is free to pick
// the function, but must conform fully to that function's call syntax once
// chosen.
func (c *FunctionCatalog) Compile() (string, error) {
	return c.compile(DefaultStringMax)
}

// CompileBounded is Compile with an explicit cap on string parameter length.
// Non-positive caps fall back to DefaultStringMax.
func (c *FunctionCatalog) CompileBounded(stringMax int) (string, error) {
	if stringMax <= 0 {
		stringMax = DefaultStringMax
	}
	return c.compile(stringMax)
}

func (c *FunctionCatalog) compile(stringMax int) (string, error) {
	if len(c.funcs) == 0 {
		return "", fmt.Errorf("function catalog: %w", ErrEmptySchema)
	}
	alts := make([]string, len(c.funcs))
	for i, f := range c.funcs {
		p, err := f.compile(stringMax)
		if err != nil {
			return "", err
		}
		alts[i] = "(?:" + p + ")"
	}
	return strings.Join(alts, "|"), nil
}

// Compile emits the call pattern for a single signature:
//
//	\[name\(req1=P1, req2=P2(, opt1=P3)?(, opt2=P4)?\)]
//
// Required parameters are positionally fixed. Each optional parameter's
// presence toggles independently, but present optionals keep declared order;
// the grammar does not support arbitrary reordering.
func (f FunctionSignature) Compile() (string, error) {
	return f.compile(DefaultStringMax)
}

func (f FunctionSignature) compile(stringMax int) (string, error) {
	if !identRe.MatchString(f.Name) {
		return "", fmt.Errorf("function name %q is not a valid identifier", f.Name)
	}

	var sb strings.Builder
	sb.WriteString(`\[`)
	sb.WriteString(f.Name)
	sb.WriteString(`\(`)

	nreq := 0
	for _, p := range f.Params {
		if !identRe.MatchString(p.Name) {
			return "", fmt.Errorf("%s: parameter name %q is not a valid identifier", f.Name, p.Name)
		}
		pat, err := compilePattern(p.Type, stringMax)
		if err != nil {
			return "", fmt.Errorf("%s: parameter %q: %w", f.Name, p.Name, err)
		}
		if p.Required {
			if nreq > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%s=%s", p.Name, pat)
			nreq++
		}
	}
	nopt := 0
	for _, p := range f.Params {
		if p.Required {
			continue
		}
		pat, err := compilePattern(p.Type, stringMax)
		if err != nil {
			return "", fmt.Errorf("%s: parameter %q: %w", f.Name, p.Name, err)
		}
		if nreq > 0 || nopt > 0 {
			fmt.Fprintf(&sb, `(, %s=%s)?`, p.Name, pat)
		} else {
			// First group overall, no comma to hang on.
			fmt.Fprintf(&sb, `(%s=%s)?`, p.Name, pat)
		}
		nopt++
	}

	sb.WriteString(`\)]`)
	return sb.String(), nil
}
