package engine

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/chazu/shadecut/pkg/shade"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms design script source before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: bowl-depth -> bowl_depth
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// keys returns the keyword names in sorted order.
func (a kwArgs) keys() []string {
	names := make([]string, 0, len(a.kw))
	for k := range a.kw {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts a whole number. Floats are accepted when integral.
func toInt(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return int(v.Val), nil
	case *zygo.SexpFloat:
		if v.Val == math.Trunc(v.Val) && !math.IsInf(v.Val, 0) {
			return int(v.Val), nil
		}
		return 0, fmt.Errorf("expected whole number, got %g", v.Val)
	}
	return 0, fmt.Errorf("expected whole number, got %T (%s)", s, s.SexpString(nil))
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// scriptState accumulates the parameters set by a script.
type scriptState struct {
	snap     shade.Snapshot
	glassSet bool
	shadeSet bool
}

// floatField binds a keyword to a float64 parameter.
type floatField struct {
	kw  string
	dst *float64
}

// applyKW assigns the keyword arguments of form to the bound fields. Any
// keyword without a binding, and any positional argument, is an error.
func applyKW(form string, args []zygo.Sexp, floats []floatField, ints map[string]*int) error {
	pa := parseArgs(args)
	if len(pa.positional) > 0 {
		return fmt.Errorf("%s: unexpected positional argument %s", form, pa.positional[0].SexpString(nil))
	}

	bound := make(map[string]*float64, len(floats))
	for _, f := range floats {
		bound[f.kw] = f.dst
	}

	for _, k := range pa.keys() {
		v := pa.kw[k]
		if dst, ok := bound[k]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return fmt.Errorf("%s: %s: %w", form, k, err)
			}
			*dst = f
			continue
		}
		if dst, ok := ints[k]; ok {
			n, err := toInt(v)
			if err != nil {
				return fmt.Errorf("%s: %s: %w", form, k, err)
			}
			*dst = n
			continue
		}
		return fmt.Errorf("%s: unknown key :%s", form, k)
	}
	return nil
}

// registerBuiltins installs the design script builtins into a zygomys
// environment. The builtins write into st during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, st *scriptState) {

	// -----------------------------------------------------------------------
	// (glass :radius 2 :bowl-depth 6)
	// -----------------------------------------------------------------------
	env.AddFunction("glass", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if st.glassSet {
			return zygo.SexpNull, fmt.Errorf("glass: defined more than once")
		}
		g := st.snap.Glass
		err := applyKW("glass", args, []floatField{
			{"radius", &g.RimRadius},
			{"bowl-depth", &g.BowlDepth},
		}, nil)
		if err != nil {
			return zygo.SexpNull, err
		}
		st.snap.Glass = g
		st.glassSet = true
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (shade :bottom 4 :top 1 :height 5 :sides 5)
	// -----------------------------------------------------------------------
	env.AddFunction("shade", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if st.shadeSet {
			return zygo.SexpNull, fmt.Errorf("shade: defined more than once")
		}
		s := st.snap.Shade
		err := applyKW("shade", args, []floatField{
			{"bottom", &s.BottomRadius},
			{"top", &s.TopRadius},
			{"height", &s.Height},
		}, map[string]*int{"sides": &s.Sides})
		if err != nil {
			return zygo.SexpNull, err
		}
		st.snap.Shade = s
		st.shadeSet = true
		return zygo.SexpNull, nil
	})
}
