package script

import (
	"fmt"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/kferr/habkit/pkg/habitat"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// preprocessSource transforms console Lisp source before handing it to
// zygomys:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal),
//     so keywords need no global symbol registration.
//  2. Kebab-case to underscore: add-module -> add_module, since zygomys
//     reads hyphens as subtraction.
//  3. ; line comments become // comments, zygomys's comment syntax.
//
// All transformations respect string literal boundaries.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Copy quoted string literals untouched.
		if b[i] == '"' || b[i] == '`' {
			quote := b[i]
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != quote {
				if quote == '"' && b[i] == '\\' && i+1 < len(b) {
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
		// ; comments -> // comments.
		if b[i] == ';' {
			result = append(result, '/', '/')
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// :keyword -> "__kw_keyword" (:= assignment is preserved).
		if b[i] == ':' && i+1 < len(b) && b[i+1] != '=' && isLetter(b[i+1]) {
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			result = append(result, '"')
			result = append(result, kwPrefix...)
			result = append(result, b[i+1:j]...)
			result = append(result, '"')
			i = j
			continue
		}
		// kebab-case -> underscore, only between identifier characters.
		if b[i] == '-' && i > 0 && i+1 < len(b) && isIdentChar(b[i-1]) && isLetter(b[i+1]) {
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

// ---------------------------------------------------------------------------
// Argument parsing helpers
// ---------------------------------------------------------------------------

// sexpVec3 wraps a habitat.Vec3 so positions can be passed between
// builtins.
type sexpVec3 struct {
	vec habitat.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %.1f %.1f %.1f)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// kwArgs holds the result of parsing a mixed positional+keyword argument
// list. Keywords are identified by the __kw_ prefix added during
// preprocessing.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		if str, ok := args[i].(*zygo.SexpStr); ok && len(str.S) > len(kwPrefix) && str.S[:len(kwPrefix)] == kwPrefix {
			name := str.S[len(kwPrefix):]
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				result.kw[name] = zygo.SexpNull
				i++
			}
			continue
		}
		result.positional = append(result.positional, args[i])
		i++
	}
	return result
}

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

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toModuleType extracts a module type from a keyword (:cube) or a plain
// string ("cube").
func toModuleType(s zygo.Sexp) (habitat.ModuleType, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected module type keyword, got %T (%s)", s, s.SexpString(nil))
	}
	name := str.S
	if len(name) > len(kwPrefix) && name[:len(kwPrefix)] == kwPrefix {
		name = name[len(kwPrefix):]
	}
	return habitat.ParseType(name)
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (habitat.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return habitat.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the console vocabulary into a zygomys
// environment. The builtins mutate the provided layout through the same
// operations the editor buttons use.
//
// Source must be preprocessed with preprocessSource() so :keyword tokens
// arrive as recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, l *habitat.Layout) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var v habitat.Vec3
		var err error
		if v.X, err = toFloat64(args[0]); err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		if v.Y, err = toFloat64(args[1]); err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		if v.Z, err = toFloat64(args[2]); err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}
		return &sexpVec3{vec: v}, nil
	})

	// -----------------------------------------------------------------------
	// (add-module :type :cube :label "Lab" :color "#fff" :size 2
	//             :at (vec3 1 0 -2))
	//
	// All keywords are optional; omitted fields keep the same randomized
	// defaults the Add button produces. Returns the new module's id.
	// -----------------------------------------------------------------------
	env.AddFunction("add_module", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		m := l.Add() // new module is now the selection
		if v, ok := pa.kw["type"]; ok {
			t, err := toModuleType(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("add-module: type: %w", err)
			}
			l.SetType(t)
			// Re-derive display defaults for the requested type.
			def := l.Palette().Def(t)
			l.SetLabel(def.Label)
			l.SetColor(def.Color)
		}
		if v, ok := pa.kw["label"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("add-module: label: %w", err)
			}
			l.SetLabel(s)
		}
		if v, ok := pa.kw["color"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("add-module: color: %w", err)
			}
			l.SetColor(s)
		}
		if v, ok := pa.kw["size"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("add-module: size: %w", err)
			}
			l.SetSize(f)
		}
		if v, ok := pa.kw["at"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("add-module: at: %w", err)
			}
			l.SetPosition(vec)
		}

		return &zygo.SexpStr{S: m.ID}, nil
	})

	// -----------------------------------------------------------------------
	// (remove-module)
	// -----------------------------------------------------------------------
	env.AddFunction("remove_module", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := l.DeleteSelected(); err != nil {
			return zygo.SexpNull, fmt.Errorf("remove-module: %w", err)
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (select-module "id")
	// -----------------------------------------------------------------------
	env.AddFunction("select_module", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("select-module requires a module id")
		}
		id, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("select-module: %w", err)
		}
		if !l.Select(id) {
			return zygo.SexpNull, fmt.Errorf("select-module: no module with id %q", id)
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// Field editors on the selected module:
	//   (set-label "Lab") (set-color "#E67E22") (set-size 1.5)
	//   (set-module-type :cone) (move-module (vec3 0 0 4))
	// Each returns true when a module was updated, false when nothing is
	// selected.
	// -----------------------------------------------------------------------
	env.AddFunction("set_label", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("set-label requires a string")
		}
		s, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("set-label: %w", err)
		}
		return &zygo.SexpBool{Val: l.SetLabel(s)}, nil
	})

	env.AddFunction("set_color", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("set-color requires a string")
		}
		s, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("set-color: %w", err)
		}
		return &zygo.SexpBool{Val: l.SetColor(s)}, nil
	})

	env.AddFunction("set_size", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("set-size requires a number")
		}
		f, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("set-size: %w", err)
		}
		return &zygo.SexpBool{Val: l.SetSize(f)}, nil
	})

	env.AddFunction("set_module_type", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("set-module-type requires a type keyword")
		}
		t, err := toModuleType(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("set-module-type: %w", err)
		}
		return &zygo.SexpBool{Val: l.SetType(t)}, nil
	})

	env.AddFunction("move_module", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("move-module requires a vec3")
		}
		vec, err := toVec3(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("move-module: %w", err)
		}
		return &zygo.SexpBool{Val: l.SetPosition(vec)}, nil
	})

	// -----------------------------------------------------------------------
	// (module-count)
	// -----------------------------------------------------------------------
	env.AddFunction("module_count", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return &zygo.SexpInt{Val: int64(l.Len())}, nil
	})
}
