// Package rules evaluates the CEL formulas that tune the battle AI.
package rules

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"

	"github.com/suderio/warband/internal/engine"
)

// DefaultPriority ranks unwarded targets above warded ones and, among equals,
// the weakest first.
const DefaultPriority = "(ward ? 0 : 100000) - target.hp"

// Registry manages the CEL environment and caches compiled programs.
type Registry struct {
	env   *cel.Env
	progs map[string]cel.Program
}

// NewRegistry initializes the CEL environment with battle variables and a
// roll(min, max) function backed by rnd.
func NewRegistry(rnd engine.Random) (*Registry, error) {
	env, err := cel.NewEnv(
		cel.Variable("attacker", cel.MapType(cel.StringType, cel.AnyType)),
		cel.Variable("target", cel.MapType(cel.StringType, cel.AnyType)),
		cel.Variable("ward", cel.BoolType),
		cel.Variable("round", cel.IntType),

		cel.Function("roll",
			cel.Overload("roll_int_int",
				[]*cel.Type{cel.IntType, cel.IntType},
				cel.IntType,
				cel.BinaryBinding(func(lo, hi ref.Val) ref.Val {
					min, max := int(lo.(types.Int)), int(hi.(types.Int))
					if rnd == nil {
						return types.Int(min)
					}
					return types.Int(rnd.Uniform(min, max))
				}),
			),
		),
	)
	if err != nil {
		return nil, err
	}
	return &Registry{env: env, progs: make(map[string]cel.Program)}, nil
}

// Compile checks an expression and caches its program.
func (r *Registry) Compile(expression string) (cel.Program, error) {
	if prog, ok := r.progs[expression]; ok {
		return prog, nil
	}
	ast, iss := r.env.Compile(expression)
	if iss.Err() != nil {
		return nil, iss.Err()
	}
	prog, err := r.env.Program(ast)
	if err != nil {
		return nil, err
	}
	r.progs[expression] = prog
	return prog, nil
}

// Eval executes a CEL expression against the provided context.
func (r *Registry) Eval(expression string, context map[string]any) (any, error) {
	prog, err := r.Compile(expression)
	if err != nil {
		return nil, err
	}
	out, _, err := prog.Eval(context)
	if err != nil {
		return nil, err
	}
	return out.Value(), nil
}

// EvalInt evaluates a numeric expression. Doubles are truncated.
func (r *Registry) EvalInt(expression string, context map[string]any) (int, error) {
	out, err := r.Eval(expression, context)
	if err != nil {
		return 0, err
	}
	switch v := out.(type) {
	case int64:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float64:
		return int(v), nil
	}
	return 0, fmt.Errorf("expression %q is not numeric (got %T)", expression, out)
}
