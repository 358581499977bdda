// Package formula evaluates template-authored expressions without any
// dynamic code execution: a hand-written lexer and recursive-descent parser
// produce a tagged expression tree that a tree-walking evaluator runs.
// Formulas are data, not trusted code; nothing here reaches the host runtime.
package formula

import (
	"fmt"
	"sync"
)

// Lookup resolves a dotted path reference against the evaluation scope.
// ok=false means the path has no value.
type Lookup func(path string) (any, bool)

// Program is one compiled formula. Immutable once built, safe to share.
type Program struct {
	source string
	root   expr
}

// Evaluator compiles formulas and caches the compiled programs by exact
// source text. Construct one explicitly and share it; parallel resolution
// runs may hit the cache concurrently, and compiling the same formula twice
// is harmless because programs are immutable.
type Evaluator struct {
	programs sync.Map // source string -> *Program
}

func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Compile returns the cached program for the formula, parsing it on first
// use. Parse failures are returned as *ParseError and are not cached.
func (e *Evaluator) Compile(formula string) (*Program, error) {
	if cached, ok := e.programs.Load(formula); ok {
		return cached.(*Program), nil
	}
	prog, err := parse(formula)
	if err != nil {
		return nil, err
	}
	e.programs.Store(formula, prog)
	return prog, nil
}

// Evaluate compiles (or reuses) the formula and runs it against the lookup.
func (e *Evaluator) Evaluate(formula string, lookup Lookup) (any, error) {
	prog, err := e.Compile(formula)
	if err != nil {
		return nil, err
	}
	return prog.Run(lookup)
}

// Run executes the program. Reference misses, type errors and division by
// zero come back as *EvalError.
func (p *Program) Run(lookup Lookup) (any, error) {
	return evalExpr(p.root, p.source, lookup)
}

// ParseError reports malformed formula input at a byte position.
type ParseError struct {
	Formula string
	Pos     int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("formula %q: parse error at %d: %s", e.Formula, e.Pos, e.Message)
}

// EvalError reports a well-formed formula that failed at run time.
type EvalError struct {
	Formula string
	Message string
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("formula %q: %s", e.Formula, e.Message)
}
