package filter

import (
	"context"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/s0up4200/omdbq/omdb"
)

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
	custom     map[string]any
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*exprCompiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) ExprCompilerOption {
	return func(c *exprCompiler) {
		if size > 0 {
			c.cache = newCompileCache(size)
		}
	}
}

// WithCustomFunctions adds custom helper functions
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *exprCompiler) {
		maps.Copy(c.helperFuncs, funcs)
		maps.Copy(c.custom, funcs)
	}
}

// NewExprCompiler creates a new expr-based filter compiler
func NewExprCompiler(opts ...ExprCompilerOption) Compiler {
	c := &exprCompiler{
		helperFuncs: compileEnvironment(),
		custom:      make(map[string]any),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type exprCompiler struct {
	helperFuncs map[string]any
	custom      map[string]any
	cache       *compileCache
}

// Compile compiles an expression into an executable filter
func (c *exprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	// record fields are only known at run time
	program, err := expr.Compile(expression,
		expr.Env(c.helperFuncs),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	f := &exprFilter{
		expression: expression,
		program:    program,
		custom:     c.custom,
	}

	if c.cache != nil {
		c.cache.Put(expression, f)
	}

	return f, nil
}

// Evaluate evaluates the filter against a record. Records that make the
// expression fail, for example by comparing a missing value, do not match.
func (f *exprFilter) Evaluate(record omdb.Record) bool {
	env := runtimeEnvironment(record)
	maps.Copy(env, f.custom)
	result, err := expr.Run(f.program, env)
	if err != nil {
		return false
	}
	matched, _ := result.(bool)
	return matched
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

// Apply returns the records matching f, in their original order
func Apply(ctx context.Context, f Filter, records []omdb.Record) ([]omdb.Record, error) {
	matched := make([]omdb.Record, 0, len(records))
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if f.Evaluate(rec) {
			matched = append(matched, rec)
		}
	}
	return matched, nil
}

// compileEnvironment declares every helper so calls are type checked.
// Record fields are left undeclared.
func compileEnvironment() map[string]any {
	env := make(map[string]any, 32)
	addStaticHelpers(env)
	addRecordHelpers(env, omdb.Record{})
	return env
}

// contains, startsWith and endsWith are expr operators, so the
// case-insensitive helpers use other names.
func addStaticHelpers(env map[string]any) {
	env["containsText"] = func(str, substr string) bool {
		return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
	}
	env["hasPrefix"] = func(str, prefix string) bool {
		return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
	}
	env["hasSuffix"] = func(str, suffix string) bool {
		return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
	}
	env["lower"] = strings.ToLower
	env["upper"] = strings.ToUpper
	env["yearsAgo"] = func(years int) int {
		return time.Now().Year() - years
	}
	env["now"] = time.Now
}

// runtimeEnvironment exposes the record fields plus record-bound helpers
func runtimeEnvironment(record omdb.Record) map[string]any {
	env := record.Map()
	addStaticHelpers(env)
	addRecordHelpers(env, record)
	return env
}

func addRecordHelpers(env map[string]any, record omdb.Record) {
	env["hasGenre"] = record.HasGenre
	env["hasActor"] = listMatcher(record.Actors)
	env["directedBy"] = listMatcher(record.Directors)
	env["writtenBy"] = listMatcher(record.Writers)
	env["hasLanguage"] = listMatcher(record.Languages)
	env["fromCountry"] = listMatcher(record.Countries)
	env["hasRating"] = func(source string) bool {
		_, ok := record.RatingFrom(source)
		return ok
	}
	env["rating"] = func(source string) string {
		v, _ := record.RatingFrom(source)
		return v
	}
	env["isMovie"] = record.Type == omdb.MediaTypeMovie
	env["isSeries"] = record.Type == omdb.MediaTypeSeries
	env["isGame"] = record.Type == omdb.MediaTypeGame
	env["isOngoing"] = strings.HasSuffix(record.DisplayYear, "-") || strings.HasSuffix(record.DisplayYear, "–")
}

func listMatcher(values []string) func(string) bool {
	lower := make([]string, len(values))
	for i, v := range values {
		lower[i] = strings.ToLower(v)
	}
	return func(name string) bool {
		return slices.Contains(lower, strings.ToLower(name))
	}
}
