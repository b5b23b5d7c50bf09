package filter

import (
	"context"

	"github.com/s0up4200/omdbq/omdb"
)

// Filter defines the basic interface for record filters
type Filter interface {
	// Evaluate checks if a record matches the filter criteria
	Evaluate(record omdb.Record) bool
}

// CompiledFilter represents a pre-compiled filter ready for evaluation
type CompiledFilter interface {
	Filter

	// Expression returns the original filter expression
	Expression() string
}

// Compiler compiles filter expressions into executable filters
type Compiler interface {
	// Compile parses and compiles a filter expression
	Compile(expression string) (CompiledFilter, error)
}

// Applier narrows a record set down to the records a filter matches
type Applier interface {
	Apply(ctx context.Context, filter Filter, records []omdb.Record) ([]omdb.Record, error)
}
