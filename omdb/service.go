package omdb

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/s0up4200/omdbq/credentials"
)

// Service is the entry point for lookups and searches. It keeps no state
// between calls.
type Service struct {
	builder    *Builder
	sender     Sender
	normalizer *Normalizer
	aggregator *Aggregator
}

// NewService wires the query pipeline from its parts
func NewService(builder *Builder, sender Sender, normalizer *Normalizer, aggregator *Aggregator) *Service {
	return &Service{
		builder:    builder,
		sender:     sender,
		normalizer: normalizer,
		aggregator: aggregator,
	}
}

// ServiceOptions holds the settings New needs beyond the credential
type ServiceOptions struct {
	Verbose     bool
	Concurrency int
	Client      []Option
}

// New builds a Service talking to the real endpoint
func New(creds credentials.Provider, logger zerolog.Logger, opts ServiceOptions) (*Service, error) {
	client, err := NewClient(logger, opts.Client...)
	if err != nil {
		return nil, err
	}

	return NewService(
		NewBuilder(creds, logger, WithVerbose(opts.Verbose)),
		client,
		NewNormalizer(logger),
		NewAggregator(client, logger, WithConcurrency(opts.Concurrency)),
	), nil
}

// Query runs q and returns its records. Lookups return one record; searches
// return every match unless a page was pinned. Errors from the pipeline are
// returned unchanged.
func (s *Service) Query(ctx context.Context, q Query) ([]Record, error) {
	params, err := s.builder.Build(ctx, q)
	if err != nil {
		return nil, err
	}

	raw, err := s.sender.Send(ctx, params)
	if err != nil {
		return nil, err
	}

	if q.Mode == ModeSearch {
		return s.aggregator.Aggregate(ctx, raw, params, q.PageExplicit())
	}

	return []Record{s.normalizer.Normalize(raw)}, nil
}
