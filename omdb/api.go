package omdb

import (
	"context"
)

// Sender performs one request against the service
type Sender interface {
	// Send issues the request described by params and returns the decoded body
	Send(ctx context.Context, params Params) (RawResponse, error)
}

// Querier runs complete queries, pagination included
type Querier interface {
	// Query returns the records matching q
	Query(ctx context.Context, q Query) ([]Record, error)
}

var (
	_ Sender  = (*Client)(nil)
	_ Querier = (*Service)(nil)
)
