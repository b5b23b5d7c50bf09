// Package omdb provides a client for the OMDb movie-information API.
//
// Responses from the service differ by query mode and media type. This package
// reconciles them into one Record shape.
//
// # Architecture
//
//   - Builder: turns a Query into request parameters, credential included
//   - Client: performs one GET and classifies the result
//   - Normalizer: coerces a lookup payload into a Record
//   - Aggregator: walks every page of a search and merges the results
//   - Service: picks lookup or search behaviour and drives the others
//
// # Usage
//
//	logger := zerolog.New(os.Stderr)
//	svc, err := omdb.New(credentials.Env("OMDB_API_KEY"), logger, omdb.ServiceOptions{})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	records, err := svc.Query(ctx, omdb.Query{Mode: omdb.ModeSearch, Value: "Batman"})
//
// # Error Handling
//
// Failures terminate the query; nothing is retried and no partial result is returned.
//
//   - InvalidModeError: unsupported mode, raised before any request
//   - TransportError: the HTTP status was outside 2xx
//   - RemoteRejectionError: the service answered with Response=False
//
// Fields that cannot be coerced do not fail a query. They are left missing and
// listed in Record.Warnings as FieldCoercionWarning values.
package omdb
