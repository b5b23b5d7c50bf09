// Package credentials resolves the OMDb API key from the places a user may keep it.
//
// Components never read the key from ambient state. They receive a Provider and ask
// it for the key when they need one, which keeps them testable with a Static value.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNotFound is returned when a provider has no key to offer
var ErrNotFound = errors.New("api key not found")

// Provider supplies the API key used to authenticate requests
type Provider interface {
	APIKey(ctx context.Context) (string, error)
}

// Static returns a fixed key
type Static string

// APIKey implements Provider
func (s Static) APIKey(ctx context.Context) (string, error) {
	key := strings.TrimSpace(string(s))
	if key == "" {
		return "", ErrNotFound
	}
	return key, nil
}

// Env reads the key from an environment variable
type Env string

// APIKey implements Provider
func (e Env) APIKey(ctx context.Context) (string, error) {
	if e == "" {
		return "", ErrNotFound
	}
	key := strings.TrimSpace(os.Getenv(string(e)))
	if key == "" {
		return "", fmt.Errorf("environment variable %s: %w", string(e), ErrNotFound)
	}
	return key, nil
}

// File reads the key from the first line of a file
type File string

// APIKey implements Provider
func (f File) APIKey(ctx context.Context) (string, error) {
	if f == "" {
		return "", ErrNotFound
	}
	data, err := os.ReadFile(string(f))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("key file %s: %w", string(f), ErrNotFound)
		}
		return "", fmt.Errorf("failed to read key file %s: %w", string(f), err)
	}

	line, _, _ := strings.Cut(string(data), "\n")
	key := strings.TrimSpace(line)
	if key == "" {
		return "", fmt.Errorf("key file %s is empty: %w", string(f), ErrNotFound)
	}
	return key, nil
}

// Chain tries each provider in order and returns the first key found.
// Errors other than ErrNotFound stop the search.
type Chain []Provider

// APIKey implements Provider
func (c Chain) APIKey(ctx context.Context) (string, error) {
	for _, p := range c {
		if p == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}

		key, err := p.APIKey(ctx)
		if err == nil {
			return key, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return "", err
		}
	}
	return "", ErrNotFound
}
