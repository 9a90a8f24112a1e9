// Package sink persists extracted records to the configured artifacts.
package sink

import (
	"context"
	"errors"

	"dromcrawl/pkg/types"
)

// Sink writes the full record list of one crawl run.
type Sink interface {
	Write(ctx context.Context, records []types.Record) error
	Close() error
}

// Pipeline fans records out to every configured sink.
type Pipeline struct {
	sinks []Sink
}

// NewPipeline constructs a pipeline over the given sinks.
func NewPipeline(sinks ...Sink) *Pipeline {
	return &Pipeline{sinks: sinks}
}

// Write delivers the records to each sink; all errors are joined so one
// failing sink does not hide another's.
func (p *Pipeline) Write(ctx context.Context, records []types.Record) error {
	var err error
	for _, s := range p.sinks {
		if werr := s.Write(ctx, records); werr != nil {
			err = errors.Join(err, werr)
		}
	}
	return err
}

// Close releases resources owned by the sinks.
func (p *Pipeline) Close() error {
	var err error
	for _, s := range p.sinks {
		if cerr := s.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}
	return err
}
