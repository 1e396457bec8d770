package events

import (
	"context"
	"errors"
)

// Fanout publishes every event to each of its publishers in order.
type Fanout []Publisher

// Publish sends the event to every publisher and joins their errors.
func (f Fanout) Publish(ctx context.Context, topic string, event any) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, topic, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every publisher and joins their errors.
func (f Fanout) Close() error {
	var errs []error
	for _, p := range f {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
