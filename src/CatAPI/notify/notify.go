// Package notify delivers mission lifecycle events to Redis and Discord.
package notify

import (
	"context"
	"errors"

	"github.com/stake-plus/spycat-agency/src/CatAPI/agency"
)

// Multi fans an event out to every publisher and joins their errors.
type Multi []agency.EventPublisher

func (m Multi) Publish(ctx context.Context, ev agency.Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
