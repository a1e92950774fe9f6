package source

import (
	"context"
	"errors"
	"time"
)

// retry runs fn once plus up to retries more times while it fails with a
// temporary TransportError. The delay doubles after each failed attempt.
// With retries == 0 fn runs exactly once.
func retry(ctx context.Context, retries int, delay time.Duration, fn func() error) error {
	retries = max(retries, 0)
	var lastErr error

	for i := 0; i <= retries; i++ {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !isTemporary(err) {
			return err
		}

		if i < retries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

func isTemporary(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Temporary()
}
