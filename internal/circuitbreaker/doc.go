// Package circuitbreaker stops the bot from hammering a remote asset that keeps
// failing, such as a map artwork URL that has gone away.
//
// A breaker has three states:
//
//   - CLOSED: calls pass through
//   - OPEN: the asset failed too often, calls are skipped
//   - HALF-OPEN: the reset timeout elapsed, one probe call is let through
//
// Usage:
//
//	registry := circuitbreaker.NewRegistry(3, 30*time.Minute)
//	err := registry.Get(imageURL).Do(func() error {
//	    return download(imageURL)
//	})
//	if errors.Is(err, circuitbreaker.ErrOpen) {
//	    // skipped
//	}
package circuitbreaker
