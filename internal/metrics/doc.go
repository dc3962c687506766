// Package metrics records the outcome of every poll tick.
//
// Events are sent over a buffered channel to a collector goroutine so the
// tick loop never blocks on bookkeeping:
//
//	collector := metrics.NewCollector(64, logger)
//	collector.Start(ctx)
//
//	collector.EventChannel() <- metrics.Event{
//		Type:     metrics.EventTickCompleted,
//		Duration: 180 * time.Millisecond,
//	}
//
//	snapshot := collector.Snapshot()
//
// The same events feed a private Prometheus registry exposed by
// Collector.Handler. On shutdown queued events are drained before the
// collector goroutine exits.
package metrics
