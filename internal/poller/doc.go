// Package poller runs the tick loop: fetch the server status, push it to the
// chat platform, wait for the next tick. Failures are logged, counted and
// reported but never stop the loop; the next tick is the retry.
package poller
