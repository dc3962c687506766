// Package serverstatus fetches the public marne.io server list for a title and
// extracts the status of one configured server from it.
//
// A server that is missing from the list is reported as offline. Transport
// failures, non-2xx responses and undecodable payloads are returned as
// *FetchError so the caller can log them and wait for the next tick.
package serverstatus
