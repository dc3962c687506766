// Package presence turns a ServerStatus into what people see on the chat
// platform: the "Playing ..." activity line and, optionally, a bot avatar
// rendered from the current map artwork with the game mode code on top.
//
// The activity is pushed on every call, identical or not. Avatar uploads only
// happen when the map or mode changed, are rate limited, and a map artwork URL
// that keeps failing is skipped for a while by a circuit breaker.
package presence
