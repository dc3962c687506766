// Package logger builds the process-wide structured logger. Production
// environments get JSON lines, everything else gets human readable text.
package logger
