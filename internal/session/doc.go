// Package session keeps per-browser dashboard state in memory.
package session
