// Package websocket pushes dataset and analysis events to the open dashboard
// pages.
//
// A Hub owns the registered clients. Every client belongs to one session,
// so Publish reaches only the tabs of the session that caused the event,
// while Broadcast reaches every tab.
package websocket
