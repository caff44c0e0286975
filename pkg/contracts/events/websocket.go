// Package events contains the WebSocket message contracts pushed to the
// dashboard pages.
package events

import (
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Dataset messages
	MessageTypeDatasetUpdated MessageType = "dataset:updated"

	// Analysis messages
	MessageTypeAnalysisComplete MessageType = "analysis:complete"
	MessageTypeReportGenerated  MessageType = "report:generated"

	// Connection messages
	MessageTypeConnect MessageType = "connect"
	MessageTypeError   MessageType = "error"
)

// Reasons carried by a dataset:updated message
const (
	ReasonLoaded       = "loaded"
	ReasonPreprocessed = "preprocessed"
	ReasonReset        = "reset"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	ID        string      `json:"id,omitempty"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// WebSocketMessage represents a complete WebSocket message
type WebSocketMessage struct {
	BaseMessage
	Data interface{} `json:"data,omitempty"`
}

// New builds a message of type t stamped with the current time
func New(t MessageType, data interface{}) WebSocketMessage {
	return WebSocketMessage{
		BaseMessage: BaseMessage{Type: t, Timestamp: time.Now()},
		Data:        data,
	}
}

// DatasetUpdated tells open tabs to reload the dataset views
type DatasetUpdated struct {
	Reason string `json:"reason"`
	Source string `json:"source,omitempty"`
	Rows   int    `json:"rows"`
	Cols   int    `json:"cols"`
	Step   string `json:"step,omitempty"`
}

// AnalysisComplete announces a finished analysis
type AnalysisComplete struct {
	Kind       string  `json:"kind"`
	DurationMS float64 `json:"duration_ms"`
	Warning    string  `json:"warning,omitempty"`
}

// ReportGenerated announces a saved report
type ReportGenerated struct {
	Title    string `json:"title"`
	Filename string `json:"filename"`
	Bytes    int    `json:"bytes"`
}

// Connected is sent to a client right after it registers
type Connected struct {
	ClientID  string `json:"client_id"`
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

// ErrorData is the payload of an error message
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
