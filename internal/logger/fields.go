package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Tracing fields, propagated through the context of one inbound message or request.
const (
	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldMessageID is the gateway message ID
	FieldMessageID = "message_id"

	// FieldSenderID is the session ID of the message sender
	FieldSenderID = "sender_id"

	// FieldChat is the chat display name
	FieldChat = "chat"

	// FieldComponent is the component/module name
	FieldComponent = "component"
)

// Metric fields, attached per log line through the Entry API.
const (
	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldCount is a generic count field
	FieldCount = "count"

	// FieldSize is the data size in bytes
	FieldSize = "size"

	// FieldStatus is the operation status
	FieldStatus = "status"
)
