package domain

import "time"

// ReplyStatus represents the outcome of handling one inbound message.
// Values include ReplyStatusReplied, ReplyStatusNotAQuote, ReplyStatusUnauthorized and ReplyStatusFailed.
type ReplyStatus string

const (
	ReplyStatusReplied      ReplyStatus = "replied"
	ReplyStatusNotAQuote    ReplyStatus = "not_a_quote"
	ReplyStatusUnauthorized ReplyStatus = "unauthorized"
	ReplyStatusFailed       ReplyStatus = "failed"
)

// ReplyRecord is the history entry written for every quote candidate the bot handled.
// The rendered image itself is never stored.
type ReplyRecord struct {
	ID          string      `gorm:"type:text;primaryKey" json:"id"`
	MessageID   string      `gorm:"type:text;index" json:"message_id,omitempty"`
	SenderID    string      `gorm:"type:text;not null;index:idx_replies_sender" json:"sender_id"`
	ChatName    string      `gorm:"type:text" json:"chat_name"`
	IsGroup     bool        `json:"is_group"`
	Sentence    string      `gorm:"type:text" json:"sentence"`
	Background  string      `gorm:"type:text" json:"background,omitempty"`
	Author      string      `gorm:"type:text" json:"author,omitempty"`
	Status      ReplyStatus `gorm:"type:text;index:idx_replies_status" json:"status"`
	Error       string      `json:"error,omitempty"`
	PayloadSize int         `json:"payload_size"`
	DurationMs  int64       `json:"duration_ms"`
	CreatedAt   time.Time   `json:"created_at"`
}

// TableName returns the database table name for ReplyRecord.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (ReplyRecord) TableName() string {
	return "replies"
}

// ReplyStats aggregates reply history by status.
type ReplyStats struct {
	Total    int64                 `json:"total"`
	ByStatus map[ReplyStatus]int64 `json:"by_status"`
}
