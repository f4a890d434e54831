package domain

// Contact is a contact record as reported by the messaging session.
// Name is empty for contacts the session knows nothing about.
type Contact struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	IsMyContact bool   `json:"is_my_contact"`
	IsGroup     bool   `json:"is_group"`
}

// AuthorizedContact is a session contact that may receive generated replies.
type AuthorizedContact struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IsGroup bool   `json:"is_group"`
}

// Chat describes the conversation a message arrived in.
type Chat struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IsGroup bool   `json:"is_group"`
}

// MessageEvent is an inbound text message delivered by the messaging gateway.
type MessageEvent struct {
	ID       string `json:"id"`
	SenderID string `json:"sender_id" binding:"required"`
	Body     string `json:"body"`
	Chat     Chat   `json:"chat"`
}

// ReplyChatID returns the chat a reply should be delivered to.
// Falls back to the sender when the gateway did not report a chat ID.
func (m MessageEvent) ReplyChatID() string {
	if m.Chat.ID != "" {
		return m.Chat.ID
	}
	return m.SenderID
}
