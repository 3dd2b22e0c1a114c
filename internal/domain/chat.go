package domain

import "time"

// Session represents a chat session scoped to a collection
type Session struct {
	ID           string    `json:"id"`
	CollectionID string    `json:"collection_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Reference is a resolved citation attached to an assistant message
type Reference struct {
	Text   string `json:"text"`
	Source Source `json:"source"`
}

// Message represents a chat message. Messages are immutable once created;
// a failed turn appends an error message rather than rewriting history.
type Message struct {
	ID           string      `json:"id"`
	SessionID    string      `json:"session_id"`
	Role         string      `json:"role"` // user, assistant
	Content      string      `json:"content"`
	References   []Reference `json:"references,omitempty"`
	IsStudyNotes bool        `json:"is_study_notes,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// TokenKind discriminates message tokens
type TokenKind string

const (
	TokenText      TokenKind = "text"
	TokenReference TokenKind = "reference"
)

// MessageToken is one element of the renderable form of an assistant
// message: either literal text or a resolved reference the UI turns
// into a clickable citation link.
type MessageToken struct {
	Kind      TokenKind  `json:"kind"`
	Text      string     `json:"text,omitempty"`
	Reference *Reference `json:"reference,omitempty"`
}

// ChatRequest is the request to send a chat message
type ChatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message" binding:"required"`
}

// ChatResponse is the response from a chat message
type ChatResponse struct {
	SessionID  string         `json:"session_id"`
	Answer     string         `json:"answer"`
	Tokens     []MessageToken `json:"tokens,omitempty"`
	References []Reference    `json:"references,omitempty"`
}

// StreamChunk represents a chunk in SSE stream
type StreamChunk struct {
	Type       string         `json:"type"` // thinking, content, references, done, error
	Content    string         `json:"content,omitempty"`
	Tokens     []MessageToken `json:"tokens,omitempty"`
	References []Reference    `json:"references,omitempty"`
}

// SeekRequest asks where a citation points inside the collection.
// RawOffset optionally overrides the reference's stored location with a
// client-supplied value, either raw seconds or MM:SS.
type SeekRequest struct {
	Reference     Reference `json:"reference" binding:"required"`
	RawOffset     string    `json:"raw_offset,omitempty"`
	CurrentItemID string    `json:"current_item_id,omitempty"`
}

// SeekTarget tells the client which item to show and where to move its viewer
type SeekTarget struct {
	ItemID        string       `json:"item_id"`
	ItemType      SourceType   `json:"item_type"`
	LocationType  LocationType `json:"location_type"`
	OffsetSeconds int          `json:"offset_seconds,omitempty"`
	Page          int          `json:"page,omitempty"`
	SwitchItem    bool         `json:"switch_item"`
}

// Stats represents system statistics
type Stats struct {
	TotalCollections int `json:"total_collections"`
	TotalItems       int `json:"total_items"`
	TotalSessions    int `json:"total_sessions"`
	TotalChats       int `json:"total_chats"`
}
