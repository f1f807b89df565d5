// Package linerag holds the types and configuration shared by the ingest
// and query functions of the LINE retrieval bot.
package linerag

// QueryRequest is the JSON the cli ask command reads from stdin.
type QueryRequest struct {
	Question string `json:"question"`
}

// RagDocument is one retrieved chunk that went into the prompt.
type RagDocument struct {
	ID         string  `json:"id"`
	Content    string  `json:"content"`
	Source     string  `json:"source"`
	Title      string  `json:"title,omitempty"`
	Similarity float32 `json:"similarity"`
}

type Response struct {
	Answer    string        `json:"answer"`
	Documents []RagDocument `json:"documents"`
}

// WebhookResponse is the body returned to the LINE platform for every call.
type WebhookResponse struct {
	Message string `json:"message"`
}

var OK = WebhookResponse{Message: "ok"}
