package domain

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleSystem is the instruction message prepended by the prompt assembler.
	RoleSystem Role = "system"
	// RoleUser is a message written by the person asking.
	RoleUser Role = "user"
	// RoleAssistant is a generated response.
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role    Role
	Content string
}
