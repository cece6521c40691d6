package domain

import "time"

// Role identifica o autor de um turno da conversa. Conjunto fechado:
// valores fora destes três são rejeitados na borda HTTP.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid informa se o role pertence ao conjunto conhecido.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Message é um turno da conversa. Imutável depois de anexado.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id,omitempty"`
	Role           Role      `json:"role"`
	Body           string    `json:"body"`
	CreatedAt      time.Time `json:"created_at"`
}

// Conversation é uma sessão de triagem: log ordenado de mensagens
// (append-only) e snapshot opcional de triagem, substituído por inteiro
// a cada extração bem-sucedida.
type Conversation struct {
	ID         string        `json:"session_id"`
	PatientRef string        `json:"patient_ref,omitempty"`
	Messages   []Message     `json:"messages"`
	Triage     *TriageRecord `json:"triage,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}
