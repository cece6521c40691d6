package domain

import "errors"

var (
	// ErrConversationNotFound: session_id referenciado não existe. Nunca
	// criamos sessão implicitamente a partir de um id desconhecido.
	ErrConversationNotFound = errors.New("conversa não encontrada")

	// ErrEngineUnavailable: o motor de geração falhou ou excedeu o timeout.
	// Falha dura; não fabricamos resposta no lugar do modelo.
	ErrEngineUnavailable = errors.New("motor de geração indisponível")

	// ErrInvalidInput: corpo de mensagem vazio ou referência de paciente
	// mal formada. Rejeitado antes de qualquer chamada a motor ou store.
	ErrInvalidInput = errors.New("entrada inválida")
)
