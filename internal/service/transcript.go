package service

import (
	"strings"

	"triagem-llm/internal/domain"
)

const (
	patientPrefix   = "Paciente: "
	assistantPrefix = "Assistente: "
)

// RenderTranscript converte o log de mensagens no formato linear que o
// motor espera. Um role fora de user/assistant descarta tudo que foi
// acumulado até ali (uma mensagem de sistema zera o contexto).
func RenderTranscript(messages []domain.Message) string {
	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case domain.RoleUser:
			lines = append(lines, patientPrefix+msg.Body)
		case domain.RoleAssistant:
			lines = append(lines, assistantPrefix+msg.Body)
		default:
			lines = lines[:0]
		}
	}
	return strings.Join(lines, "\n")
}

// RenderOpenTurn anexa o turno ainda não persistido do usuário e termina
// com "Assistente:" aberto. Esse sufixo é o ponto de continuação que o
// motor espera; faz parte do contrato de prompt e não pode mudar.
func RenderOpenTurn(messages []domain.Message, newMessage string) string {
	rendered := RenderTranscript(messages)
	if rendered != "" {
		rendered += "\n"
	}
	return rendered + patientPrefix + newMessage + "\n" + strings.TrimSuffix(assistantPrefix, " ")
}
