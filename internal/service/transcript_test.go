package service

import (
	"testing"

	"triagem-llm/internal/domain"
)

func TestRenderOpenTurn(t *testing.T) {
	t.Run("sessão vazia gera só o turno aberto", func(t *testing.T) {
		got := RenderOpenTurn(nil, "oi")
		want := "Paciente: oi\nAssistente:"
		if got != want {
			t.Fatalf("esperava %q, veio %q", want, got)
		}
	})

	t.Run("histórico vem antes do turno aberto, em ordem", func(t *testing.T) {
		msgs := []domain.Message{
			{Role: domain.RoleAssistant, Body: "Olá! Qual é a sua queixa principal?"},
			{Role: domain.RoleUser, Body: "dor de cabeça"},
		}
		got := RenderOpenTurn(msgs, "há três dias")
		want := "Assistente: Olá! Qual é a sua queixa principal?\n" +
			"Paciente: dor de cabeça\n" +
			"Paciente: há três dias\nAssistente:"
		if got != want {
			t.Fatalf("esperava %q, veio %q", want, got)
		}
	})
}

func TestRenderTranscript(t *testing.T) {
	t.Run("role de sistema descarta o contexto acumulado", func(t *testing.T) {
		msgs := []domain.Message{
			{Role: domain.RoleUser, Body: "antes"},
			{Role: domain.RoleAssistant, Body: "resposta antiga"},
			{Role: domain.RoleSystem, Body: "reinício"},
			{Role: domain.RoleUser, Body: "depois"},
		}
		got := RenderTranscript(msgs)
		if got != "Paciente: depois" {
			t.Fatalf("esperava só o turno pós-reset, veio %q", got)
		}
	})

	t.Run("sem turno aberto no final", func(t *testing.T) {
		msgs := []domain.Message{
			{Role: domain.RoleUser, Body: "dor nas costas"},
			{Role: domain.RoleAssistant, Body: "desde quando?"},
		}
		got := RenderTranscript(msgs)
		want := "Paciente: dor nas costas\nAssistente: desde quando?"
		if got != want {
			t.Fatalf("esperava %q, veio %q", want, got)
		}
	})

	t.Run("lista vazia rende vazio", func(t *testing.T) {
		if got := RenderTranscript(nil); got != "" {
			t.Fatalf("esperava vazio, veio %q", got)
		}
	})
}
