package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"triagem-llm/internal/domain"
	"triagem-llm/internal/llm"
)

// fakeConversationRepo guarda conversas em memória para os testes de
// serviço, honrando o contrato do store (NotFound, append atômico,
// triagem substituída por inteiro).
type fakeConversationRepo struct {
	conversations map[string]*domain.Conversation
	appendErr     error
	setTriageErr  error
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{conversations: make(map[string]*domain.Conversation)}
}

func (f *fakeConversationRepo) Create(_ context.Context, conv domain.Conversation) error {
	stored := conv
	stored.Messages = append([]domain.Message(nil), conv.Messages...)
	f.conversations[conv.ID] = &stored
	return nil
}

func (f *fakeConversationRepo) GetByID(_ context.Context, id string) (domain.Conversation, error) {
	stored, ok := f.conversations[id]
	if !ok {
		return domain.Conversation{}, domain.ErrConversationNotFound
	}
	conv := *stored
	conv.Messages = append([]domain.Message(nil), stored.Messages...)
	return conv, nil
}

func (f *fakeConversationRepo) AppendTurn(_ context.Context, conversationID string, userMsg, assistantMsg domain.Message) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	stored, ok := f.conversations[conversationID]
	if !ok {
		return domain.ErrConversationNotFound
	}
	stored.Messages = append(stored.Messages, userMsg, assistantMsg)
	return nil
}

func (f *fakeConversationRepo) SetTriage(_ context.Context, conversationID string, triage domain.TriageRecord) error {
	if f.setTriageErr != nil {
		return f.setTriageErr
	}
	stored, ok := f.conversations[conversationID]
	if !ok {
		return domain.ErrConversationNotFound
	}
	copied := triage
	stored.Triage = &copied
	return nil
}

func (f *fakeConversationRepo) ListByPatient(_ context.Context, patientRef string) ([]domain.Conversation, error) {
	var out []domain.Conversation
	for _, stored := range f.conversations {
		if stored.PatientRef == patientRef {
			out = append(out, *stored)
		}
	}
	return out, nil
}

func newChatService(engine llm.Client, repo *fakeConversationRepo) *ChatService {
	return NewChatService(engine, repo, NewNoopSessionLocker(), zap.NewNop(), time.Second)
}

func TestChatServicePostMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("emergência curto-circuita sem chamar o motor", func(t *testing.T) {
		engine := &llm.MockClient{Response: "não deveria ser usado"}
		repo := newFakeConversationRepo()
		svc := newChatService(engine, repo)

		conv, err := svc.StartConversation(ctx, "5511999990000")
		if err != nil {
			t.Fatalf("criar conversa: %v", err)
		}

		result, err := svc.PostMessage(ctx, conv.ID, "socorro, dor no peito")
		if err != nil {
			t.Fatalf("erro inesperado: %v", err)
		}
		if result.Reply != EmergencyMessage {
			t.Fatalf("esperava a mensagem fixa de segurança, veio %q", result.Reply)
		}
		if len(engine.Calls) != 0 {
			t.Fatalf("motor não deveria ser chamado em emergência, houve %d chamadas", len(engine.Calls))
		}

		stored, _ := repo.GetByID(ctx, conv.ID)
		if len(stored.Messages) != 3 {
			t.Fatalf("esperava abertura + turno duplo, veio %d mensagens", len(stored.Messages))
		}
		if stored.Messages[2].Body != EmergencyMessage {
			t.Fatalf("resposta de segurança deveria ser persistida, veio %q", stored.Messages[2].Body)
		}
	})

	t.Run("turno normal usa transcript com cue aberto e apara a resposta", func(t *testing.T) {
		engine := &llm.MockClient{Response: "  Desde quando você sente isso?\n"}
		repo := newFakeConversationRepo()
		svc := newChatService(engine, repo)

		conv, err := svc.StartConversation(ctx, "")
		if err != nil {
			t.Fatalf("criar conversa: %v", err)
		}

		result, err := svc.PostMessage(ctx, conv.ID, "tenho uma dor de cabeça leve")
		if err != nil {
			t.Fatalf("erro inesperado: %v", err)
		}
		if result.Reply != "Desde quando você sente isso?" {
			t.Fatalf("resposta não aparada: %q", result.Reply)
		}

		if len(engine.Calls) != 1 {
			t.Fatalf("esperava 1 chamada ao motor, houve %d", len(engine.Calls))
		}
		call := engine.Calls[0]
		if call.SystemInstruction != ReplySystemInstruction {
			t.Fatal("instrução de sistema da conversa não foi usada")
		}
		if !strings.HasSuffix(call.Contents, "Paciente: tenho uma dor de cabeça leve\nAssistente:") {
			t.Fatalf("transcript sem o cue aberto: %q", call.Contents)
		}
		if call.Opts.Temperature != 0.7 || call.Opts.MaxOutputTokens != 256 {
			t.Fatalf("parâmetros de amostragem errados: %+v", call.Opts)
		}
	})

	t.Run("turno aceito anexa exatamente duas mensagens em ordem", func(t *testing.T) {
		engine := &llm.MockClient{Response: "entendi"}
		repo := newFakeConversationRepo()
		svc := newChatService(engine, repo)

		conv, _ := svc.StartConversation(ctx, "")
		before, _ := repo.GetByID(ctx, conv.ID)

		if _, err := svc.PostMessage(ctx, conv.ID, "dor nas costas"); err != nil {
			t.Fatalf("erro inesperado: %v", err)
		}

		after, _ := repo.GetByID(ctx, conv.ID)
		if len(after.Messages) != len(before.Messages)+2 {
			t.Fatalf("esperava N+2 mensagens, veio %d (antes %d)", len(after.Messages), len(before.Messages))
		}
		userMsg := after.Messages[len(after.Messages)-2]
		assistantMsg := after.Messages[len(after.Messages)-1]
		if userMsg.Role != domain.RoleUser || assistantMsg.Role != domain.RoleAssistant {
			t.Fatalf("ordem do turno errada: %s depois %s", userMsg.Role, assistantMsg.Role)
		}
		if assistantMsg.CreatedAt.Before(userMsg.CreatedAt) {
			t.Fatal("timestamps deveriam ser não decrescentes dentro do turno")
		}
	})

	t.Run("falha do motor não deixa append pela metade", func(t *testing.T) {
		engine := &llm.MockClient{Err: errors.New("quota excedida")}
		repo := newFakeConversationRepo()
		svc := newChatService(engine, repo)

		conv, _ := svc.StartConversation(ctx, "")
		before, _ := repo.GetByID(ctx, conv.ID)

		_, err := svc.PostMessage(ctx, conv.ID, "tenho tosse")
		if !errors.Is(err, domain.ErrEngineUnavailable) {
			t.Fatalf("esperava ErrEngineUnavailable, veio %v", err)
		}

		after, _ := repo.GetByID(ctx, conv.ID)
		if len(after.Messages) != len(before.Messages) {
			t.Fatalf("nenhuma mensagem deveria ser anexada, veio %d", len(after.Messages))
		}
	})

	t.Run("sessão desconhecida falha com NotFound sem mutação", func(t *testing.T) {
		engine := &llm.MockClient{Response: "oi"}
		repo := newFakeConversationRepo()
		svc := newChatService(engine, repo)

		_, err := svc.PostMessage(ctx, "inexistente", "oi")
		if !errors.Is(err, domain.ErrConversationNotFound) {
			t.Fatalf("esperava ErrConversationNotFound, veio %v", err)
		}
		if len(engine.Calls) != 0 {
			t.Fatal("motor não deveria ser chamado para sessão desconhecida")
		}
		if len(repo.conversations) != 0 {
			t.Fatal("id desconhecido nunca cria sessão implicitamente")
		}
	})

	t.Run("mensagem vazia é rejeitada antes de tudo", func(t *testing.T) {
		engine := &llm.MockClient{Response: "oi"}
		repo := newFakeConversationRepo()
		svc := newChatService(engine, repo)

		_, err := svc.PostMessage(ctx, "", "   ")
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("esperava ErrInvalidInput, veio %v", err)
		}
		if len(engine.Calls) != 0 || len(repo.conversations) != 0 {
			t.Fatal("entrada inválida não pode tocar motor nem store")
		}
	})

	t.Run("sem session_id cria sessão anônima semeada com a abertura", func(t *testing.T) {
		engine := &llm.MockClient{Response: "certo"}
		repo := newFakeConversationRepo()
		svc := newChatService(engine, repo)

		result, err := svc.PostMessage(ctx, "", "olá, tudo bem?")
		if err != nil {
			t.Fatalf("erro inesperado: %v", err)
		}
		if result.SessionID == "" {
			t.Fatal("esperava session_id novo")
		}

		stored, err := repo.GetByID(ctx, result.SessionID)
		if err != nil {
			t.Fatalf("sessão criada deveria existir: %v", err)
		}
		if len(stored.Messages) != 3 {
			t.Fatalf("esperava abertura + turno, veio %d mensagens", len(stored.Messages))
		}
		if stored.Messages[0].Role != domain.RoleAssistant || stored.Messages[0].Body != OpeningMessage {
			t.Fatalf("sessão deveria nascer com a mensagem de abertura, veio %q", stored.Messages[0].Body)
		}
		if stored.PatientRef != "" {
			t.Fatal("sessão anônima não tem referência de paciente")
		}
	})
}

func TestChatServiceStartConversation(t *testing.T) {
	ctx := context.Background()

	t.Run("referência com espaço é rejeitada", func(t *testing.T) {
		svc := newChatService(&llm.MockClient{}, newFakeConversationRepo())
		_, err := svc.StartConversation(ctx, "11 99999")
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("esperava ErrInvalidInput, veio %v", err)
		}
	})

	t.Run("referência longa demais é rejeitada", func(t *testing.T) {
		svc := newChatService(&llm.MockClient{}, newFakeConversationRepo())
		_, err := svc.StartConversation(ctx, strings.Repeat("9", 65))
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("esperava ErrInvalidInput, veio %v", err)
		}
	})
}

func TestChatServiceListByPatient(t *testing.T) {
	ctx := context.Background()
	svc := newChatService(&llm.MockClient{}, newFakeConversationRepo())

	if _, err := svc.ListByPatient(ctx, " "); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("esperava ErrInvalidInput, veio %v", err)
	}
}
