package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"triagem-llm/internal/domain"
	"triagem-llm/internal/llm"
	"triagem-llm/internal/repository"
)

// Parâmetros fixos de amostragem da conversa.
const (
	replyTemperature = 0.7
	replyMaxTokens   = 256
)

// ChatService orquestra a conversa de triagem: decide o curto-circuito de
// emergência, monta o transcript, chama o motor e aplica o protocolo de
// append de turnos (usuário + assistente, atômico).
type ChatService struct {
	engine        llm.Client
	repo          repository.ConversationRepository
	locker        SessionLocker
	logger        *zap.Logger
	engineTimeout time.Duration
}

func NewChatService(
	engine llm.Client,
	repo repository.ConversationRepository,
	locker SessionLocker,
	logger *zap.Logger,
	engineTimeout time.Duration,
) *ChatService {
	if locker == nil {
		locker = NewNoopSessionLocker()
	}
	return &ChatService{
		engine:        engine,
		repo:          repo,
		locker:        locker,
		logger:        logger,
		engineTimeout: engineTimeout,
	}
}

// PostResult é a resposta de um turno aceito.
type PostResult struct {
	SessionID string
	Reply     string
}

// Reply gera a resposta para um novo turno sem tocar na sessão: quem
// persiste os turnos é o chamador. Emergência devolve a mensagem fixa de
// segurança e nunca chama o motor.
func (s *ChatService) Reply(ctx context.Context, messages []domain.Message, newMessage string) (string, error) {
	if IsEmergency(newMessage) {
		return EmergencyMessage, nil
	}

	transcript := RenderOpenTurn(messages, newMessage)
	raw, err := generateWithRetry(ctx, s.engine, s.engineTimeout, ReplySystemInstruction, transcript, llm.Options{
		Temperature:     replyTemperature,
		MaxOutputTokens: replyMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("gerar resposta: %w", err)
	}
	return strings.TrimSpace(raw), nil
}

// StartConversation cria uma sessão nova, semeada com a mensagem de
// abertura do assistente. patientRef vazio cria uma sessão anônima.
func (s *ChatService) StartConversation(ctx context.Context, patientRef string) (domain.Conversation, error) {
	patientRef = strings.TrimSpace(patientRef)
	if patientRef != "" && !validPatientRef(patientRef) {
		return domain.Conversation{}, fmt.Errorf("%w: referência de paciente mal formada", domain.ErrInvalidInput)
	}

	now := time.Now().UTC()
	conv := domain.Conversation{
		ID:         uuid.NewString(),
		PatientRef: patientRef,
		CreatedAt:  now,
	}
	conv.Messages = []domain.Message{{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		Role:           domain.RoleAssistant,
		Body:           OpeningMessage,
		CreatedAt:      now,
	}}

	if err := s.repo.Create(ctx, conv); err != nil {
		return domain.Conversation{}, fmt.Errorf("criar conversa: %w", err)
	}
	return conv, nil
}

// PostMessage processa um turno do usuário: valida a entrada, resolve a
// sessão (cria uma anônima quando não há id), gera a resposta e anexa o
// par de mensagens. Falha do motor não deixa nenhum append para trás.
func (s *ChatService) PostMessage(ctx context.Context, sessionID, text string) (PostResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return PostResult{}, fmt.Errorf("%w: mensagem vazia", domain.ErrInvalidInput)
	}

	var conv domain.Conversation
	if sessionID == "" {
		created, err := s.StartConversation(ctx, "")
		if err != nil {
			return PostResult{}, err
		}
		conv = created
	} else {
		release, err := s.locker.Lock(ctx, sessionID)
		if err != nil {
			return PostResult{}, fmt.Errorf("lock de sessão: %w", err)
		}
		defer release()

		conv, err = s.repo.GetByID(ctx, sessionID)
		if err != nil {
			return PostResult{}, err
		}
	}

	reply, err := s.Reply(ctx, conv.Messages, text)
	if err != nil {
		return PostResult{}, err
	}

	userAt := time.Now().UTC()
	assistantAt := time.Now().UTC()
	if assistantAt.Before(userAt) {
		assistantAt = userAt
	}
	userMsg := domain.Message{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		Role:           domain.RoleUser,
		Body:           text,
		CreatedAt:      userAt,
	}
	assistantMsg := domain.Message{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		Role:           domain.RoleAssistant,
		Body:           reply,
		CreatedAt:      assistantAt,
	}

	if err := s.repo.AppendTurn(ctx, conv.ID, userMsg, assistantMsg); err != nil {
		return PostResult{}, fmt.Errorf("anexar turno: %w", err)
	}

	s.logger.Info("turno processado",
		zap.String("session_id", conv.ID),
		zap.Bool("emergency", reply == EmergencyMessage),
	)
	return PostResult{SessionID: conv.ID, Reply: reply}, nil
}

// History devolve o log ordenado de mensagens da sessão.
func (s *ChatService) History(ctx context.Context, sessionID string) ([]domain.Message, error) {
	conv, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return conv.Messages, nil
}

// ListByPatient devolve as conversas de um paciente.
func (s *ChatService) ListByPatient(ctx context.Context, patientRef string) ([]domain.Conversation, error) {
	patientRef = strings.TrimSpace(patientRef)
	if !validPatientRef(patientRef) {
		return nil, fmt.Errorf("%w: referência de paciente mal formada", domain.ErrInvalidInput)
	}
	return s.repo.ListByPatient(ctx, patientRef)
}

// validPatientRef aceita referências curtas e sem espaço (o sistema
// original usava o telefone do paciente).
func validPatientRef(ref string) bool {
	if ref == "" || len(ref) > 64 {
		return false
	}
	return !strings.ContainsAny(ref, " \t\n\r")
}
