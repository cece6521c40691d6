package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"triagem-llm/internal/domain"
	"triagem-llm/internal/llm"
	"triagem-llm/internal/repository"
)

// Parâmetros fixos de amostragem da extração: temperatura baixa porque
// aqui determinismo vale mais que criatividade.
const (
	triageTemperature = 0.3
	triageMaxTokens   = 256
)

// TriageService converte o diálogo livre em um registro estruturado de
// triagem. O motor não garante saída válida, então a recuperação da
// estrutura é o núcleo do componente.
type TriageService struct {
	engine        llm.Client
	repo          repository.ConversationRepository
	logger        *zap.Logger
	engineTimeout time.Duration
}

func NewTriageService(
	engine llm.Client,
	repo repository.ConversationRepository,
	logger *zap.Logger,
	engineTimeout time.Duration,
) *TriageService {
	return &TriageService{
		engine:        engine,
		repo:          repo,
		logger:        logger,
		engineTimeout: engineTimeout,
	}
}

// Extract roda a extração sobre o log completo. Só devolve erro quando o
// motor falha; saída mal formada degrada para um registro vazio ("nada
// aprendido ainda"), nunca derruba a requisição.
func (s *TriageService) Extract(ctx context.Context, messages []domain.Message) (domain.TriageRecord, error) {
	transcript := RenderTranscript(messages)
	raw, err := generateWithRetry(ctx, s.engine, s.engineTimeout, TriageSystemInstruction, transcript, llm.Options{
		Temperature:     triageTemperature,
		MaxOutputTokens: triageMaxTokens,
	})
	if err != nil {
		return domain.TriageRecord{}, fmt.Errorf("extrair triagem: %w", err)
	}

	record, ok := parseTriageRecord(raw)
	if !ok {
		s.logger.Warn("saída de triagem não recuperável", zap.String("raw", raw))
	}
	return record, nil
}

// Recompute extrai a triagem da sessão e substitui o snapshot armazenado
// por inteiro (nunca merge).
func (s *TriageService) Recompute(ctx context.Context, sessionID string) (domain.TriageRecord, error) {
	conv, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		return domain.TriageRecord{}, err
	}

	record, err := s.Extract(ctx, conv.Messages)
	if err != nil {
		return domain.TriageRecord{}, err
	}

	if err := s.repo.SetTriage(ctx, sessionID, record); err != nil {
		return domain.TriageRecord{}, fmt.Errorf("gravar triagem: %w", err)
	}
	return record, nil
}

// parseTriageRecord aplica o reparo estrutural sobre o texto cru e extrai
// só as sete chaves reconhecidas; o resto é descartado. ok=false indica
// que nenhum JSON foi recuperado.
func parseTriageRecord(raw string) (domain.TriageRecord, bool) {
	obj := sliceJSONObject(cleanEngineJSON(raw))
	if obj == "" {
		return domain.TriageRecord{}, false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(obj), &fields); err != nil {
		return domain.TriageRecord{}, false
	}

	return domain.TriageRecord{
		MainComplaint: parseStringField(fields["main_complaint"]),
		Symptoms:      parseStringField(fields["symptoms"]),
		Duration:      parseStringField(fields["duration"]),
		Frequency:     parseStringField(fields["frequency"]),
		Intensity:     parseIntensity(fields["intensity"]),
		History:       parseStringField(fields["history"]),
		MeasuresTaken: parseStringField(fields["measures_taken"]),
	}, true
}

func parseStringField(raw json.RawMessage) *string {
	if len(raw) == 0 {
		return nil
	}
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil || s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// parseIntensity aceita inteiro em [0,10] (inclusive vindo como string);
// qualquer outra coisa vira ausente, não erro.
func parseIntensity(raw json.RawMessage) *int {
	if len(raw) == 0 {
		return nil
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		if n >= 0 && n <= 10 {
			return &n
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, convErr := strconv.Atoi(strings.TrimSpace(s)); convErr == nil && v >= 0 && v <= 10 {
			return &v
		}
	}
	return nil
}
