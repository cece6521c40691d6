package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"triagem-llm/internal/domain"
)

// ConversationRepository é o contrato do store de sessões. O core só
// depende desta interface; os testes usam implementações em memória.
type ConversationRepository interface {
	Create(ctx context.Context, conv domain.Conversation) error
	GetByID(ctx context.Context, id string) (domain.Conversation, error)
	// AppendTurn anexa o par usuário+assistente de forma atômica: ou os
	// dois turnos ficam visíveis, ou nenhum.
	AppendTurn(ctx context.Context, conversationID string, userMsg, assistantMsg domain.Message) error
	SetTriage(ctx context.Context, conversationID string, triage domain.TriageRecord) error
	ListByPatient(ctx context.Context, patientRef string) ([]domain.Conversation, error)
}

type PgConversationRepository struct {
	pool *pgxpool.Pool
}

func NewPgConversationRepository(pool *pgxpool.Pool) *PgConversationRepository {
	return &PgConversationRepository{pool: pool}
}

func (r *PgConversationRepository) Create(ctx context.Context, conv domain.Conversation) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var patientRef interface{}
	if conv.PatientRef != "" {
		patientRef = conv.PatientRef
	}

	const insertConv = `
		INSERT INTO conversations (id, patient_ref, created_at)
		VALUES ($1, $2, $3)
	`
	if _, err := tx.Exec(ctx, insertConv, conv.ID, patientRef, conv.CreatedAt); err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}

	for _, msg := range conv.Messages {
		if err := insertMessage(ctx, tx, conv.ID, msg); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PgConversationRepository) GetByID(ctx context.Context, id string) (domain.Conversation, error) {
	const query = `
		SELECT id, patient_ref, triage, created_at
		FROM conversations
		WHERE id = $1
	`
	var (
		conv       domain.Conversation
		patientRef *string
		triageRaw  []byte
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(&conv.ID, &patientRef, &triageRaw, &conv.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Conversation{}, domain.ErrConversationNotFound
	}
	if err != nil {
		return domain.Conversation{}, fmt.Errorf("select conversation: %w", err)
	}
	if patientRef != nil {
		conv.PatientRef = *patientRef
	}
	if len(triageRaw) > 0 {
		var triage domain.TriageRecord
		if err := json.Unmarshal(triageRaw, &triage); err != nil {
			return domain.Conversation{}, fmt.Errorf("decode triage: %w", err)
		}
		conv.Triage = &triage
	}

	messages, err := r.listMessages(ctx, id)
	if err != nil {
		return domain.Conversation{}, err
	}
	conv.Messages = messages
	return conv, nil
}

func (r *PgConversationRepository) AppendTurn(ctx context.Context, conversationID string, userMsg, assistantMsg domain.Message) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	// Trava a linha da conversa para serializar appends concorrentes na
	// mesma sessão.
	const lockConv = `SELECT id FROM conversations WHERE id = $1 FOR UPDATE`
	var lockedID string
	err = tx.QueryRow(ctx, lockConv, conversationID).Scan(&lockedID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrConversationNotFound
	}
	if err != nil {
		return fmt.Errorf("lock conversation: %w", err)
	}

	if err := insertMessage(ctx, tx, conversationID, userMsg); err != nil {
		return err
	}
	if err := insertMessage(ctx, tx, conversationID, assistantMsg); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PgConversationRepository) SetTriage(ctx context.Context, conversationID string, triage domain.TriageRecord) error {
	payload, err := json.Marshal(triage)
	if err != nil {
		return fmt.Errorf("encode triage: %w", err)
	}

	const query = `UPDATE conversations SET triage = $2 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, conversationID, payload)
	if err != nil {
		return fmt.Errorf("update triage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConversationNotFound
	}
	return nil
}

func (r *PgConversationRepository) ListByPatient(ctx context.Context, patientRef string) ([]domain.Conversation, error) {
	const query = `
		SELECT id, patient_ref, triage, created_at
		FROM conversations
		WHERE patient_ref = $1
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, patientRef)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var conversations []domain.Conversation
	for rows.Next() {
		var (
			conv      domain.Conversation
			ref       *string
			triageRaw []byte
		)
		if err := rows.Scan(&conv.ID, &ref, &triageRaw, &conv.CreatedAt); err != nil {
			return nil, err
		}
		if ref != nil {
			conv.PatientRef = *ref
		}
		if len(triageRaw) > 0 {
			var triage domain.TriageRecord
			if err := json.Unmarshal(triageRaw, &triage); err != nil {
				return nil, fmt.Errorf("decode triage: %w", err)
			}
			conv.Triage = &triage
		}
		conversations = append(conversations, conv)
	}
	return conversations, rows.Err()
}

func (r *PgConversationRepository) listMessages(ctx context.Context, conversationID string) ([]domain.Message, error) {
	const query = `
		SELECT id, conversation_id, role, body, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY seq ASC
	`
	rows, err := r.pool.Query(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Role, &msg.Body, &msg.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func insertMessage(ctx context.Context, tx pgx.Tx, conversationID string, msg domain.Message) error {
	const query = `
		INSERT INTO messages (id, conversation_id, role, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.Exec(ctx, query, msg.ID, conversationID, string(msg.Role), msg.Body, msg.CreatedAt); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}
