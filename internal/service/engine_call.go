package service

import (
	"context"
	"fmt"
	"time"

	"triagem-llm/internal/domain"
	"triagem-llm/internal/llm"
)

// retryBackoff é a espera entre a primeira falha do motor e a única
// retentativa. Cancelamento de contexto não é retentado.
const retryBackoff = 500 * time.Millisecond

// generateWithRetry chama o motor com timeout limitado e uma retentativa.
// Qualquer falha final vira domain.ErrEngineUnavailable: um turno voltado
// ao paciente não pode ficar pendurado indefinidamente.
func generateWithRetry(ctx context.Context, engine llm.Client, timeout time.Duration, systemInstruction, contents string, opts llm.Options) (string, error) {
	raw, err := generateOnce(ctx, engine, timeout, systemInstruction, contents, opts)
	if err == nil {
		return raw, nil
	}
	if ctx.Err() != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrEngineUnavailable, ctx.Err())
	}

	select {
	case <-time.After(retryBackoff):
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %v", domain.ErrEngineUnavailable, ctx.Err())
	}

	raw, err = generateOnce(ctx, engine, timeout, systemInstruction, contents, opts)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrEngineUnavailable, err)
	}
	return raw, nil
}

func generateOnce(ctx context.Context, engine llm.Client, timeout time.Duration, systemInstruction, contents string, opts llm.Options) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return engine.Generate(ctx, systemInstruction, contents, opts)
}
