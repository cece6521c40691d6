package llm

import "context"

// MockClient permite testes sem chamar um motor real.
type MockClient struct {
	Response string
	Err      error

	// Calls registra os argumentos de cada chamada para inspeção.
	Calls []MockCall
}

// MockCall guarda os argumentos de uma chamada a Generate.
type MockCall struct {
	SystemInstruction string
	Contents          string
	Opts              Options
}

func (m *MockClient) Generate(ctx context.Context, systemInstruction, contents string, opts Options) (string, error) {
	m.Calls = append(m.Calls, MockCall{
		SystemInstruction: systemInstruction,
		Contents:          contents,
		Opts:              opts,
	})
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}
