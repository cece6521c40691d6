package domain

// TriageRecord é o alvo da extração estruturada. Todos os campos são
// opcionais: a conversa pode ser interrompida antes de cobrir tudo.
type TriageRecord struct {
	MainComplaint *string `json:"main_complaint"`
	Symptoms      *string `json:"symptoms"`
	Duration      *string `json:"duration"`
	Frequency     *string `json:"frequency"`
	Intensity     *int    `json:"intensity"`
	History       *string `json:"history"`
	MeasuresTaken *string `json:"measures_taken"`
}

// Empty informa se nada foi extraído ainda.
func (t TriageRecord) Empty() bool {
	return t.MainComplaint == nil &&
		t.Symptoms == nil &&
		t.Duration == nil &&
		t.Frequency == nil &&
		t.Intensity == nil &&
		t.History == nil &&
		t.MeasuresTaken == nil
}
