package service

import "strings"

// emergencyKeywords são as frases de alerta que interrompem a triagem.
// Varredura literal de substring, sem negação nem stemming: um falso
// positivo só mostra a mensagem de segurança; um falso negativo é o risco
// real, então a lista fica ampla.
var emergencyKeywords = []string{
	"emergência", "socorro", "ajuda", "dor intensa", "sangramento",
	"desmaio", "convulsão", "parada cardíaca", "dificuldade para respirar",
	"intoxicação", "fratura exposta", "queimadura grave",
	"dor no peito", "infarto", "falta de ar",
	"perda de consciência", "hemorragia", "sangramento intenso",
}

// IsEmergency classifica a mensagem como urgente se contiver qualquer
// frase de alerta, ignorando maiúsculas. Pura, sem efeitos colaterais;
// roda antes de toda chamada ao motor para um turno do usuário.
func IsEmergency(text string) bool {
	lowered := strings.ToLower(text)
	for _, keyword := range emergencyKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}
