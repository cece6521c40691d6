package service

import (
	"regexp"
	"strings"
)

var (
	fenceStart = regexp.MustCompile("(?is)^\\s*```(?:json)?\\s*")
	fenceEnd   = regexp.MustCompile("(?is)\\s*```\\s*$")
)

// cleanEngineJSON tira fences ```json ... ``` e BOM da saída crua do motor,
// deixando o conteúdo usável. Reparo estrutural de melhor esforço: o formato
// da saída é um contrato fraco, não um schema garantido.
func cleanEngineJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	s = strings.TrimPrefix(s, "\uFEFF")
	s = fenceStart.ReplaceAllString(s, "")
	s = fenceEnd.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// sliceJSONObject recorta do primeiro '{' ao último '}', descartando
// qualquer comentário que o modelo tenha colocado antes ou depois do
// objeto. Vazio quando não há um par de chaves.
func sliceJSONObject(input string) string {
	start := strings.IndexByte(input, '{')
	if start == -1 {
		return ""
	}
	end := strings.LastIndexByte(input, '}')
	if end == -1 || end < start {
		return ""
	}
	return input[start : end+1]
}
