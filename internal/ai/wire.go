package ai

import "strings"

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type thinkingConfig struct {
	ThinkingBudget int `json:"thinkingBudget"`
}

type generationConfig struct {
	ResponseMimeType string          `json:"responseMimeType,omitempty"`
	ResponseSchema   map[string]any  `json:"responseSchema,omitempty"`
	ThinkingConfig   *thinkingConfig `json:"thinkingConfig,omitempty"`
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (r *generateResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return strings.TrimSpace(b.String())
}

func textRequest(prompt string, gc *generationConfig) *generateRequest {
	return &generateRequest{
		Contents:         []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: gc,
	}
}

func jsonConfig(schema map[string]any) *generationConfig {
	return &generationConfig{ResponseMimeType: "application/json", ResponseSchema: schema}
}

var (
	suggestionsSchema = map[string]any{
		"type": "ARRAY",
		"items": map[string]any{
			"type": "OBJECT",
			"properties": map[string]any{
				"text":      map[string]any{"type": "STRING"},
				"tone":      map[string]any{"type": "STRING", "enum": []string{"casual", "professional", "diplomatic"}},
				"rationale": map[string]any{"type": "STRING"},
			},
			"required": []string{"text", "tone"},
		},
	}

	analysisSchema = map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"summary":     map[string]any{"type": "STRING"},
			"actionItems": map[string]any{"type": "ARRAY", "items": map[string]any{"type": "STRING"}},
			"sentiment":   map[string]any{"type": "STRING", "enum": []string{"positive", "neutral", "negative", "hostile", "urgent"}},
			"threatLevel": map[string]any{"type": "STRING", "enum": []string{"LOW", "MEDIUM", "HIGH"}},
		},
	}

	identitySchema = map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"identified": map[string]any{"type": "BOOLEAN"},
			"name":       map[string]any{"type": "STRING"},
		},
		"required": []string{"identified", "name"},
	}
)
