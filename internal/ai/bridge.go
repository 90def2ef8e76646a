package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/sigmax/internal/common"
	"github.com/dmitrijs2005/sigmax/internal/models"
)

// PersonaHistory is how many recent messages a persona sees.
const PersonaHistory = 5

// MaxSuggestions caps SmartReplies.
const MaxSuggestions = 3

// Suggestion is one proposed reply.
type Suggestion struct {
	Text      string `json:"text"`
	Tone      string `json:"tone"`
	Rationale string `json:"rationale,omitempty"`
}

// Analysis summarizes a conversation.
type Analysis struct {
	Summary     string   `json:"summary"`
	ActionItems []string `json:"actionItems"`
	Sentiment   string   `json:"sentiment"`
	ThreatLevel string   `json:"threatLevel"`
}

// Identity is the outcome of an identity scan. Credential is set only
// when Identified is true.
type Identity struct {
	Identified bool              `json:"identified"`
	Credential models.Credential `json:"name,omitempty"`
}

// PersonaReply answers userText in the voice of persona, given the chat
// history. Failures yield common.PersonaFallbackReply.
func (c *Client) PersonaReply(ctx context.Context, persona *models.User, history []*models.Message, userText string) string {
	if len(history) > PersonaHistory {
		history = history[len(history)-PersonaHistory:]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "System: %s\n", persona.SystemPrompt)
	b.WriteString("Task: Reply to the user. Stay in character. Keep it under 50 words.\n")
	b.WriteString("Conversation History:\n")
	for _, m := range history {
		speaker := "User"
		if m.SenderID == persona.ID {
			speaker = persona.Name
		}
		fmt.Fprintf(&b, "%s: %s\n", speaker, m.Text)
	}
	fmt.Fprintf(&b, "User: %s\n", userText)

	text, err := c.generate(ctx, "persona_reply", c.fastModel, textRequest(b.String(), nil))
	if err != nil {
		return common.PersonaFallbackReply
	}
	return text
}

// SmartReplies proposes up to MaxSuggestions replies to lastMessage.
// Failures yield an empty list.
func (c *Client) SmartReplies(ctx context.Context, lastMessage, background string) []Suggestion {
	prompt := fmt.Sprintf(`Analyze this incoming message: %q
Context: %s
Generate 3 distinct reply options for a high-ranking official.
1. Casual/Ack
2. Professional/Action-oriented
3. Diplomatic/Careful`, lastMessage, background)

	text, err := c.generate(ctx, "smart_replies", c.fastModel, textRequest(prompt, jsonConfig(suggestionsSchema)))
	if err != nil {
		return []Suggestion{}
	}

	var raw []Suggestion
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		c.logger.Warn(ctx, "smart replies: invalid JSON", "error", err)
		return []Suggestion{}
	}

	out := make([]Suggestion, 0, MaxSuggestions)
	for _, s := range raw {
		if strings.TrimSpace(s.Text) == "" {
			continue
		}
		out = append(out, s)
		if len(out) == MaxSuggestions {
			break
		}
	}
	return out
}

// Analyze summarizes a transcript. An empty transcript or a failure
// yields nil.
func (c *Client) Analyze(ctx context.Context, messages []*models.Message) *Analysis {
	if len(messages) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("Analyze this communication log for Sigmax Command.\n\nTranscript:\n")
	for _, m := range messages {
		fmt.Fprintf(&b, "[%s]: %s\n", m.SenderID, m.Text)
	}
	b.WriteString(`
Provide:
1. A brief executive summary (max 20 words).
2. Extracted actionable items.
3. Overall sentiment.
4. Threat assessment (LOW/MEDIUM/HIGH).`)

	gc := jsonConfig(analysisSchema)
	gc.ThinkingConfig = &thinkingConfig{ThinkingBudget: 1024}

	text, err := c.generate(ctx, "analyze", c.reasoningModel, textRequest(b.String(), gc))
	if err != nil {
		return nil
	}

	var a Analysis
	if err := json.Unmarshal([]byte(text), &a); err != nil || a.Summary == "" {
		c.logger.Warn(ctx, "analysis: unusable response", "error", err)
		return nil
	}
	if a.ActionItems == nil {
		a.ActionItems = []string{}
	}
	return &a
}

// Translate renders text in standard English. Failures yield text
// unchanged.
func (c *Client) Translate(ctx context.Context, text string) string {
	prompt := fmt.Sprintf("Translate the following text to Standard English (Universal Sigmax Dialect). Maintain original tone. Text: %q", text)

	out, err := c.generate(ctx, "translate", c.fastModel, textRequest(prompt, nil))
	if err != nil {
		return text
	}
	return out
}

var dataURLPrefix = regexp.MustCompile(`^data:image/(png|jpeg|jpg);base64,`)

// IdentifyFromImage matches the person in a base64 image against the
// credential allow-list. Labels outside it and every failure yield no
// match.
func (c *Client) IdentifyFromImage(ctx context.Context, imageBase64 string) Identity {
	data := dataURLPrefix.ReplaceAllString(imageBase64, "")
	if data == "" {
		return Identity{}
	}

	labels := make([]string, len(models.Credentials))
	for i, cr := range models.Credentials {
		labels[i] = fmt.Sprintf("%d. %q", i+1, cr)
	}
	prompt := "You are a Biometric Security AI for Sigmax Nexus.\n" +
		"Determine whether the person in this image is one of the following registered identities:\n" +
		strings.Join(labels, "\n") +
		"\nIf the image clearly matches one of them, return the EXACT name from the list. Otherwise return \"UNKNOWN\".\n" +
		`Respond strictly in JSON: { "identified": boolean, "name": "NAME_OR_UNKNOWN" }`

	req := &generateRequest{
		Contents: []content{{Role: "user", Parts: []part{
			{InlineData: &inlineData{MimeType: "image/jpeg", Data: data}},
			{Text: prompt},
		}}},
		GenerationConfig: jsonConfig(identitySchema),
	}

	text, err := c.generate(ctx, "identify", c.visionModel, req)
	if err != nil {
		return Identity{}
	}

	var raw struct {
		Identified bool   `json:"identified"`
		Name       string `json:"name"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		c.logger.Warn(ctx, "identify: invalid JSON", "error", err)
		return Identity{}
	}
	if !raw.Identified {
		return Identity{}
	}
	cred, ok := models.ParseCredential(raw.Name)
	if !ok {
		c.logger.Warn(ctx, "identify: label outside allow-list", "label", raw.Name)
		return Identity{}
	}
	return Identity{Identified: true, Credential: cred}
}
