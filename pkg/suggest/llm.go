package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"shelfguard-hq/shelfguard/pkg/policy/rules"
)

// LLMConfig configures the chat-completions suggester.
type LLMConfig struct {
	// BaseURL is the API base, e.g. "https://api.openai.com/v1".
	BaseURL string

	// APIKey authenticates the request. Empty disables the suggester.
	APIKey string

	// Model is the chat model to use.
	Model string

	// Timeout bounds one suggestion request. Default: 30s.
	Timeout time.Duration
}

// LLM asks an OpenAI-compatible chat completions endpoint for rewrite
// suggestions. Responses are normalized into Recommendation values;
// anything unparseable is dropped rather than surfaced, since the
// pipeline tops up from the deterministic suggester anyway.
type LLM struct {
	config LLMConfig
	client *http.Client
	logger *slog.Logger
}

// NewLLM creates the chat-completions suggester. A nil logger falls
// back to slog.Default().
func NewLLM(cfg LLMConfig, logger *slog.Logger) *LLM {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}
	return &LLM{
		config: cfg,
		client: &http.Client{Transport: transport, Timeout: cfg.Timeout},
		logger: logger,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// rawRecommendation mirrors the JSON shape the model is asked for.
// "type" is accepted as an alias for "section" since models drift.
type rawRecommendation struct {
	Section    string   `json:"section"`
	Type       string   `json:"type"`
	Title      string   `json:"title"`
	Before     string   `json:"before"`
	After      string   `json:"after"`
	Rationale  string   `json:"rationale"`
	References []string `json:"references"`
}

// Suggest requests up to MaxSuggestions edits from the configured
// endpoint. Transport and decoding errors are returned so the caller
// can fall back; an empty or partial response is not an error.
func (l *LLM) Suggest(ctx context.Context, in Input) ([]Recommendation, error) {
	if l.config.APIKey == "" {
		return nil, fmt.Errorf("llm suggester: no API key configured")
	}

	body, err := json.Marshal(chatRequest{
		Model: l.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(in)},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("llm suggester: failed to encode request: %w", err)
	}

	url := strings.TrimRight(l.config.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("llm suggester: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+l.config.APIKey)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("llm suggester: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("llm suggester: unexpected status %d: %s", resp.StatusCode, snippet)
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("llm suggester: failed to decode response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return nil, nil
	}

	return l.parseRecommendations(decoded.Choices[0].Message.Content), nil
}

const systemPrompt = "You are an e-commerce content compliance editor. " +
	"Respond with a JSON array of suggestion objects, each with keys " +
	"section (title|bullets|description), title, before, after, rationale, references."

func buildPrompt(in Input) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Client listing %s:\nTitle: %s\nBullets:\n", in.Client.ID, in.Client.TitleText)
	for _, bullet := range in.Client.BulletPoints {
		fmt.Fprintf(&b, "- %s\n", bullet)
	}
	fmt.Fprintf(&b, "Description: %s\n\n", in.Client.DescriptionText)

	fmt.Fprintf(&b, "Competitor listing %s:\nTitle: %s\n\n", in.Competitor.ID, in.Competitor.TitleText)

	if len(in.StyleguideRefs) > 0 {
		b.WriteString("Policy rules in force:\n")
		for _, ref := range in.StyleguideRefs {
			fmt.Fprintf(&b, "- %s\n", ref)
		}
		b.WriteString("\n")
	}

	b.WriteString("Comparison highlights:\n")
	for _, row := range in.Comparison {
		if strings.HasPrefix(row.Section, "policy:") {
			fmt.Fprintf(&b, "- %s %s: client %s vs competitor %s\n",
				row.Section, row.Metric, row.Client, row.Competitor)
		}
	}

	fmt.Fprintf(&b, "\nPropose up to %d compliant edits for the client listing.", MaxSuggestions)
	return b.String()
}

// parseRecommendations extracts the JSON array from the model reply,
// tolerating surrounding prose and code fences.
func (l *LLM) parseRecommendations(content string) []Recommendation {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end <= start {
		l.logger.Warn("llm suggester: no JSON array in response")
		return nil
	}

	var raw []rawRecommendation
	if err := json.Unmarshal([]byte(content[start:end+1]), &raw); err != nil {
		l.logger.Warn("llm suggester: failed to parse suggestions", "error", err)
		return nil
	}

	recs := make([]Recommendation, 0, len(raw))
	for _, r := range raw {
		section := normalizeSection(r.Section, r.Type, r.Title)
		if section == "" || strings.TrimSpace(r.After) == "" {
			continue
		}
		recs = append(recs, Recommendation{
			Section:    section,
			Title:      r.Title,
			Before:     r.Before,
			After:      r.After,
			Rationale:  r.Rationale,
			References: r.References,
		})
	}
	return recs
}

// normalizeSection maps whatever section label the model produced onto
// the closed section enum, guessing from the title as a last resort.
func normalizeSection(section, alias, title string) rules.Section {
	for _, candidate := range []string{section, alias} {
		switch rules.Section(strings.ToLower(strings.TrimSpace(candidate))) {
		case rules.SectionTitle:
			return rules.SectionTitle
		case rules.SectionBullets:
			return rules.SectionBullets
		case rules.SectionDescription:
			return rules.SectionDescription
		case rules.SectionImages:
			return rules.SectionImages
		}
	}
	lower := strings.ToLower(title)
	switch {
	case strings.Contains(lower, "bullet"):
		return rules.SectionBullets
	case strings.Contains(lower, "description"):
		return rules.SectionDescription
	case strings.Contains(lower, "title"):
		return rules.SectionTitle
	}
	return ""
}
