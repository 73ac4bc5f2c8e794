// Package gemini holds the moment-source client: it asks the Gemini API
// which parts of a transcript could carry a short vertical clip. Its output
// is untrusted; callers must run it through moments.ValidateAndRank.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Levilaell/snapcast/internal/moments"
	"github.com/Levilaell/snapcast/models"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-2.5-flash"
	defaultTimeout = 120 * time.Second

	// How many transcript entries the prompt includes as timestamp
	// reference. The full text already carries the content.
	maxPromptEntries = 100
)

// Options configures a Client. Only APIKey is required.
type Options struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// Client calls the Gemini generateContent endpoint over plain HTTP.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature    float64 `json:"temperature,omitempty"`
	CandidateCount int     `json:"candidateCount,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// NewClient builds a Gemini client.
func NewClient(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		apiKey:  opts.APIKey,
		model:   model,
		baseURL: baseURL,
		client:  client,
	}, nil
}

// AnalyzeViralMoments asks the model for candidate viral moments in the
// transcript. The returned records are raw and unvalidated. Any transport,
// API or parse failure is returned as an error; callers are expected to
// degrade to "no viral moments found" rather than fail the video.
func (c *Client) AnalyzeViralMoments(ctx context.Context, transcript string, entries []models.TranscriptEntry) ([]moments.RawMoment, error) {
	payload := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: buildPrompt(transcript, entries)}},
		}},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:    0.4,
			CandidateCount: 1,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshalling gemini request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini returned status %d", resp.StatusCode)
	}

	var decoded geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding gemini response: %w", err)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return nil, errors.New("gemini response has no candidates")
	}

	raw := extractJSON(decoded.Candidates[0].Content.Parts[0].Text)

	var parsed []moments.RawMoment
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("parsing moments JSON: %w", err)
	}
	return parsed, nil
}

// extractJSON strips markdown code fences the model often wraps its answer
// in, returning the inner payload.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.Index(text, "```json"); idx >= 0 {
		text = text[idx+len("```json"):]
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
	} else if strings.Contains(text, "```") {
		parts := strings.SplitN(text, "```", 3)
		if len(parts) >= 2 {
			text = parts[1]
		}
	}
	return strings.TrimSpace(text)
}

func buildPrompt(transcript string, entries []models.TranscriptEntry) string {
	if len(entries) > maxPromptEntries {
		entries = entries[:maxPromptEntries]
	}
	timestamps, _ := json.Marshal(entries)

	var b strings.Builder
	b.WriteString(`Você é um especialista em identificar momentos virais em podcasts e vídeos longos.

Analise a seguinte transcrição e identifique de 5 a 10 momentos com maior potencial viral para Reels/Shorts/TikTok.

Para cada momento, considere:
1. Histórias interessantes ou impactantes
2. Momentos de humor ou risadas
3. Conselhos práticos e valiosos
4. Declarações polêmicas ou impactantes
5. Revelações ou informações surpreendentes

Para cada momento, retorne um JSON com:
- start_time: tempo de início em segundos (EXATO do timestamp da transcrição)
- end_time: tempo de fim em segundos (EXATO do timestamp da transcrição, máximo 90 segundos de duração)
- title: título curto e chamativo que DESCREVA O CONTEÚDO do momento (máx 60 caracteres)
- description: descrição do momento que RESUMA O QUE É DITO (máx 200 caracteres)
- viral_score: pontuação de 0-100 indicando potencial viral
- viral_reason: breve explicação de por que esse momento é viral
- category: uma das categorias (historia, humor, conselho, polemica, revelacao)
- transcript_preview: primeiras palavras da transcrição deste momento (para validação)

CRÍTICO:
- Use os timestamps EXATOS dos dados fornecidos abaixo
- O título e descrição devem BATER com o conteúdo da transcrição entre start_time e end_time
- A duração de cada momento deve ser entre 15 e 90 segundos
- Retorne APENAS um array JSON válido, sem texto adicional
- Ordene os momentos por viral_score (maior primeiro)

Transcrição:
`)
	b.WriteString(transcript)
	b.WriteString("\n\nTimestamps disponíveis para referência (start = início em segundos, duration = duração):\n")
	b.Write(timestamps)
	return b.String()
}
