package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"marketplace-backend/internal/database/models"
	apperrors "marketplace-backend/internal/errors"
	"marketplace-backend/internal/search"
)

const translatorService = "gemini"

// Translation is the structured form of a free-text query
type Translation struct {
	FriendlyMessage string               `json:"friendlyMessage"`
	Filters         search.SearchFilters `json:"filters"`
}

// GeminiTranslator asks the Gemini generateContent API to turn a shopping query into filters.
type GeminiTranslator struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
}

// NewGeminiTranslator creates a translator. The per-call deadline comes from the caller's context.
func NewGeminiTranslator(apiURL, apiKey string) *GeminiTranslator {
	return &GeminiTranslator{
		apiURL: apiURL,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Translate implements Translator. Every failure is an UpstreamUnavailableError.
func (t *GeminiTranslator) Translate(ctx context.Context, query string) (*Translation, error) {
	text, err := t.generate(ctx, buildPrompt(query))
	if err != nil {
		return nil, apperrors.NewUpstreamUnavailableError(translatorService, err)
	}

	translation, err := parseTranslation(text)
	if err != nil {
		return nil, apperrors.NewUpstreamUnavailableError(translatorService, err)
	}
	return translation, nil
}

func (t *GeminiTranslator) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(geminiRequest{Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}}})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	endpoint := t.apiURL + "?key=" + url.QueryEscape(t.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(msg))
	}

	var decoded geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("response has no candidates")
	}
	return decoded.Candidates[0].Content.Parts[0].Text, nil
}

// parseTranslation accepts the model's text, optionally wrapped in a ```json fence.
// Unknown fields are ignored; a missing or non-object "filters" is an error.
func parseTranslation(text string) (*Translation, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var shape struct {
		FriendlyMessage string          `json:"friendlyMessage"`
		Filters         json.RawMessage `json:"filters"`
	}
	if err := json.Unmarshal([]byte(text), &shape); err != nil {
		return nil, fmt.Errorf("translation is not JSON: %w", err)
	}

	raw := bytes.TrimSpace(shape.Filters)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, fmt.Errorf("translation has no filters object")
	}

	var filters search.SearchFilters
	if err := json.Unmarshal(raw, &filters); err != nil {
		return nil, fmt.Errorf("invalid filters: %w", err)
	}

	return &Translation{FriendlyMessage: strings.TrimSpace(shape.FriendlyMessage), Filters: filters}, nil
}

func buildPrompt(query string) string {
	var b strings.Builder
	b.WriteString("Você é um assistente de busca de um marketplace de ONGs, um vendedor amigável e caloroso. ")
	b.WriteString("Converta a consulta do usuário em um JSON de filtros e escreva uma 'friendlyMessage' curta confirmando a busca.\n")
	fmt.Fprintf(&b, "A consulta é: %q\n\n", query)
	b.WriteString("Regras:\n")
	b.WriteString("1. 'friendlyMessage' é obrigatória.\n")
	fmt.Fprintf(&b, "2. Tente adivinhar a categoria entre: %s. 'Ração' ou 'comida' é ALIMENTO; 'coleira' é ACESSORIO; 'remédio' é MEDICAMENTO; 'bola' é BRINQUEDO.\n", categoryList())
	b.WriteString("3. Se o usuário digitar o nome de um produto (ex: 'ração', 'piolho'), coloque-o em 'name'.\n")
	b.WriteString("4. 'barato' significa maxPrice 50; 'caro' significa minPrice 100.\n")
	b.WriteString("5. 'mais barato' significa sort \"price_asc\"; 'mais caro' significa sort \"price_desc\".\n")
	b.WriteString("6. Corrija erros de ortografia.\n\n")
	b.WriteString(`Formato obrigatório: {"friendlyMessage": "...", "filters": {"name": null, "category": null, "minPrice": null, "maxPrice": null, "sort": null}}`)
	b.WriteString("\nRetorne apenas o JSON.")
	return b.String()
}

// NoopTranslator is used when no API key is configured; every call fails so
// natural-language search always takes the lexical fallback.
type NoopTranslator struct{}

// Translate implements Translator
func (NoopTranslator) Translate(ctx context.Context, query string) (*Translation, error) {
	return nil, apperrors.NewUpstreamUnavailableError(translatorService, apperrors.ErrTranslatorNotConfigured)
}

// NewTranslator picks the Gemini translator when a key is set
func NewTranslator(apiURL, apiKey string) Translator {
	if strings.TrimSpace(apiKey) == "" {
		return NoopTranslator{}
	}
	return NewGeminiTranslator(apiURL, apiKey)
}

func categoryList() string {
	names := make([]string, len(models.ProductCategories))
	for i, c := range models.ProductCategories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
