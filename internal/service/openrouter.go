package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/hirescan/hirescan/internal/prompts"
)

// ErrMalformedResponse indicates the model's reply carried no parseable JSON,
// even after fenced-block recovery.
var ErrMalformedResponse = errors.New("malformed model response")

// ProviderError is a non-success response from the inference provider.
// It carries the HTTP status and the raw error body for the FileItem error
// message.
type ProviderError struct {
	Status int
	Body   string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error: HTTP %d: %s", e.Status, e.Body)
}

// OpenRouterConfig holds configuration for the inference client.
type OpenRouterConfig struct {
	APIKey     string
	BaseURL    string
	ParseModel string
	RankModel  string
	Timeout    time.Duration
	Referer    string
	Title      string
}

// OpenRouterService calls an OpenAI-compatible chat-completions endpoint and
// turns free-form model replies into structured JSON.
type OpenRouterService struct {
	client     *resty.Client
	endpoint   string
	parseModel string
	rankModel  string
}

// NewOpenRouterService creates a new inference client.
// Parameters:
//   - cfg: provider configuration including API key and model identifiers.
//
// Returns:
//   - *OpenRouterService: initialized client.
//   - error: non-nil when credentials are missing.
func NewOpenRouterService(cfg *OpenRouterConfig) (*OpenRouterService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openrouter: API key is not set")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")
	if cfg.Referer != "" {
		client.SetHeader("HTTP-Referer", cfg.Referer)
	}
	if cfg.Title != "" {
		client.SetHeader("X-Title", cfg.Title)
	}
	client.SetTimeout(timeout)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}

	return &OpenRouterService{
		client:     client,
		endpoint:   baseURL + "/chat/completions",
		parseModel: cfg.ParseModel,
		rankModel:  cfg.RankModel,
	}, nil
}

// InferRequest describes one inference call. Exactly one of Text or Binary is
// the payload; text mode is preferred for PDFs and Word documents because it
// is more reliable than binary upload to the model.
type InferRequest struct {
	System      string
	Instruction string // template with a named placeholder
	Placeholder string // placeholder substituted with Text
	Text        string
	Binary      []byte // binary mode: raw document bytes
	MimeType    string // binary mode: document MIME type
	Model       string
	Temperature *float64
	MaxTokens   int
	JSONFormat  bool          // request response_format json_object
	Timeout     time.Duration // per-call override of the client timeout
}

// Chat completion request/response structures (OpenAI-compatible).
type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    *float64        `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"` // string, or content parts in binary mode
}

type responseFormat struct {
	Type string `json:"type"`
}

type textContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type fileContent struct {
	Type     string  `json:"type"`
	ImageURL fileURL `json:"image_url"`
}

type fileURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Infer sends one request to the provider and returns the JSON object or
// array the model replied with.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - req: inference request; see InferRequest.
//
// Returns:
//   - json.RawMessage: parsed JSON payload.
//   - error: *ProviderError on non-success responses, ErrMalformedResponse
//     when no JSON can be recovered from the reply.
func (s *OpenRouterService) Infer(ctx context.Context, req *InferRequest) (json.RawMessage, error) {
	var userContent interface{}
	if req.Binary != nil {
		dataURL := fmt.Sprintf("data:%s;base64,%s", req.MimeType, base64.StdEncoding.EncodeToString(req.Binary))
		userContent = []interface{}{
			textContent{Type: "text", Text: req.Instruction},
			fileContent{Type: "image_url", ImageURL: fileURL{URL: dataURL}},
		}
	} else {
		userContent = substitute(req.Instruction, req.Placeholder, req.Text)
	}

	body := chatRequest{
		Model: req.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: userContent},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSONFormat {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	var resp chatResponse
	httpResp, err := s.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&resp).
		Post(s.endpoint)

	if err != nil {
		return nil, fmt.Errorf("failed to call inference API: %w", err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		return nil, &ProviderError{
			Status: httpResp.StatusCode(),
			Body:   strings.TrimSpace(string(httpResp.Body())),
		}
	}

	if resp.Error != nil {
		return nil, &ProviderError{Status: httpResp.StatusCode(), Body: resp.Error.Message}
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in response", ErrMalformedResponse)
	}

	return RecoverJSON(resp.Choices[0].Message.Content)
}

// ParseResume runs the parse-resume instruction over extracted resume text.
func (s *OpenRouterService) ParseResume(ctx context.Context, resumeText string) (json.RawMessage, error) {
	return s.Infer(ctx, &InferRequest{
		System:      prompts.ParseResumeSystemPrompt,
		Instruction: prompts.ParseResumeUserPrompt,
		Placeholder: prompts.PlaceholderResumeText,
		Text:        resumeText,
		Model:       s.parseModel,
		JSONFormat:  true,
	})
}

// RankedCandidate is one entry of the model's relative ranking.
type RankedCandidate struct {
	CandidateID string  `json:"candidate_id"`
	Rank        int     `json:"rank"`
	Score       float64 `json:"score"`
}

// RankCandidates submits candidate summaries and a job description for
// relative ranking and returns the ranked tuples.
func (s *OpenRouterService) RankCandidates(ctx context.Context, jobDescription string, candidates interface{}) ([]RankedCandidate, error) {
	candidatesJSON, err := json.MarshalIndent(candidates, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode candidates: %w", err)
	}

	instruction := substitute(prompts.RankCandidatesUserPrompt, prompts.PlaceholderJobDesc, jobDescription)
	raw, err := s.Infer(ctx, &InferRequest{
		System:      prompts.RankCandidatesSystemPrompt,
		Instruction: instruction,
		Placeholder: prompts.PlaceholderCandidateData,
		Text:        string(candidatesJSON),
		Model:       s.rankModel,
		JSONFormat:  true,
	})
	if err != nil {
		return nil, err
	}

	return decodeRankedList(raw)
}

// decodeRankedList accepts either a bare array or the documented
// {"ranked_candidates": [...]} envelope.
func decodeRankedList(raw json.RawMessage) ([]RankedCandidate, error) {
	var list []RankedCandidate
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var envelope struct {
		RankedCandidates []RankedCandidate `json:"ranked_candidates"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.RankedCandidates == nil {
		return nil, fmt.Errorf("%w: unexpected ranking format", ErrMalformedResponse)
	}
	return envelope.RankedCandidates, nil
}

// substitute fills a named placeholder in an instruction template, appending
// the payload when the template carries no placeholder.
func substitute(template, placeholder, payload string) string {
	if placeholder != "" && strings.Contains(template, placeholder) {
		return strings.ReplaceAll(template, placeholder, payload)
	}
	return template + "\n\n" + payload
}

// RecoverJSON extracts the JSON object or array from a model reply. Direct
// parse first; models routinely wrap JSON in prose or code fences, so the
// fallback scans for the first balanced {...} or [...] block.
func RecoverJSON(content string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(content)
	if json.Valid([]byte(trimmed)) && (strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")) {
		return json.RawMessage(trimmed), nil
	}

	for _, pair := range [2][2]byte{{'{', '}'}, {'[', ']'}} {
		if block, ok := balancedBlock(content, pair[0], pair[1]); ok && json.Valid([]byte(block)) {
			return json.RawMessage(block), nil
		}
	}

	snippet := trimmed
	if len(snippet) > 200 {
		snippet = snippet[:200]
	}
	return nil, fmt.Errorf("%w: %s", ErrMalformedResponse, snippet)
}

// balancedBlock returns the first balanced open..close span in content.
// Brace counting ignores string escapes; json.Valid above catches the rare
// false positive.
func balancedBlock(content string, open, close byte) (string, bool) {
	start := strings.IndexByte(content, open)
	if start == -1 {
		return "", false
	}
	depth := 0
	for i := start; i < len(content); i++ {
		switch content[i] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return content[start : i+1], true
			}
		}
	}
	return "", false
}
