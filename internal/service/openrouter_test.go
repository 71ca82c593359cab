package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatReply(content string) string {
	b, _ := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"content": content}},
		},
	})
	return string(b)
}

func newTestService(t *testing.T, handler http.HandlerFunc) *OpenRouterService {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	svc, err := NewOpenRouterService(&OpenRouterConfig{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		ParseModel: "parse-model",
		RankModel:  "rank-model",
	})
	require.NoError(t, err)
	return svc
}

func TestNewOpenRouterServiceRequiresAPIKey(t *testing.T) {
	_, err := NewOpenRouterService(&OpenRouterConfig{})
	assert.Error(t, err)
}

func TestInferPlainJSON(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "parse-model", req.Model)
		require.Len(t, req.Messages, 2)
		content, ok := req.Messages[1].Content.(string)
		require.True(t, ok)
		assert.Contains(t, content, "resume text here")

		w.Write([]byte(chatReply(`{"name":"Jane Doe"}`)))
	})

	raw, err := svc.ParseResume(context.Background(), "resume text here")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Jane Doe"}`, string(raw))
}

func TestInferBinaryContentParts(t *testing.T) {
	// Binary mode sends the instruction and the document as content parts,
	// with the document embedded as a base64 data URL.
	document := []byte("%PDF-1.4 raw bytes")

	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role    string          `json:"role"`
				Content json.RawMessage `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)

		var parts []map[string]interface{}
		require.NoError(t, json.Unmarshal(req.Messages[1].Content, &parts))
		require.Len(t, parts, 2)

		assert.Equal(t, "text", parts[0]["type"])
		assert.Equal(t, "Extract the text.", parts[0]["text"])

		assert.Equal(t, "image_url", parts[1]["type"])
		urlPart, ok := parts[1]["image_url"].(map[string]interface{})
		require.True(t, ok)
		wantURL := "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(document)
		assert.Equal(t, wantURL, urlPart["url"])

		w.Write([]byte(chatReply(`{"ok":true}`)))
	})

	raw, err := svc.Infer(context.Background(), &InferRequest{
		System:      "system",
		Instruction: "Extract the text.",
		Binary:      document,
		MimeType:    "application/pdf",
		Model:       "parse-model",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(raw))
}

func TestInferRecoversFencedJSON(t *testing.T) {
	reply := "Here is the extracted data:\n```json\n{\"name\": \"Jane\", \"skills\": []}\n```\nLet me know if you need more."
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatReply(reply)))
	})

	raw, err := svc.ParseResume(context.Background(), "text")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Jane","skills":[]}`, string(raw))
}

func TestInferProviderError(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	})

	_, err := svc.ParseResume(context.Background(), "text")
	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, http.StatusTooManyRequests, provErr.Status)
	assert.Contains(t, provErr.Body, "rate limited")
}

func TestInferMalformedResponse(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatReply("I could not read the document, sorry.")))
	})

	_, err := svc.ParseResume(context.Background(), "text")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestRankCandidatesEnvelope(t *testing.T) {
	reply := `{"ranked_candidates":[{"candidate_id":"c1","rank":1,"score":92.5},{"candidate_id":"c2","rank":2,"score":80}]}`
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "rank-model", req.Model)

		w.Write([]byte(chatReply(reply)))
	})

	ranked, err := svc.RankCandidates(context.Background(), "Backend engineer", []CandidateSummary{
		{CandidateID: "c1"}, {CandidateID: "c2"},
	})
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "c1", ranked[0].CandidateID)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.InDelta(t, 92.5, ranked[0].Score, 0.001)
}

func TestRankCandidatesBareArray(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatReply(`[{"candidate_id":"c1","rank":1,"score":70}]`)))
	})

	ranked, err := svc.RankCandidates(context.Background(), "desc", nil)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, "c1", ranked[0].CandidateID)
}

func TestRecoverJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantErr bool
	}{
		{"direct object", `{"a":1}`, `{"a":1}`, false},
		{"direct array", `[1,2]`, `[1,2]`, false},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`, false},
		{"embedded in prose", `The result is {"a":{"b":2}} as requested.`, `{"a":{"b":2}}`, false},
		{"no json", "nothing here", "", true},
		{"unbalanced", `{"a":1`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RecoverJSON(tt.content)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedResponse)
				return
			}
			assert.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestSubstitute(t *testing.T) {
	assert.Equal(t, "text: hello", substitute("text: {PAYLOAD}", "{PAYLOAD}", "hello"))
	assert.Equal(t, "no placeholder\n\nhello", substitute("no placeholder", "{PAYLOAD}", "hello"))
}
