package generate

// #region imports
import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// #endregion

// #region client

// Ollama streams completions from a local Ollama instance. Chunks are
// newline-delimited JSON; the client aggregates them into one Response
// and aborts cleanly when the context is cancelled.
type Ollama struct {
	url    string
	model  string
	client *http.Client
}

// NewOllama creates a client for the given base URL and model.
func NewOllama(url, model string) *Ollama {
	return &Ollama{
		url:    url,
		model:  model,
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

// #endregion

// #region generate

type streamChunk struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate sends the voice-conditioned prompt and aggregates the
// streamed chunks.
func (o *Ollama) Generate(ctx context.Context, req Request) (*Response, error) {
	reqBody := map[string]any{
		"model":  o.model,
		"prompt": buildPrompt(req),
		"stream": true,
		"options": map[string]any{
			"temperature": 0.7,
			"num_predict": 1024,
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", o.url+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("generation api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("generation api status %d", resp.StatusCode)
	}

	var text strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("generation cancelled: %w", err)
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var chunk streamChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			return nil, fmt.Errorf("decode stream chunk: %w", err)
		}
		text.WriteString(chunk.Response)
		if chunk.Done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stream: %w", err)
	}

	return &Response{
		Text:     text.String(),
		Voice:    req.Voice,
		Provider: "ollama",
	}, nil
}

// #endregion

// #region prompt

// buildPrompt prefixes the user prompt with the persona and policy
// framing the model is expected to honor.
func buildPrompt(req Request) string {
	var b strings.Builder
	if req.Voice != "" {
		fmt.Fprintf(&b, "[voice:%s]", req.Voice)
	}
	if req.Phase != "" {
		fmt.Fprintf(&b, "[phase:%s]", req.Phase)
	}
	if req.Playbook != "" {
		fmt.Fprintf(&b, "[playbook:%s]", req.Playbook)
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	b.WriteString(req.Prompt)
	return b.String()
}

// #endregion
