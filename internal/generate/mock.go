package generate

import "context"

// Mock is a test double for the Generator interface. It also backs
// dry-run mode in the CLI.
type Mock struct {
	Text  string
	Err   error
	Calls []Request // records every request sent
}

// Generate records the call and returns the canned response.
func (m *Mock) Generate(ctx context.Context, req Request) (*Response, error) {
	m.Calls = append(m.Calls, req)
	if m.Err != nil {
		return nil, m.Err
	}
	text := m.Text
	if text == "" {
		text = "[" + req.Voice + "] " + req.Prompt
	}
	return &Response{Text: text, Voice: req.Voice, Provider: "mock"}, nil
}
