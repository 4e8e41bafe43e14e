// Package generate abstracts the text-generation collaborator. The
// engine depends only on the Generator interface; concrete clients talk
// to a local model server, and the mock stands in for tests and dry
// runs.
package generate

import "context"

// Request carries everything a voice-conditioned generation needs.
type Request struct {
	Voice    string // persona name conditioning the output
	Phase    string // current interaction phase
	Playbook string // response policy class
	Prompt   string
}

// Response is the aggregated generation result.
type Response struct {
	Text     string
	Voice    string
	Provider string
}

// Generator produces one response per request. Implementations must
// honor context cancellation mid-stream.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}
