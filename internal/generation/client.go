// Package generation wraps the text model used to write headlines, comment
// summaries and article answers.
package generation

import (
	"context"
	"errors"

	"google.golang.org/genai"
)

var (
	// ErrGenerationFailed wraps every upstream failure. Callers may retry.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrEmptyResponse is returned when the model answers with no text
	ErrEmptyResponse = errors.New("model returned an empty response")
)

// Task identifies what a prompt asks for
type Task string

const (
	TaskHeadline Task = "headline"
	TaskSummary  Task = "summary"
	TaskAnswer   Task = "answer"
)

// Request is a single completion call
type Request struct {
	Task   Task
	Prompt string
	// Subject is the topic label or article headline the prompt is about
	Subject string
	// Schema asks the model for JSON of this shape when set
	Schema *genai.Schema
}

// Client produces raw text for a prompt
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
	Name() string
}
