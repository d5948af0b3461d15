package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// SimulatedClient fabricates plausible output after a randomized delay. It
// stands in for the model in local development and load tests.
type SimulatedClient struct {
	MinDelay time.Duration
	MaxDelay time.Duration
}

// NewSimulatedClient creates a simulated client with a 1-3s delay
func NewSimulatedClient() *SimulatedClient {
	return &SimulatedClient{MinDelay: time.Second, MaxDelay: 3 * time.Second}
}

// Name identifies the client in logs and metrics
func (c *SimulatedClient) Name() string {
	return "simulated"
}

// Complete waits, then returns text shaped like the real model's output
func (c *SimulatedClient) Complete(ctx context.Context, req Request) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", err
	}

	switch req.Task {
	case TaskHeadline:
		out, err := json.Marshal(map[string]string{
			"headline": fmt.Sprintf("%s: %s", req.Subject, strings.TrimSuffix(gofakeit.HipsterSentence(), ".")),
			"analysis": paragraphs(3),
		})
		if err != nil {
			return "", err
		}
		return "```json\n" + string(out) + "\n```", nil
	case TaskSummary:
		return paragraphs(1), nil
	default:
		return fmt.Sprintf("Based on \"%s\": %s", req.Subject, gofakeit.HipsterSentence()), nil
	}
}

func (c *SimulatedClient) wait(ctx context.Context) error {
	delay := c.MinDelay
	if c.MaxDelay > c.MinDelay {
		delay += time.Duration(gofakeit.Number(0, int(c.MaxDelay-c.MinDelay)))
	}
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func paragraphs(n int) string {
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		sentences := make([]string, 0, 4)
		for j := 0; j < 4; j++ {
			sentences = append(sentences, gofakeit.HipsterSentence())
		}
		parts = append(parts, strings.Join(sentences, " "))
	}
	return strings.Join(parts, "\n\n")
}
