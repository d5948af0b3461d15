// Package topics holds the fixed set of global topics and validates the
// custom topics a user adds to their selection.
package topics

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/zfogg/dailybrief/internal/models"
)

// MaxCustomTopics caps the custom topics a user may keep
const MaxCustomTopics = 3

// CustomPrefix marks custom topic ids
const CustomPrefix = "custom-"

var (
	ErrUnknownTopic        = errors.New("unknown topic")
	ErrEmptyLabel          = errors.New("custom topic label is required")
	ErrEmptyEmoji          = errors.New("custom topic emoji is required")
	ErrDuplicateEmoji      = errors.New("emoji is already used by another topic")
	ErrDuplicateTopicID    = errors.New("custom topic id appears more than once")
	ErrTooManyCustomTopics = fmt.Errorf("at most %d custom topics are allowed", MaxCustomTopics)
)

// Topic is a global topic
type Topic struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Emoji string `json:"emoji"`
}

var global = []Topic{
	{ID: "sports", Label: "Sports", Emoji: "⚽"},
	{ID: "technology", Label: "Technology", Emoji: "💻"},
	{ID: "business", Label: "Business", Emoji: "💼"},
	{ID: "entertainment", Label: "Entertainment", Emoji: "🎬"},
	{ID: "science", Label: "Science", Emoji: "🔬"},
	{ID: "health", Label: "Health", Emoji: "🏥"},
	{ID: "politics", Label: "Politics", Emoji: "🏛️"},
	{ID: "gaming", Label: "Gaming", Emoji: "🎮"},
}

var byID = func() map[string]Topic {
	m := make(map[string]Topic, len(global))
	for _, t := range global {
		m[t.ID] = t
	}
	return m
}()

// Global returns a copy of the global topics in display order
func Global() []Topic {
	out := make([]Topic, len(global))
	copy(out, global)
	return out
}

// Lookup finds a global topic by id
func Lookup(id string) (Topic, bool) {
	t, ok := byID[id]
	return t, ok
}

// IsGlobal reports whether id names a global topic
func IsGlobal(id string) bool {
	_, ok := byID[id]
	return ok
}

// IsCustomID reports whether id has the custom topic shape
func IsCustomID(id string) bool {
	return strings.HasPrefix(id, CustomPrefix) && len(id) > len(CustomPrefix)
}

// NewCustomID returns a fresh custom topic id
func NewCustomID() string {
	return CustomPrefix + uuid.New().String()
}

// FindCustom returns the user's custom topic with the given id
func FindCustom(custom []models.CustomTopic, id string) (models.CustomTopic, bool) {
	for _, c := range custom {
		if c.ID == id {
			return c, true
		}
	}
	return models.CustomTopic{}, false
}

// SelectionError names the offending entry of a rejected selection
type SelectionError struct {
	Field string
	Value string
	Err   error
}

func (e *SelectionError) Error() string {
	if e.Value == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %q", e.Err.Error(), e.Value)
}

func (e *SelectionError) Unwrap() error {
	return e.Err
}

// ValidateSelection checks a complete topic selection and returns the global
// ids deduplicated in order plus the custom topics with ids assigned. A custom
// topic keeps its id only when owned (the user's stored custom topics) has it;
// any other id is replaced by a fresh one. Nothing is returned for a rejected
// selection.
func ValidateSelection(globalIDs []string, custom, owned []models.CustomTopic) ([]string, []models.CustomTopic, error) {
	if len(custom) > MaxCustomTopics {
		return nil, nil, &SelectionError{Field: "custom_topics", Err: ErrTooManyCustomTopics}
	}

	ids := make([]string, 0, len(globalIDs))
	seenIDs := make(map[string]bool, len(globalIDs))
	for _, id := range globalIDs {
		if !IsGlobal(id) {
			return nil, nil, &SelectionError{Field: "topics", Value: id, Err: ErrUnknownTopic}
		}
		if !seenIDs[id] {
			seenIDs[id] = true
			ids = append(ids, id)
		}
	}

	usedEmoji := make(map[string]bool, len(global)+len(custom))
	for _, t := range global {
		usedEmoji[t.Emoji] = true
	}

	seenCustom := make(map[string]bool, len(custom))
	out := make([]models.CustomTopic, 0, len(custom))
	for _, c := range custom {
		label := strings.TrimSpace(c.Label)
		emoji := strings.TrimSpace(c.Emoji)
		if label == "" {
			return nil, nil, &SelectionError{Field: "label", Err: ErrEmptyLabel}
		}
		if emoji == "" {
			return nil, nil, &SelectionError{Field: "emoji", Value: label, Err: ErrEmptyEmoji}
		}
		if usedEmoji[emoji] {
			return nil, nil, &SelectionError{Field: "emoji", Value: emoji, Err: ErrDuplicateEmoji}
		}
		usedEmoji[emoji] = true

		id := strings.TrimSpace(c.ID)
		if id != "" {
			if seenCustom[id] {
				return nil, nil, &SelectionError{Field: "id", Value: id, Err: ErrDuplicateTopicID}
			}
			seenCustom[id] = true
		}
		if _, ok := FindCustom(owned, id); !ok || !IsCustomID(id) {
			id = NewCustomID()
		}
		out = append(out, models.CustomTopic{ID: id, Label: label, Emoji: emoji})
	}

	return ids, out, nil
}
