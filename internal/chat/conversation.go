package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/masa1023/site-concierge/pkg/models"
)

const (
	// Greeting opens every conversation.
	Greeting = "Hi there! Ask me anything about this site."

	// Apology replaces the answer when a turn fails.
	Apology = "Sorry, something went wrong. Please try again in a moment."
)

// ErrTurnInProgress is returned when a message is sent while the previous
// turn has not finished.
var ErrTurnInProgress = errors.New("a turn is already in progress")

// Conversation is the widget's transcript. At most one turn is in flight.
type Conversation struct {
	responder Responder

	mu       sync.Mutex
	messages []models.Message
	busy     bool
}

// NewConversation starts a transcript with the greeting.
func NewConversation(responder Responder) *Conversation {
	return &Conversation{
		responder: responder,
		messages:  []models.Message{{Text: Greeting}},
	}
}

// Messages returns a copy of the transcript.
func (c *Conversation) Messages() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Busy reports whether a turn is in flight.
func (c *Conversation) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Send runs one turn and returns the assistant message appended to the
// transcript. When the responder fails the message carries Apology and the
// cause is returned alongside it. Blank input is ignored.
func (c *Conversation) Send(ctx context.Context, text string) (models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Message{}, ErrEmptyQuestion
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return models.Message{}, ErrTurnInProgress
	}
	c.busy = true
	c.messages = append(c.messages, models.Message{Text: text, IsUser: true})
	c.mu.Unlock()

	answer, err := c.responder.Respond(ctx, text)
	if err != nil {
		slog.Error("chat turn failed", "error", err)
		answer = Apology
	}
	reply := models.Message{Text: answer}

	c.mu.Lock()
	c.messages = append(c.messages, reply)
	c.busy = false
	c.mu.Unlock()

	return reply, err
}
