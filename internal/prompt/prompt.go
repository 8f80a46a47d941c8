// Package prompt builds the generation prompt from a visitor question and the
// retrieved site chunks.
package prompt

import (
	"fmt"
	"strings"
)

const (
	// DefaultAssistantName is the name the assistant introduces itself with.
	DefaultAssistantName = "FlowAgent"

	// FallbackContext replaces the site information when nothing was retrieved.
	FallbackContext = "No relevant information found."
)

const template = `You are %s, a helpful assistant for this website. Use ONLY the following site information to answer the user's question in a friendly, casual and concise manner.

# Site Information
%s

# User Question
%s`

// Assembler renders prompts for a named assistant.
type Assembler struct {
	AssistantName string
}

// New returns an Assembler. An empty name selects DefaultAssistantName.
func New(assistantName string) *Assembler {
	if assistantName == "" {
		assistantName = DefaultAssistantName
	}
	return &Assembler{AssistantName: assistantName}
}

// Assemble renders the prompt. Chunks keep their order and are separated by a
// blank line; the question is included verbatim. Nothing is truncated.
func (a *Assembler) Assemble(question string, chunks []string) string {
	name := a.AssistantName
	if name == "" {
		name = DefaultAssistantName
	}

	context := strings.Join(chunks, "\n\n")
	if len(chunks) == 0 {
		context = FallbackContext
	}

	return fmt.Sprintf(template, name, context, question)
}

// Assemble renders the prompt with the default assistant name.
func Assemble(question string, chunks []string) string {
	return New("").Assemble(question, chunks)
}
