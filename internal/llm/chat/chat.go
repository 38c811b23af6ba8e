// Package chat is the conversation format passed through LLM.GenerateResponse:
// a JSON array of role/content messages. Providers that only take a single
// prompt flatten it.
package chat

import (
	"encoding/json"
	"strings"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func System(content string) Message { return Message{Role: "system", Content: content} }
func User(content string) Message   { return Message{Role: "user", Content: content} }

// Encode serializes messages into a prompt string.
func Encode(messages ...Message) string {
	b, err := json.Marshal(messages)
	if err != nil {
		// a []Message of plain strings always marshals
		panic(err)
	}
	return string(b)
}

// Decode parses a prompt built by Encode. Anything else is treated as a
// single user message.
func Decode(prompt string) []Message {
	var messages []Message
	if err := json.Unmarshal([]byte(prompt), &messages); err != nil || len(messages) == 0 {
		return []Message{User(prompt)}
	}
	return messages
}

// Flatten joins a conversation into one prompt, system text first.
func Flatten(messages []Message) string {
	var sb strings.Builder
	for i, m := range messages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		switch m.Role {
		case "system":
			sb.WriteString(m.Content)
		case "assistant":
			sb.WriteString("Assistant: " + m.Content)
		default:
			sb.WriteString("User: " + m.Content)
		}
	}
	return sb.String()
}
