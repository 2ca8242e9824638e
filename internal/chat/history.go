package chat

import (
	"github.com/cloudwego/eino/schema"

	"taskchatgo/internal/models"
)

const systemPrompt = "You are a helpful task management assistant. You can help users create, " +
	"list, update, and delete tasks. Be concise and friendly. When you perform " +
	"an action, confirm it clearly. Use the provided functions to interact with tasks."

// buildContext assembles the prompt sent to the model: the fixed system
// instruction, then the stored history excluding its final entry (that
// entry is the user turn just saved, re-appended here as the current
// message to avoid duplication).
func buildContext(history []*models.ChatMessage, current string) []*schema.Message {
	messages := make([]*schema.Message, 0, len(history)+1)
	messages = append(messages, schema.SystemMessage(systemPrompt))

	if len(history) > 0 {
		for _, msg := range history[:len(history)-1] {
			switch msg.Role {
			case models.RoleAssistant:
				messages = append(messages, schema.AssistantMessage(msg.Content, nil))
			default:
				messages = append(messages, schema.UserMessage(msg.Content))
			}
		}
	}

	messages = append(messages, schema.UserMessage(current))
	return messages
}
