package chat

import "strings"

// recentHistory keeps the last window messages.
func recentHistory(history []ChatMessage, window int) []ChatMessage {
	if window <= 0 || len(history) == 0 {
		return nil
	}
	if len(history) <= window {
		return history
	}
	return history[len(history)-window:]
}

// BuildPrompt renders the history window as "U:"/"A:" lines followed by the
// new message.
func BuildPrompt(history []ChatMessage, message string, window int) string {
	var b strings.Builder
	for _, h := range recentHistory(history, window) {
		if h.Role == RoleUser {
			b.WriteString("U: ")
		} else {
			b.WriteString("A: ")
		}
		b.WriteString(h.Content)
		b.WriteByte('\n')
	}
	b.WriteString("U: ")
	b.WriteString(message)
	return b.String()
}

func systemInstruction(snapshot string) string {
	snapshot = strings.TrimSpace(snapshot)
	if snapshot == "" {
		return personaInstruction
	}
	return personaInstruction + "\nThông tin về Hiệp: " + snapshot
}
