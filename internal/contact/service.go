package contact

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"portfolio-api/internal/chat"
	"portfolio-api/internal/logs"
	"portfolio-api/internal/util"
)

const defaultReplyTimeout = 20 * time.Second

// ContactService records contact form submissions and answers each one with
// a short generated thank-you.
type ContactService struct {
	Text    chat.TextGenerator
	Logs    LogWriter
	Timeout time.Duration
}

// Submit never fails on provider errors: the sender always gets a reply,
// generated or the fixed fallback.
func (s *ContactService) Submit(ctx context.Context, req ContactRequest) (*ContactReply, error) {
	name := util.ClampRunes(req.Name, maxNameRunes)
	message := util.ClampRunes(req.Message, maxMessageRunes)
	if name == "" || message == "" {
		return nil, ErrEmptySubmission
	}

	meta := map[string]any{
		"name":    name,
		"email":   strings.TrimSpace(req.Email),
		"message": message,
	}

	reply, err := s.generate(ctx, name, message)
	if err != nil {
		log.Printf("contact reply generation failed: %v", err)
		s.log(logs.SystemLog{Level: "WARN", Service: logService, Action: actionReplyFailed, Message: err.Error()}, nil)
	}

	out := &ContactReply{Reply: reply}
	if reply == "" {
		out.Reply = fmt.Sprintf(fallbackReplyShape, name)
		out.Fallback = true
	}
	meta["fallback"] = out.Fallback

	s.log(logs.SystemLog{Level: "INFO", Service: logService, Action: actionReceived, Message: "contact message from " + name}, meta)
	return out, nil
}

func (s *ContactService) generate(ctx context.Context, name, message string) (string, error) {
	if s.Text == nil {
		return "", nil
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultReplyTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cfg := chat.GenerationConfig{
		Temperature:     0.7,
		TopP:            0.95,
		TopK:            40,
		MaxOutputTokens: maxReplyTokens,
	}

	var b strings.Builder
	for chunk, err := range s.Text.Stream(ctx, fmt.Sprintf(replyPromptShape, name, message), cfg) {
		if err != nil {
			return "", err
		}
		b.WriteString(chunk)
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("contact reply timed out: %w", err)
	}
	return strings.TrimSpace(b.String()), nil
}

func (s *ContactService) log(entry logs.SystemLog, meta any) {
	if s.Logs == nil {
		return
	}
	if err := s.Logs.Log(entry, meta); err != nil {
		fmt.Printf("Failed to insert log: %v\n", err)
	}
}
