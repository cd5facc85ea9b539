package contracts

import "context"

// Assist is the AI boundary: pure request/response over chat text, no state.
type Assist interface {
	// SmartReply proposes short replies to the last message in a chat.
	SmartReply(ctx context.Context, lastMessage string) ([]string, error)
	// Summarize condenses a chat transcript into a short summary.
	Summarize(ctx context.Context, messages []string) (string, error)
}
