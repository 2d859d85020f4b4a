package llmagents

import (
	"context"

	"maestro/internal/llm"
	"maestro/internal/modeldispatch"
)

// TitleAdapter implements report.TitleGenerator against the messenger
// role (a short, cheap completion, matching spec §4.8's "5-15 word
// title" budget).
type TitleAdapter struct {
	Dispatcher *modeldispatch.Dispatcher
}

func (a TitleAdapter) GenerateTitle(ctx context.Context, prompt string) (string, error) {
	raw, _, err := a.Dispatcher.Dispatch(ctx, []llm.Message{
		{Role: "user", Content: prompt},
	}, modeldispatch.RoleMessenger, nil)
	return raw, err
}
