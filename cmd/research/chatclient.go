package main

import "maestro/internal/llm"

func newChatClient(apiKey string) *llm.Client {
	return llm.NewClientWithDefaults(apiKey)
}
