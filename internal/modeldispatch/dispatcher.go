// Package modeldispatch generalizes the teacher's single-provider
// llm.Client into the Model Dispatcher (L2): it routes a chat completion
// by agent role to a model class, then to a concrete model/provider via
// the Settings Resolver, applies admission control, retries, and reports
// usage/cost.
package modeldispatch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"maestro/internal/llm"
	"maestro/internal/merrors"
	"maestro/internal/settings"
)

// Details mirrors the dispatch contract's details tuple. Absent fields
// default to 0 and are still reported (never propagate a missing value
// as nil into stats).
type Details struct {
	ModelName        string
	Provider         string
	PromptTokens     int
	CompletionTokens int
	NativeTotalTokens int
	Cost             float64
}

// Overrides lets a caller pin a concrete model/provider/temperature for a
// single call, bypassing role->class resolution.
type Overrides struct {
	Model       string
	Provider    string
	Temperature *float64
	MaxTokens   int
}

// CostTracker accumulates dispatch totals by model key, mirroring the
// teacher's session.CostBreakdown.Add accumulation pattern.
type CostTracker struct {
	byModel map[string]*Totals
}

// Totals is the running sum for one model key.
type Totals struct {
	PromptTokens     int
	CompletionTokens int
	Cost             float64
	Calls            int
}

// NewCostTracker constructs an empty tracker.
func NewCostTracker() *CostTracker {
	return &CostTracker{byModel: make(map[string]*Totals)}
}

func (c *CostTracker) record(d Details) {
	key := d.Provider + ":" + d.ModelName
	t, ok := c.byModel[key]
	if !ok {
		t = &Totals{}
		c.byModel[key] = t
	}
	t.PromptTokens += d.PromptTokens
	t.CompletionTokens += d.CompletionTokens
	t.Cost += d.Cost
	t.Calls++
}

// Snapshot returns a copy of the per-model totals accumulated so far.
func (c *CostTracker) Snapshot() map[string]Totals {
	out := make(map[string]Totals, len(c.byModel))
	for k, v := range c.byModel {
		out[k] = *v
	}
	return out
}

// ChatClient is the narrow wire-protocol dependency; llm.Client satisfies
// it for the openrouter/local/custom providers (all OpenAI-compatible).
type ChatClient interface {
	Chat(ctx context.Context, messages []llm.Message) (*llm.ChatResponse, error)
	SetModel(model string)
	GetModel() string
}

// Dispatcher routes, retries, and meters chat completions.
type Dispatcher struct {
	resolver *settings.Resolver
	client   ChatClient
	sem      *semaphore.Weighted
	tracker  *CostTracker
}

// New constructs a Dispatcher. maxConcurrent <= 0 means unbounded, per
// spec §4.2 ("0 ⇒ unbounded").
func New(resolver *settings.Resolver, client ChatClient, maxConcurrent int) *Dispatcher {
	var sem *semaphore.Weighted
	if maxConcurrent > 0 {
		sem = semaphore.NewWeighted(int64(maxConcurrent))
	}
	return &Dispatcher{resolver: resolver, client: client, sem: sem, tracker: NewCostTracker()}
}

// CostTracker exposes the dispatcher's running cost totals.
func (d *Dispatcher) CostTracker() *CostTracker { return d.tracker }

// Dispatch sends messages for the given role, returning the response
// content and usage/cost details. It acquires the concurrency semaphore,
// applies per-role overrides, and retries transient failures.
func (d *Dispatcher) Dispatch(ctx context.Context, messages []llm.Message, role Role, overrides *Overrides) (string, Details, error) {
	if d.sem != nil {
		if err := d.sem.Acquire(ctx, 1); err != nil {
			return "", Details{}, merrors.Wrap(merrors.Cancelled, "dispatch: acquire semaphore", err)
		}
		defer d.sem.Release(1)
	}

	model := d.resolveModel(role, overrides)
	provider := d.resolveProvider(role, overrides)
	d.client.SetModel(model)

	maxRetries, _ := d.resolver.GetInt("max_retries", nil, nil)
	if maxRetries <= 0 {
		maxRetries = 1
	}
	retryDelay, _ := d.resolver.GetInt("retry_delay", nil, nil)

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		resp, err := d.client.Chat(ctx, messages)
		if err == nil {
			content := ""
			if len(resp.Choices) > 0 {
				content = resp.Choices[0].Message.Content
			}
			details := Details{
				ModelName:         model,
				Provider:          provider,
				PromptTokens:      resp.Usage.PromptTokens,
				CompletionTokens:  resp.Usage.CompletionTokens,
				NativeTotalTokens: resp.Usage.TotalTokens,
			}
			_, _, cost := llm.CalculateCost(model, details.PromptTokens, details.CompletionTokens)
			details.Cost = cost
			d.tracker.record(details)
			return content, details, nil
		}

		lastErr = err
		if isAuthError(err) {
			return "", Details{}, merrors.Wrap(merrors.AuthenticationFailed, "dispatch: non-retriable auth failure", err)
		}

		if attempt < maxRetries-1 {
			select {
			case <-ctx.Done():
				return "", Details{}, merrors.Wrap(merrors.Cancelled, "dispatch: context cancelled during retry wait", ctx.Err())
			case <-time.After(time.Duration(retryDelay) * time.Second):
			}
		}
	}

	return "", Details{}, merrors.Wrap(merrors.TransientProvider, fmt.Sprintf("dispatch: exhausted %d attempts", maxRetries), lastErr)
}

func (d *Dispatcher) resolveModel(role Role, overrides *Overrides) string {
	if overrides != nil && overrides.Model != "" {
		return overrides.Model
	}
	class := ClassFor(role)
	if m, err := d.resolver.GetString("model_"+string(class), nil, nil); err == nil && m != "" {
		return m
	}
	return llm.DefaultModel
}

func (d *Dispatcher) resolveProvider(role Role, overrides *Overrides) string {
	if overrides != nil && overrides.Provider != "" {
		return overrides.Provider
	}
	class := ClassFor(role)
	name := fmt.Sprintf("%s_llm_provider", string(class))
	if p, err := d.resolver.GetString(name, nil, nil); err == nil && p != "" {
		return p
	}
	return "openrouter"
}

// isAuthError is a small heuristic matching the status codes the wire
// protocol surfaces for 401/403 from the HTTP client's error text.
func isAuthError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, sub := range []string{"API error 401", "API error 403", "Unauthorized", "Forbidden"} {
		if strings.Contains(msg, sub) {
			return true
		}
	}
	return false
}
