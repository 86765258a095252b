// Package insight generates an optional natural-language safety summary for
// a computed route. It is strictly additive: callers get routes with or
// without it, and any failure here degrades to "no insight".
package insight

import (
	"context"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/safepath/safepath/internal/planner"
)

// Config configures the insight client. An empty Key disables it.
type Config struct {
	Key       string
	Model     string
	MaxTokens int
}

// Client produces route safety insights. Satisfied by the Anthropic-backed
// client and by test fakes.
type Client interface {
	RouteInsight(ctx context.Context, rs *planner.RouteSet) (string, error)
	Enabled() bool
}

type messageCreator interface {
	New(ctx context.Context, params sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error)
}

type client struct {
	messages  messageCreator
	model     string
	maxTokens int64
	enabled   bool
}

// New creates an insight client. With no API key the client is disabled and
// RouteInsight returns an empty string without calling out.
func New(cfg Config) Client {
	if cfg.Model == "" {
		cfg.Model = "claude-sonnet-4-5-20250929"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 512
	}
	c := &client{
		model:     cfg.Model,
		maxTokens: int64(cfg.MaxTokens),
		enabled:   cfg.Key != "",
	}
	if c.enabled {
		s := sdk.NewClient(option.WithAPIKey(cfg.Key))
		c.messages = &s.Messages
	}
	return c
}

func (c *client) Enabled() bool { return c.enabled }

// RouteInsight asks the model for a 2-3 sentence safety summary of the
// computed routes. Disabled clients return "" with no error.
func (c *client) RouteInsight(ctx context.Context, rs *planner.RouteSet) (string, error) {
	if !c.enabled {
		return "", nil
	}

	msg, err := c.messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: c.maxTokens,
		System: []sdk.TextBlockParam{{
			Text: "You are a safety advisor for SafePath, a safest-route planner. " +
				"Given route statistics, reply with a brief safety insight of 2-3 " +
				"sentences for a person traveling this route at night. Be reassuring " +
				"but honest. Reply with the insight only.",
		}},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(routePrompt(rs))),
		},
	})
	if err != nil {
		return "", eris.Wrap(err, "insight: create message")
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(b.String())

	zap.L().Debug("insight: generated",
		zap.String("model", c.model),
		zap.Int64("input_tokens", msg.Usage.InputTokens),
		zap.Int64("output_tokens", msg.Usage.OutputTokens),
	)
	return text, nil
}

func routePrompt(rs *planner.RouteSet) string {
	return fmt.Sprintf(
		"Safest route: %.0f m over %d road segments, mean safety score %.2f (0 = worst, 1 = best).\n"+
			"Fastest route: %.0f m over %d segments, mean safety score %.2f.\n"+
			"The safest route is %.0f m longer than the fastest.",
		rs.Safest.Length, len(rs.Safest.NodeIDs)-1, rs.Safest.MeanSafety,
		rs.Fastest.Length, len(rs.Fastest.NodeIDs)-1, rs.Fastest.MeanSafety,
		rs.Safest.Length-rs.Fastest.Length,
	)
}
