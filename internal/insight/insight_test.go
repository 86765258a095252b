package insight

import (
	"context"
	"testing"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safepath/safepath/internal/geo"
	"github.com/safepath/safepath/internal/planner"
	"github.com/safepath/safepath/internal/router"
)

type fakeMessages struct {
	reply  string
	err    error
	prompt string
}

func (f *fakeMessages) New(ctx context.Context, params sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error) {
	if len(params.Messages) > 0 && len(params.Messages[0].Content) > 0 {
		if block := params.Messages[0].Content[0].OfText; block != nil {
			f.prompt = block.Text
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &sdk.Message{
		Content: []sdk.ContentBlockUnion{{Type: "text", Text: f.reply}},
	}, nil
}

func testRouteSet() *planner.RouteSet {
	return &planner.RouteSet{
		Origin:      geo.Coord{Lon: 77.20, Lat: 28.54},
		Destination: geo.Coord{Lon: 77.22, Lat: 28.54},
		Safest: &router.Path{
			NodeIDs:    []int64{1, 2, 3},
			Length:     2500,
			MeanSafety: 0.81,
		},
		Fastest: &router.Path{
			NodeIDs:    []int64{1, 4, 3},
			Length:     2100,
			MeanSafety: 0.44,
		},
	}
}

func TestNew_DisabledWithoutKey(t *testing.T) {
	c := New(Config{})
	assert.False(t, c.Enabled())

	text, err := c.RouteInsight(context.Background(), testRouteSet())
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestRouteInsight_ReturnsText(t *testing.T) {
	fake := &fakeMessages{reply: "  Stick to the safest route after dark.  "}
	c := &client{messages: fake, model: "m", maxTokens: 512, enabled: true}

	text, err := c.RouteInsight(context.Background(), testRouteSet())
	require.NoError(t, err)
	assert.Equal(t, "Stick to the safest route after dark.", text)

	// Prompt carries the stats the model needs.
	assert.Contains(t, fake.prompt, "2500 m")
	assert.Contains(t, fake.prompt, "0.81")
	assert.Contains(t, fake.prompt, "2100 m")
	assert.Contains(t, fake.prompt, "400 m longer")
}

func TestRouteInsight_PropagatesError(t *testing.T) {
	fake := &fakeMessages{err: eris.New("api down")}
	c := &client{messages: fake, model: "m", maxTokens: 512, enabled: true}

	_, err := c.RouteInsight(context.Background(), testRouteSet())
	require.Error(t, err)
}
