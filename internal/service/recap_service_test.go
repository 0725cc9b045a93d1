package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ai-topic-assist-be/internal/dto"
	"ai-topic-assist-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecapValidation(t *testing.T) {
	svc := NewRecapService(newMemStore(), nil, nil, 0, logger.NewNopLogger())

	_, err := svc.Recap(context.Background(), &dto.MessageRecapRequest{})
	assert.ErrorIs(t, err, ErrMessageIdsRequired)

	_, err = svc.Recap(context.Background(), &dto.MessageRecapRequest{MessageIds: make([]int64, MaxRecapMessages+1)})
	assert.ErrorIs(t, err, ErrTooManyMessages)
}

func TestRecapWithLLM(t *testing.T) {
	store := newMemStore()
	ids := store.seed(1, "release", "first <b>line</b>\nsecond line", "ship it on friday")
	model := &fakeLLM{reply: "```html\n<p>Team agreed to <strong>ship</strong></p><script>x()</script>\n```"}
	svc := NewRecapService(store, model, nil, 0, logger.NewNopLogger())

	res, err := svc.Recap(context.Background(), &dto.MessageRecapRequest{MessageIds: []int64{ids[1], 999, ids[0]}})

	require.NoError(t, err)
	assert.Equal(t, "<div class='ai-recap'><p>Team agreed to <strong>ship</strong></p></div>", res.RecapHtml)

	require.Len(t, res.MessageRefs, 2, "unknown ids are skipped")
	assert.Equal(t, ids[1], res.MessageRefs[0].MessageId, "request order kept")
	assert.Equal(t, "/#narrow/near/1", res.MessageRefs[1].Anchor)
	assert.Equal(t, "first <b>line</b> second line", res.MessageRefs[1].Snippet)

	opts := model.options[0]
	assert.Equal(t, 800, opts.MaxTokens)
	assert.Equal(t, 0.2, *opts.Temperature)
	assert.True(t, strings.HasPrefix(model.history[0][1].Content, "Messages:\n\nship it on friday\n\n---\n\n"))
}

func TestRecapFallback(t *testing.T) {
	store := newMemStore()
	contents := make([]string, 12)
	for i := range contents {
		contents[i] = "message <" + string(rune('a'+i)) + ">"
	}
	ids := store.seed(1, "release", contents...)

	for name, svc := range map[string]IRecapService{
		"no llm":     NewRecapService(store, nil, nil, 0, logger.NewNopLogger()),
		"llm failed": NewRecapService(store, &fakeLLM{err: errors.New("timeout")}, nil, 0, logger.NewNopLogger()),
	} {
		t.Run(name, func(t *testing.T) {
			res, err := svc.Recap(context.Background(), &dto.MessageRecapRequest{MessageIds: ids})
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(res.RecapHtml, "<p><strong>Recap (fallback):</strong></p><pre>"))
			assert.Contains(t, res.RecapHtml, "message &lt;a&gt;")
			assert.Contains(t, res.RecapHtml, "message &lt;j&gt;")
			assert.NotContains(t, res.RecapHtml, "message &lt;k&gt;", "only the first ten messages")
			assert.Len(t, res.MessageRefs, 12)
		})
	}
}

func TestRecapEmptyAnswers(t *testing.T) {
	store := newMemStore()
	ids := store.seed(1, "release", "hello")

	svc := NewRecapService(store, &fakeLLM{reply: "```\n```"}, nil, 0, logger.NewNopLogger())
	res, err := svc.Recap(context.Background(), &dto.MessageRecapRequest{MessageIds: ids})
	require.NoError(t, err)
	assert.Equal(t, "<p>(empty recap)</p>", res.RecapHtml)

	res, err = svc.Recap(context.Background(), &dto.MessageRecapRequest{MessageIds: []int64{42}})
	require.NoError(t, err)
	assert.Equal(t, "<p>(no messages)</p>", res.RecapHtml)
	assert.Empty(t, res.MessageRefs)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, "<p>x</p>", stripCodeFence("```html\n<p>x</p>\n```"))
	assert.Equal(t, "<p>x</p>", stripCodeFence("  <p>x</p> "))
	assert.Equal(t, "", stripCodeFence("```"))
}
