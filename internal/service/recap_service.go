package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"ai-topic-assist-be/internal/dto"
	"ai-topic-assist-be/internal/pkg/logger"
	"ai-topic-assist-be/internal/repository/unitofwork"
	"ai-topic-assist-be/pkg/htmlsafe"
	"ai-topic-assist-be/pkg/llm"

	"golang.org/x/time/rate"
)

const (
	MaxRecapMessages = 200

	recapMessageChars   = 3000
	recapFallbackCount  = 10
	recapFallbackChars  = 4000
	recapSnippetChars   = 300
	recapMaxTokens      = 800
	recapTemperature    = 0.2
	recapMessageDivider = "\n\n---\n\n"

	recapModule = "MessageRecap"
)

const recapSystemPrompt = `You are a concise assistant.
Return ONLY valid HTML.
DO NOT use Markdown.
DO NOT wrap output in ` + "```" + ` or ` + "```html" + `.
DO NOT include message IDs like MSG 12.
Use <p>, <ul>, <li>, <strong> only.`

type IRecapService interface {
	Recap(ctx context.Context, req *dto.MessageRecapRequest) (*dto.MessageRecapResponse, error)
}

type recapService struct {
	uowFactory unitofwork.RepositoryFactory
	llm        llm.LLMProvider
	limiter    *rate.Limiter
	timeout    time.Duration
	logger     logger.ILogger
}

func NewRecapService(
	uowFactory unitofwork.RepositoryFactory,
	provider llm.LLMProvider,
	limiter *rate.Limiter,
	timeout time.Duration,
	log logger.ILogger,
) IRecapService {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &recapService{
		uowFactory: uowFactory,
		llm:        provider,
		limiter:    limiter,
		timeout:    timeout,
		logger:     log,
	}
}

func (s *recapService) Recap(ctx context.Context, req *dto.MessageRecapRequest) (*dto.MessageRecapResponse, error) {
	if len(req.MessageIds) == 0 {
		return nil, ErrMessageIdsRequired
	}
	if len(req.MessageIds) > MaxRecapMessages {
		return nil, fmt.Errorf("%w (max %d)", ErrTooManyMessages, MaxRecapMessages)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	messages, err := uow.MessageRepository().FindByIds(ctx, req.MessageIds)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(messages))
	refs := make([]dto.MessageRef, len(messages))
	for i, m := range messages {
		texts[i] = m.Content
		refs[i] = dto.MessageRef{
			MessageId: m.Id,
			Anchor:    fmt.Sprintf("/#narrow/near/%d", m.Id),
			Snippet:   strings.ReplaceAll(truncateRunes(m.Content, recapSnippetChars), "\n", " "),
		}
	}

	return &dto.MessageRecapResponse{
		RecapHtml:   s.generate(ctx, texts),
		MessageRefs: refs,
	}, nil
}

func (s *recapService) generate(ctx context.Context, texts []string) string {
	if len(texts) == 0 {
		return "<p>(no messages)</p>"
	}

	labelled := make([]string, 0, len(texts))
	for _, t := range texts {
		labelled = append(labelled, truncateRunes(t, recapMessageChars))
	}

	if s.llm == nil {
		s.logger.Warn(recapModule, "No LLM configured, returning fallback recap", nil)
		return fallbackRecap(labelled)
	}
	if err := s.limiter.Wait(ctx); err != nil {
		s.logger.Warn(recapModule, "LLM rate limiter refused request", map[string]interface{}{"error": err.Error()})
		return fallbackRecap(labelled)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	content, err := s.llm.Chat(callCtx, []llm.Message{
		{Role: "system", Content: recapSystemPrompt},
		{Role: "user", Content: "Messages:\n\n" + strings.Join(labelled, recapMessageDivider)},
	}, llm.WithTemperature(recapTemperature), llm.WithMaxTokens(recapMaxTokens))
	if err != nil {
		s.logger.Error(recapModule, "LLM request failed, returning fallback recap", map[string]interface{}{"error": err.Error()})
		return fallbackRecap(labelled)
	}

	content = stripCodeFence(content)
	if content == "" {
		return "<p>(empty recap)</p>"
	}
	return "<div class='ai-recap'>" + htmlsafe.Sanitize(content) + "</div>"
}

func fallbackRecap(labelled []string) string {
	if len(labelled) > recapFallbackCount {
		labelled = labelled[:recapFallbackCount]
	}
	joined := truncateRunes(strings.Join(labelled, recapMessageDivider), recapFallbackChars)
	return "<p><strong>Recap (fallback):</strong></p><pre>" + html.EscapeString(joined) + "</pre>"
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		return ""
	}
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
