package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"ai-topic-assist-be/internal/dto"
	"ai-topic-assist-be/internal/pkg/logger"
	"ai-topic-assist-be/internal/repository/specification"
	"ai-topic-assist-be/internal/repository/unitofwork"
	"ai-topic-assist-be/pkg/llm"

	"golang.org/x/time/rate"
)

const (
	MaxSuggestMessages = 50

	minSuggestMessages = 2
	minAverageLength   = 20
	titleMatchRatio    = 0.6

	suggestContextMessages = 30
	suggestMessageChars    = 800
	maxTitleRunes          = 60
	suggestMaxTokens       = 40

	improverModule = "TopicImprover"
)

const suggestSystemPrompt = `You generate short chat topic titles.
Return ONLY the title text (no quotes, no markdown).
Keep it <= 60 characters.
Do NOT reuse boilerplate prefixes from the current topic (e.g., 'Changing focus to', 'Topic shift:', 'New topic:', 'Discussion:').
Write the title as a neutral noun phrase describing the subject.
If the current topic is still accurate, return an empty string.`

var titleWordPattern = regexp.MustCompile(`[\p{L}\p{N}_]{3,}`)

type ITopicImproverService interface {
	SuggestTitle(ctx context.Context, req *dto.SuggestTopicTitleRequest) (*dto.SuggestTopicTitleResponse, error)
}

type topicImproverService struct {
	uowFactory unitofwork.RepositoryFactory
	llm        llm.LLMProvider
	limiter    *rate.Limiter
	timeout    time.Duration
	logger     logger.ILogger
}

// NewTopicImproverService builds the suggestion oracle. provider may be nil, in
// which case a heuristic title is returned instead of an LLM answer.
func NewTopicImproverService(
	uowFactory unitofwork.RepositoryFactory,
	provider llm.LLMProvider,
	limiter *rate.Limiter,
	timeout time.Duration,
	log logger.ILogger,
) ITopicImproverService {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &topicImproverService{
		uowFactory: uowFactory,
		llm:        provider,
		limiter:    limiter,
		timeout:    timeout,
		logger:     log,
	}
}

func (s *topicImproverService) SuggestTitle(ctx context.Context, req *dto.SuggestTopicTitleRequest) (*dto.SuggestTopicTitleResponse, error) {
	if req.MessageId == nil && len(req.MessageIds) == 0 {
		return nil, ErrMessageIdsRequired
	}
	if len(req.MessageIds) > MaxSuggestMessages {
		return nil, fmt.Errorf("%w (max %d)", ErrTooManyMessages, MaxSuggestMessages)
	}

	var anchorId int64
	if req.MessageId != nil {
		anchorId = *req.MessageId
	} else {
		anchorId = req.MessageIds[len(req.MessageIds)-1]
	}

	texts, err := s.loadTexts(ctx, req.MessageIds, anchorId)
	if err != nil {
		return nil, err
	}

	res := &dto.SuggestTopicTitleResponse{AnchorId: anchorId}
	if !worthAsking(texts, req.CurrentTitle) {
		return res, nil
	}

	res.SuggestedTitle = s.suggest(ctx, texts, req.CurrentTitle)
	s.logger.Info(improverModule, "Topic title suggested", map[string]interface{}{
		"anchor_id":     anchorId,
		"current_title": req.CurrentTitle,
		"suggested":     res.SuggestedTitle,
		"messages":      len(texts),
	})
	return res, nil
}

// loadTexts returns the non-blank contents of ids in request order, or of the
// anchor alone when no ids were sent.
func (s *topicImproverService) loadTexts(ctx context.Context, ids []int64, anchorId int64) ([]string, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if len(ids) == 0 {
		anchor, err := uow.MessageRepository().FindOne(ctx, specification.ByMessageID{ID: anchorId})
		if err != nil {
			return nil, err
		}
		if anchor == nil {
			return nil, ErrMessageNotFound
		}
		if text := strings.TrimSpace(anchor.Content); text != "" {
			return []string{text}, nil
		}
		return []string{}, nil
	}

	messages, err := uow.MessageRepository().FindByIds(ctx, ids)
	if err != nil {
		return nil, err
	}
	texts := make([]string, 0, len(messages))
	for _, m := range messages {
		if text := strings.TrimSpace(m.Content); text != "" {
			texts = append(texts, text)
		}
	}
	return texts, nil
}

// worthAsking applies the cheap checks that rule out a drift before any LLM
// call: too few messages, messages too short, or a current title most of the
// messages still mention.
func worthAsking(texts []string, currentTitle string) bool {
	if len(texts) < minSuggestMessages {
		return false
	}

	total := 0
	for _, t := range texts {
		total += utf8.RuneCountInString(t)
	}
	if float64(total)/float64(len(texts)) < minAverageLength {
		return false
	}

	words := titleWordPattern.FindAllString(strings.ToLower(currentTitle), -1)
	if len(words) == 0 {
		return true
	}
	matches := 0
	for _, t := range texts {
		lower := strings.ToLower(t)
		for _, w := range words {
			if strings.Contains(lower, w) {
				matches++
				break
			}
		}
	}
	return float64(matches)/float64(len(texts)) <= titleMatchRatio
}

func (s *topicImproverService) suggest(ctx context.Context, texts []string, currentTitle string) string {
	recent := texts
	if len(recent) > suggestContextMessages {
		recent = recent[len(recent)-suggestContextMessages:]
	}
	labelled := make([]string, len(recent))
	for i, t := range recent {
		labelled[i] = truncateRunes(t, suggestMessageChars)
	}

	if s.llm == nil {
		return fallbackTitle(labelled, currentTitle)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		s.logger.Warn(improverModule, "LLM rate limiter refused request", map[string]interface{}{"error": err.Error()})
		return fallbackTitle(labelled, currentTitle)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var user strings.Builder
	if currentTitle != "" {
		fmt.Fprintf(&user, "Current topic: %s\n\n", currentTitle)
	}
	user.WriteString("Recent messages:\n\n")
	user.WriteString(strings.Join(labelled, "\n\n---\n\n"))
	user.WriteString("\n\nSuggest a better topic title if the discussion focus has changed.")

	content, err := s.llm.Chat(callCtx, []llm.Message{
		{Role: "system", Content: suggestSystemPrompt},
		{Role: "user", Content: user.String()},
	}, llm.WithTemperature(0), llm.WithMaxTokens(suggestMaxTokens))
	if err != nil {
		s.logger.Error(improverModule, "Topic suggestion LLM failed, using fallback", map[string]interface{}{"error": err.Error()})
		return fallbackTitle(labelled, currentTitle)
	}

	return cleanTitle(content)
}

// cleanTitle keeps the first line of an LLM answer, unquoted and bounded.
func cleanTitle(content string) string {
	content = strings.TrimSpace(content)
	if i := strings.IndexByte(content, '\n'); i >= 0 {
		content = content[:i]
	}
	content = strings.Trim(strings.TrimSpace(content), "\"'`")
	return strings.TrimSpace(truncateRunes(content, maxTitleRunes))
}

// fallbackTitle is the first line of the latest message, or the current title.
func fallbackTitle(texts []string, currentTitle string) string {
	if len(texts) > 0 {
		line := texts[len(texts)-1]
		if i := strings.IndexByte(line, '\n'); i >= 0 {
			line = line[:i]
		}
		if candidate := strings.TrimSpace(truncateRunes(strings.TrimSpace(line), maxTitleRunes)); candidate != "" {
			return candidate
		}
	}
	return currentTitle
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
