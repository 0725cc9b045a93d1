package controller

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ai-topic-assist-be/internal/dto"
	"ai-topic-assist-be/internal/pkg/logger"
	"ai-topic-assist-be/internal/pkg/serverutils"
	"ai-topic-assist-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "controller-test-secret"

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestApp(t *testing.T, register ...func(fiber.Router)) *fiber.App {
	t.Helper()
	t.Setenv("JWT_SECRET", testSecret)

	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	api := app.Group("/api")
	for _, r := range register {
		r(api)
	}
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path string, userId uuid.UUID, body interface{}) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userId != uuid.Nil {
		token, err := serverutils.SignToken(userId, testSecret, time.Minute)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

type stubMessageService struct {
	sendErr    error
	renameErr  error
	lastRename *dto.RenameTopicRequest
	lastSource string
	lastUser   uuid.UUID
}

func (s *stubMessageService) Send(ctx context.Context, userId uuid.UUID, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	s.lastUser = userId
	if s.sendErr != nil {
		return nil, s.sendErr
	}
	return &dto.SendMessageResponse{Id: 11, StreamId: req.StreamId, Topic: req.Topic}, nil
}

func (s *stubMessageService) Show(ctx context.Context, id int64) (*dto.MessageResponse, error) {
	if id != 11 {
		return nil, service.ErrMessageNotFound
	}
	return &dto.MessageResponse{Id: 11, Topic: "release"}, nil
}

func (s *stubMessageService) RenameTopic(ctx context.Context, userId uuid.UUID, req *dto.RenameTopicRequest, source string) (*dto.RenameTopicResponse, error) {
	s.lastRename = req
	s.lastSource = source
	if s.renameErr != nil {
		return nil, s.renameErr
	}
	return &dto.RenameTopicResponse{MessageId: req.MessageId, NewTopic: req.Topic, AffectedCount: 2}, nil
}

func (s *stubMessageService) RenameHistory(ctx context.Context, req *dto.TopicRenameHistoryRequest) ([]dto.TopicRenameResponse, error) {
	return []dto.TopicRenameResponse{{StreamId: req.StreamId, NewTopic: "Deployment strategy"}}, nil
}

func TestMessageController(t *testing.T) {
	svc := &stubMessageService{}
	app := newTestApp(t, NewMessageController(svc).RegisterRoutes)
	user := uuid.New()

	code, _ := doRequest(t, app, http.MethodPost, "/api/message/v1", uuid.Nil, dto.SendMessageRequest{StreamId: 1, Topic: "x", Content: "y"})
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, env := doRequest(t, app, http.MethodPost, "/api/message/v1", user, dto.SendMessageRequest{StreamId: 1, Topic: "release", Content: "ship"})
	assert.Equal(t, fiber.StatusCreated, code)
	assert.True(t, env.Success)
	assert.Equal(t, user, svc.lastUser)

	code, env = doRequest(t, app, http.MethodPost, "/api/message/v1", user, map[string]interface{}{"stream_id": 1, "content": "no topic"})
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Contains(t, env.Message, "topic is required")

	code, _ = doRequest(t, app, http.MethodGet, "/api/message/v1/11", user, nil)
	assert.Equal(t, fiber.StatusOK, code)

	code, _ = doRequest(t, app, http.MethodGet, "/api/message/v1/12", user, nil)
	assert.Equal(t, fiber.StatusNotFound, code)

	code, _ = doRequest(t, app, http.MethodGet, "/api/message/v1/abc", user, nil)
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, env = doRequest(t, app, http.MethodPatch, "/api/message/v1/11", user, map[string]string{"topic": "Deployment strategy", "propagate_mode": "change_later"})
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, int64(11), svc.lastRename.MessageId)
	assert.Equal(t, service.RenameSourceManual, svc.lastSource)
	var renamed dto.RenameTopicResponse
	require.NoError(t, json.Unmarshal(env.Data, &renamed))
	assert.Equal(t, int64(2), renamed.AffectedCount)

	code, _ = doRequest(t, app, http.MethodPatch, "/api/message/v1/11", user, map[string]string{"topic": "x", "propagate_mode": "sideways"})
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, env = doRequest(t, app, http.MethodGet, "/api/message/v1/renames?stream_id=5", user, nil)
	require.Equal(t, fiber.StatusOK, code)
	var history []dto.TopicRenameResponse
	require.NoError(t, json.Unmarshal(env.Data, &history))
	require.Len(t, history, 1)
	assert.Equal(t, int64(5), history[0].StreamId)

	code, _ = doRequest(t, app, http.MethodGet, "/api/message/v1/renames", user, nil)
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestMessageControllerInternalError(t *testing.T) {
	svc := &stubMessageService{sendErr: errors.New("connection refused")}
	app := newTestApp(t, NewMessageController(svc).RegisterRoutes)

	code, env := doRequest(t, app, http.MethodPost, "/api/message/v1", uuid.New(), dto.SendMessageRequest{StreamId: 1, Topic: "t", Content: "c"})
	assert.Equal(t, fiber.StatusInternalServerError, code)
	assert.False(t, env.Success)
}

type stubImprover struct{ err error }

func (s stubImprover) SuggestTitle(ctx context.Context, req *dto.SuggestTopicTitleRequest) (*dto.SuggestTopicTitleResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.SuggestTopicTitleResponse{SuggestedTitle: "Deployment strategy", AnchorId: req.MessageIds[len(req.MessageIds)-1]}, nil
}

type stubRecap struct{ err error }

func (s stubRecap) Recap(ctx context.Context, req *dto.MessageRecapRequest) (*dto.MessageRecapResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.MessageRecapResponse{RecapHtml: "<div class='ai-recap'></div>"}, nil
}

func TestAiController(t *testing.T) {
	user := uuid.New()

	app := newTestApp(t, NewAiController(stubImprover{}, stubRecap{}).RegisterRoutes)
	code, env := doRequest(t, app, http.MethodPost, "/api/ai/v1/suggest-topic-title", user, dto.SuggestTopicTitleRequest{MessageIds: []int64{4, 9}, CurrentTitle: "refactor plan"})
	require.Equal(t, fiber.StatusOK, code)
	var suggested dto.SuggestTopicTitleResponse
	require.NoError(t, json.Unmarshal(env.Data, &suggested))
	assert.Equal(t, int64(9), suggested.AnchorId)

	code, _ = doRequest(t, app, http.MethodPost, "/api/ai/v1/message-recap", user, dto.MessageRecapRequest{MessageIds: []int64{1}})
	assert.Equal(t, fiber.StatusOK, code)

	failing := newTestApp(t, NewAiController(stubImprover{err: service.ErrTooManyMessages}, stubRecap{err: service.ErrMessageIdsRequired}).RegisterRoutes)
	code, _ = doRequest(t, failing, http.MethodPost, "/api/ai/v1/suggest-topic-title", user, dto.SuggestTopicTitleRequest{})
	assert.Equal(t, fiber.StatusBadRequest, code)
	code, _ = doRequest(t, failing, http.MethodPost, "/api/ai/v1/message-recap", user, dto.MessageRecapRequest{})
	assert.Equal(t, fiber.StatusBadRequest, code)
}

type stubAssist struct {
	applyErr error
	ended    []uuid.UUID
}

func (s *stubAssist) RecordSend(userId uuid.UUID, topic string, messageIds []int64) {}

func (s *stubAssist) State(userId uuid.UUID) dto.TopicAssistStateResponse {
	return dto.TopicAssistStateResponse{State: "offered", Suggestion: &dto.FloatingSuggestionResponse{AnchorId: 3, SuggestedTitle: "Deployment strategy"}}
}

func (s *stubAssist) Apply(ctx context.Context, userId uuid.UUID, title string) (*dto.ApplySuggestionResponse, error) {
	if s.applyErr != nil {
		return &dto.ApplySuggestionResponse{State: "offered"}, s.applyErr
	}
	return &dto.ApplySuggestionResponse{Applied: true, Title: title, State: "idle"}, nil
}

func (s *stubAssist) Dismiss(userId uuid.UUID) dto.TopicAssistActionResponse {
	return dto.TopicAssistActionResponse{Changed: true, State: "idle"}
}

func (s *stubAssist) Close(userId uuid.UUID) dto.TopicAssistActionResponse {
	return dto.TopicAssistActionResponse{Changed: false, State: "idle"}
}

func (s *stubAssist) EndSession(userId uuid.UUID) { s.ended = append(s.ended, userId) }
func (s *stubAssist) Shutdown()                   {}

func TestTopicAssistController(t *testing.T) {
	user := uuid.New()
	svc := &stubAssist{}
	app := newTestApp(t, NewTopicAssistController(svc).RegisterRoutes)

	code, env := doRequest(t, app, http.MethodGet, "/api/topic-assist/v1/state", user, nil)
	require.Equal(t, fiber.StatusOK, code)
	var state dto.TopicAssistStateResponse
	require.NoError(t, json.Unmarshal(env.Data, &state))
	assert.Equal(t, "Deployment strategy", state.Suggestion.SuggestedTitle)

	code, env = doRequest(t, app, http.MethodPost, "/api/topic-assist/v1/apply", user, dto.ApplySuggestionRequest{Title: "Deployment strategy"})
	require.Equal(t, fiber.StatusOK, code)
	var applied dto.ApplySuggestionResponse
	require.NoError(t, json.Unmarshal(env.Data, &applied))
	assert.True(t, applied.Applied)

	code, env = doRequest(t, app, http.MethodPost, "/api/topic-assist/v1/dismiss", user, nil)
	require.Equal(t, fiber.StatusOK, code)
	var dismissed dto.TopicAssistActionResponse
	require.NoError(t, json.Unmarshal(env.Data, &dismissed))
	assert.True(t, dismissed.Changed)

	code, _ = doRequest(t, app, http.MethodPost, "/api/topic-assist/v1/close", user, nil)
	assert.Equal(t, fiber.StatusOK, code)

	code, _ = doRequest(t, app, http.MethodDelete, "/api/topic-assist/v1/session", user, nil)
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, []uuid.UUID{user}, svc.ended)
}

func TestTopicAssistApplyFailureIsNotAnHttpError(t *testing.T) {
	app := newTestApp(t, NewTopicAssistController(&stubAssist{applyErr: errors.New("rename timed out")}).RegisterRoutes)

	code, env := doRequest(t, app, http.MethodPost, "/api/topic-assist/v1/apply", uuid.New(), dto.ApplySuggestionRequest{Title: "x"})
	require.Equal(t, fiber.StatusOK, code)
	var applied dto.ApplySuggestionResponse
	require.NoError(t, json.Unmarshal(env.Data, &applied))
	assert.False(t, applied.Applied)
	assert.Equal(t, "offered", applied.State)
}

func TestTopicAssistDisabled(t *testing.T) {
	app := newTestApp(t, NewTopicAssistController(nil).RegisterRoutes)

	code, env := doRequest(t, app, http.MethodGet, "/api/topic-assist/v1/state", uuid.New(), nil)
	assert.Equal(t, fiber.StatusNotFound, code)
	assert.Equal(t, service.ErrNoSession.Error(), env.Message)
}

func TestDiagnosticsController(t *testing.T) {
	diag := logger.NewIsolatedLogger(filepath.Join(t.TempDir(), "diag.log"))
	diag.Info("TopicAssist", "Suggestion offered", map[string]interface{}{"anchor": 3})
	diag.Warn("TopicAssist", "Suggestion request failed", nil)
	require.NoError(t, diag.Sync())

	app := newTestApp(t, NewDiagnosticsController(diag).RegisterRoutes)
	user := uuid.New()

	code, env := doRequest(t, app, http.MethodGet, "/api/diagnostics/v1/logs?level=warn", user, nil)
	require.Equal(t, fiber.StatusOK, code)
	var logs []dto.LogListResponse
	require.NoError(t, json.Unmarshal(env.Data, &logs))
	require.Len(t, logs, 1)
	assert.Equal(t, "Suggestion request failed", logs[0].Message)

	code, env = doRequest(t, app, http.MethodGet, "/api/diagnostics/v1/logs/"+logs[0].Id, user, nil)
	require.Equal(t, fiber.StatusOK, code)
	var detail dto.LogDetailResponse
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Equal(t, "TopicAssist", detail.Module)

	code, _ = doRequest(t, app, http.MethodGet, "/api/diagnostics/v1/logs/missing", user, nil)
	assert.Equal(t, fiber.StatusNotFound, code)
}
