package assistclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"ai-topic-assist-be/pkg/topicassist"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(w http.ResponseWriter, data interface{}) {
	json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "code": 200, "message": "ok", "data": data})
}

func TestSuggestAndRename(t *testing.T) {
	var renameBody map[string]interface{}
	var renamePath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/ai/v1/suggest-topic-title":
			var req topicassist.SuggestRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, []int64{4, 5, 6}, req.MessageIds)
			ok(w, map[string]interface{}{"suggested_title": "Deployment strategy", "anchor_id": 6})
		case r.Method == http.MethodPatch:
			renamePath = r.URL.Path
			require.NoError(t, json.NewDecoder(r.Body).Decode(&renameBody))
			ok(w, map[string]interface{}{"affected_count": 2})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(srv.URL+"/", "tok")

	res, err := c.SuggestTitle(context.Background(), topicassist.SuggestRequest{MessageIds: []int64{4, 5, 6}, CurrentTitle: "refactor plan"})
	require.NoError(t, err)
	assert.Equal(t, "Deployment strategy", res.SuggestedTitle)
	assert.Equal(t, int64(6), res.AnchorId)

	err = c.RenameTopic(context.Background(), topicassist.RenameRequest{Anchor: 6, Topic: "Deployment strategy", PropagateMode: topicassist.PropagateChangeLater})
	require.NoError(t, err)
	assert.Equal(t, "/api/message/v1/6", renamePath)
	assert.Equal(t, "change_later", renameBody["propagate_mode"])
	assert.NotContains(t, renameBody, "Anchor")
}

func TestSendAndRecap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/message/v1":
			w.WriteHeader(http.StatusCreated)
			ok(w, map[string]interface{}{"id": 42, "stream_id": 1, "topic": "release"})
		case "/api/ai/v1/message-recap":
			ok(w, map[string]interface{}{"recap_html": "<p>done</p>", "message_refs": []interface{}{}})
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "")

	sent, err := c.SendMessage(context.Background(), 1, "release", "ship it")
	require.NoError(t, err)
	assert.Equal(t, int64(42), sent.Id)

	recap, err := c.Recap(context.Background(), []int64{42})
	require.NoError(t, err)
	assert.Equal(t, "<p>done</p>", recap.RecapHtml)
}

func TestAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/message/v1" {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("upstream down"))
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "code": 400, "message": "too many messages requested"})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")

	_, err := c.SuggestTitle(context.Background(), topicassist.SuggestRequest{})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "too many messages requested", apiErr.Message)

	_, err = c.SendMessage(context.Background(), 1, "t", "c")
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "upstream down", apiErr.Message)
}
