package greenapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/wadigest/internal/config"
	"github.com/edgard/wadigest/internal/request"
)

const (
	testInstance = "1101000001"
	testToken    = "s3cr3t-token"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(config.GreenAPIConfig{
		BaseURL:    srv.URL + "/",
		InstanceID: testInstance,
		Token:      testToken,
		Timeout:    5 * time.Second,
	}, nil)
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	_, err := NewClient(config.GreenAPIConfig{BaseURL: "http://x"}, nil)
	assert.Error(t, err)
}

func TestGetChatHistory(t *testing.T) {
	var gotBody map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/waInstance"+testInstance+"/GetChatHistory/"+testToken, r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))
		_, _ = io.WriteString(w, `[
			{"idMessage":"A","typeMessage":"textMessage","chatId":"1@g.us","senderId":"s@c.us","timestamp":1700000000,"textMessage":"hi"},
			{"idMessage":"B","typeMessage":"imageMessage","chatId":"1@g.us","senderId":"s@c.us","timestamp":1700000001,"downloadUrl":"https://x/y.jpg","caption":"pic"}
		]`)
	})

	msgs, err := c.GetChatHistory(context.Background(), "1@g.us", 200)
	require.NoError(t, err)

	want := []Message{
		{IDMessage: "A", TypeMessage: TypeText, ChatID: "1@g.us", SenderID: "s@c.us", Timestamp: 1700000000, TextMessage: "hi"},
		{IDMessage: "B", TypeMessage: TypeImage, ChatID: "1@g.us", SenderID: "s@c.us", Timestamp: 1700000001, DownloadURL: "https://x/y.jpg", Caption: "pic"},
	}
	if diff := cmp.Diff(want, msgs); diff != "" {
		t.Errorf("GetChatHistory mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "1@g.us", gotBody["chatId"])
	assert.EqualValues(t, 200, gotBody["count"])
}

func TestGetChatHistory_EmptyIsNotAnError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	})
	msgs, err := c.GetChatHistory(context.Background(), "1@g.us", 10)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestGetChatHistory_Failures(t *testing.T) {
	tests := map[string]struct {
		status  int
		body    string
		wantErr error
	}{
		"server error":     {status: http.StatusInternalServerError, body: `oops`, wantErr: request.ErrUnexpectedStatus},
		"non json":         {status: http.StatusOK, body: `<html></html>`, wantErr: request.ErrMalformedResponse},
		"object not array": {status: http.StatusOK, body: `{"error":"x"}`, wantErr: request.ErrMalformedResponse},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			})
			msgs, err := c.GetChatHistory(context.Background(), "1@g.us", 10)
			require.ErrorIs(t, err, tc.wantErr)
			assert.Nil(t, msgs)
			assert.NotContains(t, err.Error(), testToken)
		})
	}
}

func TestGetChats(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/waInstance"+testInstance+"/getChats/"+testToken, r.URL.Path)
		_, _ = io.WriteString(w, `[{"id":"1@g.us","name":"one"},{"id":"972500000000@c.us"}]`)
	})

	chats, err := c.GetChats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Chat{{ID: "1@g.us", Name: "one"}, {ID: "972500000000@c.us"}}, chats)
}

func TestGetChats_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	chats, err := c.GetChats(context.Background())
	require.ErrorIs(t, err, request.ErrUnexpectedStatus)
	assert.Nil(t, chats)
	assert.NotContains(t, err.Error(), testToken)
	assert.Contains(t, err.Error(), redacted)
}

func TestGetGroupData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/waInstance"+testInstance+"/GetGroupData/"+testToken, r.URL.Path)
		var req groupDataRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "1@g.us", req.GroupID)
		_, _ = io.WriteString(w, `{"groupId":"1@g.us","subject":"one","owner":"o@c.us","participants":[{"id":"a@c.us"},{"id":"b@c.us","isAdmin":true}]}`)
	})

	data, err := c.GetGroupData(context.Background(), "1@g.us")
	require.NoError(t, err)
	require.NotNil(t, data.Owner)
	assert.Equal(t, "o@c.us", *data.Owner)
	assert.Len(t, data.Participants, 2)
	assert.True(t, data.Participants[1].IsAdmin)
}

func TestGetGroupData_Malformed(t *testing.T) {
	for name, body := range map[string]string{
		"array": `[1,2]`,
		"null":  `null`,
	} {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, body)
			})
			data, err := c.GetGroupData(context.Background(), "1@g.us")
			require.ErrorIs(t, err, request.ErrMalformedResponse)
			assert.Nil(t, data)
		})
	}
}

func TestSendMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/waInstance"+testInstance+"/sendMessage/"+testToken, r.URL.Path)
		var req sendMessageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, sendMessageRequest{ChatID: "2@g.us", Message: "סיכום"}, req)
		_, _ = io.WriteString(w, `{"idMessage":"SENT1"}`)
	})

	id, err := c.SendMessage(context.Background(), "2@g.us", "סיכום")
	require.NoError(t, err)
	assert.Equal(t, "SENT1", id)
}

func TestSendMessage_Failure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	_, err := c.SendMessage(context.Background(), "2@g.us", "x")
	require.ErrorIs(t, err, request.ErrUnexpectedStatus)
}
