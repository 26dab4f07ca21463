package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/wadigest/internal/config"
	"github.com/edgard/wadigest/internal/database"
	"github.com/edgard/wadigest/internal/greenapi"
)

// fakeGateway serves canned Green API responses keyed by API method.
func fakeGateway(t *testing.T, responses map[string]func(w http.ResponseWriter)) *greenapi.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// /waInstance{id}/{method}/{token}
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		require.Len(t, parts, 3)
		respond, ok := responses[parts[1]]
		if !ok {
			http.NotFound(w, r)
			return
		}
		respond(w)
	}))
	t.Cleanup(srv.Close)

	c, err := greenapi.NewClient(config.GreenAPIConfig{
		BaseURL:    srv.URL,
		InstanceID: "1",
		Token:      "tok",
		Timeout:    5 * time.Second,
	}, nil)
	require.NoError(t, err)
	return c
}

func realStore(t *testing.T) database.Store {
	t.Helper()
	db, err := database.NewDB(config.StoreConfig{
		Driver: database.DriverSQLite,
		URL:    filepath.Join(t.TempDir(), "tasks.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(db) })
	return database.NewStore(db, nil)
}

func TestHarvestMessages_EndToEnd(t *testing.T) {
	recent := testNow.Add(-2 * time.Hour).Unix()
	old := testNow.Add(-48 * time.Hour).Unix()

	gw := fakeGateway(t, map[string]func(http.ResponseWriter){
		"GetChatHistory": func(w http.ResponseWriter) {
			_, _ = fmt.Fprintf(w, `[
				{"idMessage":"M1","typeMessage":"textMessage","chatId":"c@g.us","senderId":"a@c.us","timestamp":%d,"textMessage":"hello"},
				{"idMessage":"M2","typeMessage":"reactionMessage","chatId":"c@g.us","senderId":"a@c.us","timestamp":%d},
				{"idMessage":"M3","typeMessage":"textMessage","chatId":"c@g.us","senderId":"a@c.us","timestamp":%d,"textMessage":"too old"},
				{"typeMessage":"textMessage","chatId":"c@g.us","timestamp":%d,"textMessage":"no id"},
				{"idMessage":"M4","typeMessage":"documentMessage","chatId":"c@g.us","senderId":"b@c.us","timestamp":%d,"downloadUrl":"https://cdn/f.pdf","fileName":"f.pdf"}
			]`, recent, recent, old, recent, recent+1)
		},
	})
	store := realStore(t)

	deps := testDeps(gw, store)
	require.NoError(t, newHarvestMessagesTask(deps)(context.Background()))

	contents, err := store.GetMessageContents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"hello", "https://cdn/f.pdf"}, contents)

	doc, err := store.GetMessage(context.Background(), "M4")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, sql.NullString{String: "f.pdf", Valid: true}, doc.Caption)

	// Re-running stores nothing new and keeps the same rows.
	require.NoError(t, newHarvestMessagesTask(deps)(context.Background()))
	contents, err = store.GetMessageContents(context.Background())
	require.NoError(t, err)
	assert.Len(t, contents, 2)
}

func TestSyncGroups_EndToEnd(t *testing.T) {
	store := realStore(t)
	ctx := context.Background()
	require.NoError(t, store.UpsertGroups(ctx, []database.Group{
		{GroupID: "keep@g.us", Name: "old name"},
		{GroupID: "gone@g.us", Name: "gone"},
	}))

	gw := fakeGateway(t, map[string]func(http.ResponseWriter){
		"getChats": func(w http.ResponseWriter) {
			_, _ = io.WriteString(w, `[{"id":"keep@g.us","name":"new name"},{"id":"new@g.us"},{"id":"x@c.us","name":"dm"}]`)
		},
		"GetGroupData": func(w http.ResponseWriter) {
			_, _ = io.WriteString(w, `{"groupId":"keep@g.us","owner":"o@c.us","participants":[{"id":"a"},{"id":"b"}]}`)
		},
	})

	require.NoError(t, newSyncGroupsTask(testDeps(gw, store))(ctx))

	groups, err := store.GetGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "keep@g.us", groups[0].GroupID)
	assert.Equal(t, "new name", groups[0].Name)
	assert.Equal(t, "new@g.us", groups[1].GroupID)
	assert.Equal(t, UnnamedGroup, groups[1].Name)
}

func TestSyncGroups_EndToEnd_ListingServerError(t *testing.T) {
	store := realStore(t)
	ctx := context.Background()
	seed := []database.Group{{GroupID: "a@g.us", Name: "a"}, {GroupID: "b@g.us", Name: "b"}}
	require.NoError(t, store.UpsertGroups(ctx, seed))

	gw := fakeGateway(t, map[string]func(http.ResponseWriter){
		"getChats": func(w http.ResponseWriter) {
			http.Error(w, "internal", http.StatusInternalServerError)
		},
	})

	require.Error(t, newSyncGroupsTask(testDeps(gw, store))(ctx))

	ids, err := store.GetGroupIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a@g.us", "b@g.us"}, ids)
}
