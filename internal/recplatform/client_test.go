package recplatform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-key", 5*time.Second)
}

func TestCreateTable(t *testing.T) {
	var gotKey string
	var gotBody createTableRequest

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/tables", r.URL.Path)
		gotKey = r.Header.Get("X-Api-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(TableInfo{Name: "elections"})
	})

	res, err := c.CreateTable(context.Background(), "elections", "item")
	require.NoError(t, err)

	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "elections", gotBody.Name)
	assert.Equal(t, "item", gotBody.SchemaType)
	assert.False(t, res.Exists)
}

func TestCreateTableConflictIsExists(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"409 conflict", http.StatusConflict, `{"message":"duplicate"}`},
		{"422 already exists", http.StatusUnprocessableEntity, `{"message":"Table already exists"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			res, err := c.CreateTable(context.Background(), "elections", "item")
			require.NoError(t, err)
			assert.True(t, res.Exists)
			assert.Equal(t, "elections", res.Name)
		})
	}
}

func TestCreateTableOtherErrorPropagates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"schema_type must be one of item, user, event"}`))
	})

	_, err := c.CreateTable(context.Background(), "elections", "bogus")
	require.Error(t, err)

	ae, ok := asAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, ae.StatusCode)
	assert.Contains(t, ae.Message, "schema_type")
}

func TestInsertRows(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tables/interaction_events/insert", r.URL.Path)

		var req insertRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		rows, ok := req.Data.([]any)
		require.True(t, ok)
		_ = json.NewEncoder(w).Encode(insertResponse{Inserted: len(rows)})
	})

	n, err := c.InsertRows(context.Background(), "interaction_events", []map[string]any{
		{"event_id": "1"}, {"event_id": "2"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestQueryEngine(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/engines/election_recommendations/query", r.URL.Path)

		var req queryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req.Query, "LIMIT :limit")
		assert.EqualValues(t, 10, req.Parameters["limit"])

		_ = json.NewEncoder(w).Encode(queryResponse{Results: []Item{
			{ID: "e1", Title: "Budget vote"},
		}})
	})

	items, err := c.QueryEngine(context.Background(), "election_recommendations",
		"SELECT * FROM items LIMIT :limit", map[string]any{"limit": 10})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "e1", items[0].ID)
}

func TestRankForUser(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/engines/election_recommendations/rank", r.URL.Path)

		var req rankRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "user-9", req.UserID)
		assert.Equal(t, 20, req.Limit)

		_ = json.NewEncoder(w).Encode(rankResponse{Items: []Item{
			{ID: "e2", Score: 0.91},
			{ID: "e5", Score: 0.44},
		}})
	})

	items, err := c.RankForUser(context.Background(), "election_recommendations", "user-9", 20)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 0.91, items[0].Score)
}

func TestRankForUserNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"user not known to engine"}`))
	})

	_, err := c.RankForUser(context.Background(), "election_recommendations", "ghost", 10)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestListTables(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		_ = json.NewEncoder(w).Encode(listTablesResponse{Tables: []TableInfo{
			{Name: "users"}, {Name: "elections"},
		}})
	})

	tables, err := c.ListTables(context.Background())
	require.NoError(t, err)
	assert.Len(t, tables, 2)
}

func TestDeleteTable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/tables/elections", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.DeleteTable(context.Background(), "elections"))
}

func TestErrorMessageFallsBackToRawBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("upstream exploded"))
	})

	_, err := c.ListTables(context.Background())
	require.Error(t, err)

	ae, ok := asAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "upstream exploded", ae.Message)
}

func TestHealth(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(listTablesResponse{})
	})
	assert.NoError(t, c.Health(context.Background()))
}

func TestIsConflict(t *testing.T) {
	assert.True(t, isConflict(409, ""))
	assert.True(t, isConflict(422, "Engine ALREADY EXISTS"))
	assert.False(t, isConflict(422, "invalid schema"))
	assert.False(t, isConflict(500, "already exists"))
}
