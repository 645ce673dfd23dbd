package instagram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var req scrapeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "techsolutions.my", req.Search)
		assert.Equal(t, "user", req.SearchType)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(scrapeResponse{
			Results: []Profile{{
				Username:         "techsolutions.my",
				FullName:         "Tech Solutions Malaysia",
				Email:            "hello@techsolutions.my",
				BusinessCategory: "Software Company",
				IsBusiness:       true,
			}},
		})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	got, err := client.Profile(context.Background(), "@techsolutions.my")

	require.NoError(t, err)
	assert.Equal(t, "Tech Solutions Malaysia", got.FullName)
	assert.Equal(t, "hello@techsolutions.my", got.Email)
}

func TestProfile_NotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(scrapeResponse{})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.Profile(context.Background(), "nobody")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestProfile_EmptyUsername(t *testing.T) {
	t.Parallel()

	client := NewClient("test-key", WithBaseURL("http://localhost:0"))
	_, err := client.Profile(context.Background(), "  @ ")

	require.Error(t, err)
}

func TestSearchBusinesses_FiltersPersonalAccounts(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req scrapeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hashtag", req.SearchType)
		assert.Equal(t, "kualalumpurcafe", req.Search)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(scrapeResponse{
			Results: []Profile{
				{Username: "cafe.one", IsBusiness: true},
				{Username: "random.person"},
				{Username: "cafe.two", IsBusiness: true},
			},
		})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	got, err := client.SearchBusinesses(context.Background(), "kualalumpurcafe", 10)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "cafe.one", got[0].Username)
	assert.Equal(t, "cafe.two", got[1].Username)
}

func TestSearchBusinesses_ActorError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(scrapeResponse{Error: "actor run failed"})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.SearchBusinesses(context.Background(), "penangfood", 10)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "actor run failed")
}
