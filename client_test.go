package pushbridge

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceClientCreateToken(t *testing.T) {
	var gotPath, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewServiceClient(server.URL)
	err := client.CreateToken(context.Background(), TokenRecord{
		Token:  "abc123",
		AppID:  "app-1",
		UserID: "u1",
	})
	require.NoError(t, err)

	assert.Equal(t, "/push/tokens", gotPath)
	assert.JSONEq(t, `{"token":"abc123","app_id":"app-1","user_id":"u1"}`, gotBody)
}

func TestServiceClientCreateTokenOmitsEmptyUser(t *testing.T) {
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
	}))
	defer server.Close()

	client := NewServiceClient(server.URL)
	require.NoError(t, client.CreateToken(context.Background(), TokenRecord{Token: "abc123", AppID: "app-1"}))

	assert.NotContains(t, gotBody, "user_id")
}

func TestServiceClientInvalidateToken(t *testing.T) {
	var gotPath string
	var gotRec TokenRecord
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRec))
	}))
	defer server.Close()

	client := NewServiceClient(server.URL)
	err := client.InvalidateToken(context.Background(), TokenRecord{Token: "abc123", AppID: "app-1"})
	require.NoError(t, err)

	assert.Equal(t, "/push/tokens/invalidate", gotPath)
	assert.Equal(t, TokenRecord{Token: "abc123", AppID: "app-1"}, gotRec)
}

func TestServiceClientHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		io.WriteString(w, `{"error":"token rejected"}`)
	}))
	defer server.Close()

	client := NewServiceClient(server.URL)
	err := client.CreateToken(context.Background(), TokenRecord{Token: "abc123", AppID: "app-1"})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "token rejected")
	assert.Equal(t, http.MethodPost, apiErr.Method)
}

func TestServiceClientBaseURLTrimmed(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
	}))
	defer server.Close()

	client := NewServiceClient(server.URL + "/")
	require.NoError(t, client.CreateToken(context.Background(), TokenRecord{Token: "t", AppID: "a"}))
	assert.Equal(t, "/push/tokens", gotPath)
}
