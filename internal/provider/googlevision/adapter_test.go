package googlevision

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fjacquet/stock-categorizer/internal/imagefile"
	"fjacquet/stock-categorizer/internal/logging"
	"fjacquet/stock-categorizer/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type annotateRequest struct {
	Requests []struct {
		Image struct {
			Content string `json:"content"`
		} `json:"image"`
		Features []struct {
			Type       string `json:"type"`
			MaxResults int    `json:"maxResults"`
		} `json:"features"`
	} `json:"requests"`
}

func newServer(t *testing.T, status int, body string, seen *annotateRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/images:annotate"), r.URL.Path)
		key := r.URL.Query().Get("key")
		if key == "" {
			key = r.Header.Get("X-Goog-Api-Key")
		}
		assert.Equal(t, "vision-key", key)
		if seen != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClassify_MapsLabels(t *testing.T) {
	var seen annotateRequest
	srv := newServer(t, http.StatusOK, `{"responses":[{"labelAnnotations":[
		{"description":"Laptop","score":0.9},
		{"description":"Office desk","score":0.8}
	]}]}`, &seen)

	a := New(srv.URL+"/", logging.NewMockLogger())
	got, err := a.Classify(context.Background(), imagefile.New("desk.jpg", []byte("img")), "vision-key")

	require.NoError(t, err)
	assert.Equal(t, models.CategoryBusiness, got.Category)
	assert.InDelta(t, 0.87, got.Confidence, 1e-9)
	assert.Equal(t, "Google Cloud Vision", got.Provider)
	assert.Equal(t, []string{"Laptop", "Office desk"}, got.Labels)
	assert.False(t, got.Failed())

	require.Len(t, seen.Requests, 1)
	assert.Equal(t, "aW1n", seen.Requests[0].Image.Content)
	require.Len(t, seen.Requests[0].Features, 1)
	assert.Equal(t, "LABEL_DETECTION", seen.Requests[0].Features[0].Type)
	assert.Equal(t, 20, seen.Requests[0].Features[0].MaxResults)
}

func TestClassify_NoLabelsIsFailure(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{"responses":[{}]}`, nil)
	a := New(srv.URL+"/", nil)

	got, err := a.Classify(context.Background(), imagefile.New("blank.png", []byte("img")), "vision-key")
	require.NoError(t, err)
	assert.True(t, got.Failed())
	assert.Equal(t, "Analysis failed: No labels detected", got.Reasoning)
	assert.Equal(t, "Google Cloud Vision (Failed)", got.Provider)
}

func TestClassify_HTTPErrorIsFailure(t *testing.T) {
	srv := newServer(t, http.StatusForbidden,
		`{"error":{"code":403,"message":"API key not valid. Please pass a valid API key.","status":"PERMISSION_DENIED"}}`, nil)
	a := New(srv.URL+"/", nil)

	got, err := a.Classify(context.Background(), imagefile.New("x.jpg", []byte("img")), "vision-key")
	require.NoError(t, err)
	assert.True(t, got.Failed())
	assert.Equal(t, models.CategoryUnable, got.Category)
	assert.Contains(t, got.Reasoning, "Google Cloud Vision API Error (403)")
	assert.Contains(t, got.Reasoning, "API key not valid")
}

func TestClassify_PerImageError(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{"responses":[{"error":{"code":3,"message":"Bad image data."}}]}`, nil)
	a := New(srv.URL+"/", nil)

	got, err := a.Classify(context.Background(), imagefile.New("x.jpg", []byte("img")), "vision-key")
	require.NoError(t, err)
	assert.True(t, got.Failed())
	assert.Contains(t, got.Reasoning, "Bad image data.")
}

func TestID(t *testing.T) {
	assert.Equal(t, models.ProviderGoogleVision, New("", nil).ID())
}
