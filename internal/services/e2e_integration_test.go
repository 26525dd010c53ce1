//go:build integration

package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/cardsync-service/internal/config"
	"github.com/light-bringer/cardsync-service/internal/pkg/logger"
	"github.com/light-bringer/cardsync-service/internal/pkg/testutil"
	httptransport "github.com/light-bringer/cardsync-service/internal/transport/http"
)

func setupE2E(t *testing.T) (*ServiceOptions, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	client, cleanup := testutil.SetupSpannerTest(t)
	testutil.CreateWorkExperience(t, client, 1, "Acme", 1)
	testutil.CreateAboutMe(t, client, 1, "Ada")

	cfg := &config.Config{
		Spanner: config.SpannerConfig{Database: testutil.GetTestSpannerDB()},
		Store:   config.StoreConfig{Mode: config.StoreSpanner},
	}
	opts, err := NewServiceOptions(context.Background(), cfg, logger.NewNop())
	require.NoError(t, err)

	return opts, func() {
		opts.Close()
		cleanup()
	}
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestE2E_CommitWritesRowsAndEvents(t *testing.T) {
	opts, cleanup := setupE2E(t)
	defer cleanup()

	rr := do(t, opts.Router, http.MethodPost, "/api/v1/changes",
		`{"cardType":"work_experience","entityId":1,"fields":{"position":"Staff Engineer","location":"Berlin"}}`)
	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())

	rr = do(t, opts.Router, http.MethodPost, "/api/v1/changes",
		`{"cardType":"about_me","entityId":1,"fields":{"headline":"Analyst"}}`)
	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())

	rr = do(t, opts.Router, http.MethodPost, "/api/v1/commit", "")
	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())
	opts.CommitChanges.Wait()

	var progress httptransport.ProgressResponse
	rr = do(t, opts.Router, http.MethodGet, "/api/v1/commit/progress", "")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &progress))
	assert.Equal(t, "completed", string(progress.Status))
	assert.Equal(t, 3, progress.Total)
	assert.Equal(t, 3, progress.Current)
	assert.Empty(t, progress.ShownErrors)

	row := testutil.GetWorkExperience(t, opts.SpannerClient, 1)
	assert.Equal(t, "Staff Engineer", row.Position)
	assert.Equal(t, "Berlin", row.Location)
	assert.Equal(t, "Acme", row.CompanyName)

	// one outbox event per single-field write
	testutil.AssertRowCount(t, opts.SpannerClient, "outbox_events", 3)

	var list httptransport.ListEventsResponse
	rr = do(t, opts.Router, http.MethodGet, "/api/v1/events?aggregate_id=work_1", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Equal(t, int64(2), list.TotalCount)

	var changes httptransport.ChangesResponse
	rr = do(t, opts.Router, http.MethodGet, "/api/v1/changes", "")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &changes))
	assert.False(t, changes.HasPendingChanges)
}

func TestE2E_MissingRowIsReportedAndReleased(t *testing.T) {
	opts, cleanup := setupE2E(t)
	defer cleanup()

	rr := do(t, opts.Router, http.MethodPost, "/api/v1/changes",
		`{"cardType":"education","entityId":42,"label":"Night School","fields":{"degree":"MSc"}}`)
	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())

	rr = do(t, opts.Router, http.MethodPost, "/api/v1/commit", "")
	require.Equal(t, http.StatusAccepted, rr.Code)
	opts.CommitChanges.Wait()

	var progress httptransport.ProgressResponse
	rr = do(t, opts.Router, http.MethodGet, "/api/v1/commit/progress", "")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &progress))
	assert.Equal(t, "error", string(progress.Status))
	require.Len(t, progress.ShownErrors, 1)
	assert.Equal(t, "Error in Night School - degree: card not found: education 42", progress.ShownErrors[0])

	testutil.AssertRowCount(t, opts.SpannerClient, "outbox_events", 0)

	var changes httptransport.ChangesResponse
	rr = do(t, opts.Router, http.MethodGet, "/api/v1/changes", "")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &changes))
	assert.False(t, changes.HasPendingChanges, "failed edits are dropped")
}
