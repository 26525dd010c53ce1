package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/cardsync-service/internal/app/card/domain"
	"github.com/light-bringer/cardsync-service/internal/app/card/registry"
	"github.com/light-bringer/cardsync-service/internal/app/card/usecases/register_change"
)

const batchYAML = `
changes:
  - cardType: work_experience
    id: 3
    fields:
      company_name: Acme
      position: Lead
  - cardType: about_me
    id: 1
    label: Profile
    fields:
      bio: Hello there
`

func TestLoadBatch(t *testing.T) {
	b, err := loadBatch(strings.NewReader(batchYAML))
	require.NoError(t, err)
	require.Len(t, b.Changes, 2)
	assert.Equal(t, "work_experience", b.Changes[0].CardType)
	assert.Equal(t, int64(3), b.Changes[0].ID)
	assert.Equal(t, "Profile", b.Changes[1].Label)

	empty, err := loadBatch(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, empty.Changes)

	_, err = loadBatch(strings.NewReader("changes:\n  - cardType: about_me\n    colour: red\n"))
	assert.Error(t, err, "unknown keys are rejected")
}

func TestRegisterBatch(t *testing.T) {
	b, err := loadBatch(strings.NewReader(batchYAML))
	require.NoError(t, err)

	reg := registry.New()
	require.NoError(t, registerBatch(context.Background(), register_change.NewInteractor(reg), b))
	assert.Equal(t, 2, reg.Len())

	bad := &Batch{Changes: []Change{{CardType: "about_me", ID: 1, Fields: map[string]string{"degree": "x"}}}}
	err = registerBatch(context.Background(), register_change.NewInteractor(registry.New()), bad)
	assert.ErrorIs(t, err, domain.ErrUnknownField)
	assert.Contains(t, err.Error(), "change #1")
}

func TestReport(t *testing.T) {
	var out bytes.Buffer
	err := report(&out, domain.ProgressState{
		Total:   3,
		Current: 3,
		Status:  domain.StatusError,
		Summary: "1 card with 3 fields in total",
		Errors:  []string{"e1", "e2", "e3", "e4"},
	}, 2)

	assert.ErrorIs(t, err, errBatchFailed)
	assert.Contains(t, out.String(), "3/3 operations, status error")
	assert.Contains(t, out.String(), "  e1\n  e2\n")
	assert.Contains(t, out.String(), "... and 2 more")

	out.Reset()
	assert.NoError(t, report(&out, domain.ProgressState{}, 3))
	assert.Equal(t, "Nothing to commit\n", out.String())
}

func TestPlanCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(batchYAML), 0o600))

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"plan", "-f", path})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "2 cards with 3 fields in total")
	assert.Contains(t, out.String(), "Acme (work_3)")
	assert.Contains(t, out.String(), "company_name: Acme")
	assert.Contains(t, out.String(), "Profile (about_1)")
}

// storeServer records the write calls it receives.
type storeServer struct {
	mu     sync.Mutex
	bodies []string
}

func (s *storeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/v1/store/update":
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r.Body)
		s.mu.Lock()
		s.bodies = append(s.bodies, buf.String())
		s.mu.Unlock()
		if strings.Contains(buf.String(), `"position"`) {
			_, _ = w.Write([]byte(`{"success":false,"error":"position locked"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true}`))
	case "/api/v1/store/data":
		_, _ = w.Write([]byte(`{"success":true,"data":{"aboutMe":{"id":1,"fullName":"Ada"},"workExperience":[],"portfolioProjects":[],"education":[]}}`))
	default:
		http.NotFound(w, r)
	}
}

func TestCommitCommand(t *testing.T) {
	store := &storeServer{}
	srv := httptest.NewServer(store)
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "batch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(batchYAML), 0o600))

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"commit", "-f", path, "--store-url", srv.URL, "--op-delay", "0", "--entity-delay", "0"})

	err := cmd.Execute()
	assert.ErrorIs(t, err, errBatchFailed)
	assert.Len(t, store.bodies, 3, "one call per field")
	assert.Contains(t, out.String(), "Error in Acme - position: position locked")
}

func TestCardsCommand(t *testing.T) {
	srv := httptest.NewServer(&storeServer{})
	defer srv.Close()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"cards", "--store-url", srv.URL})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "aboutMe:")
	assert.Contains(t, out.String(), "fullName: Ada")

	t.Setenv("CARDSYNC_STORE_REMOTE_URL", "")
	noURL := newRootCmd()
	noURL.SetOut(&bytes.Buffer{})
	noURL.SetErr(&bytes.Buffer{})
	noURL.SetArgs([]string{"cards"})
	assert.ErrorContains(t, noURL.Execute(), "--store-url is required")
}
