package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/mangashelf/internal/catalog"
	"github.com/mrlokans/mangashelf/internal/config"
	"github.com/mrlokans/mangashelf/internal/database"
	"github.com/mrlokans/mangashelf/internal/entities"
	"github.com/mrlokans/mangashelf/internal/loans"
	"github.com/mrlokans/mangashelf/internal/logging"
	"github.com/mrlokans/mangashelf/internal/lookup"
)

const testUserID uint = 1

// stubProvider answers ISBN lookups from a fixed table.
type stubProvider struct {
	byISBN map[string]lookup.Candidate
}

func (p *stubProvider) Search(_ context.Context, query string) ([]lookup.Candidate, error) {
	var out []lookup.Candidate
	for _, c := range p.byISBN {
		if c.Title == query {
			out = append(out, c)
		}
	}
	return out, nil
}

func (p *stubProvider) FindByISBN(_ context.Context, isbn string) (*lookup.Candidate, error) {
	c, ok := p.byISBN[isbn]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (p *stubProvider) FindByAPIID(_ context.Context, apiID string) (*lookup.Candidate, error) {
	for _, c := range p.byISBN {
		if c.APIID == apiID {
			return &c, nil
		}
	}
	return nil, nil
}

func newStubProvider() *stubProvider {
	return &stubProvider{byISBN: map[string]lookup.Candidate{
		"9782505000011": {Title: "Naruto, Tome 1", Authors: []string{"Masashi Kishimoto"}, ISBN: "9782505000011", APIID: "nar-1"},
		"9782505000028": {Title: "Naruto, Tome 2", Authors: []string{"Masashi Kishimoto"}, ISBN: "9782505000028", APIID: "nar-2"},
		"9782505000035": {Title: "Naruto, Tome 3", Authors: []string{"Masashi Kishimoto"}, ISBN: "9782505000035", APIID: "nar-3"},
	}}
}

// recordingAudit captures audit calls made by controllers.
type recordingAudit struct {
	mu      sync.Mutex
	actions []string
	scans   []string
}

func (a *recordingAudit) LogCollectionChange(_, _ uint, action, _ string) { a.add(action) }
func (a *recordingAudit) LogWishlistChange(_, _ uint, action string)      { a.add(action) }
func (a *recordingAudit) LogLoan(_ uint, action, _ string, _ []uint, err error) {
	if err != nil {
		action += ":failed"
	}
	a.add(action)
}
func (a *recordingAudit) LogScanImport(_ uint, payloadFile string, _, _ int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.scans = append(a.scans, payloadFile)
}

func (a *recordingAudit) add(action string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.actions = append(a.actions, action)
}

func (a *recordingAudit) Actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.actions...)
}

type testServer struct {
	router *gin.Engine
	db     *database.Database
	audit  *recordingAudit
}

func setupTestDB(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.Open(config.Database{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "http.db"),
	}, logger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// setupTestServer builds the full router over a temporary database.
func setupTestServer(t *testing.T, mutate ...func(*RouterConfig)) *testServer {
	t.Helper()
	db := setupTestDB(t)
	recorder := &recordingAudit{}

	cfg := RouterConfig{
		Catalog:     catalog.NewService(database.NewCatalogStore(db.DB), newStubProvider(), nil, logging.Discard(), catalog.Options{}),
		Loans:       loans.NewEngine(database.NewLoanStore(db.DB), logging.Discard()),
		Database:    db,
		LoanCounter: database.NewLoanStore(db.DB),
		Audit:       recorder,
		Version:     "test",
		Logger:      logging.Discard(),
	}
	for _, m := range mutate {
		m(&cfg)
	}

	return &testServer{router: NewRouter(cfg), db: db, audit: recorder}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// addToCollection resolves an ISBN into the test user's collection and returns the volume.
func (s *testServer) addToCollection(t *testing.T, isbn string) entities.Volume {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/collection", gin.H{"isbn": isbn})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var v entities.Volume
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func newRequest(t *testing.T, method, path string) *http.Request {
	t.Helper()
	return httptest.NewRequest(method, path, nil)
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
