package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/theater-service/internal/errs"
	"github.com/iliyamo/theater-service/internal/handler"
	"github.com/iliyamo/theater-service/internal/metrics"
	"github.com/iliyamo/theater-service/internal/middleware"
	"github.com/iliyamo/theater-service/internal/model"
	"github.com/iliyamo/theater-service/internal/queue"
	"github.com/iliyamo/theater-service/internal/repository"
	"github.com/iliyamo/theater-service/internal/router"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.TheaterChangedEvent
}

func (p *recordingPublisher) PublishTheaterChanged(_ context.Context, ev queue.TheaterChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Action)
	}
	return out
}

type testAPI struct {
	e   *echo.Echo
	db  *repository.MemoryDB
	pub *recordingPublisher
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	db := repository.NewMemoryDB()
	return newTestAPIWithStores(t, db, repository.NewMemoryStoreFactory(db))
}

func newTestAPIWithStores(t *testing.T, db *repository.MemoryDB, stores repository.StoreFactory) *testAPI {
	t.Helper()
	pub := &recordingPublisher{}
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	h := handler.NewTheaterHandler(stores, pub, metrics.New())
	h.Now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }
	router.RegisterTheater(e, h)
	return &testAPI{e: e, db: db, pub: pub}
}

func (a *testAPI) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) create(t *testing.T, body string) model.Theater {
	t.Helper()
	rec := a.do(http.MethodPost, "/theater", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out model.Theater
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errs.HTTPError {
	t.Helper()
	var out errs.HTTPError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestListEmptyReturnsNotFound(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(http.MethodGet, "/theater", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No theaters found.", decodeError(t, rec).Message)
}

func TestListReturnsStoredTheaters(t *testing.T) {
	a := newTestAPI(t)
	first := a.create(t, `{"name":"Palace","location":"Main St"}`)
	second := a.create(t, `{"name":"Odeon","location":"High St","notes":"IMAX"}`)

	rec := a.do(http.MethodGet, "/theater", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var got []model.Theater
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, []model.Theater{first, second}, got)
}

func TestGetUnknownReturnsNotFound(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(http.MethodGet, "/theater/42", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Theater not found.", decodeError(t, rec).Message)
}

func TestGetInvalidID(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(http.MethodGet, "/theater/abc", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid id", decodeError(t, rec).Message)
}

func TestCreateThenGet(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(http.MethodPost, "/theater", `{"name":"Palace","location":"Main St","notes":null}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	var created model.Theater
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Positive(t, created.ID)
	assert.Equal(t, "Palace", created.Name)
	assert.Equal(t, "Main St", created.Location)
	assert.Nil(t, created.Notes)
	assert.Equal(t, "/theater/1", rec.Header().Get(echo.HeaderLocation))

	rec = a.do(http.MethodGet, rec.Header().Get(echo.HeaderLocation), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got model.Theater
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, created, got)
	assert.JSONEq(t, `{"id":1,"name":"Palace","location":"Main St","notes":null}`, rec.Body.String())

	assert.Equal(t, []string{queue.ActionCreated}, a.pub.actions())
}

func TestCreateIgnoresClientID(t *testing.T) {
	a := newTestAPI(t)

	created := a.create(t, `{"id":99,"name":"Palace","location":"Main St"}`)

	assert.Equal(t, int64(1), created.ID)
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{name: "empty body", body: "", message: "Theater data is required."},
		{name: "null body", body: "null", message: "Theater data is required."},
		{name: "empty name", body: `{"name":"","location":"Main St"}`, message: "Theater name and location are required."},
		{name: "empty location", body: `{"name":"Palace","location":""}`, message: "Theater name and location are required."},
		{name: "missing fields", body: `{}`, message: "Theater name and location are required."},
		{name: "required wins over length", body: `{"name":"` + strings.Repeat("a", 101) + `","location":""}`, message: "Theater name and location are required."},
		{name: "name too long", body: `{"name":"` + strings.Repeat("a", 101) + `","location":"Main St"}`, message: "Theater name is too long."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAPI(t)

			rec := a.do(http.MethodPost, "/theater", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.message, decodeError(t, rec).Message)
			assert.Zero(t, a.db.Len())
			assert.Empty(t, a.pub.actions())
		})
	}
}

func TestCreateNameAtLimit(t *testing.T) {
	a := newTestAPI(t)

	created := a.create(t, `{"name":"`+strings.Repeat("é", model.NameMaxLength)+`","location":"Main St"}`)

	assert.Equal(t, strings.Repeat("é", model.NameMaxLength), created.Name)
}

func TestCreateMalformedJSON(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(http.MethodPost, "/theater", `{"name":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, a.db.Len())
}

func TestUpdateIDMismatch(t *testing.T) {
	a := newTestAPI(t)
	created := a.create(t, `{"name":"Palace","location":"Main St"}`)

	rec := a.do(http.MethodPut, "/theater/1", `{"id":2,"name":"Changed","location":"Elsewhere"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = a.do(http.MethodGet, "/theater/1", "")
	var got model.Theater
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, created, got)
}

func TestUpdateMissingBodyIsBadRequestBeforeLookup(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(http.MethodPut, "/theater/7", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateUnknownReturnsNotFound(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(http.MethodPut, "/theater/7", `{"id":7,"name":"Palace","location":"Main St"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Theater not found.", decodeError(t, rec).Message)
}

func TestUpdateOverwritesFields(t *testing.T) {
	a := newTestAPI(t)
	a.create(t, `{"name":"Palace","location":"Main St","notes":"old"}`)

	rec := a.do(http.MethodPut, "/theater/1", `{"id":1,"name":"Grand","location":"Broadway","notes":"renovated"}`)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = a.do(http.MethodGet, "/theater/1", "")
	assert.JSONEq(t, `{"id":1,"name":"Grand","location":"Broadway","notes":"renovated"}`, rec.Body.String())
	assert.Equal(t, []string{queue.ActionCreated, queue.ActionUpdated}, a.pub.actions())
}

func TestUpdateDoesNotValidateFields(t *testing.T) {
	a := newTestAPI(t)
	a.create(t, `{"name":"Palace","location":"Main St"}`)

	rec := a.do(http.MethodPut, "/theater/1", `{"id":1,"name":"","location":""}`)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = a.do(http.MethodGet, "/theater/1", "")
	assert.JSONEq(t, `{"id":1,"name":"","location":"","notes":null}`, rec.Body.String())
}

func TestDeleteThenGet(t *testing.T) {
	a := newTestAPI(t)
	a.create(t, `{"name":"Palace","location":"Main St"}`)

	rec := a.do(http.MethodDelete, "/theater/1", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Theater with ID 1 was deleted successfully.", rec.Body.String())
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/theater/1", "").Code)
	assert.Equal(t, []string{queue.ActionCreated, queue.ActionDeleted}, a.pub.actions())
}

func TestDeleteUnknownReturnsNotFound(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(http.MethodDelete, "/theater/5", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Theater not found.", decodeError(t, rec).Message)
}

// racingStore deletes the row behind the handler's back between lookup
// and commit.
type racingStore struct {
	repository.TheaterStore
	db *repository.MemoryDB
}

func (s *racingStore) SaveChanges(ctx context.Context) error {
	other := repository.NewMemoryStoreFactory(s.db)()
	t, err := other.FindByID(ctx, 1)
	if err == nil {
		other.Remove(t)
		if err := other.SaveChanges(ctx); err != nil {
			return err
		}
	}
	return s.TheaterStore.SaveChanges(ctx)
}

func TestDeleteConcurrentlyDeleted(t *testing.T) {
	db := repository.NewMemoryDB()
	seed := repository.NewMemoryStoreFactory(db)()
	seed.Add(&model.Theater{Name: "Palace", Location: "Main St"})
	require.NoError(t, seed.SaveChanges(context.Background()))

	inner := repository.NewMemoryStoreFactory(db)
	a := newTestAPIWithStores(t, db, func() repository.TheaterStore {
		return &racingStore{TheaterStore: inner(), db: db}
	})

	rec := a.do(http.MethodDelete, "/theater/1", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Theater was already deleted.", decodeError(t, rec).Message)
	assert.Empty(t, a.pub.actions())
}

// stickyStore acknowledges removals without performing them.
type stickyStore struct {
	repository.TheaterStore
}

func (s *stickyStore) Remove(*model.Theater) {}

func TestDeleteRowSurvivesCommit(t *testing.T) {
	db := repository.NewMemoryDB()
	inner := repository.NewMemoryStoreFactory(db)
	a := newTestAPIWithStores(t, db, func() repository.TheaterStore {
		return &stickyStore{TheaterStore: inner()}
	})
	a.create(t, `{"name":"Palace","location":"Main St"}`)

	rec := a.do(http.MethodDelete, "/theater/1", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 1, db.Len())
}

func TestNewTheaterHandlerPanicsWithoutStores(t *testing.T) {
	assert.Panics(t, func() { handler.NewTheaterHandler(nil, nil, nil) })
}
