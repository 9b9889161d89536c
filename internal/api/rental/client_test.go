package rental

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/langchou/rentdeck/internal/models"
)

// fakeAuthorizer 测试用令牌提供者
type fakeAuthorizer struct {
	token      string
	refreshErr error
	refreshed  atomic.Int32
	expired    atomic.Int32
}

func (f *fakeAuthorizer) AccessToken() string { return f.token }

func (f *fakeAuthorizer) Refresh(context.Context) error {
	f.refreshed.Add(1)
	if f.refreshErr != nil {
		return f.refreshErr
	}
	f.token = "refreshed-token"
	return nil
}

func (f *fakeAuthorizer) AuthExpired() { f.expired.Add(1) }

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(zap.NewNop(), srv.URL), srv
}

func TestDoRetriesOnceAfterRefresh(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Header.Get("Authorization") != "Bearer refreshed-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":1,"make":"Tesla","model":"Model 3"}`))
	}))

	auth := &fakeAuthorizer{token: "stale-token"}
	client.SetAuthorizer(auth)

	vehicle, err := client.GetVehicle(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Tesla", vehicle.Make)
	assert.EqualValues(t, 2, calls.Load(), "expected exactly one retry")
	assert.EqualValues(t, 1, auth.refreshed.Load())
	assert.EqualValues(t, 0, auth.expired.Load())
}

func TestDoExpiresSessionOnSecondUnauthorized(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	auth := &fakeAuthorizer{token: "whatever"}
	client.SetAuthorizer(auth)

	_, err := client.GetVehicle(context.Background(), 1)
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.EqualValues(t, 1, auth.refreshed.Load(), "refresh happens once, not in a loop")
	assert.EqualValues(t, 1, auth.expired.Load())
}

func TestDoExpiresSessionWhenRefreshFails(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	auth := &fakeAuthorizer{token: "whatever", refreshErr: errors.New("refresh rejected")}
	client.SetAuthorizer(auth)

	_, err := client.GetVehicle(context.Background(), 1)
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.EqualValues(t, 1, auth.expired.Load())
}

func TestTransportErrorWrapsUnreachable(t *testing.T) {
	client := NewClient(zap.NewNop(), "http://127.0.0.1:1")

	_, err := client.GetVehicle(context.Background(), 1)
	require.ErrorIs(t, err, ErrUnreachable)
}

func TestDecodeResponseNotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.GetVehicle(context.Background(), 99)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSearchParamsSparseQuery(t *testing.T) {
	q := SearchParams{
		Location:  "Berlin",
		StartDate: "2024-09-23",
		Sort:      "+make,-model",
		Page:      2,
		Size:      25,
	}.Query()

	assert.Equal(t, "Berlin", q.Get("location"))
	assert.Equal(t, "2024-09-23", q.Get("startDate"))
	assert.Equal(t, "+make,-model", q.Get("sort"))
	assert.Equal(t, "2", q.Get("page"))
	assert.Equal(t, "25", q.Get("size"))

	// 零值字段不进查询串
	assert.False(t, q.Has("make"))
	assert.False(t, q.Has("passengers"))
	assert.False(t, q.Has("endDate"))
}

func TestSearchParamsDefaults(t *testing.T) {
	q := SearchParams{}.Query()

	assert.Equal(t, "0", q.Get("page"))
	assert.Equal(t, "10", q.Get("size"))
}

func TestUploadMediaCleansUpOnUploadFailure(t *testing.T) {
	var deleted atomic.Bool
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/vehicles/5/media":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":77,"vehicleId":5,"type":"COVER_IMAGE"}`))
		case r.Method == http.MethodPost && r.URL.Path == "/v1/vehicles/5/media/77/upload":
			w.WriteHeader(http.StatusInternalServerError)
		case r.Method == http.MethodDelete && r.URL.Path == "/v1/vehicles/5/media/77":
			deleted.Store(true)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	item := models.MediaItem{Type: models.MediaTypeCoverImage, IsCover: true}
	_, err := client.UploadMedia(context.Background(), 5, item, "cover.jpg", []byte("bytes"))
	require.Error(t, err)
	assert.True(t, deleted.Load(), "orphaned media record must be deleted after a failed upload")
}

func TestUploadMediaTwoPhaseSuccess(t *testing.T) {
	var uploaded atomic.Bool
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/vehicles/5/media":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":78,"vehicleId":5,"type":"FRONT_IMAGE"}`))
		case r.Method == http.MethodPost && r.URL.Path == "/v1/vehicles/5/media/78/upload":
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "front.jpg", r.FormValue("fileName"))
			_, header, err := r.FormFile("file")
			require.NoError(t, err)
			assert.Equal(t, "front.jpg", header.Filename)
			uploaded.Store(true)
			w.Write([]byte(`{}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	item := models.MediaItem{Type: models.MediaTypeFrontImage}
	created, err := client.UploadMedia(context.Background(), 5, item, "front.jpg", []byte("bytes"))
	require.NoError(t, err)
	assert.EqualValues(t, 78, created.ID)
	assert.True(t, uploaded.Load())
}
