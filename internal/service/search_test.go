package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/langchou/rentdeck/internal/api/rental"
	"github.com/langchou/rentdeck/internal/models"
	"github.com/langchou/rentdeck/internal/store"
)

func newSearchFixture(t *testing.T, handler http.Handler) (*SearchService, *store.Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := rental.NewClient(zap.NewNop(), srv.URL)
	state := store.New(zap.NewNop(), nil, false)
	return NewSearchService(zap.NewNop(), client, state), state
}

func vehiclePage(vehicles ...models.Vehicle) models.Page[models.Vehicle] {
	return models.Page[models.Vehicle]{
		Data:  vehicles,
		Page:  0,
		Size:  10,
		Total: int64(len(vehicles)),
	}
}

func TestSearchMapsVehiclesToCars(t *testing.T) {
	svc, state := newSearchFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/vehicles":
			json.NewEncoder(w).Encode(vehiclePage(models.Vehicle{
				ID:          3,
				Make:        "Tesla",
				Model:       "Model 3",
				Year:        2023,
				VehicleType: "Sedan",
				Passengers:  5,
				Doors:       4,
				PricePerDay: 58,
				Status:      models.VehicleStatusAvailable,
				ImageURL:    "https://cdn.example.com/model3.jpg",
			}))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	cars, err := svc.Search(context.Background(), models.SearchCriteriaPatch{
		Location: strPtr("Berlin"),
	}, SearchOptions{})
	require.NoError(t, err)
	require.Len(t, cars, 1)

	// id/make/model/year 原样保留
	car := cars[0]
	assert.EqualValues(t, 3, car.ID)
	assert.Equal(t, "Tesla", car.Make)
	assert.Equal(t, "Model 3", car.Model)
	assert.Equal(t, 2023, car.Year)
	assert.Equal(t, 5, car.Seats)
	assert.True(t, car.Available)

	// 结果落进应用状态
	assert.Len(t, state.Cars(), 1)
	assert.Equal(t, "Berlin", state.SearchCriteria().Location)
}

func TestSearchFillsPlaceholderCover(t *testing.T) {
	svc, _ := newSearchFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/vehicles":
			json.NewEncoder(w).Encode(vehiclePage(models.Vehicle{ID: 9, Make: "VW", Model: "Golf"}))
		case "/v1/vehicles/9/media/all":
			json.NewEncoder(w).Encode([]models.MediaItem{})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	cars, err := svc.Search(context.Background(), models.SearchCriteriaPatch{}, SearchOptions{})
	require.NoError(t, err)
	require.Len(t, cars, 1)
	assert.Equal(t, placeholderImage, cars[0].ImageURL)
}

func TestSearchUsesCoverMedia(t *testing.T) {
	svc, _ := newSearchFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/vehicles":
			json.NewEncoder(w).Encode(vehiclePage(models.Vehicle{ID: 9, Make: "VW", Model: "Golf"}))
		case "/v1/vehicles/9/media/all":
			json.NewEncoder(w).Encode([]models.MediaItem{
				{ID: 1, VehicleID: 9, Type: models.MediaTypeFrontImage, URL: "https://cdn.example.com/front.jpg"},
				{ID: 2, VehicleID: 9, Type: models.MediaTypeCoverImage, URL: "https://cdn.example.com/cover.jpg", IsCover: true},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	cars, err := svc.Search(context.Background(), models.SearchCriteriaPatch{}, SearchOptions{})
	require.NoError(t, err)
	require.Len(t, cars, 1)
	assert.Equal(t, "https://cdn.example.com/cover.jpg", cars[0].ImageURL)
}

func TestSearchDiscardsStaleResponse(t *testing.T) {
	firstArrived := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	svc, state := newSearchFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/vehicles" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		first := false
		once.Do(func() { first = true })
		if first {
			// 第一个请求挂起，等第二个请求返回后才放行
			close(firstArrived)
			<-release
			json.NewEncoder(w).Encode(vehiclePage(models.Vehicle{ID: 1, Make: "Old", Model: "Result"}))
			return
		}
		json.NewEncoder(w).Encode(vehiclePage(models.Vehicle{ID: 2, Make: "New", Model: "Result"}))
	}))

	var staleErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, staleErr = svc.Search(context.Background(), models.SearchCriteriaPatch{}, SearchOptions{})
	}()

	// 等第一个请求在服务端挂起后再发第二个
	<-firstArrived
	fresh, err := svc.Search(context.Background(), models.SearchCriteriaPatch{}, SearchOptions{})
	require.NoError(t, err)
	close(release)
	<-done

	assert.ErrorIs(t, staleErr, ErrStaleSearch)
	require.Len(t, fresh, 1)
	assert.Equal(t, "New", fresh[0].Make)

	// 过期结果不能覆盖状态里的新结果
	stored := state.Cars()
	require.Len(t, stored, 1)
	assert.Equal(t, "New", stored[0].Make)
}

func TestSelectCarFromResults(t *testing.T) {
	svc, state := newSearchFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	state.UpdateCars([]models.Car{{ID: 5, Make: "Tesla", Model: "Model Y"}})

	car, err := svc.SelectCar(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "Model Y", car.Model)

	selected := state.SelectedCar()
	require.NotNil(t, selected)
	assert.EqualValues(t, 5, selected.ID)
}
