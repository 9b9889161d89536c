package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/langchou/rentdeck/internal/api/rental"
	"github.com/langchou/rentdeck/internal/models"
	"github.com/langchou/rentdeck/internal/store"
)

func TestRentalDaysInclusive(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		want  int
	}{
		{"一周租期首尾都算", "2024-09-23", "2024-09-30", 8},
		{"同日取还算一天", "2024-09-23", "2024-09-23", 1},
		{"隔天算两天", "2024-09-23", "2024-09-24", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RentalDays(tt.start, tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRentalDaysInvalid(t *testing.T) {
	_, err := RentalDays("not-a-date", "2024-09-30")
	assert.ErrorIs(t, err, ErrInvalidDates)

	_, err = RentalDays("2024-09-30", "2024-09-23")
	assert.ErrorIs(t, err, ErrInvalidDates)
}

func newBookingFixture(t *testing.T, handler http.Handler) (*BookingService, *store.Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := rental.NewClient(zap.NewNop(), srv.URL)
	state := store.New(zap.NewNop(), nil, false)
	return NewBookingService(zap.NewNop(), client, state), state
}

func selectCarWithDates(state *store.Store) {
	state.SetUserID(7)
	state.SetSelectedCar(models.Car{ID: 3, Make: "Tesla", Model: "Model 3", Price: 58})
	start, end := "2024-09-23", "2024-09-30"
	state.UpdateSearchCriteria(models.SearchCriteriaPatch{
		Location:  strPtr("Berlin"),
		StartDate: &start,
		EndDate:   &end,
	})
}

func TestQuoteLocalFallback(t *testing.T) {
	// 计价接口整体不可用，走本地估算
	svc, state := newBookingFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	selectCarWithDates(state)

	quote, err := svc.Quote(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 8, quote.Days)
	assert.InDelta(t, 58.0, quote.PricePerDay, 0.001)
	assert.InDelta(t, 464.0, quote.Subtotal, 0.001)
	assert.InDelta(t, 25.0, quote.TaxesFees, 0.001)
	assert.InDelta(t, 489.0, quote.Total, 0.001)

	// 总价同步进付款表单
	assert.InDelta(t, 489.0, state.PaymentData().TotalAmount, 0.001)
}

func TestQuotePrefersBackendPricing(t *testing.T) {
	svc, state := newBookingFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/pricing/calculate" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(models.PriceQuote{
			VehicleID:   3,
			Days:        8,
			PricePerDay: 49,
			Subtotal:    392,
			TaxesFees:   25,
			Total:       417,
		})
	}))
	selectCarWithDates(state)

	quote, err := svc.Quote(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 417.0, quote.Total, 0.001)
	assert.InDelta(t, 417.0, state.PaymentData().TotalAmount, 0.001)
}

func TestQuoteWithoutSelectedCar(t *testing.T) {
	svc, _ := newBookingFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	_, err := svc.Quote(context.Background())
	assert.ErrorIs(t, err, ErrNoSelectedCar)
}

func TestReserveCreatesReservation(t *testing.T) {
	svc, state := newBookingFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/reservations":
			var req rental.CreateReservationRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.EqualValues(t, 7, req.UserID)
			assert.EqualValues(t, 3, req.VehicleID)
			json.NewEncoder(w).Encode(models.Reservation{
				ID:        41,
				StartDate: req.StartDate,
				EndDate:   req.EndDate,
				Price:     req.Price,
				Status:    models.ReservationStatusCreated,
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	selectCarWithDates(state)

	reservation, err := svc.Reserve(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 41, reservation.ID)
	assert.Equal(t, models.ReservationStatusCreated, reservation.Status)

	current := state.CurrentReservation()
	require.NotNil(t, current)
	assert.EqualValues(t, 41, current.ID)
}

func TestReserveRequiresLogin(t *testing.T) {
	svc, state := newBookingFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	state.SetSelectedCar(models.Car{ID: 3})

	_, err := svc.Reserve(context.Background())
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestCompleteReturnsRedirect(t *testing.T) {
	svc, state := newBookingFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/v1/reservations/41/complete" {
			json.NewEncoder(w).Encode(models.Reservation{
				ID:     41,
				Status: models.ReservationStatusCompleted,
				Vehicle: models.Vehicle{
					Make:        "Tesla",
					Model:       "Model 3",
					VehicleType: "Sedan",
				},
				StartDate: "2024-09-23",
				EndDate:   "2024-09-30",
			})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	state.SetCurrentReservation(models.Reservation{ID: 41, Status: models.ReservationStatusPaid})

	result, err := svc.Complete(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/my-rentals", result.Redirect)
	assert.Equal(t, 2000, result.DelayMS)
	assert.Equal(t, models.ReservationStatusCompleted, result.Reservation.Status)

	// 完成的预订同步成当前租用
	active := state.ActiveRental()
	require.NotNil(t, active)
	assert.Equal(t, "Tesla Model 3", active.CarName)
	assert.Equal(t, "2024-09-23", active.PickupDate)
}

func TestCompleteWithoutReservation(t *testing.T) {
	svc, _ := newBookingFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	_, err := svc.Complete(context.Background())
	assert.ErrorIs(t, err, ErrNoReservation)
}

func strPtr(v string) *string { return &v }
