package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogRepo "github.com/RealTimGFM/ScheduleBooker/internal/infra/storage/catalog"
	"github.com/RealTimGFM/ScheduleBooker/internal/infra/storage/storagetest"
	"github.com/RealTimGFM/ScheduleBooker/internal/service/catalog"
	"github.com/RealTimGFM/ScheduleBooker/internal/service/catalog/models"
	"github.com/RealTimGFM/ScheduleBooker/pkg/logger"
	"github.com/RealTimGFM/ScheduleBooker/pkg/ptr"
)

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

func setup(t *testing.T) *catalog.Service {
	t.Helper()
	db := storagetest.NewSQLite(t)
	return catalog.NewService(catalogRepo.NewRepository(db), logger.Nop()).
		WithTimeProvider(fixedTime{now: time.Date(2025, 12, 1, 12, 0, 0, 0, time.UTC)})
}

func TestService_GetCatalog(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	requests := []models.ServiceRequest{
		{Name: "Coupe (Homme)", DurationMinutes: 30, Price: 25, IsActive: true, IsPopular: true, SortOrder: 1},
		{Name: "Coupe + Barbe", DurationMinutes: 60, Price: 40, IsActive: true, IsPopular: true, SortOrder: 0},
		{Name: "Rasage", DurationMinutes: 30, Price: 20, PriceIsFrom: true, IsActive: true},
		{Name: "Old service", DurationMinutes: 30, Price: 10, IsActive: false, IsPopular: true},
	}
	for i := range requests {
		_, err := svc.CreateService(ctx, &requests[i])
		require.NoError(t, err)
	}

	resp, err := svc.GetCatalog(ctx)
	require.NoError(t, err)

	require.Len(t, resp.Popular, 2)
	assert.Equal(t, "Coupe + Barbe", resp.Popular[0].Name)
	assert.Equal(t, "Coupe (Homme)", resp.Popular[1].Name)

	require.Len(t, resp.Other, 1)
	assert.Equal(t, "Rasage", resp.Other[0].Name)
	assert.Equal(t, "from $20.00", resp.Other[0].DisplayPrice)

	all, err := svc.ListServices(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestService_ServiceValidation(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		req     models.ServiceRequest
		wantErr error
	}{
		{name: "empty name", req: models.ServiceRequest{Name: " ", DurationMinutes: 30}, wantErr: catalog.ErrInvalidName},
		{name: "zero duration", req: models.ServiceRequest{Name: "Cut", DurationMinutes: 0}, wantErr: catalog.ErrInvalidDuration},
		{name: "too long", req: models.ServiceRequest{Name: "Cut", DurationMinutes: 481}, wantErr: catalog.ErrInvalidDuration},
		{name: "negative price", req: models.ServiceRequest{Name: "Cut", DurationMinutes: 30, Price: -1}, wantErr: catalog.ErrInvalidPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateService(ctx, &tt.req)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestService_UpdateService(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	created, err := svc.CreateService(ctx, &models.ServiceRequest{Name: "Cut", DurationMinutes: 30, Price: 20, IsActive: true})
	require.NoError(t, err)

	updated, err := svc.UpdateService(ctx, created.ID, &models.ServiceRequest{
		Name:            "Cut & Style",
		DurationMinutes: 45,
		Price:           30,
		PriceLabel:      ptr.Ptr("Ask us"),
		IsActive:        true,
	})
	require.NoError(t, err)
	assert.Equal(t, 45, updated.DurationMinutes)
	assert.Equal(t, "Ask us", updated.DisplayPrice)

	_, err = svc.UpdateService(ctx, 999, &models.ServiceRequest{Name: "X", DurationMinutes: 30})
	require.ErrorIs(t, err, catalog.ErrServiceNotFound)
}

func TestService_Barbers(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	alex, err := svc.CreateBarber(ctx, &models.BarberRequest{Name: " Alex ", IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, "Alex", alex.Name)

	_, err = svc.CreateBarber(ctx, &models.BarberRequest{Name: "Sam", IsActive: true})
	require.NoError(t, err)

	_, err = svc.CreateBarber(ctx, &models.BarberRequest{Name: ""})
	require.ErrorIs(t, err, catalog.ErrInvalidName)

	retired, err := svc.UpdateBarber(ctx, alex.ID, &models.BarberRequest{Name: "Alex", IsActive: false})
	require.NoError(t, err)
	assert.False(t, retired.IsActive)

	active, err := svc.ListBarbers(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Sam", active[0].Name)

	all, err := svc.ListBarbers(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.UpdateBarber(ctx, 999, &models.BarberRequest{Name: "Nobody"})
	require.ErrorIs(t, err, catalog.ErrBarberNotFound)
}
