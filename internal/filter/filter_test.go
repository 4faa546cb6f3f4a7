package filter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tnstc-api/internal/filter"
	"tnstc-api/pkg/models"
)

func svc(price int, departure, busType string) models.BusService {
	return models.BusService{
		PriceInRs:     price,
		DepartureTime: departure,
		BusType:       busType,
	}
}

func defaultSpec() *models.SearchFilter {
	return &models.SearchFilter{
		MinPrice:     100,
		MaxPrice:     1000,
		MinDeparture: "00:00",
		MaxDeparture: "23:59",
	}
}

func TestApply(t *testing.T) {
	t.Parallel()

	t.Run("price bounds are inclusive", func(t *testing.T) {
		t.Parallel()

		spec := defaultSpec()
		spec.MinPrice = 200
		spec.MaxPrice = 800

		services := []models.BusService{
			svc(150, "10:00", "AC"),
			svc(200, "10:00", "AC"),
			svc(350, "10:00", "AC"),
			svc(800, "10:00", "AC"),
			svc(900, "10:00", "AC"),
		}
		kept := filter.Apply(services, spec)
		require.Len(t, kept, 3)
		assert.Equal(t, 200, kept[0].PriceInRs)
		assert.Equal(t, 350, kept[1].PriceInRs)
		assert.Equal(t, 800, kept[2].PriceInRs)
	})

	t.Run("departure window", func(t *testing.T) {
		t.Parallel()

		spec := defaultSpec()
		spec.MinDeparture = "06:00"
		spec.MaxDeparture = "22:00"

		services := []models.BusService{
			svc(300, "05:59", "AC"),
			svc(300, "06:00", "AC"),
			svc(300, "22:00", "AC"),
			svc(300, "22:01", "AC"),
		}
		kept := filter.Apply(services, spec)
		require.Len(t, kept, 2)
		assert.Equal(t, "06:00", kept[0].DepartureTime)
		assert.Equal(t, "22:00", kept[1].DepartureTime)
	})

	t.Run("unparseable departure time is excluded", func(t *testing.T) {
		t.Parallel()

		services := []models.BusService{
			svc(300, "N/A", "AC"),
			svc(300, "10:00", "AC"),
		}
		kept := filter.Apply(services, defaultSpec())
		require.Len(t, kept, 1)
		assert.Equal(t, "10:00", kept[0].DepartureTime)
	})

	t.Run("bus type match is case-insensitive", func(t *testing.T) {
		t.Parallel()

		spec := defaultSpec()
		spec.AllowedTypes = map[string]struct{}{"ac sleeper": {}}

		services := []models.BusService{
			svc(300, "10:00", "AC Sleeper"),
			svc(300, "10:00", "ULTRA DELUXE"),
		}
		kept := filter.Apply(services, spec)
		require.Len(t, kept, 1)
		assert.Equal(t, "AC Sleeper", kept[0].BusType)
	})

	t.Run("nil allowed types passes every bus type", func(t *testing.T) {
		t.Parallel()

		services := []models.BusService{
			svc(300, "10:00", "AC"),
			svc(300, "10:00", "NON AC"),
		}
		assert.Len(t, filter.Apply(services, defaultSpec()), 2)
	})

	t.Run("does not mutate the input slice", func(t *testing.T) {
		t.Parallel()

		services := []models.BusService{
			svc(50, "10:00", "AC"),
			svc(300, "10:00", "AC"),
		}
		filter.Apply(services, defaultSpec())
		assert.Equal(t, 50, services[0].PriceInRs)
		assert.Len(t, services, 2)
	})
}
