package application

import (
	"context"
	"testing"
	"time"

	"salon-client/internal/domain"

	"github.com/stretchr/testify/require"
)

func newTestSearcher(b *fakeSalons) (*Searcher, *Governor) {
	g := NewGovernor(5 * time.Second)
	return NewSearcher(b, g, 20*time.Millisecond, nil), g
}

var nearQuery = domain.NearbyQuery{Lat: 12.97, Lng: 77.59, RadiusKm: 5}

func Test_Nearby_Hit(t *testing.T) {
	t.Parallel()
	b := &fakeSalons{nearby: func(domain.NearbyQuery) (domain.SalonPage, error) {
		return page(salon("1", "Glow", "Bengaluru")), nil
	}}
	s, _ := newTestSearcher(b)

	res, err := s.Nearby(context.Background(), nearQuery, nil)
	require.NoError(t, err)
	require.Equal(t, SourceNearby, res.Source)
	require.Len(t, res.Salons, 1)
	require.Equal(t, []string{"nearby"}, b.Calls())
}

func Test_Nearby_EmptyFallsBackToAll(t *testing.T) {
	t.Parallel()
	b := &fakeSalons{
		list: func(int, int) (domain.SalonPage, error) {
			return page(salon("1", "A", "X"), salon("2", "B", "Y")), nil
		},
	}
	s, _ := newTestSearcher(b)

	res, err := s.Nearby(context.Background(), nearQuery, nil)
	require.NoError(t, err)
	require.Equal(t, SourceAll, res.Source)
	require.Len(t, res.Salons, 2)
	require.Equal(t, []string{"nearby", "list"}, b.Calls())
}

func Test_Nearby_FailureFallsBackToAll(t *testing.T) {
	t.Parallel()
	b := &fakeSalons{
		nearby: func(domain.NearbyQuery) (domain.SalonPage, error) {
			return domain.SalonPage{}, &domain.HTTPError{Status: 500}
		},
		list: func(int, int) (domain.SalonPage, error) { return page(salon("1", "A", "X")), nil },
	}
	s, _ := newTestSearcher(b)

	res, err := s.Nearby(context.Background(), nearQuery, nil)
	require.NoError(t, err)
	require.Equal(t, SourceAll, res.Source)
}

func Test_Nearby_InvalidQueryNoRequest(t *testing.T) {
	t.Parallel()
	b := &fakeSalons{}
	s, _ := newTestSearcher(b)

	_, err := s.Nearby(context.Background(), domain.NearbyQuery{Lat: 123, Lng: 0, RadiusKm: 5}, nil)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Empty(t, b.Calls())
}

func Test_Nearby_RateLimitDefersToAll(t *testing.T) {
	t.Parallel()
	b := &fakeSalons{
		nearby: func(domain.NearbyQuery) (domain.SalonPage, error) {
			return domain.SalonPage{}, &domain.RateLimitError{RetryAfter: 2 * time.Second}
		},
		list: func(int, int) (domain.SalonPage, error) { return page(salon("1", "A", "X")), nil },
	}
	clk := newFakeClock()
	g := NewGovernor(5*time.Second, WithGovernorClock(clk.Now))
	defer g.Stop()
	s := NewSearcher(b, g, 20*time.Millisecond, nil)

	got := make(chan SearchResult, 2)
	res, err := s.Nearby(context.Background(), nearQuery, func(r SearchResult, _ error) { got <- r })
	require.NoError(t, err)
	require.True(t, res.Deferred)
	deadline, cooling := g.Deadline(CapabilityNearby)
	require.True(t, cooling)
	require.Equal(t, clk.Now().Add(2*time.Second), deadline)

	// while cooling the backend is not asked again and no second timer is armed
	res, err = s.Nearby(context.Background(), nearQuery, func(r SearchResult, _ error) { got <- r })
	require.NoError(t, err)
	require.True(t, res.Deferred)
	require.Equal(t, int32(1), b.nearbyCalls.Load())

	select {
	case r := <-got:
		require.Equal(t, SourceAll, r.Source)
		require.Len(t, r.Salons, 1)
	case <-time.After(2 * time.Second):
		t.Fatal("deferred fallback not delivered")
	}
	time.Sleep(50 * time.Millisecond)
	require.Len(t, got, 0)
	require.Equal(t, int32(1), b.listCalls.Load())
}

func Test_Location_CityThenState(t *testing.T) {
	t.Parallel()
	b := &fakeSalons{location: func(f LocationField, v string) (domain.SalonPage, error) {
		if f == LocationState {
			return page(salon("9", "Kerala Cuts", "Kochi")), nil
		}
		return domain.SalonPage{}, nil
	}}
	s, _ := newTestSearcher(b)

	res, err := s.Location(context.Background(), " Kerala ", nil)
	require.NoError(t, err)
	require.Equal(t, SourceState, res.Source)
	require.Len(t, res.Salons, 1)
	require.Equal(t, []string{"location:city", "location:state"}, b.Calls())
}

func Test_Location_CityHitStops(t *testing.T) {
	t.Parallel()
	b := &fakeSalons{location: func(f LocationField, v string) (domain.SalonPage, error) {
		return page(salon("1", "A", v)), nil
	}}
	s, _ := newTestSearcher(b)

	res, err := s.Location(context.Background(), "Pune", nil)
	require.NoError(t, err)
	require.Equal(t, SourceCity, res.Source)
	require.Equal(t, []string{"location:city"}, b.Calls())
}

func Test_Location_NumericIsPincodeOnly(t *testing.T) {
	t.Parallel()
	b := &fakeSalons{}
	s, _ := newTestSearcher(b)

	res, err := s.Location(context.Background(), "560001", nil)
	require.NoError(t, err)
	require.Equal(t, SourcePincode, res.Source)
	require.Empty(t, res.Salons)
	require.Equal(t, []string{"location:pincode"}, b.Calls())
}

func Test_Location_ErrorPropagates(t *testing.T) {
	t.Parallel()
	b := &fakeSalons{location: func(LocationField, string) (domain.SalonPage, error) {
		return domain.SalonPage{}, &domain.HTTPError{Status: 502}
	}}
	s, _ := newTestSearcher(b)

	_, err := s.Location(context.Background(), "Pune", nil)
	var he *domain.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, []string{"location:city"}, b.Calls())
}

func Test_Location_RateLimitTripsCooldown(t *testing.T) {
	t.Parallel()
	b := &fakeSalons{location: func(LocationField, string) (domain.SalonPage, error) {
		return domain.SalonPage{}, &domain.RateLimitError{}
	}}
	s, g := newTestSearcher(b)
	defer g.Stop()

	res, err := s.Location(context.Background(), "Pune", nil)
	require.NoError(t, err)
	require.True(t, res.Deferred)
	require.True(t, g.Cooling(CapabilityLocation))
	require.False(t, g.Cooling(CapabilityNearby))
}

func Test_Location_EmptyText(t *testing.T) {
	t.Parallel()
	s, _ := newTestSearcher(&fakeSalons{})
	_, err := s.Location(context.Background(), "  ", nil)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
}

func Test_Services_AliasesCanonicalized(t *testing.T) {
	t.Parallel()
	var sent []string
	b := &fakeSalons{services: func(names []string) ([]domain.Salon, error) {
		sent = names
		return []domain.Salon{salon("1", "A", "X", "Haircut")}, nil
	}}
	s, _ := newTestSearcher(b)

	res, err := s.Services(context.Background(), []string{"cut", "Hair-Cut", "beard"}, nil)
	require.NoError(t, err)
	require.Equal(t, SourceServices, res.Source)
	require.Equal(t, []string{"Haircut", "Beard Trim"}, sent)
}

func Test_Services_LocalFallback(t *testing.T) {
	t.Parallel()
	local := []domain.Salon{
		salon("1", "Spa Palace", "X"),
		salon("2", "Trim Bar", "Y", "Haircut"),
		salon("3", "Nails Co", "Z", "Nail Art"),
	}
	for name, backend := range map[string]func([]string) ([]domain.Salon, error){
		"empty": func([]string) ([]domain.Salon, error) { return nil, nil },
		"error": func([]string) ([]domain.Salon, error) { return nil, errBackend },
	} {
		t.Run(name, func(t *testing.T) {
			s, _ := newTestSearcher(&fakeSalons{services: backend})
			res, err := s.Services(context.Background(), []string{"cut"}, local)
			require.NoError(t, err)
			require.Equal(t, SourceLocal, res.Source)
			require.Len(t, res.Salons, 1)
			require.Equal(t, "2", res.Salons[0].ID)
		})
	}
}

func Test_Keyword_MatchesSalonName(t *testing.T) {
	t.Parallel()
	local := []domain.Salon{salon("1", "Spa Palace", "X"), salon("2", "Trim Bar", "Y")}
	s, _ := newTestSearcher(&fakeSalons{})

	res, err := s.Keyword(context.Background(), "palace", local)
	require.NoError(t, err)
	require.Equal(t, SourceLocal, res.Source)
	require.Len(t, res.Salons, 1)
	require.Equal(t, "1", res.Salons[0].ID)
}

func Test_CanonicalService(t *testing.T) {
	t.Parallel()
	require.Equal(t, "Haircut", CanonicalService("  CUT "))
	require.Equal(t, "Hair Color", CanonicalService("hair_colour"))
	require.Equal(t, "Deep Tissue", CanonicalService("deep-tissue"))
	require.Equal(t, "", CanonicalService(" - "))
}
