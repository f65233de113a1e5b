package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/geovraag/internal/backend"
	"github.com/joeblew999/geovraag/internal/classify"
	"github.com/joeblew999/geovraag/internal/location"
)

// fakeQuerier scripts backend answers for session tests.
type fakeQuerier struct {
	mu      sync.Mutex
	answers []*backend.Response
	errs    []error
	calls   []backend.Request
	block   chan struct{} // when set, Query waits until the channel closes
}

func (f *fakeQuerier) Query(_ context.Context, req backend.Request) (*backend.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	block := f.block
	var resp *backend.Response
	var err error
	if len(f.answers) > 0 {
		resp, f.answers = f.answers[0], f.answers[1:]
	}
	if len(f.errs) > 0 {
		err, f.errs = f.errs[0], f.errs[1:]
	}
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	return resp, err
}

func featureAnswer() *backend.Response {
	return backend.ParseResponse([]byte(`{
		"response": "Found one building.",
		"layer_type": "bag",
		"geojson_data": [
			{"name": "A", "lat": 53.2, "lon": 6.5,
			 "geometry": {"type": "Point", "coordinates": [6.5, 53.2]},
			 "properties": {"bouwjaar": 1875, "area_m2": 1200}}
		]
	}`))
}

func TestAskFeatureTurnRebuildsAllModels(t *testing.T) {
	fake := &fakeQuerier{answers: []*backend.Response{featureAnswer()}}
	s := New(Config{Client: fake})

	result, err := s.Ask(context.Background(), "Show buildings near Groningen")
	require.NoError(t, err)

	assert.Equal(t, "Found one building.", result.Text)
	m := result.Models
	require.Len(t, m.Features, 1)
	assert.Equal(t, classify.Buildings, m.LayerType)
	assert.Equal(t, classify.ByArea, m.Dimension)

	require.NotNil(t, m.Legend)
	require.Len(t, m.Legend.Categories, 1)
	assert.Equal(t, 1, m.Legend.Categories[0].Count)

	assert.Equal(t, 1, m.Statistics.Count)
	require.NotNil(t, m.Statistics.Area)
	assert.Equal(t, 1200.0, m.Statistics.Area.Average)

	require.NotNil(t, m.Location)
	assert.Equal(t, "Groningen", m.Location.Name)
	assert.Equal(t, location.SourceCentroid, m.Location.Source)
}

func TestAskTransportFailureClearsModels(t *testing.T) {
	fake := &fakeQuerier{
		answers: []*backend.Response{featureAnswer(), nil},
		errs:    []error{nil, errors.New("connection refused")},
	}
	s := New(Config{Client: fake})

	_, err := s.Ask(context.Background(), "Show buildings near Groningen")
	require.NoError(t, err)
	require.Len(t, s.Models().Features, 1)

	result, err := s.Ask(context.Background(), "and now?")
	require.NoError(t, err)

	assert.Contains(t, result.Text, "connection refused")
	assert.Empty(t, s.Models().Features)
	assert.Nil(t, s.Models().Legend)
	assert.Nil(t, s.Models().Location)
	assert.Equal(t, 0, s.Models().Statistics.Count)
}

func TestAskBackendErrorShape(t *testing.T) {
	fake := &fakeQuerier{answers: []*backend.Response{
		backend.ParseResponse([]byte(`{"error": "too vague"}`)),
	}}
	s := New(Config{Client: fake})

	result, err := s.Ask(context.Background(), "hmm")
	require.NoError(t, err)

	assert.Equal(t, "Error: too vague", result.Text)
	assert.Empty(t, result.Models.Features)
}

func TestAskTextOnlyKeepsMap(t *testing.T) {
	fake := &fakeQuerier{answers: []*backend.Response{
		featureAnswer(),
		backend.ParseResponse([]byte(`{"response": "They are quite old."}`)),
	}}
	s := New(Config{Client: fake})

	_, err := s.Ask(context.Background(), "Show buildings near Groningen")
	require.NoError(t, err)

	result, err := s.Ask(context.Background(), "how old are they?")
	require.NoError(t, err)

	assert.Equal(t, "They are quite old.", result.Text)
	require.Len(t, result.Models.Features, 1)

	// A new turn with no extractable place clears the previous pin.
	assert.Nil(t, result.Models.Location)
}

func TestAskEchoesCurrentFeatures(t *testing.T) {
	fake := &fakeQuerier{answers: []*backend.Response{
		featureAnswer(),
		backend.ParseResponse([]byte(`{"response": "ok"}`)),
	}}
	s := New(Config{Client: fake})

	_, err := s.Ask(context.Background(), "Show buildings near Groningen")
	require.NoError(t, err)
	_, err = s.Ask(context.Background(), "follow-up")
	require.NoError(t, err)

	require.Len(t, fake.calls, 2)
	assert.Empty(t, fake.calls[0].CurrentFeatures)
	require.Len(t, fake.calls[1].CurrentFeatures, 1)
	assert.Equal(t, "A", fake.calls[1].CurrentFeatures[0].Name)
	require.NotNil(t, fake.calls[1].MapCenter)
	assert.InDelta(t, 6.5, fake.calls[1].MapCenter[0], 1e-9)
	assert.InDelta(t, 53.2, fake.calls[1].MapCenter[1], 1e-9)
}

func TestAskRejectsConcurrentTurn(t *testing.T) {
	block := make(chan struct{})
	fake := &fakeQuerier{
		answers: []*backend.Response{featureAnswer()},
		block:   block,
	}
	s := New(Config{Client: fake})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := s.Ask(context.Background(), "first")
		assert.NoError(t, err)
	}()

	require.Eventually(t, s.Loading, time.Second, time.Millisecond)

	_, err := s.Ask(context.Background(), "second")
	assert.ErrorIs(t, err, ErrTurnInFlight)

	close(block)
	<-done
	assert.False(t, s.Loading())
}

func TestClearResetsEverything(t *testing.T) {
	fake := &fakeQuerier{answers: []*backend.Response{featureAnswer()}}
	s := New(Config{Client: fake})

	ch := s.Bus().Subscribe()
	defer s.Bus().Unsubscribe(ch)

	_, err := s.Ask(context.Background(), "Show buildings near Groningen")
	require.NoError(t, err)
	assert.Len(t, s.History(), 2)

	s.Clear()

	assert.Empty(t, s.Models().Features)
	assert.Nil(t, s.Models().Legend)
	assert.Empty(t, s.History())

	var kinds []string
	for range 2 {
		select {
		case ev := <-ch:
			kinds = append(kinds, ev.Kind)
		case <-time.After(time.Second):
			t.Fatal("missing bus event")
		}
	}
	assert.Equal(t, []string{"turn", "clear"}, kinds)
}

func TestLegendTitleHintFromBackend(t *testing.T) {
	fake := &fakeQuerier{answers: []*backend.Response{
		backend.ParseResponse([]byte(`{
			"response": "ok",
			"legend_data": {"title": "Panden in Groningen"},
			"geojson_data": [
				{"name": "A", "lat": 53.2, "lon": 6.5,
				 "geometry": {"type": "Point", "coordinates": [6.5, 53.2]},
				 "properties": {"area_m2": 50}}
			]
		}`)),
	}}
	s := New(Config{Client: fake})

	result, err := s.Ask(context.Background(), "panden")
	require.NoError(t, err)

	require.NotNil(t, result.Models.Legend)
	assert.Equal(t, "Panden in Groningen", result.Models.Legend.Title)
}
