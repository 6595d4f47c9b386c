package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/dediary/internal/client/models"
	"github.com/dmitrijs2005/dediary/internal/common"
	"github.com/dmitrijs2005/dediary/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	name  string
	docs  map[models.CID][]byte
	calls atomic.Int32
	delay time.Duration
}

func (g *fakeGateway) Name() string { return g.name }

func (g *fakeGateway) Fetch(ctx context.Context, cid models.CID) ([]byte, error) {
	g.calls.Add(1)
	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	b, ok := g.docs[cid]
	if !ok {
		return nil, errors.New("404")
	}
	return b, nil
}

type memSink struct {
	mu   sync.Mutex
	puts map[models.CID][]byte
}

func (s *memSink) Put(_ context.Context, cid models.CID, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.puts == nil {
		s.puts = map[models.CID][]byte{}
	}
	s.puts[cid] = body
	return nil
}

func doc(t *testing.T, title string, created time.Time) []byte {
	t.Helper()
	b, err := json.Marshal(models.Entry{Title: title, Body: "body of " + title, CreatedAt: created})
	require.NoError(t, err)
	return b
}

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestFetch_FirstGatewayHit(t *testing.T) {
	g1 := &fakeGateway{name: "g1", docs: map[models.CID][]byte{"A": doc(t, "a", t0)}}
	g2 := &fakeGateway{name: "g2", docs: map[models.CID][]byte{"A": doc(t, "other", t0)}}
	f := NewFetcher([]Gateway{g1, g2}, nil, 2, logging.Nop())

	e, err := f.Fetch(context.Background(), "A")
	require.NoError(t, err)
	require.Equal(t, "a", e.Title)
	require.Zero(t, g2.calls.Load())
}

func TestFetch_FallsThroughMissAndMalformed(t *testing.T) {
	g1 := &fakeGateway{name: "g1"}
	g2 := &fakeGateway{name: "g2", docs: map[models.CID][]byte{"A": []byte(`{"title":`)}}
	g3 := &fakeGateway{name: "g3", docs: map[models.CID][]byte{"A": doc(t, "ok", t0)}}
	sink := &memSink{}
	f := NewFetcher([]Gateway{g1, g2, g3}, sink, 1, logging.Nop())

	e, err := f.Fetch(context.Background(), "A")
	require.NoError(t, err)
	require.Equal(t, "ok", e.Title)
	require.Contains(t, sink.puts, models.CID("A"))
}

func TestFetch_LocalHitNotWrittenBack(t *testing.T) {
	local := &fakeGateway{name: LocalName, docs: map[models.CID][]byte{"A": doc(t, "a", t0)}}
	sink := &memSink{}
	f := NewFetcher([]Gateway{local}, sink, 1, logging.Nop())

	_, err := f.Fetch(context.Background(), "A")
	require.NoError(t, err)
	require.Empty(t, sink.puts)
}

func TestFetch_Unresolvable(t *testing.T) {
	invalid, _ := json.Marshal(models.Entry{Title: "no body", CreatedAt: t0})
	g := &fakeGateway{name: "g", docs: map[models.CID][]byte{"A": invalid}}
	f := NewFetcher([]Gateway{g}, nil, 1, logging.Nop())

	_, err := f.Fetch(context.Background(), "A")
	require.ErrorIs(t, err, common.ErrContentUnresolvable)
	require.ErrorIs(t, err, common.ErrInvalidEntry)

	_, err = NewFetcher(nil, nil, 1, logging.Nop()).Fetch(context.Background(), "A")
	require.ErrorIs(t, err, common.ErrContentUnresolvable)
}

func TestFetchMany_SkipsMalformedKeepsOrder(t *testing.T) {
	g := &fakeGateway{name: "g", delay: 5 * time.Millisecond, docs: map[models.CID][]byte{
		"A": doc(t, "a", t0),
		"B": []byte("not json"),
		"C": doc(t, "c", t0.Add(time.Hour)),
		"D": doc(t, "d", t0),
	}}
	f := NewFetcher([]Gateway{g}, nil, 3, logging.Nop())

	got := f.FetchMany(context.Background(), []models.CID{"A", "B", "C", "missing", "D"})
	require.Len(t, got, 3)
	assert.Equal(t, []models.CID{"A", "C", "D"}, []models.CID{got[0].CID, got[1].CID, got[2].CID})
	assert.Equal(t, "c", got[1].Entry.Title)
}

func TestFetchMany_Empty(t *testing.T) {
	f := NewFetcher(nil, nil, 0, logging.Nop())
	require.Empty(t, f.FetchMany(context.Background(), nil))
}

func TestFetchMany_CancelledContext(t *testing.T) {
	g := &fakeGateway{name: "g", delay: time.Second, docs: map[models.CID][]byte{"A": doc(t, "a", t0)}}
	f := NewFetcher([]Gateway{g}, nil, 2, logging.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Empty(t, f.FetchMany(ctx, []models.CID{"A", "A"}))
}

func TestPrefer(t *testing.T) {
	a, b, c := &fakeGateway{name: "a"}, &fakeGateway{name: "b"}, &fakeGateway{name: "c"}
	f := NewFetcher([]Gateway{a, b, c}, nil, 1, logging.Nop())

	require.Equal(t, []string{"c", "a", "b"}, f.Prefer("c").Names())
	require.Equal(t, []string{"a", "b", "c"}, f.Prefer("zzz").Names())
	require.Equal(t, []string{"a", "b", "c"}, f.Names(), "original untouched")
}
