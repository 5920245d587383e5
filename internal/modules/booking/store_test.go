// README: Store tests: memory watch, Firestore decoding, and DB/emulator-backed stores.
package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"kargo/internal/testutil"
	"kargo/internal/types"
)

func TestMemoryStoreWatch(t *testing.T) {
	store := NewMemoryStore(unclaimed("b1", time.Now()))
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := store.Watch(ctx)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	first := <-ch
	if len(first) != 1 || first[0].ID != "b1" {
		t.Fatalf("initial snapshot = %+v", first)
	}

	store.Put(unclaimed("b2", time.Now()))
	second := <-ch
	if len(second) != 2 || second[1].ID != "b2" {
		t.Fatalf("snapshot after put = %+v", second)
	}

	cancel()
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("watch channel not closed after cancel")
		}
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := NewMemoryStore(unclaimed("b1", time.Now()))
	b, _ := store.Get(context.Background(), "b1")
	d := types.ID("intruder")
	b.DriverID = &d
	again, _ := store.Get(context.Background(), "b1")
	if again.DriverID != nil {
		t.Fatal("mutating a returned booking changed the store")
	}
}

func TestDecodeBooking(t *testing.T) {
	ts := time.Date(2024, time.January, 5, 10, 30, 0, 0, time.UTC)
	data := map[string]any{
		"userId":          "u1",
		"driverId":        "d1",
		"pickupLocation":  "Dagupan",
		"pickupCoords":    []any{16.0439, 120.3331},
		"dropoffLocation": "Lingayen",
		"dropoffCoords":   []any{16.0206, 120.229},
		"rideDistance":    "12.3 km",
		"rideTime":        "25 mins",
		"ridePrice":       "₱173.00",
		"isPickUp":        true,
		"timestamp":       ts.UnixMilli(),
		"userWeight":      "5",
		"userfirstName":   "Juan",
	}
	b, err := decodeBooking("b1", data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b.ID != "b1" || b.UserID != "u1" || b.DriverID == nil || *b.DriverID != "d1" {
		t.Errorf("ids = %+v", b)
	}
	if b.PickupCoords != (types.Point{Lat: 16.0439, Lng: 120.3331}) || b.UserWeight != 5 {
		t.Errorf("coords/weight = %v %d", b.PickupCoords, b.UserWeight)
	}
	if !b.Timestamp.Equal(ts) || b.State() != StatePickedUp || b.UserFirstName != "Juan" {
		t.Errorf("decoded = %+v", b)
	}

	bad := []map[string]any{
		{"timestamp": ts, "userWeight": "heavy"},
		{"timestamp": ts, "isDropoff": "yes"},
		{"timestamp": ts, "pickupCoords": "16,120"},
		{"userId": "u1"},
	}
	for i, d := range bad {
		if _, err := decodeBooking(fmt.Sprint("bad", i), d); !errors.Is(err, types.ErrInvalidDocument) {
			t.Errorf("case %d: err = %v, want ErrInvalidDocument", i, err)
		}
	}
}

type captureMQ struct {
	exchange, key string
	body          []byte
}

func (c *captureMQ) Publish(_ context.Context, exchange, key string, body []byte) error {
	c.exchange, c.key, c.body = exchange, key, body
	return nil
}

func TestAMQPPublisher(t *testing.T) {
	mq := &captureMQ{}
	p := NewAMQPPublisher(mq, "booking.events")
	e := Event{ID: "e1", BookingID: "b1", FromState: StateClaimed, ToState: StatePickedUp, DriverID: "d1", OccurredAt: time.Unix(0, 0).UTC()}
	if err := p.Publish(context.Background(), e); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if mq.exchange != "booking.events" || mq.key != "booking.picked_up" {
		t.Fatalf("routed to %s/%s", mq.exchange, mq.key)
	}
	var got Event
	if err := json.Unmarshal(mq.body, &got); err != nil || got.ID != e.ID || got.ToState != e.ToState || !got.OccurredAt.Equal(e.OccurredAt) {
		t.Fatalf("body = %s (%v)", mq.body, err)
	}
}

func TestPGStoreConcurrentClaim(t *testing.T) {
	db := testutil.Postgres(t, "book")
	store := NewPGStore(db, testutil.Redis(t), slog.Default())
	ctx := context.Background()

	if err := store.Insert(ctx, unclaimed("pg_b1", time.Now())); err != nil {
		t.Fatalf("insert: %v", err)
	}
	svc := NewService(store, nil, nil)

	const attempts = 8
	errs := make(chan error, attempts)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(did types.ID) {
			defer wg.Done()
			<-start
			_, err := svc.Claim(ctx, "pg_b1", did)
			errs <- err
		}(types.ID(fmt.Sprintf("d%d", i)))
	}
	close(start)
	wg.Wait()
	close(errs)

	success := 0
	for err := range errs {
		if err == nil {
			success++
			continue
		}
		if !errors.Is(err, ErrAlreadyClaimed) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if success != 1 {
		t.Fatalf("expected exactly 1 success, got %d", success)
	}
	assertState(t, svc, "pg_b1", StateClaimed)
}

func TestPGStoreWatch(t *testing.T) {
	db := testutil.Postgres(t, "book")
	store := NewPGStore(db, testutil.Redis(t), slog.Default())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := store.Watch(ctx)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	if first := <-ch; len(first) != 0 {
		t.Fatalf("initial snapshot = %+v", first)
	}
	if err := store.Insert(context.Background(), unclaimed("pg_w1", time.Now())); err != nil {
		t.Fatalf("insert: %v", err)
	}
	select {
	case snap := <-ch:
		if len(snap) != 1 || snap[0].ID != "pg_w1" {
			t.Fatalf("snapshot = %+v", snap)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no snapshot after insert")
	}
}

func TestFirestoreStoreLifecycle(t *testing.T) {
	client := testutil.Firestore(t, collection)
	ctx := context.Background()
	ts := time.Now().UTC().Truncate(time.Millisecond)
	if _, err := client.Collection(collection).Doc("fs_b1").Set(ctx, map[string]any{
		"userId":        "u1",
		"pickupCoords":  []any{16.0439, 120.3331},
		"dropoffCoords": []any{16.0206, 120.229},
		"ridePrice":     "₱40.00",
		"timestamp":     ts.UnixMilli(),
		"userWeight":    "5",
		"isPickUp":      false,
		"isDropoff":     false,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	svc := NewService(NewFirestoreStore(client, slog.Default()), nil, nil)
	if _, err := svc.Claim(ctx, "fs_b1", "d1"); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if _, err := svc.Claim(ctx, "fs_b1", "d2"); !errors.Is(err, ErrAlreadyClaimed) {
		t.Fatalf("second claim err = %v", err)
	}
	if _, err := svc.ConfirmPickup(ctx, "fs_b1", "d1"); err != nil {
		t.Fatalf("pickup: %v", err)
	}
	if _, err := svc.ConfirmDropoff(ctx, "fs_b1", "d1"); err != nil {
		t.Fatalf("dropoff: %v", err)
	}
	assertState(t, svc, "fs_b1", StateDroppedOff)

	mine, err := svc.Mine(ctx, "d1")
	if err != nil || len(mine) != 1 {
		t.Fatalf("mine = %+v, %v", mine, err)
	}
}
