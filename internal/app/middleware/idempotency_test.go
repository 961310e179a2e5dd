package middleware

import (
	"context"
	"errors"
	"testing"

	"stayhub/internal/app/commands"
)

type chargeCommand struct {
	Key_   string
	Amount int64
}

func (chargeCommand) Key() string { return "test.charge" }

func (c chargeCommand) IdempotencyKey() string { return c.Key_ }

func (chargeCommand) ResultPrototype() any { return &chargeResult{} }

type chargeResult struct {
	Receipt string `json:"receipt"`
}

type recordingStore struct {
	records map[string]IdempotencyRecord
}

func newRecordingStore() *recordingStore {
	return &recordingStore{records: make(map[string]IdempotencyRecord)}
}

func (s *recordingStore) Get(_ context.Context, key string) (IdempotencyRecord, bool, error) {
	rec, ok := s.records[key]
	return rec, ok, nil
}

func (s *recordingStore) Save(_ context.Context, rec IdempotencyRecord) error {
	s.records[rec.Key] = rec
	return nil
}

func countingBus(calls *int, result any, err error) commands.Bus {
	return commandFunc(func(context.Context, commands.Command) (any, error) {
		*calls++
		return result, err
	})
}

func TestIdempotencyReplaysRecordedResult(t *testing.T) {
	store := newRecordingStore()
	var calls int
	bus := ChainCommands(
		countingBus(&calls, &chargeResult{Receipt: "rcpt_1"}, nil),
		Idempotency(store, nil),
	)

	cmd := chargeCommand{Key_: "idem-1", Amount: 700}
	first, err := bus.Dispatch(context.Background(), cmd)
	if err != nil {
		t.Fatalf("first dispatch: %v", err)
	}
	second, err := bus.Dispatch(context.Background(), cmd)
	if err != nil {
		t.Fatalf("second dispatch: %v", err)
	}
	if calls != 1 {
		t.Fatalf("handler ran %d times, want 1", calls)
	}
	got, ok := second.(*chargeResult)
	if !ok {
		t.Fatalf("replayed result has type %T", second)
	}
	if want := first.(*chargeResult); got.Receipt != want.Receipt {
		t.Errorf("replayed receipt = %q, want %q", got.Receipt, want.Receipt)
	}
}

func TestIdempotencyReplaysRecordedError(t *testing.T) {
	store := newRecordingStore()
	var calls int
	bus := ChainCommands(
		countingBus(&calls, nil, errors.New("card declined")),
		Idempotency(store, nil),
	)

	cmd := chargeCommand{Key_: "idem-2"}
	if _, err := bus.Dispatch(context.Background(), cmd); err == nil {
		t.Fatal("first dispatch should fail")
	}
	_, err := bus.Dispatch(context.Background(), cmd)
	if err == nil || err.Error() != "card declined" {
		t.Fatalf("replayed error = %v, want card declined", err)
	}
	if calls != 1 {
		t.Fatalf("handler ran %d times, want 1", calls)
	}
}

func TestIdempotencySkipsCommandsWithoutKey(t *testing.T) {
	store := newRecordingStore()
	var calls int
	bus := ChainCommands(
		countingBus(&calls, &chargeResult{}, nil),
		Idempotency(store, nil),
	)

	cmd := chargeCommand{Key_: ""}
	for i := 0; i < 2; i++ {
		if _, err := bus.Dispatch(context.Background(), cmd); err != nil {
			t.Fatalf("dispatch %d: %v", i, err)
		}
	}
	if calls != 2 {
		t.Errorf("handler ran %d times, want 2", calls)
	}
	if len(store.records) != 0 {
		t.Errorf("store holds %d records, want 0", len(store.records))
	}
}
