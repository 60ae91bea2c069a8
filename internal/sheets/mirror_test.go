package sheets_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"carnival-tracker/internal/models"
	"carnival-tracker/internal/money"
	"carnival-tracker/internal/sheets"
)

// fakeRowStore holds sheet rows in memory, header included.
type fakeRowStore struct {
	mu        sync.Mutex
	rows      [][]interface{}
	appendErr error
	deleteErr error
}

func newFakeRowStore() *fakeRowStore {
	return &fakeRowStore{
		rows: [][]interface{}{
			{"ID", "Transaction ID", "Amount", "Desk", "Timestamp", "Tokens 50", "Tokens 100", "Tokens Haunted"},
		},
	}
}

func (f *fakeRowStore) AppendRow(ctx context.Context, row []interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.rows = append(f.rows, row)
	return nil
}

func (f *fakeRowStore) Rows(ctx context.Context) ([][]interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]interface{}, len(f.rows))
	copy(out, f.rows)
	return out, nil
}

func (f *fakeRowStore) DeleteRow(ctx context.Context, rowIndex int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	i := int(rowIndex - 1)
	if i < 0 || i >= len(f.rows) {
		return errors.New("row out of range")
	}
	f.rows = append(f.rows[:i], f.rows[i+1:]...)
	return nil
}

func sampleTxn(id int64, transactionID string) models.Transaction {
	amount, _ := money.Parse("12.50")
	return models.Transaction{
		ID:            id,
		TransactionID: transactionID,
		Amount:        amount,
		Desk:          "desk1",
		Tokens50:      2,
		Tokens100:     1,
		TokensHaunted: 0,
	}
}

func TestRecordAppend(t *testing.T) {
	store := newFakeRowStore()
	mirror := sheets.NewMirror(store, nil)
	defer mirror.Close()

	mirror.RecordAppend(sampleTxn(1, "TXN001"))
	mirror.Flush()

	assert.Len(t, store.rows, 2)
	row := store.rows[1]
	assert.Equal(t, int64(1), row[0])
	assert.Equal(t, "TXN001", row[1])
	assert.Equal(t, 12.5, row[2])
	assert.Equal(t, "desk1", row[3])
	// Timestamp is "YYYY-MM-DD HH:MM:SS" in UTC+5:30.
	_, err := time.Parse("2006-01-02 15:04:05", row[4].(string))
	assert.NoError(t, err)
	assert.Equal(t, []interface{}{int64(2), int64(1), int64(0)}, row[5:8])
}

func TestRecordAppendFailureIsSwallowed(t *testing.T) {
	store := newFakeRowStore()
	store.appendErr = errors.New("api unreachable")
	mirror := sheets.NewMirror(store, nil)
	defer mirror.Close()

	// Must not panic or block; the failure is logged and dropped.
	mirror.RecordAppend(sampleTxn(1, "TXN001"))
	mirror.Flush()

	assert.Len(t, store.rows, 1)
}

func TestRecordDelete(t *testing.T) {
	store := newFakeRowStore()
	mirror := sheets.NewMirror(store, nil)
	defer mirror.Close()

	mirror.RecordAppend(sampleTxn(1, "TXN001"))
	mirror.RecordAppend(sampleTxn(2, "TXN002"))
	mirror.RecordAppend(sampleTxn(3, "TXN003"))
	mirror.RecordDelete("TXN002")
	mirror.Flush()

	assert.Len(t, store.rows, 3)
	assert.Equal(t, "TXN001", store.rows[1][1])
	assert.Equal(t, "TXN003", store.rows[2][1])
}

func TestRecordDeleteMissingRow(t *testing.T) {
	store := newFakeRowStore()
	mirror := sheets.NewMirror(store, nil)
	defer mirror.Close()

	mirror.RecordAppend(sampleTxn(1, "TXN001"))
	mirror.RecordDelete("TXN999")
	mirror.Flush()

	// Nothing removed, nothing blown up.
	assert.Len(t, store.rows, 2)
}

func TestRecordDeleteFailureIsSwallowed(t *testing.T) {
	store := newFakeRowStore()
	mirror := sheets.NewMirror(store, nil)

	mirror.RecordAppend(sampleTxn(1, "TXN001"))
	mirror.Flush()
	store.deleteErr = errors.New("api unreachable")

	mirror.RecordDelete("TXN001")
	mirror.Flush()
	mirror.Close()

	assert.Len(t, store.rows, 2)
}
