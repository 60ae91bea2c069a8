package sheets

import (
	"context"
	"fmt"
	"sync"
	"time"

	"carnival-tracker/internal/logger"
	"carnival-tracker/internal/models"
)

// txnIDHeader is the header cell of the column used to locate rows on delete.
const txnIDHeader = "Transaction ID"

// ist is the fixed offset the mirror timestamps are written in.
var ist = time.FixedZone("IST", int((5*time.Hour + 30*time.Minute).Seconds()))

// Mirror replicates transaction create/delete events to the spreadsheet.
// Every call is best-effort: work is queued to a single background worker and
// failures are logged, never returned. The database stays authoritative and
// the sheet may drift.
type Mirror struct {
	store RowStore
	log   *logger.Logger

	jobs chan func(ctx context.Context)
	wg   sync.WaitGroup

	// timeout bounds each spreadsheet call so a stalled API never wedges the
	// worker.
	timeout time.Duration

	// now is swappable for tests.
	now func() time.Time
}

func NewMirror(store RowStore, log *logger.Logger) *Mirror {
	m := &Mirror{
		store:   store,
		log:     log,
		jobs:    make(chan func(ctx context.Context), 64),
		timeout: 30 * time.Second,
		now:     time.Now,
	}
	m.wg.Add(1)
	go m.worker()
	return m
}

func (m *Mirror) worker() {
	defer m.wg.Done()
	for job := range m.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		job(ctx)
		cancel()
	}
}

func (m *Mirror) enqueue(job func(ctx context.Context)) {
	select {
	case m.jobs <- job:
	default:
		m.logSheets("QUEUE", "mirror queue full, dropping event")
	}
}

// RecordAppend queues the mirror row for a newly persisted transaction. The
// timestamp is taken at enqueue time so it reflects the moment of insert.
func (m *Mirror) RecordAppend(txn models.Transaction) {
	timestamp := m.now().In(ist).Format("2006-01-02 15:04:05")
	row := []interface{}{
		txn.ID,
		txn.TransactionID,
		txn.Amount.Float64(),
		txn.Desk,
		timestamp,
		txn.Tokens50,
		txn.Tokens100,
		txn.TokensHaunted,
	}
	m.enqueue(func(ctx context.Context) {
		if err := m.store.AppendRow(ctx, row); err != nil {
			m.logSheets("APPEND", fmt.Sprintf("failed for %s: %v", txn.TransactionID, err))
			return
		}
		m.logSheets("APPEND", fmt.Sprintf("mirrored %s", txn.TransactionID))
	})
}

// RecordDelete queues removal of the first mirror row whose "Transaction ID"
// column matches. A missing header or row is logged and ignored.
func (m *Mirror) RecordDelete(transactionID string) {
	m.enqueue(func(ctx context.Context) {
		rows, err := m.store.Rows(ctx)
		if err != nil {
			m.logSheets("DELETE", fmt.Sprintf("failed to read rows: %v", err))
			return
		}
		if len(rows) == 0 {
			m.logSheets("DELETE", "sheet is empty, nothing to remove")
			return
		}
		col := headerIndex(rows[0], txnIDHeader)
		if col < 0 {
			m.logSheets("DELETE", fmt.Sprintf("header %q not found", txnIDHeader))
			return
		}
		for i := 1; i < len(rows); i++ {
			if col < len(rows[i]) && fmt.Sprint(rows[i][col]) == transactionID {
				// Data index i is sheet row i+1 (header row plus one-indexing).
				if err := m.store.DeleteRow(ctx, int64(i+1)); err != nil {
					m.logSheets("DELETE", fmt.Sprintf("failed for %s: %v", transactionID, err))
					return
				}
				m.logSheets("DELETE", fmt.Sprintf("removed mirror row for %s", transactionID))
				return
			}
		}
		m.logSheets("DELETE", fmt.Sprintf("no mirror row found for %s", transactionID))
	})
}

// Flush blocks until everything queued so far has been processed.
func (m *Mirror) Flush() {
	done := make(chan struct{})
	m.jobs <- func(ctx context.Context) { close(done) }
	<-done
}

// Close stops the worker after draining the queue.
func (m *Mirror) Close() {
	close(m.jobs)
	m.wg.Wait()
}

func headerIndex(header []interface{}, name string) int {
	for i, cell := range header {
		if fmt.Sprint(cell) == name {
			return i
		}
	}
	return -1
}

// logSheets tolerates a nil logger so tests can run without one.
func (m *Mirror) logSheets(action, message string) {
	if m.log != nil {
		m.log.LogSheets(action, message)
	}
}
