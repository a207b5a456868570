package depth

import (
	"context"
	"sync"

	"github.com/pixaro/pixaro"
)

// QuotaRecord is the persisted daily usage counter. Date is the local
// calendar day in 2006-01-02 form.
type QuotaRecord struct {
	Count int    `json:"count"`
	Date  string `json:"date"`
}

// QuotaStore persists the quota record between sessions. The client
// treats stored data as untrusted: a record for any other date is
// discarded and the counter restarts.
type QuotaStore interface {
	Load(ctx context.Context) (QuotaRecord, error)
	Save(ctx context.Context, rec QuotaRecord) error
}

// consumeQuota checks the daily budget and, when allowed, records one
// more request.
func (c *Client) consumeQuota(ctx context.Context) error {
	today := c.now().Format("2006-01-02")

	rec, err := c.quota.Load(ctx)
	if err != nil {
		// A broken store never blocks the user; start a fresh day.
		pixaro.Logger().Warn("quota record unreadable, resetting")
		rec = QuotaRecord{}
	}
	if rec.Date != today || rec.Count < 0 {
		rec = QuotaRecord{Date: today}
	}

	if rec.Count >= c.dailyLimit {
		return pixaro.NewError(pixaro.CodeDepthQuota, pixaro.SeverityError, true,
			"Daily depth estimation limit reached; try again tomorrow")
	}

	rec.Count++
	if err := c.quota.Save(ctx, rec); err != nil {
		pixaro.Logger().Warn("could not persist quota record")
	}
	return nil
}

// memoryQuotaStore is the in-process fallback store.
type memoryQuotaStore struct {
	mu  sync.Mutex
	rec QuotaRecord
}

func newMemoryQuotaStore() *memoryQuotaStore {
	return &memoryQuotaStore{}
}

func (m *memoryQuotaStore) Load(context.Context) (QuotaRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rec, nil
}

func (m *memoryQuotaStore) Save(_ context.Context, rec QuotaRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = rec
	return nil
}
