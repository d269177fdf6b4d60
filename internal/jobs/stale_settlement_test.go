package jobs

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vinigdesouza/api-financial/internal/models"
)

type mockOverdueFinder struct {
	overdue   []models.ScheduledTransaction
	err       error
	olderThan time.Time
}

func (m *mockOverdueFinder) FindOverdue(ctx context.Context, olderThan time.Time) ([]models.ScheduledTransaction, error) {
	m.olderThan = olderThan
	return m.overdue, m.err
}

func TestStaleSettlementReporter(t *testing.T) {
	t.Run("reports each overdue schedule", func(t *testing.T) {
		var buf bytes.Buffer
		log := logrus.New()
		log.SetOutput(&buf)
		log.SetFormatter(&logrus.JSONFormatter{})

		finder := &mockOverdueFinder{overdue: []models.ScheduledTransaction{
			{ID: "sched-1", TransactionID: "txn-1", ScheduledAt: time.Now().Add(-time.Hour), Status: models.ScheduledTransactionStatusPending},
			{ID: "sched-2", TransactionID: "txn-2", ScheduledAt: time.Now().Add(-2 * time.Hour), Status: models.ScheduledTransactionStatusPending},
		}}
		r := NewStaleSettlementReporter(finder, 10*time.Minute, log)
		r.Run(context.Background())

		out := buf.String()
		for _, id := range []string{"txn-1", "txn-2"} {
			if !strings.Contains(out, id) {
				t.Errorf("report missing %s: %s", id, out)
			}
		}
	})

	t.Run("grace period shifts the cutoff", func(t *testing.T) {
		log := logrus.New()
		log.SetLevel(logrus.PanicLevel)

		finder := &mockOverdueFinder{}
		r := NewStaleSettlementReporter(finder, 10*time.Minute, log)
		before := time.Now().Add(-10 * time.Minute)
		r.Run(context.Background())

		if finder.olderThan.After(time.Now().Add(-9 * time.Minute)) {
			t.Errorf("cutoff %s is inside the grace period", finder.olderThan)
		}
		if finder.olderThan.Before(before.Add(-time.Minute)) {
			t.Errorf("cutoff %s is too far back", finder.olderThan)
		}
	})

	t.Run("finder failure only logs", func(t *testing.T) {
		log := logrus.New()
		log.SetLevel(logrus.PanicLevel)
		r := NewStaleSettlementReporter(&mockOverdueFinder{err: errors.New("db down")}, 0, log)
		r.Run(context.Background())
	})
}
