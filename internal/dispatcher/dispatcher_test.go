package dispatcher

import (
	"errors"
	"sync"
	"testing"
	"time"

	"djp.chapter42.de/beeper/internal/backoff"
	"djp.chapter42.de/beeper/internal/data"
	"djp.chapter42.de/beeper/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	logger.Log = zap.NewNop()
}

type fakeNotifier struct {
	mu       sync.Mutex
	sent     []string
	fail     bool
	failures int // schlägt nur für die ersten n Versuche fehl
}

func (f *fakeNotifier) Send(to, content, kind string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, to)
	if f.fail || len(f.sent) <= f.failures {
		return errors.New("zustellung kaputt")
	}
	return nil
}

func (f *fakeNotifier) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeRemover struct {
	mu      sync.Mutex
	removed []string
}

func (f *fakeRemover) Remove(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, id)
}

func (f *fakeRemover) removedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.removed...)
}

func jobAt(id string, at time.Time) data.PendingJob {
	return data.PendingJob{
		ID:          id,
		Email:       "a@b.com",
		Msg:         "hi",
		ScheduledAt: at.Format("2006-01-02 15:04:05"),
		CreatedAt:   data.FormatLocalMinute(time.Now()),
	}
}

func TestScheduleUnparseableRemovesImmediately(t *testing.T) {
	notif := &fakeNotifier{}
	rem := &fakeRemover{}
	d := New(rem, notif, nil)

	d.Schedule(data.PendingJob{ID: "bad", ScheduledAt: "irgendwann"})

	assert.Equal(t, []string{"bad"}, rem.removedIDs())
	assert.False(t, d.Armed("bad"))
	assert.Zero(t, notif.sentCount())
}

func TestFireDeliversAndRemoves(t *testing.T) {
	notif := &fakeNotifier{}
	rem := &fakeRemover{}
	d := New(rem, notif, nil)

	d.Schedule(jobAt("job1", time.Now().Add(300*time.Millisecond)))
	assert.True(t, d.Armed("job1"))

	require.Eventually(t, func() bool {
		return notif.sentCount() == 1 && len(rem.removedIDs()) == 1
	}, 3*time.Second, 20*time.Millisecond)

	assert.Equal(t, []string{"job1"}, rem.removedIDs())
	assert.False(t, d.Armed("job1"))
}

func TestCancelPreventsDelivery(t *testing.T) {
	notif := &fakeNotifier{}
	rem := &fakeRemover{}
	d := New(rem, notif, nil)

	d.Schedule(jobAt("job1", time.Now().Add(time.Hour)))
	require.True(t, d.Armed("job1"))

	d.Cancel("job1")
	assert.False(t, d.Armed("job1"))

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, notif.sentCount())
	assert.Empty(t, rem.removedIDs())
}

func TestSecondScheduleForSameJobIsIgnored(t *testing.T) {
	notif := &fakeNotifier{}
	rem := &fakeRemover{}
	d := New(rem, notif, nil)

	job := jobAt("job1", time.Now().Add(time.Hour))
	d.Schedule(job)
	d.Schedule(job)

	d.mu.Lock()
	assert.Len(t, d.timers, 1)
	d.mu.Unlock()
}

func TestFailureWithoutRetryStrandsJob(t *testing.T) {
	notif := &fakeNotifier{fail: true}
	rem := &fakeRemover{}
	d := New(rem, notif, nil)

	// Zielzeitpunkt in der Vergangenheit: der Timer feuert sofort
	d.Schedule(jobAt("job1", time.Now().Add(-time.Second)))

	require.Eventually(t, func() bool {
		return notif.sentCount() == 1
	}, 3*time.Second, 20*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	// genau ein Versuch, kein Remove: der Job bleibt in der Liste stehen
	assert.Equal(t, 1, notif.sentCount())
	assert.Empty(t, rem.removedIDs())
	assert.False(t, d.Armed("job1"))
}

func TestRetryPolicyBoundsDeliveryAttempts(t *testing.T) {
	notif := &fakeNotifier{fail: true}
	rem := &fakeRemover{}
	d := New(rem, notif, backoff.Exponential{MaxAttempts: 1})

	d.Schedule(jobAt("job1", time.Now().Add(-time.Second)))

	// ein Erstversuch plus genau eine Wiederholung, dann wird gestrandet
	require.Eventually(t, func() bool {
		return notif.sentCount() == 2
	}, 5*time.Second, 20*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 2, notif.sentCount())
	assert.Empty(t, rem.removedIDs())
}

func TestRetrySucceedsOnSecondAttempt(t *testing.T) {
	notif := &fakeNotifier{failures: 1}
	rem := &fakeRemover{}
	d := New(rem, notif, backoff.Exponential{MaxAttempts: 3})

	d.Schedule(jobAt("job1", time.Now().Add(-time.Second)))

	require.Eventually(t, func() bool {
		return len(rem.removedIDs()) == 1
	}, 5*time.Second, 20*time.Millisecond)

	assert.Equal(t, 2, notif.sentCount())
	assert.Equal(t, []string{"job1"}, rem.removedIDs())
}

func TestStopAllDisarmsEverything(t *testing.T) {
	notif := &fakeNotifier{}
	rem := &fakeRemover{}
	d := New(rem, notif, nil)

	d.Schedule(jobAt("job1", time.Now().Add(time.Hour)))
	d.Schedule(jobAt("job2", time.Now().Add(2*time.Hour)))

	d.StopAll()
	assert.False(t, d.Armed("job1"))
	assert.False(t, d.Armed("job2"))
}
