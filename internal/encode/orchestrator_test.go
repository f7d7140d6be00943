package encode

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeRunner struct {
	mu      sync.Mutex
	active  int32
	peak    int32
	fail    map[string]bool
	ran     []string
	latency time.Duration
}

func (f *fakeRunner) Run(ctx context.Context, job Job) ([]string, error) {
	n := atomic.AddInt32(&f.active, 1)
	defer atomic.AddInt32(&f.active, -1)
	for {
		p := atomic.LoadInt32(&f.peak)
		if n <= p || atomic.CompareAndSwapInt32(&f.peak, p, n) {
			break
		}
	}
	time.Sleep(f.latency)

	f.mu.Lock()
	f.ran = append(f.ran, job.ID)
	f.mu.Unlock()
	if f.fail[job.ID] {
		return []string{"Conversion failed!"}, fmt.Errorf("exit status 1")
	}
	return nil, nil
}

func testJobs(n int) []Job {
	jobs := make([]Job, n)
	for i := range jobs {
		jobs[i] = Job{ID: fmt.Sprintf("main/r%d", i), Item: "main", Kind: KindRendition, Label: fmt.Sprintf("r%d", i)}
	}
	return jobs
}

func TestOrchestratorRespectsWorkerCap(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := &fakeRunner{latency: 20 * time.Millisecond}
	rep := NewOrchestrator(r, 2).Run(context.Background(), testJobs(6))

	require.Len(t, rep.Results, 6)
	assert.LessOrEqual(t, atomic.LoadInt32(&r.peak), int32(2))
	assert.NoError(t, rep.Err())
	for _, res := range rep.Results {
		assert.Equal(t, StateSucceeded, res.State)
	}
}

func TestOrchestratorCollectsFailuresWithoutCancellingSiblings(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := &fakeRunner{fail: map[string]bool{"main/r1": true, "main/r3": true}}
	rep := NewOrchestrator(r, 4).Run(context.Background(), testJobs(5))

	assert.Len(t, r.ran, 5)
	assert.Len(t, rep.Failed(), 2)
	assert.True(t, rep.FailedRendition("main", "r1"))
	assert.False(t, rep.FailedRendition("main", "r0"))

	err := rep.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEncodeFailed)
	var je *JobError
	require.True(t, errors.As(err, &je))
	assert.Equal(t, []string{"Conversion failed!"}, je.Diagnostics)
}

func TestOrchestratorSkipsMarkedJobs(t *testing.T) {
	r := &fakeRunner{}
	jobs := testJobs(2)
	jobs[1].SkipReason = "no subtitle sidecar"

	rep := NewOrchestrator(r, 1).Run(context.Background(), jobs)
	assert.Equal(t, []string{"main/r0"}, r.ran)
	assert.Equal(t, StateSkipped, rep.Results[1].State)
	assert.NoError(t, rep.Err())
}
