package link

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ManuGH/hlsbundle/internal/library"
	"github.com/ManuGH/hlsbundle/internal/metrics"
	"golang.org/x/sync/errgroup"
)

// ErrDuplicateKey is returned when two tasks of one batch share a key.
var ErrDuplicateKey = errors.New("duplicate task key")

// Task is one path to resolve. Key orders the results.
type Task struct {
	Key  int
	Path string
}

// Resolved is the result of a Task.
type Resolved struct {
	Key  int
	Path string
	URL  string
}

// LinkResolver resolves a single path.
type LinkResolver interface {
	Resolve(ctx context.Context, path string) (string, error)
}

// Pool resolves batches of tasks with bounded concurrency.
type Pool struct {
	resolver LinkResolver
	workers  int
}

func NewPool(r LinkResolver, workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{resolver: r, workers: workers}
}

// Tasks builds one task per artifact, keyed by the artifact's ordering key.
func Tasks(arts []library.Artifact) []Task {
	tasks := make([]Task, len(arts))
	for i, a := range arts {
		tasks[i] = Task{Key: a.Key, Path: a.RemotePath}
	}
	return tasks
}

// URLs returns the URLs of rs in order.
func URLs(rs []Resolved) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.URL
	}
	return out
}

// Resolve runs every task and returns the results in ascending Key order.
// The first failure cancels the remaining tasks.
func (p *Pool) Resolve(ctx context.Context, tasks []Task) ([]Resolved, error) {
	seen := make(map[int]struct{}, len(tasks))
	for _, t := range tasks {
		if _, dup := seen[t.Key]; dup {
			return nil, fmt.Errorf("%w: %d (%s)", ErrDuplicateKey, t.Key, t.Path)
		}
		seen[t.Key] = struct{}{}
	}

	results := make(chan Resolved, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for _, t := range tasks {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			metrics.ResolveStarted()
			defer metrics.ResolveFinished()
			u, err := p.resolver.Resolve(gctx, t.Path)
			if err != nil {
				return err
			}
			results <- Resolved{Key: t.Key, Path: t.Path, URL: u}
			return nil
		})
	}
	err := g.Wait()
	close(results)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]Resolved, 0, len(tasks))
	for r := range results {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
