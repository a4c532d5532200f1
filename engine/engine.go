package engine

import (
	"context"
	"runtime/debug"
	"sync"

	"github.com/dreamerjackson/ghcrawler/spider"
	"go.uber.org/zap"
)

// Engine runs a fixed pool of workers over a Scheduler until every task,
// including the ones spawned while crawling, has been processed.
type Engine struct {
	options
}

func New(opts ...Option) *Engine {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}

	if options.results == nil {
		options.results = spider.NewResultSet()
	}

	if options.failures == nil {
		options.failures = spider.NewFailureRepository()
	}

	if options.scheduler == nil {
		logger := options.Logger.Named("schedule")
		options.scheduler = func(seeds ...spider.Task) Scheduler {
			s := NewSchedule(seeds...)
			s.Logger = logger
			return s
		}
	}

	return &Engine{options: options}
}

func (e *Engine) Results() *spider.ResultSet {
	return e.results
}

func (e *Engine) Failures() spider.FailureRepository {
	return e.failures
}

// Run blocks until the pool is drained or ctx is done.
func (e *Engine) Run(ctx context.Context, seeds ...spider.Task) error {
	s := e.scheduler(seeds...)
	go s.Schedule(ctx)

	e.Logger.Info("engine start",
		zap.Int("workers", e.WorkCount),
		zap.Int("seeds", len(seeds)),
	)

	var wg sync.WaitGroup
	for i := 0; i < e.WorkCount; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			e.CreateWork(ctx, id, s)
		}(i)
	}
	wg.Wait()

	e.Logger.Info("engine drained",
		zap.Int("targets", e.results.Len()),
		zap.Int("dropped", len(e.failures.Dropped())),
	)

	return ctx.Err()
}

func (e *Engine) CreateWork(ctx context.Context, id int, s Scheduler) {
	for {
		task, ok := s.Pull()
		if !ok {
			e.Logger.Debug("worker exit", zap.Int("worker", id))
			return
		}

		TasksInFlight.Inc()
		derived := e.handle(ctx, task)
		TasksInFlight.Dec()

		s.Ack(derived...)
	}
}

// handle runs one task and routes its output. It returns the tasks to queue.
func (e *Engine) handle(ctx context.Context, task spider.Task) (derived []spider.Task) {
	kind := task.Kind().String()

	defer func() {
		if err := recover(); err != nil {
			e.Logger.Error("worker panic",
				zap.Any("err", err),
				zap.String("url", task.URL()),
				zap.String("stack", string(debug.Stack())))
			TasksTotal.WithLabelValues(kind, outcomePanic).Inc()
			e.failures.MarkDropped(task)
			derived = nil
		}
	}()

	switch t := task.(type) {
	case *spider.SearchTask:
		targets, err := t.Do(ctx, e.Fetcher)
		if err != nil {
			return e.SetFailure(ctx, t, err)
		}

		e.results.Append(targets...)
		TargetsDiscovered.Add(float64(len(targets)))

		derived = make([]spider.Task, 0, len(targets))
		for _, target := range targets {
			derived = append(derived, t.Follow(target))
		}

		e.Logger.Debug("search parsed",
			zap.String("url", t.URL()),
			zap.Int("targets", len(targets)),
		)

	case *spider.DetailTask:
		extra, err := t.Do(ctx, e.Fetcher)
		if err != nil {
			return e.SetFailure(ctx, t, err)
		}

		if extra != nil {
			t.Target.SetExtra(extra)
		}

	default:
		e.Logger.Error("unknown task", zap.String("kind", kind), zap.String("url", task.URL()))
		return nil
	}

	e.failures.DeleteFailures(task)
	TasksTotal.WithLabelValues(kind, outcomeOK).Inc()

	return derived
}

// SetFailure queues the task again while it has retries left, otherwise it
// drops the task and records it.
func (e *Engine) SetFailure(ctx context.Context, task spider.Task, err error) []spider.Task {
	kind := task.Kind().String()
	n := e.failures.AddFailure(task)

	e.Logger.Error("can't fetch ",
		zap.Error(err),
		zap.String("kind", kind),
		zap.String("url", task.URL()),
		zap.Int("attempt", n),
	)

	if ctx.Err() == nil && n <= e.MaxRetries {
		TasksTotal.WithLabelValues(kind, outcomeRetried).Inc()
		return []spider.Task{task}
	}

	TasksTotal.WithLabelValues(kind, outcomeDropped).Inc()
	e.failures.MarkDropped(task)
	e.failures.DeleteFailures(task)

	return nil
}
