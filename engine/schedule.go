package engine

import (
	"context"

	"github.com/dreamerjackson/ghcrawler/spider"
	"go.uber.org/zap"
)

type Scheduler interface {
	Schedule(ctx context.Context)
	Pull() (spider.Task, bool)
	// Ack reports that a pulled task finished, together with every task it
	// produced. Each successful Pull must be followed by exactly one Ack.
	Ack(derived ...spider.Task)
}

// Schedule owns an unbounded FIFO of tasks. The queue is only touched by the
// Schedule goroutine; workers talk to it over channels.
//
// The queue is drained once it is empty and no pulled task is still waiting
// for its Ack. At that point the worker channel is closed and every Pull
// returns false.
type Schedule struct {
	reqQueue []spider.Task
	inflight int
	workerCh chan spider.Task
	ackCh    chan []spider.Task
	done     chan struct{}
	Logger   *zap.Logger
}

func NewSchedule(seeds ...spider.Task) *Schedule {
	s := &Schedule{}
	s.reqQueue = append(s.reqQueue, seeds...)
	s.workerCh = make(chan spider.Task)
	s.ackCh = make(chan []spider.Task)
	s.done = make(chan struct{})
	s.Logger = zap.NewNop()

	return s
}

func (s *Schedule) Pull() (spider.Task, bool) {
	t, ok := <-s.workerCh

	return t, ok
}

func (s *Schedule) Ack(derived ...spider.Task) {
	select {
	case s.ackCh <- derived:
	case <-s.done:
	}
}

// Schedule runs until the queue is drained or ctx is done.
func (s *Schedule) Schedule(ctx context.Context) {
	defer close(s.workerCh)
	defer close(s.done)

	for {
		if len(s.reqQueue) == 0 && s.inflight == 0 {
			s.Logger.Debug("queue drained")
			return
		}

		var ch chan spider.Task
		var req spider.Task

		if len(s.reqQueue) > 0 {
			req = s.reqQueue[0]
			ch = s.workerCh
		}

		select {
		case <-ctx.Done():
			s.Logger.Warn("schedule canceled",
				zap.Int("queued", len(s.reqQueue)),
				zap.Int("inflight", s.inflight),
			)
			return
		case derived := <-s.ackCh:
			s.inflight--
			s.reqQueue = append(s.reqQueue, derived...)
		case ch <- req:
			s.reqQueue[0] = nil
			s.reqQueue = s.reqQueue[1:]
			s.inflight++
		}
	}
}
