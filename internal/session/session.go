// Package session owns the loaded workbook and serializes every request
// against it on a single worker goroutine.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/KaramelBytes/qip-spc-cli/internal/logging"
	"github.com/KaramelBytes/qip-spc-cli/internal/parser"
	"github.com/KaramelBytes/qip-spc-cli/internal/spc"
	"github.com/KaramelBytes/qip-spc-cli/internal/stats"
	"github.com/KaramelBytes/qip-spc-cli/internal/workbook"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrNoWorkbook is returned by queries issued before a successful Load.
	ErrNoWorkbook = errors.New("no workbook loaded")
	// ErrClosed is returned once the session is stopped.
	ErrClosed = errors.New("session closed")
	// ErrNotStarted is returned when a call is made before Start.
	ErrNotStarted = errors.New("session not started")
)

// Options configures a Session.
type Options struct {
	Workbook  workbook.Options
	Engine    spc.Options
	QueueSize int
	// Tester replaces the default normality test when set.
	Tester stats.NormalityTester
	// LoadFunc replaces parser.LoadFile when set.
	LoadFunc func(path string, opt workbook.Options) (*workbook.Workbook, error)
}

// DefaultOptions returns the session defaults.
func DefaultOptions() Options {
	return Options{
		Workbook:  workbook.DefaultOptions(),
		Engine:    spc.DefaultOptions(),
		QueueSize: 16,
	}
}

// Reply wraps a value with the job that produced it and the workbook
// generation it was computed against. Callers compare Generation to
// discard results made stale by a later Load.
type Reply[T any] struct {
	JobID      string
	Generation uint64
	Value      T
}

// state is owned by the worker goroutine.
type state struct {
	wb     *workbook.Workbook
	gen    uint64
	engine *spc.Engine
	opt    Options
}

type result struct {
	value any
	gen   uint64
	err   error
}

type job struct {
	id    string
	op    string
	run   func(*state) (any, error)
	reply chan result
}

// Session is the single owner of one workbook.
type Session struct {
	logger   *zap.Logger
	jobs     chan *job
	shutdown chan struct{}
	stopped  chan struct{}
	wg       sync.WaitGroup
	once     sync.Once

	mu      sync.Mutex
	started bool
	closed  bool

	st state
}

// New creates a session; call Start before issuing requests.
func New(logger *zap.Logger, opt Options) *Session {
	if opt.QueueSize <= 0 {
		opt.QueueSize = DefaultOptions().QueueSize
	}
	if opt.Tester == nil {
		opt.Tester = stats.ApproxShapiroWilk{}
	}
	if opt.LoadFunc == nil {
		opt.LoadFunc = parser.LoadFile
	}
	return &Session{
		logger:   logging.Component(logger, "session"),
		jobs:     make(chan *job, opt.QueueSize),
		shutdown: make(chan struct{}),
		stopped:  make(chan struct{}),
		st:       state{engine: spc.NewEngine(opt.Engine), opt: opt},
	}
}

// Start launches the worker. It stops when ctx is done or Stop is called.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.closed {
		return
	}
	s.started = true
	s.logger.Debug("starting session", zap.Int("queue_size", cap(s.jobs)))
	s.wg.Add(1)
	go s.worker(ctx)
}

// Stop shuts the worker down. Jobs still queued fail with ErrClosed.
func (s *Session) Stop(timeout time.Duration) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	started := s.started
	s.markClosedLocked()
	s.mu.Unlock()
	if !started {
		close(s.stopped)
		return nil
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.logger.Debug("session stopped")
		return nil
	case <-time.After(timeout):
		s.logger.Warn("session stop timeout exceeded")
		return fmt.Errorf("timeout waiting for session worker to finish")
	}
}

// markClosedLocked rejects further calls and wakes every waiter on
// shutdown. s.mu must be held.
func (s *Session) markClosedLocked() {
	s.closed = true
	s.once.Do(func() { close(s.shutdown) })
}

func (s *Session) worker(ctx context.Context) {
	defer s.wg.Done()
	defer close(s.stopped)
	for {
		// shutdown wins over queued jobs
		select {
		case <-s.shutdown:
			s.drain()
			return
		default:
		}
		select {
		case <-ctx.Done():
			s.mu.Lock()
			s.markClosedLocked()
			s.mu.Unlock()
			s.logger.Debug("session context done")
			s.drain()
			return
		case <-s.shutdown:
			s.drain()
			return
		case j := <-s.jobs:
			select {
			case <-s.shutdown:
				j.reply <- result{err: ErrClosed}
				s.drain()
				return
			default:
			}
			s.process(j)
		}
	}
}

func (s *Session) drain() {
	for {
		select {
		case j := <-s.jobs:
			j.reply <- result{err: ErrClosed}
		default:
			return
		}
	}
}

func (s *Session) process(j *job) {
	logger := s.logger.With(zap.String("job_id", j.id), zap.String("op", j.op))
	start := time.Now()
	var res result
	func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("job panicked", zap.Any("panic", r))
				res = result{err: fmt.Errorf("%s: internal error: %v", j.op, r)}
			}
		}()
		v, err := j.run(&s.st)
		res = result{value: v, err: err}
	}()
	res.gen = s.st.gen
	if res.err != nil {
		logger.Warn("job failed", zap.Error(res.err), zap.Duration("elapsed", time.Since(start)))
	} else {
		logger.Debug("job completed", zap.Uint64("generation", res.gen), zap.Duration("elapsed", time.Since(start)))
	}
	j.reply <- res
}

// submit enqueues fn and waits for its reply. A cancelled ctx stops the
// wait only; the job still runs and its reply is dropped.
func submit[T any](ctx context.Context, s *Session, op string, fn func(*state) (T, error)) (Reply[T], error) {
	var zero Reply[T]
	s.mu.Lock()
	started, closed := s.started, s.closed
	s.mu.Unlock()
	if closed {
		return zero, ErrClosed
	}
	if !started {
		return zero, ErrNotStarted
	}

	j := &job{
		id:    uuid.NewString(),
		op:    op,
		run:   func(st *state) (any, error) { return fn(st) },
		reply: make(chan result, 1),
	}
	select {
	case s.jobs <- j:
		s.logger.Debug("job enqueued", zap.String("job_id", j.id), zap.String("op", op))
	case <-s.shutdown:
		return zero, ErrClosed
	case <-ctx.Done():
		return zero, ctx.Err()
	}

	select {
	case r := <-j.reply:
		return replyOf[T](j.id, r)
	case <-s.stopped:
		// a reply sent just before the worker exited still counts
		select {
		case r := <-j.reply:
			return replyOf[T](j.id, r)
		default:
			return zero, ErrClosed
		}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func replyOf[T any](id string, r result) (Reply[T], error) {
	if r.err != nil {
		return Reply[T]{}, r.err
	}
	v, _ := r.value.(T)
	return Reply[T]{JobID: id, Generation: r.gen, Value: v}, nil
}

func (st *state) current() (*workbook.Workbook, error) {
	if st.wb == nil {
		return nil, ErrNoWorkbook
	}
	return st.wb, nil
}

// LoadInfo describes a loaded workbook.
type LoadInfo struct {
	Source string   `json:"source"`
	Sheets []string `json:"sheets"`
	Items  []string `json:"items"`
}

// Load parses path and replaces the workbook. On failure the previous
// workbook stays in place.
func (s *Session) Load(ctx context.Context, path string) (Reply[LoadInfo], error) {
	return submit(ctx, s, "load", func(st *state) (LoadInfo, error) {
		wb, err := st.opt.LoadFunc(path, st.opt.Workbook)
		if err != nil {
			return LoadInfo{}, err
		}
		st.wb = wb
		st.gen++
		return LoadInfo{Source: wb.Source, Sheets: wb.SheetNames(), Items: wb.InspectionItems()}, nil
	})
}

// Items lists the inspection items.
func (s *Session) Items(ctx context.Context) (Reply[[]string], error) {
	return submit(ctx, s, "items", func(st *state) ([]string, error) {
		wb, err := st.current()
		if err != nil {
			return nil, err
		}
		return wb.InspectionItems(), nil
	})
}

// CavityInfo describes the cavity columns of item.
func (s *Session) CavityInfo(ctx context.Context, item string) (Reply[workbook.CavityInfo], error) {
	return submit(ctx, s, "cavity_info", func(st *state) (workbook.CavityInfo, error) {
		wb, err := st.current()
		if err != nil {
			return workbook.CavityInfo{}, err
		}
		return wb.CavityInfo(item)
	})
}

// Batches lists the batches of item.
func (s *Session) Batches(ctx context.Context, item string) (Reply[[]workbook.Batch], error) {
	return submit(ctx, s, "batches", func(st *state) ([]workbook.Batch, error) {
		wb, err := st.current()
		if err != nil {
			return nil, err
		}
		return wb.Batches(item)
	})
}

// Analyze runs one analysis.
func (s *Session) Analyze(ctx context.Context, req spc.Request) (Reply[*spc.Result], error) {
	return submit(ctx, s, "analyze", func(st *state) (*spc.Result, error) {
		wb, err := st.current()
		if err != nil {
			return nil, err
		}
		return st.engine.Analyze(wb, req)
	})
}

// Recommend runs the decision engine over one series.
func (s *Session) Recommend(ctx context.Context, req RecommendRequest) (Reply[*Advice], error) {
	return submit(ctx, s, "recommend", func(st *state) (*Advice, error) {
		wb, err := st.current()
		if err != nil {
			return nil, err
		}
		return advise(st.engine, st.opt.Tester, wb, req)
	})
}
