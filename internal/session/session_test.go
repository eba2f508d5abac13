package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KaramelBytes/qip-spc-cli/internal/decision"
	"github.com/KaramelBytes/qip-spc-cli/internal/spc"
	"github.com/KaramelBytes/qip-spc-cli/internal/testutil"
	"github.com/KaramelBytes/qip-spc-cli/internal/workbook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func widthSheet() workbook.Sheet {
	return workbook.Sheet{Name: "Width", Rows: [][]string{
		{"Batch", "Target", "USL", "LSL", "1穴"},
		{"W1", "5", "6", "4", "5.1"},
		{"W2", "", "", "", "4.9"},
	}}
}

// fakeLoader serves in-memory workbooks by path. Paths in block wait for
// release after signalling started.
type fakeLoader struct {
	started chan string
	release chan struct{}
	block   map[string]bool
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{started: make(chan string, 4), release: make(chan struct{}), block: map[string]bool{}}
}

func (f *fakeLoader) load(path string, opt workbook.Options) (*workbook.Workbook, error) {
	if f.block[path] {
		f.started <- path
		<-f.release
	}
	switch path {
	case "length.xlsx":
		return workbook.New(path, []workbook.Sheet{testutil.LengthSheet()}, opt), nil
	case "width.xlsx":
		return workbook.New(path, []workbook.Sheet{widthSheet()}, opt), nil
	default:
		return nil, errors.New("open " + path + ": " + workbook.ErrMalformedWorkbook.Error())
	}
}

func startSession(t *testing.T, f *fakeLoader) *Session {
	t.Helper()
	opt := DefaultOptions()
	if f != nil {
		opt.LoadFunc = f.load
	}
	s := New(zaptest.NewLogger(t), opt)
	s.Start(context.Background())
	t.Cleanup(func() { _ = s.Stop(time.Second) })
	return s
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New(zaptest.NewLogger(t), Options{LoadFunc: newFakeLoader().load})
	_, err := s.Items(ctx)
	assert.ErrorIs(t, err, ErrNotStarted)

	s.Start(ctx)
	_, err = s.Items(ctx)
	assert.ErrorIs(t, err, ErrNoWorkbook)

	require.NoError(t, s.Stop(time.Second))
	_, err = s.Items(ctx)
	assert.ErrorIs(t, err, ErrClosed)
	require.NoError(t, s.Stop(time.Second))
}

func TestSessionLoadAndQuery(t *testing.T) {
	ctx := context.Background()
	s := startSession(t, newFakeLoader())

	info, err := s.Load(ctx, "length.xlsx")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), info.Generation)
	assert.Equal(t, []string{"Length"}, info.Value.Items)
	assert.NotEmpty(t, info.JobID)

	cav, err := s.CavityInfo(ctx, "Length")
	require.NoError(t, err)
	assert.Equal(t, 2, cav.Value.TotalCavities)

	batches, err := s.Batches(ctx, "Length")
	require.NoError(t, err)
	require.Len(t, batches.Value, 5)
	assert.Equal(t, workbook.Batch{Index: 1, Name: "B01"}, batches.Value[0])

	res, err := s.Analyze(ctx, spc.Request{Mode: spc.ModeBatch, Item: "Length", Cavity: workbook.Named("1穴")})
	require.NoError(t, err)
	assert.Equal(t, 5, res.Value.Stats.Count)
	assert.Equal(t, uint64(1), res.Generation)

	_, err = s.Analyze(ctx, spc.Request{Mode: spc.ModeBatch, Item: "Nope", Cavity: workbook.AverageAll()})
	assert.ErrorIs(t, err, workbook.ErrSheetNotFound)
}

func TestSessionFailedLoadKeepsWorkbook(t *testing.T) {
	ctx := context.Background()
	s := startSession(t, newFakeLoader())
	_, err := s.Load(ctx, "length.xlsx")
	require.NoError(t, err)

	_, err = s.Load(ctx, "broken.xlsx")
	require.Error(t, err)

	items, err := s.Items(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Length"}, items.Value)
	assert.Equal(t, uint64(1), items.Generation)
}

func TestSessionQueriesWaitForPendingLoad(t *testing.T) {
	ctx := context.Background()
	f := newFakeLoader()
	f.block["width.xlsx"] = true
	s := startSession(t, f)
	_, err := s.Load(ctx, "length.xlsx")
	require.NoError(t, err)

	loadDone := make(chan error, 1)
	go func() {
		_, err := s.Load(ctx, "width.xlsx")
		loadDone <- err
	}()
	require.Equal(t, "width.xlsx", <-f.started)

	type itemsReply struct {
		r   Reply[[]string]
		err error
	}
	got := make(chan itemsReply, 1)
	go func() {
		r, err := s.Items(ctx)
		got <- itemsReply{r, err}
	}()

	select {
	case <-got:
		t.Fatal("query answered while a load was in progress")
	case <-time.After(50 * time.Millisecond):
	}
	close(f.release)

	require.NoError(t, <-loadDone)
	r := <-got
	require.NoError(t, r.err)
	assert.Equal(t, uint64(2), r.r.Generation)
	assert.Equal(t, []string{"Width"}, r.r.Value)
}

func TestSessionCancelledWaitLeavesJobRunning(t *testing.T) {
	f := newFakeLoader()
	f.block["width.xlsx"] = true
	s := startSession(t, f)

	loadDone := make(chan error, 1)
	go func() {
		_, err := s.Load(context.Background(), "width.xlsx")
		loadDone <- err
	}()
	<-f.started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := s.Items(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(f.release)
	require.NoError(t, <-loadDone)
	items, err := s.Items(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Width"}, items.Value)
}

func TestSessionRecommend(t *testing.T) {
	ctx := context.Background()
	s := startSession(t, newFakeLoader())
	_, err := s.Load(ctx, "length.xlsx")
	require.NoError(t, err)

	r, err := s.Recommend(ctx, RecommendRequest{Item: "Length", Cavity: workbook.AverageAll(), Sensitivity: decision.SensitivityHigh})
	require.NoError(t, err)
	a := r.Value
	assert.Equal(t, 2, a.Context.SampleSize.N)
	assert.Equal(t, decision.ChartXbarR, a.Recommendation.PrimaryChart)
	assert.Contains(t, a.Recommendation.SecondaryCharts, decision.ChartCUSUM)
	assert.Equal(t, "X-bar & R Chart", a.Selection.AnalysisChart)
	assert.Equal(t, decision.StageMachinePerformance, a.Stage)
	assert.Equal(t, 5, a.Count)
	assert.True(t, a.Plan.Stability.Stable)

	three := 3
	r, err = s.Recommend(ctx, RecommendRequest{Item: "Length", Cavity: workbook.Named("1穴"), Violations: &three, Model: decision.ModelC})
	require.NoError(t, err)
	assert.Equal(t, decision.ChartIMR, r.Value.Recommendation.PrimaryChart)
	assert.Equal(t, "Extended Shewhart Chart", r.Value.Selection.AnalysisChart)
	assert.False(t, r.Value.Plan.Stability.Stable)
	assert.Equal(t, 3, r.Value.Plan.Stability.Violations)

	neg := -1
	_, err = s.Recommend(ctx, RecommendRequest{Item: "Length", Cavity: workbook.Named("1穴"), Violations: &neg})
	assert.Error(t, err)
}

func TestSessionLoadsRealFile(t *testing.T) {
	path := testutil.WriteXLSX(t, t.TempDir(), "qip.xlsx", []workbook.Sheet{testutil.LengthSheet(), {Name: "Summary", Rows: [][]string{{"x"}}}})
	s := startSession(t, nil)
	info, err := s.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Length"}, info.Value.Items)
	assert.Len(t, info.Value.Sheets, 2)
}

func TestSessionStartContextCancelClosesSession(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New(zaptest.NewLogger(t), Options{QueueSize: 1, LoadFunc: newFakeLoader().load})
	s.Start(ctx)
	cancel()
	select {
	case <-s.stopped:
	case <-time.After(time.Second):
		t.Fatal("worker did not exit after context cancel")
	}

	for i := 0; i < 3; i++ {
		done := make(chan error, 1)
		go func() {
			_, err := s.Items(context.Background())
			done <- err
		}()
		select {
		case err := <-done:
			assert.ErrorIs(t, err, ErrClosed, "call %d", i)
		case <-time.After(time.Second):
			t.Fatalf("call %d blocked after the worker exited", i)
		}
	}
	assert.NoError(t, s.Stop(time.Second))
}

func TestSessionStopFailsQueuedJobs(t *testing.T) {
	const queued = 8
	for trial := 0; trial < 20; trial++ {
		f := newFakeLoader()
		f.block["width.xlsx"] = true
		s := New(zaptest.NewLogger(t), Options{LoadFunc: f.load})
		s.Start(context.Background())

		loadDone := make(chan error, 1)
		go func() {
			_, err := s.Load(context.Background(), "width.xlsx")
			loadDone <- err
		}()
		<-f.started

		errs := make(chan error, queued)
		for i := 0; i < queued; i++ {
			go func() {
				_, err := s.Items(context.Background())
				errs <- err
			}()
		}
		require.Eventually(t, func() bool { return len(s.jobs) == queued }, time.Second, time.Millisecond)

		stopDone := make(chan error, 1)
		go func() { stopDone <- s.Stop(time.Second) }()
		<-s.shutdown
		close(f.release)

		require.NoError(t, <-loadDone, "the running job completes")
		for i := 0; i < queued; i++ {
			assert.ErrorIs(t, <-errs, ErrClosed, "trial %d", trial)
		}
		require.NoError(t, <-stopDone)
	}
}

func TestSessionRecoversPanickingJob(t *testing.T) {
	ctx := context.Background()
	s := startSession(t, newFakeLoader())
	_, err := s.Load(ctx, "length.xlsx")
	require.NoError(t, err)

	_, err = submit(ctx, s, "explode", func(*state) (int, error) { panic("boom") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "explode: internal error: boom")

	items, err := s.Items(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Length"}, items.Value)
}
