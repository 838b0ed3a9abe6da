package server_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mkarren/duskmud/internal/server"
)

// blockingService runs until stopped and records the stop order.
type blockingService struct {
	name string
	log  *[]string
	mu   *sync.Mutex
	done chan struct{}
	once sync.Once
}

func newBlockingService(name string, log *[]string, mu *sync.Mutex) *blockingService {
	return &blockingService{name: name, log: log, mu: mu, done: make(chan struct{})}
}

func (s *blockingService) Start() error {
	<-s.done
	return nil
}

func (s *blockingService) Stop() {
	s.once.Do(func() {
		s.mu.Lock()
		*s.log = append(*s.log, s.name)
		s.mu.Unlock()
		close(s.done)
	})
}

// TestRun_ContextCancelStopsInReverseOrder verifies shutdown ordering.
func TestRun_ContextCancelStopsInReverseOrder(t *testing.T) {
	var (
		log []string
		mu  sync.Mutex
	)
	lc := server.NewLifecycle(zap.NewNop())
	lc.Add("first", newBlockingService("first", &log, &mu))
	lc.Add("second", newBlockingService("second", &log, &mu))
	lc.Add("third", newBlockingService("third", &log, &mu))

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() { result <- lc.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-result:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"third", "second", "first"}, log)
}

// TestRun_ServiceFailureTriggersShutdown verifies a failing service brings
// the rest down.
func TestRun_ServiceFailureTriggersShutdown(t *testing.T) {
	var (
		log []string
		mu  sync.Mutex
	)
	lc := server.NewLifecycle(zap.NewNop())
	lc.Add("steady", newBlockingService("steady", &log, &mu))
	lc.Add("flaky", &server.FuncService{
		StartFn: func() error { return errors.New("listen failed") },
		StopFn:  func() {},
	})

	result := make(chan error, 1)
	go func() { result <- lc.Run(context.Background()) }()

	select {
	case err := <-result:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after service failure")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, log, "steady")
}

// TestFuncService verifies the adapter delegates both directions.
func TestFuncService(t *testing.T) {
	started, stopped := false, false
	svc := &server.FuncService{
		StartFn: func() error { started = true; return nil },
		StopFn:  func() { stopped = true },
	}
	require.NoError(t, svc.Start())
	svc.Stop()
	assert.True(t, started)
	assert.True(t, stopped)
}
