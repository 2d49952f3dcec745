//go:build !windows

package services

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workshop-host/internal/config"
	"workshop-host/internal/env"
	"workshop-host/internal/models"
	"workshop-host/internal/utils"
)

func freeTestPort(t *testing.T) int {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()
	return port
}

// newTestServiceManager builds a fresh manager around a harmless long
// sleeper standing in for the database process.
func newTestServiceManager(t *testing.T, port int) *ServiceManager {
	t.Helper()
	env.WorkshopDir = t.TempDir()
	config.Config.Database = models.ServiceSpecification{
		Name:         "testdb",
		Command:      "sleep",
		Args:         []string{"60"},
		Port:         port,
		StartTimeout: 1,
	}
	serviceManager = nil
	sm := GetServiceManager()
	t.Cleanup(func() {
		sm.StopAll()
		serviceManager = nil
	})
	return sm
}

/**
 * Test the full start, wait, stop lifecycle
 * @param {*testing.T} t - Testing framework instance
 * @description stopped → starting → ready → stopped, with the readiness
 * transition driven by the port accepting connections
 */
func TestServiceLifecycle(t *testing.T) {
	port := freeTestPort(t)
	sm := newTestServiceManager(t, port)

	svc := sm.GetInstance("testdb")
	require.NotNil(t, svc)
	assert.Equal(t, models.StateStopped, svc.State)

	require.NoError(t, sm.StartService(context.Background(), "testdb"))
	assert.Equal(t, models.StateStarting, svc.State)
	assert.NotZero(t, svc.Pid)

	// Start does not block: the port must not answer yet
	assert.False(t, utils.CheckPortConnectable(port),
		"port must not accept connections right after start")

	// The sleeper never listens; stand in for it
	listener, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	require.NoError(t, err)
	defer listener.Close()

	require.NoError(t, sm.WaitReady(context.Background(), "testdb", 5*time.Second))
	assert.Equal(t, models.StateReady, svc.State)

	require.NoError(t, sm.StopService("testdb"))
	assert.Equal(t, models.StateStopped, svc.State)
	assert.Zero(t, svc.Pid)
}

/**
 * Test that a readiness timeout is terminal
 * @param {*testing.T} t - Testing framework instance
 * @description starting → failed on timeout; a later wait must not revive
 * the instance
 */
func TestServiceWaitTimeout(t *testing.T) {
	port := freeTestPort(t)
	sm := newTestServiceManager(t, port)
	svc := sm.GetInstance("testdb")

	require.NoError(t, sm.StartService(context.Background(), "testdb"))

	start := time.Now()
	err := sm.WaitReady(context.Background(), "testdb", 500*time.Millisecond)
	elapsed := time.Since(start)

	var timeoutErr *models.ServiceTimeout
	require.True(t, errors.As(err, &timeoutErr))
	assert.Equal(t, "testdb", timeoutErr.Service)
	assert.GreaterOrEqual(t, elapsed, 500*time.Millisecond)

	assert.Equal(t, models.StateFailed, svc.State)

	// The failure is permanent until an explicit restart
	assert.Error(t, sm.WaitReady(context.Background(), "testdb", time.Second))
}

/**
 * Test that cancelling a wait does not fail the service
 * @param {*testing.T} t - Testing framework instance
 * @description A caller abandoning its wait (Ctrl-C, dropped HTTP request)
 * must leave the service in starting; a later wait can still succeed
 */
func TestServiceWaitCancelKeepsStarting(t *testing.T) {
	port := freeTestPort(t)
	sm := newTestServiceManager(t, port)
	svc := sm.GetInstance("testdb")

	require.NoError(t, sm.StartService(context.Background(), "testdb"))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(200 * time.Millisecond)
		cancel()
	}()

	err := sm.WaitReady(ctx, "testdb", 30*time.Second)
	require.ErrorIs(t, err, context.Canceled)

	var timeoutErr *models.ServiceTimeout
	assert.False(t, errors.As(err, &timeoutErr),
		"cancellation must not be reported as a readiness timeout")
	assert.Equal(t, models.StateStarting, svc.State)

	// Another waiter is unaffected
	listener, lerr := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	require.NoError(t, lerr)
	defer listener.Close()

	require.NoError(t, sm.WaitReady(context.Background(), "testdb", 5*time.Second))
	assert.Equal(t, models.StateReady, svc.State)
}

func TestServiceDoubleStart(t *testing.T) {
	port := freeTestPort(t)
	sm := newTestServiceManager(t, port)

	require.NoError(t, sm.StartService(context.Background(), "testdb"))
	assert.Error(t, sm.StartService(context.Background(), "testdb"))
}

func TestServiceUnknownName(t *testing.T) {
	sm := newTestServiceManager(t, freeTestPort(t))

	assert.Error(t, sm.StartService(context.Background(), "ghost"))
	assert.Error(t, sm.StopService("ghost"))
	assert.Error(t, sm.WaitReady(context.Background(), "ghost", time.Second))
	assert.Nil(t, sm.GetInstance("ghost"))
}

/**
 * Test state persistence and discovery export
 * @param {*testing.T} t - Testing framework instance
 * @description Starting a service must leave a cache file and refresh the
 * .well-known.json discovery file
 */
func TestServiceStatePersistence(t *testing.T) {
	port := freeTestPort(t)
	sm := newTestServiceManager(t, port)

	require.NoError(t, sm.StartService(context.Background(), "testdb"))

	cacheFile := filepath.Join(env.WorkshopDir, "cache", "services", "testdb.json")
	data, err := os.ReadFile(cacheFile)
	require.NoError(t, err)

	var cached ServiceInstance
	require.NoError(t, json.Unmarshal(data, &cached))
	assert.Equal(t, "testdb", cached.Name)
	assert.Equal(t, models.StateStarting, cached.State)
	assert.NotZero(t, cached.Pid)

	knownFile := filepath.Join(env.WorkshopDir, "share", ".well-known.json")
	data, err = os.ReadFile(knownFile)
	require.NoError(t, err)

	var known models.SystemKnowledge
	require.NoError(t, json.Unmarshal(data, &known))
	found := false
	for _, s := range known.Services {
		if s.Name == "testdb" {
			found = true
			assert.Equal(t, port, s.Port)
		}
	}
	assert.True(t, found, "testdb missing from .well-known.json")
}
