package utils

import (
	"context"
	"fmt"
	"net"
	"time"
)

/**
 * Check whether a local TCP port accepts connections
 * @param {int} port - Port to probe on localhost
 * @returns {bool} true if a connection was established
 */
func CheckPortConnectable(port int) bool {
	timeout := time.Second
	conn, err := net.DialTimeout("tcp", net.JoinHostPort("localhost", fmt.Sprintf("%d", port)), timeout)
	if err != nil {
		return false
	}
	if conn != nil {
		conn.Close()
		return true
	}
	return false
}

/**
 * Wait until a local TCP port accepts connections
 * @param {context.Context} ctx - Cancels the wait early
 * @param {int} port - Port to probe on localhost
 * @param {time.Duration} timeout - Wait budget; the failure is reported at
 * the boundary, not earlier or later
 * @returns {error} nil on success, context.DeadlineExceeded on timeout
 * @description
 * - Polls with exponential backoff (100ms doubling, capped at 1s)
 * - The last sleep is truncated so the deadline is honored exactly
 */
func WaitPortReady(ctx context.Context, port int, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	backoff := 100 * time.Millisecond
	addr := net.JoinHostPort("localhost", fmt.Sprintf("%d", port))

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return context.DeadlineExceeded
		}
		dialTimeout := backoff
		if dialTimeout > remaining {
			dialTimeout = remaining
		}
		conn, err := net.DialTimeout("tcp", addr, dialTimeout)
		if err == nil {
			conn.Close()
			return nil
		}

		sleep := backoff
		if rest := time.Until(deadline); sleep > rest {
			sleep = rest
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
		if backoff < time.Second {
			backoff *= 2
		}
	}
}
