package server

import (
	"net"
	"os"
	"path/filepath"
	"runtime"

	"workshop-host/internal/logger"
)

type ListenAddr struct {
	Network string
	Address string
}

/**
 * Test if the system supports Unix socket network type
 * @returns {bool} Returns true if Unix socket is supported, false otherwise
 * @description
 * - Creates a temporary Unix socket to test system support
 * - Cleans up test socket file after testing
 * - Returns false if Unix socket creation fails
 * @example
 * supported := IsUnixSocketSupported()
 * if !supported {
 *     logger.Info("Unix socket is not supported on this system")
 * }
 */
func IsUnixSocketSupported() bool {
	if runtime.GOOS != "windows" { //windows,linux,darwin
		return true
	}
	testSocketPath := filepath.Join(os.TempDir(), "test_unix_socket.sock")
	os.Remove(testSocketPath)

	listener, err := net.Listen("unix", testSocketPath)
	if err != nil {
		return false
	}

	listener.Close()
	os.Remove(testSocketPath)
	return true
}

/**
 * Create the daemon listeners
 * @param {[]ListenAddr} addrs - Listener addresses
 * @returns {[]net.Listener} Array of created listeners
 * @returns {error} Last creation error, if any address failed
 * @description
 * - Stale unix socket files are removed before listening
 * - A failed address is skipped so the others still come up
 */
func CreateListeners(addrs []ListenAddr) ([]net.Listener, error) {
	var listeners []net.Listener

	var lastErr error
	for _, addr := range addrs {
		if addr.Network == "unix" {
			if err := os.Remove(addr.Address); err != nil && !os.IsNotExist(err) {
				logger.Errorf("Failed to remove existing socket file: %v", err)
				continue
			}
		}
		listener, err := net.Listen(addr.Network, addr.Address)
		if err != nil {
			logger.Errorf("Failed to create listener on %s://%s: %v", addr.Network, addr.Address, err)
			lastErr = err
			continue
		}
		listeners = append(listeners, listener)
	}
	return listeners, lastErr
}
