package rpc

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"

	"workshop-host/internal/logger"
)

type httpClient struct {
	config    *HTTPConfig
	client    *http.Client
	transport *http.Transport
	connected bool
	mu        sync.Mutex
}

/**
 * NewHTTPClient creates a client for the daemon API
 * @param {HTTPConfig} config - Client configuration, nil picks the default
 * @returns {HTTPClient} HTTP client interface
 * @description
 * - The transport dials the configured network (unix socket or tcp)
 * - Connection setup is deferred until the first request
 */
func NewHTTPClient(config *HTTPConfig) HTTPClient {
	if config == nil {
		config = DefaultHTTPConfig()
	}

	client := &httpClient{
		config:    config,
		transport: &http.Transport{},
	}

	client.client = &http.Client{
		Transport: client.transport,
		Timeout:   config.Timeout,
	}

	return client
}

/**
 * Get sends a GET request to the daemon
 * @param {string} path - API endpoint path
 * @param {map[string]interface{}} params - Query parameters
 * @returns {HTTPResponse} Parsed response
 * @returns {error} Error if the request could not be sent
 */
func (c *httpClient) Get(path string, params map[string]interface{}) (*HTTPResponse, error) {
	if err := c.ensureConnected(); err != nil {
		return nil, err
	}

	url, err := buildURL(c.config.BaseURL, path, params)
	if err != nil {
		return nil, fmt.Errorf("failed to build URL: %w", err)
	}

	logger.Debugf("Sending GET request to %s", url)

	ctx, cancel := context.WithTimeout(context.Background(), c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return deserializeResponse(resp)
}

/**
 * Post sends a POST request to the daemon
 * @param {string} path - API endpoint path
 * @param {map[string]interface{}} params - Query parameters
 * @param {interface{}} data - Request body, marshalled to JSON
 * @returns {HTTPResponse} Parsed response
 * @returns {error} Error if the request could not be sent
 */
func (c *httpClient) Post(path string, params map[string]interface{}, data interface{}) (*HTTPResponse, error) {
	if err := c.ensureConnected(); err != nil {
		return nil, err
	}

	url, err := buildURL(c.config.BaseURL, path, params)
	if err != nil {
		return nil, fmt.Errorf("failed to build URL: %w", err)
	}

	body, err := serializeData(data)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize data: %w", err)
	}

	logger.Debugf("Sending POST request to %s", url)

	ctx, cancel := context.WithTimeout(context.Background(), c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "POST", url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return deserializeResponse(resp)
}

/**
 * Delete sends a DELETE request to the daemon
 * @param {string} path - API endpoint path
 * @param {map[string]interface{}} params - Query parameters
 * @returns {HTTPResponse} Parsed response
 * @returns {error} Error if the request could not be sent
 */
func (c *httpClient) Delete(path string, params map[string]interface{}) (*HTTPResponse, error) {
	if err := c.ensureConnected(); err != nil {
		return nil, err
	}

	url, err := buildURL(c.config.BaseURL, path, params)
	if err != nil {
		return nil, fmt.Errorf("failed to build URL: %w", err)
	}

	logger.Debugf("Sending DELETE request to %s", url)

	ctx, cancel := context.WithTimeout(context.Background(), c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "DELETE", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return deserializeResponse(resp)
}

// Close releases idle connections
func (c *httpClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		c.client.CloseIdleConnections()
	}

	if c.transport != nil {
		c.transport.CloseIdleConnections()
	}

	c.connected = false
	logger.Debugf("HTTP client connection closed")
	return nil
}

/**
 * ensureConnected wires the transport to the daemon address
 * @returns {error} Error if the unix socket is missing
 * @description
 * - For unix sockets, verifies the socket file exists first
 * - The dialer ignores the URL host and dials the configured address
 */
func (c *httpClient) ensureConnected() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return nil
	}

	if c.config.Network == "unix" {
		if _, err := os.Stat(c.config.Address); os.IsNotExist(err) {
			return fmt.Errorf("socket file not found at %s", c.config.Address)
		}
	}

	network := c.config.Network
	address := c.config.Address
	c.transport.DialContext = func(ctx context.Context, _, _ string) (net.Conn, error) {
		var d net.Dialer
		return d.DialContext(ctx, network, address)
	}

	c.connected = true

	logger.Debugf("Connected to HTTP server at %s (%s)", address, network)
	return nil
}
