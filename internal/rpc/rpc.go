package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"workshop-host/internal/env"
	"workshop-host/internal/models"
)

// HTTPClient is the CLI side of the daemon API
type HTTPClient interface {
	Get(path string, params map[string]interface{}) (*HTTPResponse, error)
	Post(path string, params map[string]interface{}, data interface{}) (*HTTPResponse, error)
	Delete(path string, params map[string]interface{}) (*HTTPResponse, error)
	Close() error
}

// HTTPConfig describes how to reach the daemon
type HTTPConfig struct {
	Address string        //listen address of the workshop daemon
	Network string        //unix,tcp...
	Timeout time.Duration // default request timeout
	BaseURL string        // base URL
}

/**
 * DefaultHTTPConfig resolves the daemon address
 * @returns {HTTPConfig} Ready-to-use client configuration
 * @description
 * - Prefers the unix socket under ~/.workshop/run
 * - Falls back to the tcp port advertised in share/.well-known.json
 * - Last resort is the default listen address
 */
func DefaultHTTPConfig() *HTTPConfig {
	c := &HTTPConfig{
		Address: getSocketPath("workshop.sock", ""),
		Network: "unix",
		Timeout: 5 * time.Second,
		BaseURL: "http://localhost",
	}
	if _, err := os.Stat(c.Address); os.IsNotExist(err) {
		c.Address = getTcpAddress()
		c.Network = "tcp"
	}
	if c.Address == "" {
		c.Address = "127.0.0.1:8340"
		c.Network = "tcp"
	}
	return c
}

// HTTPResponse is the parsed daemon reply
type HTTPResponse struct {
	StatusCode int                 `json:"status_code"`
	Headers    map[string][]string `json:"headers"`
	Body       []byte              `json:"body"`
	Error      string              `json:"error"`
}

func buildURL(baseURL, path string, params map[string]interface{}) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}

	if u.Path == "" {
		u.Path = path
	} else {
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		u.Path += path
	}

	if params != nil {
		q := u.Query()
		for key, value := range params {
			switch v := value.(type) {
			case string:
				q.Set(key, v)
			case int, int8, int16, int32, int64:
				q.Set(key, fmt.Sprintf("%d", v))
			case uint, uint8, uint16, uint32, uint64:
				q.Set(key, fmt.Sprintf("%d", v))
			case float32, float64:
				q.Set(key, fmt.Sprintf("%f", v))
			case bool:
				q.Set(key, fmt.Sprintf("%t", v))
			default:
				q.Set(key, fmt.Sprintf("%v", v))
			}
		}
		u.RawQuery = q.Encode()
	}

	return u.String(), nil
}

func serializeData(data interface{}) (io.Reader, error) {
	if data == nil {
		return nil, nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize data: %w", err)
	}

	return bytes.NewReader(jsonData), nil
}

func deserializeResponse(resp *http.Response) (*HTTPResponse, error) {
	httpResp := &HTTPResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	defer resp.Body.Close()
	httpResp.Body = body
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return httpResp, nil
	}
	if len(body) == 0 {
		httpResp.Error = resp.Status
	} else {
		var errBody models.ErrorResponse
		if err := json.Unmarshal(body, &errBody); err != nil {
			httpResp.Error = err.Error()
		} else {
			httpResp.Error = errBody.Error
		}
	}
	if httpResp.Error == "" {
		httpResp.Error = "Unknown error"
	}
	return httpResp, nil
}

/**
 * Unix socket path the workshop daemon listens on
 */
func getSocketPath(socketName string, socketDir string) string {
	if socketDir == "" {
		socketDir = filepath.Join(env.WorkshopDir, "run")
	}
	return filepath.Join(socketDir, socketName)
}

/**
 * TCP address the workshop daemon advertised at startup
 */
func getTcpAddress() string {
	knownFile := filepath.Join(env.WorkshopDir, "share", ".well-known.json")
	data, err := os.ReadFile(knownFile)
	if err != nil {
		return ""
	}
	var known models.SystemKnowledge
	if err = json.Unmarshal(data, &known); err != nil {
		return ""
	}
	for _, s := range known.Services {
		if s.Name == "workshop" {
			return fmt.Sprintf("127.0.0.1:%d", s.Port)
		}
	}
	return ""
}
