/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
//go:generate mockgen -destination=mock_fetch.go -package=fetch github.com/carverauto/airpoller/pkg/fetch Transport

package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Request is one raw call handed to a Transport.
type Request struct {
	Method  string
	URL     string
	Body    []byte
	Timeout time.Duration
}

// Response is the raw outcome of a call that reached the remote.
type Response struct {
	StatusCode int
	Body       []byte
}

// Transport performs a single HTTP exchange. Errors mean the remote was not reached
// or the body could not be read; any status code is a successful Do.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// HTTPClient is the subset of *http.Client used by HTTPTransport.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPTransport implements Transport over net/http.
type HTTPTransport struct {
	client HTTPClient
}

var _ Transport = (*HTTPTransport)(nil)

func NewHTTPTransport(client HTTPClient) *HTTPTransport {
	if client == nil {
		client = &http.Client{}
	}

	return &HTTPTransport{client: client}
}

func (t *HTTPTransport) Do(ctx context.Context, req *Request) (*Response, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}
