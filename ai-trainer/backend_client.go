package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// backendClient talks to the game backend's HTTP API.
type backendClient struct {
	http    *http.Client
	baseURL string
}

type gameView struct {
	GameID string `json:"game_id"`
	Mode   string `json:"mode"`
	State  struct {
		Phase     string `json:"phase"`
		Winner    string `json:"winner"`
		TurnCount int    `json:"turn_count"`
	} `json:"state"`
}

func newBackendClient(baseURL string, timeout time.Duration) *backendClient {
	return &backendClient{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

func (c *backendClient) ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/ping", nil, nil, http.StatusOK)
}

func (c *backendClient) createGame(ctx context.Context, mode string) (gameView, error) {
	var view gameView
	payload := map[string]any{"mode": mode, "start": true}
	err := c.do(ctx, http.MethodPost, "/api/games", payload, &view, http.StatusCreated)
	return view, err
}

func (c *backendClient) getGame(ctx context.Context, id string) (gameView, error) {
	var view gameView
	err := c.do(ctx, http.MethodGet, "/api/games/"+id, nil, &view, http.StatusOK)
	return view, err
}

func (c *backendClient) deleteGame(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/games/"+id, nil, nil, http.StatusOK)
}

func (c *backendClient) getConfig(ctx context.Context) (map[string]any, error) {
	config := map[string]any{}
	err := c.do(ctx, http.MethodGet, "/api/config", nil, &config, http.StatusOK)
	return config, err
}

func (c *backendClient) updateConfig(ctx context.Context, config map[string]any) error {
	return c.do(ctx, http.MethodPost, "/api/config", config, nil, http.StatusOK)
}

func (c *backendClient) do(ctx context.Context, method, path string, payload, out any, want int) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != want {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%s %s -> %d: %s", method, path, resp.StatusCode, string(respBody))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
