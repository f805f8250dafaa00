package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/urfave/cli"
)

type apiClient struct {
	baseURL     string
	adminToken  string
	httpClient  *http.Client
}

func newAPIClient(ctx *cli.Context) *apiClient {
	return &apiClient{
		baseURL:    ctx.GlobalString("rpcserver"),
		adminToken: ctx.GlobalString("admintoken"),
		httpClient: http.DefaultClient,
	}
}

func (c *apiClient) post(path string, req, resp interface{}) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	httpReq, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.adminToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.adminToken)
	}
	return c.do(httpReq, resp)
}

func (c *apiClient) get(path string, resp interface{}) error {
	httpReq, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(httpReq, resp)
}

func (c *apiClient) do(req *http.Request, resp interface{}) error {
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("adjudicatord: %s", apiErr.Error)
		}
		return fmt.Errorf("adjudicatord: unexpected status %d", httpResp.StatusCode)
	}

	if resp == nil || len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, resp)
}
