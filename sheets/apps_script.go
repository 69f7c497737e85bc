package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// AppsScript posts rows to a deployed Apps Script web app
type AppsScript struct {
	url        string
	httpClient *http.Client
}

func NewAppsScript(url string) *AppsScript {
	return &AppsScript{url: url, httpClient: &http.Client{Timeout: 15 * time.Second}}
}

type appsScriptRequest struct {
	Header []string          `json:"header"`
	Row    []string          `json:"row"`
	Values map[string]string `json:"values"`
}

type appsScriptResponse struct {
	OK    *bool  `json:"ok"`
	Error string `json:"error"`
}

func (a *AppsScript) AppendRow(ctx context.Context, header, record []string) error {
	values := make(map[string]string, len(header))
	for i, name := range header {
		if i < len(record) {
			values[name] = record[i]
		}
	}

	body, err := json.Marshal(appsScriptRequest{Header: header, Row: record, Values: values})
	if err != nil {
		return fmt.Errorf("failed to encode row: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build apps script request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call apps script: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("apps script returned status %d: %s", resp.StatusCode, respBody)
	}

	// The script may answer with plain text; only an explicit ok:false fails
	var result appsScriptResponse
	if json.Unmarshal(respBody, &result) == nil && result.OK != nil && !*result.OK {
		return fmt.Errorf("apps script rejected row: %s", result.Error)
	}
	return nil
}
