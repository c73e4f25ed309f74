package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hyperjump/reviewcheck/internal/models"
)

// httpClient allows for batch analysis, which may chain several provider calls.
var httpClient = &http.Client{Timeout: 2 * time.Minute}

func analyzeViaHTTP(serverURL, id string) (*models.AnalysisReport, error) {
	var report models.AnalysisReport
	if err := getJSON(serverURL+"/api/analyze/"+url.PathEscape(id), &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func customReviewViaHTTP(serverURL string, req *models.CustomReviewRequest) (*models.CustomReviewReport, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Post(serverURL+"/api/custom_review", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	var report models.CustomReviewReport
	if err := decodeResponse(resp, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func entitiesViaHTTP(serverURL string) ([]*models.Entity, error) {
	var out struct {
		Entities []*models.Entity `json:"entities"`
	}
	if err := getJSON(serverURL+"/api/entities", &out); err != nil {
		return nil, err
	}
	return out.Entities, nil
}

func getJSON(u string, v interface{}) error {
	resp, err := httpClient.Get(u)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	return decodeResponse(resp, v)
}

// decodeResponse decodes a 200 body into v. Other statuses become errors carrying
// the server's {"error": ...} message when present.
func decodeResponse(resp *http.Response, v interface{}) error {
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(b, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
