//go:build integration
// +build integration

// Package integration provides end-to-end tests for the pdcheck service.
//
// These tests verify the complete check pipeline:
//
//	Address → Fact Provider → Rules Engine → Summary → Persistence
//
// Run with: go test -tags=integration -v ./tests/integration/...
//
// A server must be running (default http://localhost:8080) with the sample
// designation data loaded:
//
//	go run cmd/seed/main.go -sample
//	go run cmd/pdcheck/main.go
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"
)

func baseURL() string {
	if url := os.Getenv("PDCHECK_TEST_URL"); url != "" {
		return url
	}
	return "http://localhost:8080"
}

type checkRequest struct {
	Address      string `json:"address"`
	PropertyType string `json:"propertyType,omitempty"`
}

type planningResult struct {
	ID                            string   `json:"id"`
	Postcode                      string   `json:"postcode"`
	HasPermittedDevelopmentRights bool     `json:"hasPermittedDevelopmentRights"`
	Confidence                    float64  `json:"confidence"`
	PrimaryReasons                []string `json:"primaryReasons"`
	Checks                        []struct {
		Type   string `json:"type"`
		Status string `json:"status"`
	} `json:"checks"`
	Summary  string `json:"summary"`
	Fallback bool   `json:"fallback"`
}

func postCheck(t *testing.T, path string, req checkRequest) (*http.Response, []byte) {
	t.Helper()

	body, _ := json.Marshal(req)
	resp, err := http.Post(baseURL()+path, "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("request failed (is the server running?): %v", err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	return resp, buf.Bytes()
}

func TestCheckPipeline(t *testing.T) {
	t.Run("RestrictedDesignations", func(t *testing.T) {
		// SW1A 1AA carries conservation area, listed building, and world
		// heritage flags in the sample data: listing blocks PD rights.
		resp, body := postCheck(t, "/api/v1/check", checkRequest{
			Address: "1 The Mall, London SW1A 1AA",
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
		}

		var result planningResult
		if err := json.Unmarshal(body, &result); err != nil {
			t.Fatalf("failed to decode result: %v", err)
		}

		if result.HasPermittedDevelopmentRights {
			t.Error("expected the listed building to block PD rights")
		}
		if len(result.Checks) < 9 {
			t.Errorf("expected the full check list, got %d", len(result.Checks))
		}
		if result.Fallback {
			t.Error("seeded postcode must not fall back")
		}
	})

	t.Run("NationalParkRestricts", func(t *testing.T) {
		resp, body := postCheck(t, "/api/v1/check", checkRequest{
			Address: "Oak Cottage, Hutton-le-Hole YO62 5BP",
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
		}

		var result planningResult
		json.Unmarshal(body, &result)

		if !result.HasPermittedDevelopmentRights {
			t.Error("expected a national park property to keep PD rights")
		}
		found := false
		for _, r := range result.PrimaryReasons {
			if r == "Some restrictions may apply" {
				found = true
			}
		}
		if !found {
			t.Errorf("expected the restrictions note, got %v", result.PrimaryReasons)
		}
	})

	t.Run("CleanPostcode", func(t *testing.T) {
		resp, body := postCheck(t, "/api/v1/check", checkRequest{
			Address: "5 Deansgate, Manchester M1 1AE",
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
		}

		var result planningResult
		json.Unmarshal(body, &result)

		if !result.HasPermittedDevelopmentRights {
			t.Error("expected full PD rights on a clean postcode")
		}
		if result.Confidence != 99.8 {
			t.Errorf("expected clamped confidence 99.8, got %.1f", result.Confidence)
		}
	})

	t.Run("FlatBlocksRegardlessOfPostcode", func(t *testing.T) {
		resp, body := postCheck(t, "/api/v1/check", checkRequest{
			Address:      "Flat 3, 5 Deansgate, Manchester M1 1AE",
			PropertyType: "flat",
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
		}

		var result planningResult
		json.Unmarshal(body, &result)

		if result.HasPermittedDevelopmentRights {
			t.Error("expected a flat to have no householder PD rights")
		}
	})

	t.Run("UnknownAddressFallsBack", func(t *testing.T) {
		resp, body := postCheck(t, "/api/v1/check", checkRequest{
			Address: "1 Nowhere Lane",
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected a fallback 200, got %d: %s", resp.StatusCode, body)
		}

		var result planningResult
		json.Unmarshal(body, &result)

		if !result.Fallback {
			t.Error("expected the fallback flag")
		}
		if result.Confidence > 85.0 {
			t.Errorf("fallback confidence %.1f exceeds the ceiling", result.Confidence)
		}
	})
}

func TestCheckRetrieval(t *testing.T) {
	_, body := postCheck(t, "/api/v1/check", checkRequest{
		Address: "5 Deansgate, Manchester M1 1AE",
	})

	var created planningResult
	if err := json.Unmarshal(body, &created); err != nil || created.ID == "" {
		t.Fatalf("failed to create a check: %v (%s)", err, body)
	}

	resp, err := http.Get(fmt.Sprintf("%s/api/v1/checks/%s", baseURL(), created.ID))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 retrieving the check, got %d", resp.StatusCode)
	}
}

func TestAsyncCheck(t *testing.T) {
	if os.Getenv("PDCHECK_TEST_ASYNC") == "" {
		t.Skip("set PDCHECK_TEST_ASYNC=1 when the server runs with the async worker")
	}

	resp, body := postCheck(t, "/api/v1/check?async=1", checkRequest{
		Address: "5 Deansgate, Manchester M1 1AE",
	})
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", resp.StatusCode, body)
	}

	var queued struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &queued); err != nil || queued.ID == "" {
		t.Fatalf("failed to decode queued response: %s", body)
	}

	// Poll until the worker has persisted the result.
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(fmt.Sprintf("%s/api/v1/checks/%s", baseURL(), queued.ID))
		if err == nil {
			status := resp.StatusCode
			resp.Body.Close()
			if status == http.StatusOK {
				return
			}
		}
		time.Sleep(200 * time.Millisecond)
	}
	t.Fatal("async check never completed")
}
