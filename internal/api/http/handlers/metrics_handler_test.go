package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-core/internal/observability"
)

func TestMetricsSnapshotEndpoint(t *testing.T) {
	metrics := observability.NewMetrics()
	metrics.RecordIngestion("acc-1", 2, 1, 0)
	metrics.RecordAutomationRun("TICKET_CREATED", 3)

	app := fiber.New()
	app.Get("/metrics", NewMetricsHandler(metrics).Snapshot)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}

	var body map[string]map[string]int64
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["ingestion"]["acc-1|tickets"] != 2 {
		t.Fatalf("ingestion counter missing: %+v", body["ingestion"])
	}
	if body["automation"]["TICKET_CREATED"] != 3 {
		t.Fatalf("automation counter missing: %+v", body["automation"])
	}
}
