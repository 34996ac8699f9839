package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/opencivic/infrawatch/internal/auth"
	appconfig "github.com/opencivic/infrawatch/internal/config"
	"github.com/opencivic/infrawatch/pkg/logging"
)

func TestSetupPipelineMetricsExposesMetrics(t *testing.T) {
	handler, pipeline := setupPipelineMetrics()
	if handler == nil || pipeline == nil {
		t.Fatalf("expected non-nil handler and metrics")
	}

	pipeline.ObserveSubmission("persisted")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "infrawatch_reports_submissions_total") {
		t.Fatalf("expected submissions counter to be exported")
	}
}

func TestConnectPostgresPoolEmptyURLReturnsNil(t *testing.T) {
	logger := logging.New("error")
	if pool := connectPostgresPool(context.Background(), "", logger); pool != nil {
		t.Fatalf("expected nil pool for empty URL")
	}
}

func TestSetupBlobStoreDisabledWithoutBucket(t *testing.T) {
	logger := logging.New("error")
	cfg := &appconfig.Config{}
	blobs := setupBlobStore(context.Background(), cfg, logger)
	if blobs == nil {
		t.Fatalf("expected non-nil blob store")
	}
	if blobs.Enabled() {
		t.Fatalf("expected blob store to be disabled without a bucket")
	}
}

func TestSetupAssessorDisabledWithoutKey(t *testing.T) {
	logger := logging.New("error")
	cfg := &appconfig.Config{}
	if assessor := setupAssessor(context.Background(), cfg, nil, logger); assessor != nil {
		t.Fatalf("expected nil assessor without an API key")
	}
}

func TestSetupTokenStoreFallsBackToMemory(t *testing.T) {
	logger := logging.New("error")
	store := setupTokenStore(&appconfig.Config{}, logger)
	if _, ok := store.(*auth.InMemoryTokenStore); !ok {
		t.Fatalf("expected in-memory token store without REDIS_ADDR")
	}
}

func TestSplitOrigins(t *testing.T) {
	got := splitOrigins(" https://a.example , ,https://b.example")
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Fatalf("unexpected origins: %v", got)
	}
}
