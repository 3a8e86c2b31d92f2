package polling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/esnrhm/LinuxNetAPI/internal/domain/entities"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

type stubDetector struct {
	result entities.DetectionResult
	err    error
}

func (d *stubDetector) Detect(context.Context) (entities.DetectionResult, error) {
	return d.result, d.err
}

func (d *stubDetector) Invalidate() {}

type stubHistory struct {
	pingErr error
}

func (h *stubHistory) Record(context.Context, entities.HistoryRecord) error { return nil }

func (h *stubHistory) ListByInterface(context.Context, string, int) ([]entities.HistoryRecord, error) {
	return nil, nil
}

func (h *stubHistory) Ping(context.Context) error { return h.pingErr }

type recordingSink struct {
	backend    *entities.DetectionResult
	backendErr error
	dbCalls    int
	dbHealthy  bool
}

func (s *recordingSink) UpdateBackend(result entities.DetectionResult, err error) {
	s.backend = &result
	s.backendErr = err
}

func (s *recordingSink) UpdateDBHealth(healthy bool, err error) {
	s.dbCalls++
	s.dbHealthy = healthy
}

func TestHealthProber_Probe(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	detected := entities.DetectionResult{Backend: entities.BackendNetplan, LiveApply: true}

	tests := []struct {
		name        string
		detector    *stubDetector
		history     *stubHistory
		wantErr     bool
		wantDBCalls int
		wantHealthy bool
	}{
		{
			name:        "all healthy",
			detector:    &stubDetector{result: detected},
			history:     &stubHistory{},
			wantDBCalls: 1,
			wantHealthy: true,
		},
		{
			name:        "database disabled",
			detector:    &stubDetector{result: detected},
			wantDBCalls: 0,
		},
		{
			name:        "detection failure",
			detector:    &stubDetector{err: errors.New("netplan probe failed")},
			history:     &stubHistory{},
			wantErr:     true,
			wantDBCalls: 1,
			wantHealthy: true,
		},
		{
			name:        "database unreachable",
			detector:    &stubDetector{result: detected},
			history:     &stubHistory{pingErr: errors.New("connection refused")},
			wantErr:     true,
			wantDBCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordingSink{}
			var prober *HealthProber
			if tt.history == nil {
				prober = NewHealthProber(tt.detector, nil, sink, time.Second, logger)
			} else {
				prober = NewHealthProber(tt.detector, tt.history, sink, time.Second, logger)
			}

			err := prober.Probe(context.Background())

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			if assert.NotNil(t, sink.backend) {
				assert.Equal(t, tt.detector.result.Backend, sink.backend.Backend)
			}
			assert.Equal(t, tt.detector.err, sink.backendErr)
			assert.Equal(t, tt.wantDBCalls, sink.dbCalls)
			assert.Equal(t, tt.wantHealthy, sink.dbHealthy)
		})
	}
}
