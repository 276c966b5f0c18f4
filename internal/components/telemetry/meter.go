package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// MeterAPI forwards every report to an inner API and additionally records
// counts as OpenTelemetry gauges, one gauge per id.
type MeterAPI struct {
	API
	meter  metric.Meter
	mutex  *sync.Mutex
	gauges map[string]metric.Int64Gauge
}

func NewMeterAPI(meterName string, inner API) MeterAPI {
	return MeterAPI{
		API:    inner,
		meter:  otel.Meter(meterName),
		mutex:  &sync.Mutex{},
		gauges: map[string]metric.Int64Gauge{},
	}
}

func (m MeterAPI) gauge(id string) (metric.Int64Gauge, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	gauge, ok := m.gauges[id]
	if ok {
		return gauge, nil
	}
	gauge, err := m.meter.Int64Gauge(id)
	if err != nil {
		return nil, err
	}
	m.gauges[id] = gauge
	return gauge, nil
}

func (m MeterAPI) ReportCount(id string, count int64) {
	m.API.ReportCount(id, count)

	gauge, err := m.gauge(id)
	if err != nil {
		m.API.ReportWarning("meter.gauge", id, err)
		return
	}
	gauge.Record(context.Background(), count)
}
