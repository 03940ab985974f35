package metrics

import (
	"fmt"

	"github.com/DataDog/datadog-go/statsd"

	"github.com/teamspace/presence/config"
)

// Client is the interface to required dogstatsd functions
type Client interface {
	Count(name string, value int64, tags []string, rate float64) error
	Gauge(name string, value float64, tags []string, rate float64) error
}

// StatsdReporter sends presence metrics to a statsd agent
type StatsdReporter struct {
	client Client
	rate   float64
}

// NewStatsdReporter connects to the configured statsd host
func NewStatsdReporter(cfg *config.Config, clientOrNil ...Client) (*StatsdReporter, error) {
	sr := &StatsdReporter{
		rate: cfg.GetFloat64("presence.metrics.statsd.rate"),
	}
	if len(clientOrNil) > 0 {
		sr.client = clientOrNil[0]
		return sr, nil
	}

	c, err := statsd.New(cfg.GetString("presence.metrics.statsd.host"))
	if err != nil {
		return nil, fmt.Errorf("statsd reporter: %w", err)
	}
	c.Namespace = cfg.GetString("presence.metrics.statsd.prefix")
	sr.client = c
	return sr, nil
}

// ReportCount sends a counter increment to statsd
func (s *StatsdReporter) ReportCount(metric string, tags map[string]string, count float64) error {
	return s.client.Count(metric, int64(count), statsdTags(tags), s.rate)
}

// ReportGauge sends a gauge value to statsd
func (s *StatsdReporter) ReportGauge(metric string, tags map[string]string, value float64) error {
	return s.client.Gauge(metric, value, statsdTags(tags), s.rate)
}

func statsdTags(tags map[string]string) []string {
	out := make([]string, 0, len(tags))
	for k, v := range tags {
		out = append(out, fmt.Sprintf("%s:%s", k, v))
	}
	return out
}
