package metrics

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/teamspace/presence/config"
	"github.com/teamspace/presence/logger"
)

var (
	prometheusReporter *PrometheusReporter
	once               sync.Once
)

// PrometheusReporter reports presence metrics to a prometheus endpoint
type PrometheusReporter struct {
	countReportersMap map[string]*prometheus.CounterVec
	gaugeReportersMap map[string]*prometheus.GaugeVec
}

// GetPrometheusReporter returns the singleton prometheus reporter,
// starting the scrape endpoint on first use.
func GetPrometheusReporter(namespace string, cfg *config.Config) *PrometheusReporter {
	once.Do(func() {
		prometheusReporter = &PrometheusReporter{
			countReportersMap: make(map[string]*prometheus.CounterVec),
			gaugeReportersMap: make(map[string]*prometheus.GaugeVec),
		}
		prometheusReporter.registerMetrics(namespace)
		port := cfg.GetInt("presence.metrics.prometheus.port")
		http.Handle("/metrics", promhttp.Handler())
		go func() {
			err := http.ListenAndServe(fmt.Sprintf(":%d", port), nil)
			if err != nil {
				logger.Errorf("prometheus endpoint: %s", err)
			}
		}()
	})
	return prometheusReporter
}

func (p *PrometheusReporter) registerMetrics(namespace string) {
	counters := map[string][]string{
		MessagesReceived:   {"type"},
		MessagesSent:       {"type"},
		DecodeFailures:     {},
		DroppedUpdates:     {"reason"},
		ThrottledEmissions: {},
		ReapedPlayers:      {},
	}
	for name, labels := range counters {
		p.countReportersMap[name] = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "presence",
				Name:      name,
			},
			labels,
		)
		prometheus.MustRegister(p.countReportersMap[name])
	}

	gauges := map[string][]string{
		RemotePlayerCount: {},
		ConnectedStatus:   {},
	}
	for name, labels := range gauges {
		p.gaugeReportersMap[name] = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "presence",
				Name:      name,
			},
			labels,
		)
		prometheus.MustRegister(p.gaugeReportersMap[name])
	}
}

// ReportCount reports a counter increment to prometheus
func (p *PrometheusReporter) ReportCount(metric string, tags map[string]string, count float64) error {
	cv, ok := p.countReportersMap[metric]
	if !ok {
		return nil
	}
	cv.With(tags).Add(count)
	return nil
}

// ReportGauge reports a gauge value to prometheus
func (p *PrometheusReporter) ReportGauge(metric string, tags map[string]string, value float64) error {
	gv, ok := p.gaugeReportersMap[metric]
	if !ok {
		return nil
	}
	gv.With(tags).Set(value)
	return nil
}
