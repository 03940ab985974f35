package metrics

// Metric names reported by the presence client.
const (
	MessagesReceived   = "messages_received"
	MessagesSent       = "messages_sent"
	DecodeFailures     = "decode_failures"
	DroppedUpdates     = "dropped_updates"
	ThrottledEmissions = "throttled_emissions"
	ReapedPlayers      = "reaped_players"
	RemotePlayerCount  = "remote_player_count"
	ConnectedStatus    = "connected_status"
)

// Reporter interface
type Reporter interface {
	ReportCount(metric string, tags map[string]string, count float64) error
	ReportGauge(metric string, tags map[string]string, value float64) error
}

// NoopReporter discards every metric. Used when no reporter is wired.
type NoopReporter struct{}

// ReportCount noop
func (NoopReporter) ReportCount(metric string, tags map[string]string, count float64) error {
	return nil
}

// ReportGauge noop
func (NoopReporter) ReportGauge(metric string, tags map[string]string, value float64) error {
	return nil
}

// ReportMessageReceived increments the inbound message counter on every
// reporter, tagged with the message type.
func ReportMessageReceived(reporters []Reporter, msgType string) {
	for _, r := range reporters {
		r.ReportCount(MessagesReceived, map[string]string{"type": msgType}, 1)
	}
}

// ReportMessageSent increments the outbound message counter on every
// reporter, tagged with the message type.
func ReportMessageSent(reporters []Reporter, msgType string) {
	for _, r := range reporters {
		r.ReportCount(MessagesSent, map[string]string{"type": msgType}, 1)
	}
}

// ReportCount fans a counter increment out to every reporter.
func ReportCount(reporters []Reporter, metric string, tags map[string]string, count float64) {
	for _, r := range reporters {
		r.ReportCount(metric, tags, count)
	}
}

// ReportGauge fans a gauge value out to every reporter.
func ReportGauge(reporters []Reporter, metric string, tags map[string]string, value float64) {
	for _, r := range reporters {
		r.ReportGauge(metric, tags, value)
	}
}
