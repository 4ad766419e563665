package escrow

// NoopMetricsCollector is a no-op implementation of MetricsCollector
type NoopMetricsCollector struct{}

func (n *NoopMetricsCollector) RecordOperation(string, int64) {}
func (n *NoopMetricsCollector) RecordError(string, string)    {}
