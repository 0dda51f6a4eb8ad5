package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// WriteTextfile dumps every metric of the gatherer to path in the text exposition
// format, for the node exporter textfile collector. An empty path is a no-op.
func WriteTextfile(path string, gatherer prometheus.Gatherer) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, gatherer); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}

	return nil
}
