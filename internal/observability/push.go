package observability

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus/push"
)

// PushJob is the Pushgateway job name for map builds.
const PushJob = "state_energy_map"

// Push sends the run's metrics to a Pushgateway. Batch runs exit before a
// scrape could happen, so this is how their metrics get recorded.
func (m *Metrics) Push(ctx context.Context, url string) error {
	p := push.New(url, PushJob)
	for _, c := range m.collectors() {
		p = p.Collector(c)
	}
	if err := p.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
