package registry

import (
	"github.com/connector-hub/connector-hub/internal/metrics"
)

func observeLoad(report Report, size int) {
	metrics.RegistrySize.Set(float64(size))
	for range report.Failures {
		metrics.DescriptorLoadFailuresTotal.Inc()
	}
	metrics.DescriptorLoadsTotal.Add(float64(len(report.Loaded)))
}
