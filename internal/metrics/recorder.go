// Package metrics records per-package build outcomes with Prometheus
// collectors and exports them as a node-exporter textfile.
package metrics

import (
	"github.com/ZanzyTHEbar/errbuilder-go"
	prom "github.com/prometheus/client_golang/prometheus"

	"rosmsg-packages/internal/ports"
	"rosmsg-packages/internal/types"
)

const namespace = "rosmsg_packages"

type PrometheusRecorder struct {
	registry        *prom.Registry
	packages        *prom.CounterVec
	packageDuration *prom.HistogramVec
}

// NewPrometheusRecorder registers the build collectors on reg, or on a
// fresh registry when reg is nil.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{registry: reg}
	pr.packages = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "packages_total",
		Help:      "Packages processed by variant and outcome",
	}, []string{"variant", "outcome"})
	pr.packageDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "package_duration_seconds",
		Help:      "Duration of a single package build",
		Buckets:   prom.DefBuckets,
	}, []string{"variant"})
	reg.MustRegister(pr.packages, pr.packageDuration)
	return pr
}

func (pr *PrometheusRecorder) ObservePackage(variant types.PackageVariant, outcome types.BuildOutcome, seconds float64) {
	pr.packages.WithLabelValues(string(variant), string(outcome)).Inc()
	pr.packageDuration.WithLabelValues(string(variant)).Observe(seconds)
}

// WriteTextfile writes the registry in the Prometheus text format.
func (pr *PrometheusRecorder) WriteTextfile(path string) error {
	if err := prom.WriteToTextfile(path, pr.registry); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write metrics textfile").
			WithCause(err)
	}
	return nil
}

var _ ports.BuildRecorderPort = (*PrometheusRecorder)(nil)
