// Package metrics exposes repository and refresher activity as Prometheus
// metrics. Observer implements repository.Observer.
package metrics
