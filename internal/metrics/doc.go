// Package metrics records build, sync and publish outcomes.
//
// Components receive a Recorder through injection and default to
// NoopRecorder, so nothing needs a nil check. The CLI swaps in a
// PrometheusRecorder when --metrics-textfile is set and writes the registry
// once the command finishes, for pickup by node_exporter's textfile collector.
//
//	reg := prometheus.NewRegistry()
//	rec := metrics.NewPrometheusRecorder(reg)
//	p := publish.New(cfg, builder, rsync, publish.WithRecorder(rec))
//	...
//	_ = metrics.WriteTextfile(path, reg)
package metrics
