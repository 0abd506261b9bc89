// Package metrics exports fifo engine statistics to Prometheus.
//
// A [Collector] reads [fifo.Stats], the current count and the overflow flag
// of every registered FIFO when it is scraped:
//
//	reg := prometheus.NewRegistry()
//	c := metrics.NewCollector()
//	reg.MustRegister(c)
//	c.Add("cdc_tx", txFIFO)
//
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
//
// All series carry a "fifo" label with the registered name.
package metrics
