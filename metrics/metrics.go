package metrics

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/ardnew/usbfifo/fifo"
	"github.com/ardnew/usbfifo/pkg"
)

const (
	namespace = "usbfifo"
	subsystem = "fifo"
	fifoLabel = "fifo"
)

// Collector exports the state and running totals of registered FIFOs.
// Values are read from the FIFOs at scrape time.
type Collector struct {
	mu    sync.RWMutex
	fifos map[string]*fifo.FIFO

	depth       *prometheus.Desc
	items       *prometheus.Desc
	remaining   *prometheus.Desc
	overflowed  *prometheus.Desc
	written     *prometheus.Desc
	read        *prometheus.Desc
	dropped     *prometheus.Desc
	overwritten *prometheus.Desc
	corrections *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

func newDesc(name, help string) *prometheus.Desc {
	return prometheus.NewDesc(
		prometheus.BuildFQName(namespace, subsystem, name),
		help, []string{fifoLabel}, nil)
}

// NewCollector returns a collector with no FIFOs.
func NewCollector() *Collector {
	return &Collector{
		fifos: make(map[string]*fifo.FIFO),

		depth:       newDesc("depth", "Capacity of the FIFO in items."),
		items:       newDesc("items", "Items currently stored."),
		remaining:   newDesc("remaining", "Items that can be written before the FIFO is full."),
		overflowed:  newDesc("overflowed", "1 while the writer is more than depth items ahead of the reader."),
		written:     newDesc("written_total", "Items written, including direct write-cursor advances."),
		read:        newDesc("read_total", "Items read, including direct read-cursor advances."),
		dropped:     newDesc("dropped_total", "Items rejected because the FIFO was full."),
		overwritten: newDesc("overwritten_total", "Unread items discarded by overwrites and overflow correction."),
		corrections: newDesc("corrections_total", "Read cursor repairs after an overflow."),
	}
}

// Add starts exporting f under name.
func (c *Collector) Add(name string, f *fifo.FIFO) error {
	if name == "" || f == nil {
		return pkg.ErrInvalidParameter
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.fifos[name]; exists {
		return fmt.Errorf("fifo %q already registered: %w", name, pkg.ErrInvalidParameter)
	}
	c.fifos[name] = f
	pkg.LogDebug(pkg.ComponentMetrics, "fifo registered", "fifo", name, "depth", f.Depth())
	return nil
}

// Remove stops exporting the FIFO registered under name.
func (c *Collector) Remove(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.fifos[name]; !exists {
		return false
	}
	delete(c.fifos, name)
	return true
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.depth
	ch <- c.items
	ch <- c.remaining
	ch <- c.overflowed
	ch <- c.written
	ch <- c.read
	ch <- c.dropped
	ch <- c.overwritten
	ch <- c.corrections
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for name, f := range c.fifos {
		st := f.Stats()
		overflowed := 0.0
		if f.Overflowed() {
			overflowed = 1
		}

		gauge := func(d *prometheus.Desc, v float64) {
			ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v, name)
		}
		counter := func(d *prometheus.Desc, v uint64) {
			ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v), name)
		}

		gauge(c.depth, float64(f.Depth()))
		gauge(c.items, float64(f.Count()))
		gauge(c.remaining, float64(f.Remaining()))
		gauge(c.overflowed, overflowed)
		counter(c.written, st.Written)
		counter(c.read, st.Read)
		counter(c.dropped, st.Dropped)
		counter(c.overwritten, st.Overwritten)
		counter(c.corrections, st.Corrections)
	}
}

// Counters gathers g and returns the counter values exported for the FIFO
// registered under name, keyed by metric family name.
func Counters(g prometheus.Gatherer, name string) (map[string]uint64, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}

	counters := make(map[string]uint64)
	for _, family := range families {
		if family.GetType() != dto.MetricType_COUNTER {
			continue
		}
		for _, m := range family.GetMetric() {
			if labelValue(m, fifoLabel) == name {
				counters[family.GetName()] = uint64(m.GetCounter().GetValue())
			}
		}
	}
	return counters, nil
}

func labelValue(m *dto.Metric, label string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == label {
			return lp.GetValue()
		}
	}
	return ""
}
