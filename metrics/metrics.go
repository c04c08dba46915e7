package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go-midiparse/midi"
)

var (
	registerOnce sync.Once

	bytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "midiparse",
			Name:      "bytes_total",
			Help:      "Bytes fed to the parser.",
		},
	)
	messagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "midiparse",
			Name:      "messages_total",
			Help:      "Decoded messages by type.",
		},
		[]string{"type"},
	)
	resyncTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "midiparse",
			Name:      "resync_total",
			Help:      "Bytes or partial messages discarded while resynchronizing.",
		},
		[]string{"reason"},
	)
	decodeErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "midiparse",
			Name:      "decode_errors_total",
			Help:      "Framed tokens that failed to decode.",
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(bytesTotal, messagesTotal, resyncTotal, decodeErrors)
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	RegisterMetrics()
	return promhttp.Handler()
}

func RecordBytes(n int) {
	RegisterMetrics()
	bytesTotal.Add(float64(n))
}

func RecordMessage(msg midi.Message) {
	RegisterMetrics()
	messagesTotal.WithLabelValues(msg.Type.String()).Inc()
}

// RecordStats adds the counter deltas between two parser snapshots.
func RecordStats(prev, cur midi.Stats) {
	RegisterMetrics()
	addDelta(resyncTotal.WithLabelValues("orphan_data"), prev.OrphanData, cur.OrphanData)
	addDelta(resyncTotal.WithLabelValues("unknown_status"), prev.UnknownStatus, cur.UnknownStatus)
	addDelta(resyncTotal.WithLabelValues("stray_eox"), prev.StrayEndOfExclusive, cur.StrayEndOfExclusive)
	addDelta(resyncTotal.WithLabelValues("aborted_message"), prev.AbortedMessages, cur.AbortedMessages)
	addDelta(resyncTotal.WithLabelValues("aborted_sysex"), prev.AbortedSysEx, cur.AbortedSysEx)
	addDelta(resyncTotal.WithLabelValues("oversize_sysex"), prev.OversizeSysEx, cur.OversizeSysEx)
	addDelta(decodeErrors, prev.DecodeErrors, cur.DecodeErrors)
}

func addDelta(c prometheus.Counter, prev, cur int) {
	if cur > prev {
		c.Add(float64(cur - prev))
	}
}
