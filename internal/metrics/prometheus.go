// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

// Package metrics exposes the decoder's Prometheus gauges/counters: symbol
// throughput, FEC/CRC outcomes, PDU assembly, trunking grants and the
// current tuned state.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every Prometheus collector the decoder publishes.
type Metrics struct {
	SymbolsEmittedTotal    prometheus.Counter
	CRCFailuresTotal       *prometheus.CounterVec
	FECIrrecoverableTotal  *prometheus.CounterVec
	PDUsAssembledTotal     *prometheus.CounterVec
	GrantsProcessedTotal   *prometheus.CounterVec
	EncLockoutsTotal       prometheus.Counter
	OutOfSequenceTotal     prometheus.Counter
	TunedFrequencyHz       prometheus.Gauge
	TrunkingStateTuned     prometheus.Gauge
	FLLFrequencyHz         prometheus.Gauge
	CostasFrequencyHz      prometheus.Gauge
}

// NewMetrics builds and registers every collector with the default registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		SymbolsEmittedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "decoder_symbols_emitted_total",
			Help: "Total symbols emitted by the CQPSK front-end.",
		}),
		CRCFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "decoder_crc_failures_total",
			Help: "CRC mismatches by burst kind.",
		}, []string{"kind"}),
		FECIrrecoverableTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "decoder_fec_irrecoverable_total",
			Help: "Irrecoverable FEC decodes by kernel.",
		}, []string{"kernel"}),
		PDUsAssembledTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "decoder_pdus_assembled_total",
			Help: "PDUs successfully assembled by SAP.",
		}, []string{"sap"}),
		GrantsProcessedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "decoder_grants_processed_total",
			Help: "Voice/data grants processed by outcome.",
		}, []string{"outcome"}),
		EncLockoutsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "decoder_encryption_lockouts_total",
			Help: "Total encryption-lockout events emitted.",
		}),
		OutOfSequenceTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "decoder_out_of_sequence_total",
			Help: "Total DBSN out-of-sequence events.",
		}),
		TunedFrequencyHz: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "decoder_tuned_frequency_hz",
			Help: "Currently tuned frequency in Hz, 0 if untuned.",
		}),
		TrunkingStateTuned: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "decoder_trunking_tuned",
			Help: "1 if the trunking SM is tuned to a voice channel, else 0.",
		}),
		FLLFrequencyHz: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "decoder_fll_frequency_hz",
			Help: "Current band-edge FLL frequency estimate in Hz.",
		}),
		CostasFrequencyHz: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "decoder_costas_frequency_hz",
			Help: "Current Costas loop frequency estimate in Hz.",
		}),
	}
	m.register()
	return m
}

func (m *Metrics) register() {
	prometheus.MustRegister(
		m.SymbolsEmittedTotal,
		m.CRCFailuresTotal,
		m.FECIrrecoverableTotal,
		m.PDUsAssembledTotal,
		m.GrantsProcessedTotal,
		m.EncLockoutsTotal,
		m.OutOfSequenceTotal,
		m.TunedFrequencyHz,
		m.TrunkingStateTuned,
		m.FLLFrequencyHz,
		m.CostasFrequencyHz,
	)
}
