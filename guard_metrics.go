// Copyright 2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package hostguard

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type guardMetrics struct {
	decisions *prometheus.CounterVec
}

func newGuardMetrics(r prometheus.Registerer, namespace string) *guardMetrics {
	if r == nil {
		r = prometheus.NewRegistry() // This registry will be discarded.
	}
	f := promauto.With(r)

	return &guardMetrics{
		decisions: f.NewCounterVec(prometheus.CounterOpts{
			Name:      "guard_decisions_total",
			Namespace: namespace,
			Help:      "Number of host evaluations by verdict and reason",
		}, []string{"verdict", "reason"}),
	}
}

func (m *guardMetrics) allow() {
	m.decisions.WithLabelValues("allow", "").Inc()
}

func (m *guardMetrics) deny(r blockReason) {
	m.decisions.WithLabelValues("deny", r.String()).Inc()
}

func (m *guardMetrics) error(reason string) {
	m.decisions.WithLabelValues("error", reason).Inc()
}
