// Package metrics defines and registers all custom Prometheus metrics for
// the queue manager. It is the single source of truth for metric names,
// labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "queue_manager"

// RegistrationsTotal counts completed user registrations.
var RegistrationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of user registrations.",
	},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "unverified", "unapproved", "bad_password", "not_found"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// QueueJoinsTotal counts queue join attempts.
// Label:
//   - result: "success", "duplicate", "closed", "not_found"
var QueueJoinsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "queue_joins_total",
		Help:      "Total number of queue join attempts, by result.",
	},
	[]string{"result"},
)

// MailTotal counts outbound mail decisions.
// Labels:
//   - kind: "verify", "reset", "approved"
//   - result: "sent", "error", "deduped", "dropped"
var MailTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mail_total",
		Help:      "Total number of outbound mails, by kind and result.",
	},
	[]string{"kind", "result"},
)

// MailQueueDepth tracks the number of messages waiting in each mail worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var MailQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "mail_queue_depth",
		Help:      "Current number of messages pending in each mail worker channel.",
	},
	[]string{"worker_id"},
)
