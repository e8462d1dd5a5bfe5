package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		paymentLinksCreated,
		paymentConfirmations,
		webhookEvents,
		storageOperations,
	)
}

var (
	paymentLinksCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_links_created_total",
			Help: "Payment links created, by payment type (deposit/full).",
		},
		[]string{"payment_type"},
	)

	paymentConfirmations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_confirmations_total",
			Help: "Payment confirmations applied, by source (redirect/webhook) and resulting status.",
		},
		[]string{"source", "status"},
	)

	webhookEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Provider webhook deliveries by outcome.",
		},
		[]string{"result"},
	)

	storageOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_operations_total",
			Help: "Storage operations by backend, operation and result (ok/error).",
		},
		[]string{"backend", "operation", "result"},
	)
)

func IncLinkCreated(paymentType string) {
	paymentLinksCreated.WithLabelValues(norm(paymentType)).Inc()
}

func IncConfirmation(source, status string) {
	paymentConfirmations.WithLabelValues(norm(source), norm(status)).Inc()
}

func IncWebhook(result string) {
	webhookEvents.WithLabelValues(norm(result)).Inc()
}

func ObserveStorage(backend, operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	storageOperations.WithLabelValues(norm(backend), norm(operation), result).Inc()
}
