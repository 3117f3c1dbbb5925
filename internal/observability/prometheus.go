package observability

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus implements Metrics on a private registry.
type Prometheus struct {
	reg *prometheus.Registry

	items       *prometheus.CounterVec
	itemLatency *prometheus.HistogramVec
	stages      *prometheus.HistogramVec
	http        *prometheus.HistogramVec
	kafka       *prometheus.HistogramVec
	cache       *prometheus.CounterVec
}

func NewPrometheus() *Prometheus {
	r := prometheus.NewRegistry()

	items := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bridge_items_total",
		Help: "Submitted order items by outcome code.",
	}, []string{"code"})
	itemLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bridge_item_duration_seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"code"})
	stages := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bridge_stage_duration_seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage", "ok"})
	httpDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bridge_http_request_duration_seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	kafkaDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bridge_kafka_message_duration_seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"ok"})
	cache := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bridge_masterdata_cache_total",
	}, []string{"result"})

	r.MustRegister(items, itemLatency, stages, httpDur, kafkaDur, cache)
	return &Prometheus{
		reg:         r,
		items:       items,
		itemLatency: itemLatency,
		stages:      stages,
		http:        httpDur,
		kafka:       kafkaDur,
		cache:       cache,
	}
}

func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{})
}

func (p *Prometheus) ObserveItem(code string, durMs float64) {
	p.items.WithLabelValues(code).Inc()
	p.itemLatency.WithLabelValues(code).Observe(durMs / 1000)
}

func (p *Prometheus) ObserveStage(stage string, ok bool, durMs float64) {
	p.stages.WithLabelValues(stage, strconv.FormatBool(ok)).Observe(durMs / 1000)
}

func (p *Prometheus) ObserveHTTP(method, route string, status int, durMs float64) {
	p.http.WithLabelValues(method, route, strconv.Itoa(status)).Observe(durMs / 1000)
}

func (p *Prometheus) ObserveKafka(processMs float64, ok bool) {
	p.kafka.WithLabelValues(strconv.FormatBool(ok)).Observe(processMs / 1000)
}

func (p *Prometheus) IncCacheHit()  { p.cache.WithLabelValues("hit").Inc() }
func (p *Prometheus) IncCacheMiss() { p.cache.WithLabelValues("miss").Inc() }
