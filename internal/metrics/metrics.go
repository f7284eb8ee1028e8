package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodgram_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "foodgram_http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)

	RateLimitedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_rate_limited_requests_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
		[]string{"route"},
	)

	// Domain metrics
	RecipeWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_recipe_writes_total",
			Help: "Total number of recipe writes by operation",
		},
		[]string{"operation"}, // "create", "update", "delete"
	)

	MembershipToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_membership_toggles_total",
			Help: "Total number of favorite, cart and subscription toggles",
		},
		[]string{"list", "action"}, // list: favorites|cart|subscriptions, action: add|remove
	)

	ShoppingListDownloads = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foodgram_shopping_list_downloads_total",
			Help: "Total number of shopping lists downloaded",
		},
	)

	Logins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_logins_total",
			Help: "Total number of token login attempts by result",
		},
		[]string{"result"}, // "success", "failure"
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight gauge
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

func RecordRateLimited(route string) {
	RateLimitedRequests.WithLabelValues(route).Inc()
}

func RecordRecipeWrite(operation string) {
	RecipeWrites.WithLabelValues(operation).Inc()
}

func RecordMembershipToggle(list string, on bool) {
	action := "remove"
	if on {
		action = "add"
	}
	MembershipToggles.WithLabelValues(list, action).Inc()
}

func RecordShoppingListDownload() {
	ShoppingListDownloads.Inc()
}

func RecordLogin(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	Logins.WithLabelValues(result).Inc()
}
