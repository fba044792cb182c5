package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds the application collectors served on /metrics.
var Registry = prometheus.NewRegistry()

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "katuripu",
		Subsystem: "http",
		Name:      "inflight_requests",
		Help:      "Current number of in-flight HTTP requests.",
	})

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "katuripu",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests handled.",
	}, []string{"method", "route", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "katuripu",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
	}, []string{"method", "route"})

	exerciseCompletions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "katuripu",
		Subsystem: "progress",
		Name:      "exercise_completions_total",
		Help:      "Exercise completion toggles by outcome.",
	}, []string{"completed"})

	xpAwarded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "katuripu",
		Subsystem: "gamification",
		Name:      "xp_awarded_total",
		Help:      "Total XP awarded to learners.",
	})

	achievementsUnlocked = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "katuripu",
		Subsystem: "gamification",
		Name:      "achievements_unlocked_total",
		Help:      "Achievements unlocked by id.",
	}, []string{"achievement"})

	levelUps = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "katuripu",
		Subsystem: "gamification",
		Name:      "level_ups_total",
		Help:      "Number of level ups.",
	})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpInFlight,
		httpRequests,
		httpDuration,
		exerciseCompletions,
		xpAwarded,
		achievementsUnlocked,
		levelUps,
	)
}

func RequestStarted()  { httpInFlight.Inc() }
func RequestFinished() { httpInFlight.Dec() }

func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func RecordExerciseToggle(completed bool) {
	exerciseCompletions.WithLabelValues(strconv.FormatBool(completed)).Inc()
}

// RecordGamification accounts for one applied completion.
func RecordGamification(xp int, levelUp bool, achievements []string) {
	if xp > 0 {
		xpAwarded.Add(float64(xp))
	}
	if levelUp {
		levelUps.Inc()
	}
	for _, id := range achievements {
		achievementsUnlocked.WithLabelValues(id).Inc()
	}
}
