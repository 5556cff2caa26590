package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP 请求延迟（秒）
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// 处理中的 HTTP 请求数
	ActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_requests",
			Help: "Current number of in-flight HTTP requests",
		},
	)

	// 慢查询计数
	SlowQueryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_slow_query_count",
			Help: "Total number of SQL queries slower than the configured threshold",
		},
		[]string{"operation"},
	)

	// 慢查询耗时（秒）
	SlowQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_slow_query_duration_seconds",
			Help:    "Duration of slow SQL queries in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 8), // 100ms to ~12s
		},
		[]string{"operation"},
	)

	// 进度计算耗时（秒），包含读取 task/habit 的时间
	ProgressComputeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "progress_compute_duration_seconds",
			Help:    "Time spent building a progress report, store reads included",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)

	// 打卡计数
	HabitCheckinCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habit_checkin_count",
			Help: "Total number of habit check-in attempts",
		},
		[]string{"result"}, // result: recorded, duplicate, failed
	)

	// 任务完成计数
	TaskCompletedCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "task_completed_count",
			Help: "Total number of tasks moved to the complete status",
		},
	)

	// 连续打卡里程碑计数
	StreakMilestoneCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habit_streak_milestone_count",
			Help: "Total number of habit streak milestones reached",
		},
		[]string{"streak"},
	)

	// 发布端熔断器状态：0 closed, 1 open, 2 half_open
	PublisherBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mq_publisher_breaker_state",
			Help: "State of the event publisher circuit breaker (0 closed, 1 open, 2 half open)",
		},
	)

	// MQ 消费延迟（毫秒）
	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_consume_latency_ms",
			Help:    "MQ message consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"routing_key", "queue"},
	)
)

// RecordHTTPRequestDuration 记录 HTTP 请求延迟
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// IncrementSlowQuery 记录一次慢查询
func IncrementSlowQuery(operation string, duration time.Duration) {
	SlowQueryCount.WithLabelValues(operation).Inc()
	SlowQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordProgressCompute 记录进度计算耗时
func RecordProgressCompute(duration time.Duration) {
	ProgressComputeDuration.Observe(duration.Seconds())
}

// IncrementHabitCheckin 增加打卡计数
func IncrementHabitCheckin(result string) {
	HabitCheckinCount.WithLabelValues(result).Inc()
}

// IncrementTaskCompleted 增加任务完成计数
func IncrementTaskCompleted() {
	TaskCompletedCount.Inc()
}

// IncrementStreakMilestone 增加里程碑计数
func IncrementStreakMilestone(streak string) {
	StreakMilestoneCount.WithLabelValues(streak).Inc()
}

// RecordMQConsumeLatency 记录 MQ 消费延迟
func RecordMQConsumeLatency(routingKey, queue string, duration time.Duration) {
	MQConsumeLatency.WithLabelValues(routingKey, queue).Observe(float64(duration.Milliseconds()))
}

// SetPublisherBreakerState 记录发布端熔断器状态
func SetPublisherBreakerState(state int) {
	PublisherBreakerState.Set(float64(state))
}
