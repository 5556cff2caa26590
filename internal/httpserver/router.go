package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"taskadee/internal/handler"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ConnChecker is satisfied by *mq.Consumer.
type ConnChecker interface {
	IsConnected() bool
}

type Handlers struct {
	Tasks    *handler.TaskHandler
	Habits   *handler.HabitHandler
	Progress *handler.ProgressHandler
}

// Deps are the readiness dependencies; nil members are skipped.
type Deps struct {
	DB       Pinger
	Consumer ConnChecker
}

func NewRouter(h Handlers, deps Deps, jwtSecret string, logger *zap.Logger) *gin.Engine {
	handler.RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery(), TraceMiddleware(), RequestLogger(logger), MetricsMiddleware())

	// Health endpoints (放在最前面)
	ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) }
	head := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.GET("/healthz", ok)
	r.HEAD("/healthz", head)
	r.GET("/health", ok)
	r.HEAD("/health", head)

	r.GET("/readyz", func(c *gin.Context) {
		if deps.DB != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
			defer cancel()
			if err := deps.DB.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_not_ready", "error": err.Error()})
				return
			}
		}
		if deps.Consumer != nil && !deps.Consumer.IsConnected() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "mq_not_ready"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(AuthMiddleware(jwtSecret))
	{
		api.GET("/progress", h.Progress.GetProgress)

		api.GET("/tasks", h.Tasks.ListTasks)
		api.POST("/tasks", h.Tasks.CreateTask)
		api.GET("/tasks/:id", h.Tasks.GetTask)
		api.PUT("/tasks/:id", h.Tasks.UpdateTask)
		api.DELETE("/tasks/:id", h.Tasks.DeleteTask)

		api.GET("/habits", h.Habits.ListHabits)
		api.POST("/habits", h.Habits.CreateHabit)
		api.GET("/habits/progress", h.Habits.History)
		api.PUT("/habits/:id", h.Habits.UpdateHabit)
		api.DELETE("/habits/:id", h.Habits.DeleteHabit)
		api.GET("/habits/:id/checkin", h.Habits.ListCheckins)
		api.POST("/habits/:id/checkin", h.Habits.CheckIn)
	}

	return r
}
