package server

import (
	"strconv"
	"time"

	"github.com/bcmimarlik/site/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RequestTimeInterceptor logs and records the latency of every request.
func RequestTimeInterceptor() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		reqTime := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()

		metrics.RequestDuration.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Observe(reqTime.Seconds())
		logrus.Infof("request time: %s %s %d: %v", c.Request.Method, c.Request.URL.Path, status, reqTime)
	}
}
