package cmdsurface

import (
	"log"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	colorCyan      = "\033[36m"
	colorReset     = "\033[0m"
	colorYellow    = "\033[33m"
	colorBoldGreen = "\033[1;32m"
	colorBoldRed   = "\033[1;31m"
)

func statusCodeColor(status int) string {
	switch {
	case status >= 200 && status < 300:
		return colorBoldGreen + strconv.Itoa(status) + colorReset
	case status >= 300 && status < 400:
		return colorYellow + strconv.Itoa(status) + colorReset
	case status >= 400:
		return colorBoldRed + strconv.Itoa(status) + colorReset
	default:
		return strconv.Itoa(status)
	}
}

// loggingMiddleware logs method, path, status, and duration for every
// request, colorized the way the rest of this codebase's HTTP servers do.
func loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(c.Writer.Status()), c.Request.Method,
			colorCyan, c.Request.URL.Path, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	}
}
