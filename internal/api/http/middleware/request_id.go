package middleware

import (
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/penguin-works/kouji-backend/internal/logging"
)

const RequestIDHeader = "X-Request-Id"

// RequestIDMiddleware gives every request an id and logs one line per
// request once it has been served.
//   - an incoming X-Request-Id header is reused, otherwise a UUID is generated
//   - the id is stored on the gin context as "request_id" and on the request
//     context for logging.New
//   - the id is echoed back in the X-Request-Id response header
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if rid == "" {
			rid = uuid.NewString()
		}

		c.Set("request_id", rid)
		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), rid))
		c.Writer.Header().Set(RequestIDHeader, rid)

		start := time.Now()
		c.Next()

		log.Printf(
			"[req] id=%s method=%s path=%s status=%d latency=%s",
			rid,
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			time.Since(start),
		)
	}
}
