// Package logging configures the server log output and writes per-request
// access log records.
package logging

import (
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/pkg/errors"
)

// rotateLogWriter sends log output through a rotating log file.
type rotateLogWriter struct {
	rotate *rotatelogs.RotateLogs
}

func (w rotateLogWriter) Write(data []byte) (int, error) {
	return w.rotate.Write(data)
}

// Setup configures the standard logger. With a non-empty logFile the output
// goes to a daily-rotated file set, otherwise it stays on stdout.
func Setup(logFile string, verbose int) error {
	log.SetFlags(log.LstdFlags)
	if verbose > 0 {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}
	if logFile == "" {
		return nil
	}
	rl, err := rotatelogs.New(
		logFile+"-%Y%m%d",
		rotatelogs.WithLinkName(logFile),
		rotatelogs.WithRotationTime(24*time.Hour),
		rotatelogs.WithMaxAge(7*24*time.Hour),
	)
	if err != nil {
		return errors.Wrapf(err, "unable to set up rotating log %s", logFile)
	}
	log.SetOutput(rotateLogWriter{rotate: rl})
	return nil
}

// LogRequest writes one access log line per served request.
func LogRequest(r *http.Request, status int, start time.Time, requestID string) {
	uri, err := url.QueryUnescape(r.RequestURI)
	if err != nil {
		uri = r.RequestURI
	}
	dataMsg := ""
	if r.ContentLength > 0 {
		dataMsg = " [in: " + byteCount(r.ContentLength) + "]"
	}
	log.Printf("%s %d %s %s %s%s [req: %v] [id: %s]",
		r.Proto, status, r.RemoteAddr, r.Method, uri, dataMsg, time.Since(start), requestID)
}

func byteCount(n int64) string {
	const unit = 1024
	if n < unit {
		return strconv.FormatInt(n, 10) + "B"
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatInt(n/div, 10) + string("KMGTPE"[exp]) + "B"
}
