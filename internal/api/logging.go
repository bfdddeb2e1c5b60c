package api

import (
	"log"
	"net/http"
	"os"

	"github.com/example/ec-storefront/internal/api/middleware"
	chimw "github.com/go-chi/chi/v5/middleware"
)

const redacted = "REDACTED"

// redactingFormatter hides the token query parameter from access log lines
type redactingFormatter struct {
	next chimw.LogFormatter
}

func (f redactingFormatter) NewLogEntry(r *http.Request) chimw.LogEntry {
	return f.next.NewLogEntry(withRedactedToken(r))
}

// requestLogger is chi's access logger with query tokens masked. A nil
// logger writes to stdout.
func requestLogger(logger chimw.LoggerInterface) func(http.Handler) http.Handler {
	if logger == nil {
		logger = log.New(os.Stdout, "", log.LstdFlags)
	}
	return chimw.RequestLogger(redactingFormatter{
		next: &chimw.DefaultLogFormatter{Logger: logger, NoColor: true},
	})
}

// withRedactedToken returns a shallow copy of r for logging only
func withRedactedToken(r *http.Request) *http.Request {
	q := r.URL.Query()
	if !q.Has(middleware.TokenQueryParam) {
		return r
	}
	q.Set(middleware.TokenQueryParam, redacted)

	u := *r.URL
	u.RawQuery = q.Encode()

	out := r.WithContext(r.Context())
	out.URL = &u
	out.RequestURI = u.RequestURI()
	return out
}
