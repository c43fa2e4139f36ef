package middlewares

import (
	"net/http"
	"time"
)

// RequestLogger writes a one-line access log through logrus in the app timezone.
func (m *Middlewares) RequestLogger(next http.Handler) http.Handler {
	tz, err := time.LoadLocation(m.InternalConfig.App.Timezone)
	if err != nil {
		m.Logrus.Printf("Invalid time zone %q: %v", m.InternalConfig.App.Timezone, err)
		tz = time.UTC
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rec, r)

		m.Logrus.Printf(`{%s} | {%s} | {%s} ==> {%s} | {%s} | {%d}`,
			time.Now().In(tz).Format(time.RFC850), r.RemoteAddr, r.Method, r.RequestURI, time.Since(start), rec.statusCode)
	})
}
