// Package agent drives a running sandbox with random traffic.
package agent

import (
	"math/rand/v2"
	"net/http"
	"net/url"

	"github.com/Schera-ole/qasandbox/internal/stress"
)

// Job is one request sent to the sandbox.
type Job struct {
	// Method is the HTTP method of the request
	Method string

	// Path is the request path including the query string
	Path string

	// Form is the url-encoded body, nil for GET requests
	Form url.Values
}

// StatusJob asks the sandbox to record and answer with code.
func StatusJob(code string) Job {
	return Job{
		Method: http.MethodGet,
		Path:   "/status?" + url.Values{"code": {code}}.Encode(),
	}
}

// ActionJob asks the sandbox to track a business action.
func ActionJob(action string) Job {
	return Job{
		Method: http.MethodPost,
		Path:   "/action",
		Form:   url.Values{"action": {action}},
	}
}

// RandomJob returns a status job or an action job with equal probability.
func RandomJob(rnd *rand.Rand) Job {
	if rnd.IntN(2) == 0 {
		return StatusJob(stress.RandomCode(rnd))
	}
	return ActionJob(stress.RandomAction(rnd))
}
