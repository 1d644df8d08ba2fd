// Package service provides the business logic layer for the sandbox.
package service

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Schera-ole/qasandbox/internal/config"
	internalerrors "github.com/Schera-ole/qasandbox/internal/errors"
	models "github.com/Schera-ole/qasandbox/internal/model"
	"github.com/Schera-ole/qasandbox/internal/repository"
)

// LogEmitter writes leveled sandbox log lines.
type LogEmitter interface {
	Log(level models.Level, message string)
}

// MetricsService turns one-off facade requests into registry increments and
// log lines.
type MetricsService struct {
	// repository is the metric registry
	repository repository.Repository

	// emitter receives manual log entries
	emitter LogEmitter
}

// NewMetricsService creates a new MetricsService with the specified repository and emitter.
func NewMetricsService(repo repository.Repository, emitter LogEmitter) *MetricsService {

	return &MetricsService{repository: repo, emitter: emitter}
}

// SubmitLog writes a manual log entry and returns the level it was written at.
func (ms *MetricsService) SubmitLog(message, level string) models.Level {

	resolved := models.ParseLevel(level)
	ms.emitter.Log(resolved, "Manual Entry: "+message)
	return resolved
}

// RecordStatus counts code and returns the status the caller should be
// answered with.
//
// The code is counted even when it is not a valid status. 100, 101 and 304
// are answered with 200 since a text body cannot be sent with them. Surrounding
// whitespace is ignored when converting, but the raw code is what gets counted.
func (ms *MetricsService) RecordStatus(code string) (int, error) {

	ms.repository.Increment(config.HTTPCodesMetric, code)

	switch code {
	case "100", "101", "304":
		return 200, nil
	}

	status, err := strconv.Atoi(strings.TrimSpace(code))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", internalerrors.ErrInvalidCode, code)
	}
	if status < 100 || status > 999 {
		return 0, fmt.Errorf("%w: %d out of range", internalerrors.ErrInvalidCode, status)
	}
	return status, nil
}

// RecordAction counts a business action. Unknown actions become new series.
func (ms *MetricsService) RecordAction(action string) {

	ms.repository.Increment(config.UserActionsMetric, action)
}

// Export writes the text exposition of every metric, delegating to the repository implementation.
func (ms *MetricsService) Export(w io.Writer) error {

	return ms.repository.Export(w)
}

// ExportContentType returns the content type of Export, delegating to the repository implementation.
func (ms *MetricsService) ExportContentType() string {

	return ms.repository.ExportContentType()
}
