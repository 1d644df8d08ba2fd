package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	internalerrors "github.com/Schera-ole/qasandbox/internal/errors"
	middlewareinternal "github.com/Schera-ole/qasandbox/internal/middleware"
	models "github.com/Schera-ole/qasandbox/internal/model"
	"github.com/Schera-ole/qasandbox/internal/service"
)

const invalidCodeBody = "Invalid code"

// StressToggler switches the background load simulation on and off.
type StressToggler interface {
	Toggle() bool
}

func Router(
	logger *zap.SugaredLogger,
	metricService *service.MetricsService,
	stress StressToggler,
) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareinternal.LoggingMiddleware(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.StripSlashes)
	router.Use(middleware.Timeout(15 * time.Second))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}))

	router.With(middlewareinternal.GzipMiddleware).Get("/", IndexHandler)
	router.Post("/log", func(w http.ResponseWriter, r *http.Request) {
		LogHandler(w, r, metricService)
	})
	router.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		StatusHandler(w, r, metricService)
	})
	router.Post("/action", func(w http.ResponseWriter, r *http.Request) {
		ActionHandler(w, r, metricService)
	})
	router.Post("/stress", func(w http.ResponseWriter, r *http.Request) {
		StressHandler(w, r, stress, logger)
	})
	router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		MetricsHandler(w, r, metricService, logger)
	})
	return router
}

// IndexHandler serves the control panel.
func IndexHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(indexPage)
}

// LogHandler writes a manual log entry from the message and level form fields.
func LogHandler(w http.ResponseWriter, r *http.Request, metricService *service.MetricsService) {
	if err := parseForm(r); err != nil {
		writeText(w, http.StatusBadRequest, "Invalid form: "+err.Error())
		return
	}
	message := valueOr(r.PostForm, "message", "No message content")
	level := valueOr(r.PostForm, "level", string(models.LevelInfo))

	resolved := metricService.SubmitLog(message, level)
	writeText(w, http.StatusOK, "Success: Sent as "+resolved.Upper())
}

// StatusHandler counts the code query parameter and answers with that code.
func StatusHandler(w http.ResponseWriter, r *http.Request, metricService *service.MetricsService) {
	code := valueOr(r.URL.Query(), "code", "200")

	status, err := metricService.RecordStatus(code)
	if err != nil {
		if errors.Is(err, internalerrors.ErrInvalidCode) {
			writeText(w, http.StatusBadRequest, invalidCodeBody)
			return
		}
		writeText(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeText(w, status, fmt.Sprintf("HTTP %s recorded", code))
}

// ActionHandler counts the action form field. Any value is accepted.
func ActionHandler(w http.ResponseWriter, r *http.Request, metricService *service.MetricsService) {
	if err := parseForm(r); err != nil {
		writeText(w, http.StatusBadRequest, "Invalid form: "+err.Error())
		return
	}
	action := valueOr(r.PostForm, "action", "unknown")

	metricService.RecordAction(action)
	writeText(w, http.StatusOK, fmt.Sprintf("Business Action '%s' tracked", action))
}

// StressHandler flips the stress test and reports the new state.
func StressHandler(w http.ResponseWriter, r *http.Request, stress StressToggler, logger *zap.SugaredLogger) {
	active := stress.Toggle()
	logger.Debugw("stress test toggled", "active", active)
	writeJSON(w, http.StatusOK, models.StressStatus{Active: active})
}

// MetricsHandler writes the text exposition of every metric.
func MetricsHandler(w http.ResponseWriter, r *http.Request, metricService *service.MetricsService, logger *zap.SugaredLogger) {
	var buf bytes.Buffer
	if err := metricService.Export(&buf); err != nil {
		logger.Errorw("failed to export metrics", "error", err)
		http.Error(w, "Failed to export metrics", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", metricService.ExportContentType())
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
