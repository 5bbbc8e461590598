// Package server exposes the loan portfolio and its reports over a JSON HTTP API.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/iwvelando/loan-tracker/internal/config"
	"github.com/iwvelando/loan-tracker/internal/storage"
	"github.com/iwvelando/loan-tracker/pkg/constants"
	"github.com/iwvelando/loan-tracker/pkg/datetime"
	"github.com/iwvelando/loan-tracker/pkg/loans"
	"github.com/iwvelando/loan-tracker/pkg/portfolio"
	"github.com/iwvelando/loan-tracker/pkg/validation"
	"go.uber.org/zap"
)

// Options tune the API handler.
type Options struct {
	MaxUploadSize     int64
	Version           string
	AdditionalPayment float64 // used when a request has no extra parameter
	LookaheadDays     int
	Clock             datetime.Clock
}

type handler struct {
	logger   *zap.Logger
	repo     *storage.PortfolioRepository
	analyzer *portfolio.Analyzer
	clock    datetime.Clock
	opts     Options

	// serializes read-modify-write edits of the stored portfolio
	mu sync.Mutex
}

// NewHandler constructs the HTTP handler that serves the portfolio API.
func NewHandler(logger *zap.Logger, repo *storage.PortfolioRepository, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = constants.DefaultMaxUploadSizeBytes
	}
	opts.Version = strings.TrimSpace(opts.Version)
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.LookaheadDays <= 0 {
		opts.LookaheadDays = constants.DefaultReminderLookaheadDays
	}
	clock := datetime.ClockOrSystem(opts.Clock)

	h := &handler{
		logger:   logger,
		repo:     repo,
		analyzer: portfolio.NewAnalyzer(logger, clock),
		clock:    clock,
		opts:     opts,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.loggingMiddleware)
	r.Use(middleware.RequestSize(opts.MaxUploadSize))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", h.handleVersion)

		r.Route("/portfolio", func(r chi.Router) {
			r.Get("/", h.handleGetPortfolio)
			r.Put("/", h.handleReplacePortfolio)
			r.Delete("/", h.handleClearPortfolio)
			r.Get("/export", h.handleExport)
			r.Post("/import", h.handleImport)
			r.Post("/loans", h.handleAddLoan)
			r.Delete("/loans/{id}", h.handleRemoveLoan)
			r.Post("/loans/{id}/payments", h.handleAddPayment)
		})

		r.Get("/summary", h.handleSummary)
		r.Get("/loans/{id}/schedule", h.handleSchedule)
		r.Get("/strategies", h.handleStrategies)
		r.Get("/impact", h.handleImpact)
		r.Get("/breakdown", h.handleBreakdown)
		r.Get("/reminders", h.handleReminders)
	})

	return r
}

// Server wraps the API handler in an http.Server.
type Server struct {
	server *http.Server
	logger *zap.Logger
}

// New creates an HTTP server listening on cfg.Address.
func New(cfg *Config, handler http.Handler, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		server: &http.Server{
			Addr:              cfg.Address,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		logger: logger,
	}
}

// Start serves until Shutdown. It returns nil after a graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info(fmt.Sprintf("listening on %s", s.server.Addr), zap.String("op", "server.Start"))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server", zap.String("op", "server.Shutdown"))
	return s.server.Shutdown(ctx)
}

func (h *handler) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		h.logger.Debug("HTTP request",
			zap.String("op", "server.request"),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.opts.Version,
	})
}

func (h *handler) handleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	current, ok := h.load(w, r, "server.handleGetPortfolio")
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, current)
}

func (h *handler) handleReplacePortfolio(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleReplacePortfolio"

	var replacement []loans.Loan
	if !h.decodeBody(w, r, &replacement, op) {
		return
	}
	for _, loan := range replacement {
		if err := validation.ValidateLoan(loan); err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
			return
		}
	}
	if replacement == nil {
		replacement = []loans.Loan{}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.repo.Save(r.Context(), replacement); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, replacement)
}

func (h *handler) handleClearPortfolio(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.repo.Clear(r.Context()); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), "server.handleClearPortfolio")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handleExport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleExport"

	format, ok := h.exchangeFormat(w, r, op)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.repo.Export(r.Context(), &buf, format); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}

	contentType := "application/json"
	if format == constants.ExportFormatYAML {
		contentType = "application/yaml"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "loans."+format))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("failed to write export", zap.String("op", op), zap.Error(err))
	}
}

func (h *handler) handleImport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleImport"

	format, ok := h.exchangeFormat(w, r, op)
	if !ok {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	imported, err := h.repo.Import(r.Context(), r.Body, format)
	if err != nil {
		h.respondErrorWithOp(w, bodyErrorStatus(err), err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, imported)
}

func (h *handler) handleAddLoan(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleAddLoan"

	var entry config.Loan
	if !h.decodeBody(w, r, &entry, op) {
		return
	}
	loan, err := entry.ToLoan(h.clock)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	current, ok := h.load(w, r, op)
	if !ok {
		return
	}
	updated, added, err := portfolio.AddLoan(current, loan, h.clock.Now())
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, portfolio.ErrDuplicateLoan) {
			status = http.StatusConflict
		}
		h.respondErrorWithOp(w, status, err.Error(), op)
		return
	}
	if !h.save(w, r, updated, op) {
		return
	}

	for _, warning := range validation.LoanWarnings(added) {
		h.logger.Warn(warning, zap.String("op", op), zap.String("loan_id", added.ID))
	}
	h.writeJSON(w, http.StatusCreated, added)
}

func (h *handler) handleRemoveLoan(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleRemoveLoan"

	h.mu.Lock()
	defer h.mu.Unlock()
	current, ok := h.load(w, r, op)
	if !ok {
		return
	}
	updated, err := portfolio.RemoveLoan(current, chi.URLParam(r, "id"))
	if err != nil {
		h.respondErrorWithOp(w, editErrorStatus(err), err.Error(), op)
		return
	}
	if !h.save(w, r, updated, op) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type paymentRequest struct {
	Amount float64 `json:"amount"`
	Date   string  `json:"date,omitempty"`
}

func (h *handler) handleAddPayment(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleAddPayment"

	var req paymentRequest
	if !h.decodeBody(w, r, &req, op) {
		return
	}
	at := h.clock.Now()
	if req.Date != "" {
		parsed, err := datetime.ParseDate(req.Date)
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid payment date: %v", err), op)
			return
		}
		at = parsed
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	current, ok := h.load(w, r, op)
	if !ok {
		return
	}
	updated, payment, err := portfolio.AddPayment(current, chi.URLParam(r, "id"), req.Amount, at)
	if err != nil {
		h.respondErrorWithOp(w, editErrorStatus(err), err.Error(), op)
		return
	}
	if !h.save(w, r, updated, op) {
		return
	}
	h.writeJSON(w, http.StatusCreated, payment)
}

func (h *handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSummary"

	extra, ok := h.extraPayment(w, r, op)
	if !ok {
		return
	}
	current, ok := h.load(w, r, op)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, h.analyzer.Summaries(current, extra))
}

type scheduleResponse struct {
	LoanID   string `json:"loanId"`
	LoanName string `json:"loanName"`
	loans.Schedule
}

func (h *handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSchedule"

	extra, ok := h.extraPayment(w, r, op)
	if !ok {
		return
	}
	current, ok := h.load(w, r, op)
	if !ok {
		return
	}
	loan, err := portfolio.Find(current, chi.URLParam(r, "id"))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusNotFound, err.Error(), op)
		return
	}

	schedule := h.analyzer.Generator().GenerateSchedule(loan, extra)
	h.writeJSON(w, http.StatusOK, scheduleResponse{
		LoanID:   loan.ID,
		LoanName: loan.Name,
		Schedule: schedule,
	})
}

func (h *handler) handleStrategies(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleStrategies"

	extra, ok := h.extraPayment(w, r, op)
	if !ok {
		return
	}
	current, ok := h.load(w, r, op)
	if !ok {
		return
	}
	comparison, err := h.analyzer.Compare(current, extra)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, comparison)
}

func (h *handler) handleImpact(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleImpact"

	extra, ok := h.extraPayment(w, r, op)
	if !ok {
		return
	}
	current, ok := h.load(w, r, op)
	if !ok {
		return
	}
	impact, ok := h.analyzer.ExtraPaymentImpact(current, extra)
	if !ok {
		h.respondErrorWithOp(w, http.StatusNotFound, "portfolio has no loans", op)
		return
	}
	h.writeJSON(w, http.StatusOK, impact)
}

func (h *handler) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleBreakdown"

	extra, ok := h.extraPayment(w, r, op)
	if !ok {
		return
	}
	current, ok := h.load(w, r, op)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, h.analyzer.Breakdown(current, extra))
}

type remindersResponse struct {
	Reminders     []portfolio.PaymentReminder `json:"reminders"`
	Due           []portfolio.PaymentReminder `json:"due"`
	LookaheadDays int                         `json:"lookaheadDays"`
}

func (h *handler) handleReminders(w http.ResponseWriter, r *http.Request) {
	current, ok := h.load(w, r, "server.handleReminders")
	if !ok {
		return
	}

	now := h.clock.Now()
	all := portfolio.Reminders(current, now)
	due := portfolio.DueWithin(all, now, h.opts.LookaheadDays)
	if due == nil {
		due = []portfolio.PaymentReminder{}
	}
	h.writeJSON(w, http.StatusOK, remindersResponse{
		Reminders:     all,
		Due:           due,
		LookaheadDays: h.opts.LookaheadDays,
	})
}

func (h *handler) load(w http.ResponseWriter, r *http.Request, op string) ([]loans.Loan, bool) {
	current, err := h.repo.Load(r.Context())
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return nil, false
	}
	return current, true
}

func (h *handler) save(w http.ResponseWriter, r *http.Request, updated []loans.Loan, op string) bool {
	if err := h.repo.Save(r.Context(), updated); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return false
	}
	return true
}

func (h *handler) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.respondErrorWithOp(w, bodyErrorStatus(err), fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	return true
}

// extraPayment reads the extra query parameter, falling back to the
// configured additional payment.
func (h *handler) extraPayment(w http.ResponseWriter, r *http.Request, op string) (float64, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("extra"))
	if raw == "" {
		return h.opts.AdditionalPayment, true
	}
	extra, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(extra) || math.IsInf(extra, 0) {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid extra payment %q", raw), op)
		return 0, false
	}
	return extra, true
}

func (h *handler) exchangeFormat(w http.ResponseWriter, r *http.Request, op string) (string, bool) {
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = constants.ExportFormatJSON
	}
	if err := validation.ValidateExportFormat(format); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return "", false
	}
	return format, true
}

func bodyErrorStatus(err error) int {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func editErrorStatus(err error) int {
	if errors.Is(err, portfolio.ErrLoanNotFound) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	if h.logger != nil {
		h.logger.Error(msg,
			zap.String("op", op),
			zap.Int("status", status),
		)
	}
	h.writeJSON(w, status, map[string]string{"error": msg})
}

// writeJSON encodes payload before writing the header. A payload that cannot
// be encoded, such as one holding NaN, is answered with a 500 error body.
func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		msg := fmt.Sprintf("failed to encode response: %v", err)
		if h.logger != nil {
			h.logger.Error(msg,
				zap.String("op", "server.writeJSON"),
				zap.Int("status", http.StatusInternalServerError),
			)
		}
		buf.Reset()
		_ = json.NewEncoder(&buf).Encode(map[string]string{"error": msg})
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil && h.logger != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
