package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/selda-cli/internal/model"
	"github.com/sells-group/selda-cli/internal/render"
	"github.com/sells-group/selda-cli/internal/resilience"
	"github.com/sells-group/selda-cli/internal/store"
)

var servePort int

// maxAnalyzeBodyBytes bounds the POST /analyze request body.
const maxAnalyzeBodyBytes = 64 << 10

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP analysis API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, "serve")
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(env.Pipeline, env.Store, cfg.Server.AllowedOrigins),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// analyzeRequest is the POST /analyze body.
type analyzeRequest struct {
	URL    string `json:"url"`
	Format string `json:"format,omitempty"`
}

// newRouter builds the API. st may be nil, in which case the run history
// endpoints answer 404.
func newRouter(a analyzer, st store.Store, allowedOrigins []string) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
	r.Use(requestIDHeader)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/analyze", handleAnalyze(a))

	r.Route("/runs", func(r chi.Router) {
		r.Get("/", handleListRuns(st))
		r.Get("/{id}", handleGetRun(st))
	})

	return r
}

// requestIDHeader echoes the chi request id so clients can quote it.
func requestIDHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			w.Header().Set("X-Request-Id", id)
		}
		next.ServeHTTP(w, r)
	})
}

func handleAnalyze(a analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req analyzeRequest
		err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAnalyzeBodyBytes)).Decode(&req)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "Request body too large"})
			return
		}
		if err != nil || req.URL == "" {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "URL is required"})
			return
		}

		format := render.FormatJSON
		if name := firstNonEmpty(req.Format, r.URL.Query().Get("format")); name != "" {
			f, err := render.ParseFormat(name)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, errorBody{Error: "Unsupported format", Details: err.Error()})
				return
			}
			format = f
		}

		log := zap.L().With(
			zap.String("url", req.URL),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		report, err := a.Run(r.Context(), req.URL)
		if err != nil {
			status := statusForError(err)
			log.Error("analysis failed",
				zap.Int("status", status),
				zap.String("kind", string(resilience.KindOf(err))),
				zap.Error(err),
			)
			writeJSON(w, status, errorBody{Error: errorMessage(status), Details: err.Error()})
			return
		}

		payload, err := render.Render(report, format)
		if err != nil {
			log.Error("render failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Failed to render the report", Details: err.Error()})
			return
		}
		w.Header().Set("Content-Type", format.ContentType())
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(payload)
	}
}

func handleListRuns(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if st == nil {
			writeJSON(w, http.StatusNotFound, errorBody{Error: "Run history is not configured"})
			return
		}

		q := r.URL.Query()
		filter := store.RunFilter{
			Status: model.RunStatus(q.Get("status")),
			URL:    q.Get("url"),
		}
		var err error
		if filter.Limit, err = intParam(q.Get("limit")); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid limit", Details: err.Error()})
			return
		}
		if filter.Offset, err = intParam(q.Get("offset")); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid offset", Details: err.Error()})
			return
		}

		runs, err := st.ListRuns(r.Context(), filter)
		if err != nil {
			zap.L().Error("list runs failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Failed to list runs", Details: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, runs)
	}
}

func handleGetRun(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if st == nil {
			writeJSON(w, http.StatusNotFound, errorBody{Error: "Run history is not configured"})
			return
		}

		run, err := st.GetRun(r.Context(), chi.URLParam(r, "id"))
		if eris.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody{Error: "Run not found"})
			return
		}
		if err != nil {
			zap.L().Error("get run failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Failed to load run", Details: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, run)
	}
}

// statusForError maps a pipeline failure to an HTTP status. Untyped
// failures come from the model call and are reported as upstream errors.
func statusForError(err error) int {
	switch resilience.KindOf(err) {
	case resilience.KindInvalidInput:
		return http.StatusBadRequest
	case resilience.KindConfiguration:
		return http.StatusInternalServerError
	case resilience.KindFetchFailed, resilience.KindUnparsableModelOutput:
		return http.StatusBadGateway
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

func errorMessage(status int) string {
	if status == http.StatusBadRequest {
		return "Invalid URL"
	}
	return "Failed to analyze the provided URL"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, eris.Errorf("%q is not a non-negative integer", s)
	}
	return n, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
