package wall

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/tweetwall/pkg/buildinfo"
	"github.com/matzehuels/tweetwall/pkg/content"
	"github.com/matzehuels/tweetwall/pkg/errors"
	"github.com/matzehuels/tweetwall/pkg/provider"
	"github.com/matzehuels/tweetwall/pkg/scheduler"
)

// maxBody caps request bodies of the control API.
const maxBody = 64 << 10

// Status is the body of GET /status.
type Status struct {
	RunID     string          `json:"run_id"`
	Version   buildinfo.Info  `json:"version"`
	Scheduler scheduler.Stats `json:"scheduler"`
	Steps     []string        `json:"steps"`
	Providers []provider.Kind `json:"providers"`
	Props     map[string]any  `json:"properties"`
}

// Handler returns the control API:
//
//	GET    /healthz
//	GET    /status
//	POST   /tweets              ingest a tweet into the live feed
//	POST   /skip                end the current step early
//	GET    /properties
//	PUT    /properties/{key}    body is the JSON value; null deletes
//	DELETE /properties/{key}
func (w *Wall) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(w.requestLogger)

	r.Get("/healthz", func(rw http.ResponseWriter, _ *http.Request) {
		writeJSON(rw, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/status", w.handleStatus)
	r.Post("/tweets", w.handleTweet)
	r.Post("/skip", w.handleSkip)
	r.Route("/properties", func(r chi.Router) {
		r.Get("/", w.handleProperties)
		r.Put("/{key}", w.handleSetProperty)
		r.Delete("/{key}", w.handleDeleteProperty)
	})
	return r
}

// Serve runs the control API on addr until ctx ends.
func (w *Wall) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           w.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	w.logger.Info("control API listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdown)
	}
}

func (w *Wall) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(rw, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		w.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}

func (w *Wall) handleStatus(rw http.ResponseWriter, _ *http.Request) {
	var names []string
	for _, s := range w.scheduler.Steps() {
		names = append(names, s.Name())
	}
	writeJSON(rw, http.StatusOK, Status{
		RunID:     w.runID,
		Version:   buildinfo.Current(),
		Scheduler: w.scheduler.Stats(),
		Steps:     names,
		Providers: w.providers.Kinds(),
		Props:     w.scheduler.Context().Properties.Snapshot(),
	})
}

func (w *Wall) handleTweet(rw http.ResponseWriter, r *http.Request) {
	if w.publisher == nil {
		writeError(rw, errors.New(errors.ErrCodeUnsupported, "feed does not accept tweets"))
		return
	}
	var t content.Tweet
	if err := json.NewDecoder(http.MaxBytesReader(rw, r.Body, maxBody)).Decode(&t); err != nil {
		writeError(rw, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode tweet"))
		return
	}
	t.Text = strings.TrimSpace(t.Text)
	if t.Text == "" {
		writeError(rw, errors.New(errors.ErrCodeInvalidInput, "tweet text is empty"))
		return
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = w.now()
	}
	if err := w.publisher.Publish(r.Context(), t); err != nil {
		writeError(rw, errors.Wrap(errors.ErrCodeNetwork, err, "publish tweet"))
		return
	}
	writeJSON(rw, http.StatusAccepted, t)
}

func (w *Wall) handleSkip(rw http.ResponseWriter, _ *http.Request) {
	current := w.scheduler.Stats().Current
	w.scheduler.RequestSkip()
	w.logger.Info("skip requested", "step", current)
	writeJSON(rw, http.StatusAccepted, map[string]string{"skipped": current})
}

func (w *Wall) handleProperties(rw http.ResponseWriter, _ *http.Request) {
	writeJSON(rw, http.StatusOK, w.scheduler.Context().Properties.Snapshot())
}

func (w *Wall) handleSetProperty(rw http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if err := errors.ValidatePropertyKey(key); err != nil {
		writeError(rw, err)
		return
	}
	var v any
	if err := json.NewDecoder(http.MaxBytesReader(rw, r.Body, maxBody)).Decode(&v); err != nil {
		writeError(rw, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode value"))
		return
	}
	w.scheduler.Context().Properties.Set(key, v)
	rw.WriteHeader(http.StatusNoContent)
}

func (w *Wall) handleDeleteProperty(rw http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if err := errors.ValidatePropertyKey(key); err != nil {
		writeError(rw, err)
		return
	}
	w.scheduler.Context().Properties.Delete(key)
	rw.WriteHeader(http.StatusNoContent)
}

func writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(v)
}

func writeError(rw http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput:
		status = http.StatusBadRequest
	case errors.ErrCodeUnsupported:
		status = http.StatusNotImplemented
	case errors.ErrCodeNetwork:
		status = http.StatusBadGateway
	}
	writeJSON(rw, status, map[string]string{
		"code":  string(errors.GetCode(err)),
		"error": errors.UserMessage(err),
	})
}
