package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/matzehuels/poagraph/pkg/buildinfo"
	apperr "github.com/matzehuels/poagraph/pkg/errors"
	pkgio "github.com/matzehuels/poagraph/pkg/io"
	"github.com/matzehuels/poagraph/pkg/observability"
	"github.com/matzehuels/poagraph/pkg/pipeline"
	"github.com/matzehuels/poagraph/pkg/render/nodelink"
)

var (
	errNotFound         = apperr.New(apperr.ErrCodeUnsupported, "no such endpoint")
	errMethodNotAllowed = apperr.New(apperr.ErrCodeUnsupported, "method not allowed")
)

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

type consensusResponse struct {
	Consensus string `json:"consensus"`
	Cached    bool   `json:"cached"`
}

type batchRequest struct {
	Jobs []pipeline.Options `json:"jobs"`
}

type batchResponse struct {
	Results []*pipeline.Result `json:"results"`
}

type errorBody struct {
	Code      apperr.Code `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.opts.Counters.Snapshot())
}

func (s *Server) handleMSA(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pkgio.FormatJSON
	}
	if err := pkgio.ValidateFormat(format); err != nil {
		s.writeError(w, r, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "invalid format %q", format))
		return
	}
	opts, err := s.decodeOptions(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if format == pkgio.FormatJSON {
		writeJSON(w, http.StatusOK, res)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := pkgio.WriteMSA(w, res.MSA, opts.IDs, format); err != nil {
		s.logger.Warn("write response", "error", err)
	}
}

func (s *Server) handleConsensus(w http.ResponseWriter, r *http.Request) {
	opts, err := s.decodeOptions(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cons, hit, err := s.runner.Consensus(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if r.URL.Query().Get("format") == pkgio.FormatFASTA {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_ = pkgio.WriteConsensus(w, pkgio.ConsensusID, cons)
		return
	}
	writeJSON(w, http.StatusOK, consensusResponse{Consensus: cons, Cached: hit})
}

func (s *Server) handleDOT(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := q.Get("format")
	if format != "" && format != "dot" && format != "svg" {
		s.writeError(w, r, apperr.New(apperr.ErrCodeInvalidInput, "invalid format %q (must be dot or svg)", format))
		return
	}
	opts, err := s.decodeOptions(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	e, res, err := s.runner.BuildEngine(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	dot, err := nodelink.ToDOT(e.Graph(), nodelink.Options{
		Detailed:  boolParam(q.Get("detailed")),
		Aligned:   boolParam(q.Get("aligned")),
		Sentinels: boolParam(q.Get("sentinels")),
		Consensus: res.Consensus.Path,
	})
	if err != nil {
		s.writeError(w, r, pipeline.Classify(err))
		return
	}
	observability.Pipeline().OnExtract(r.Context(), "dot", e.Graph().NodeCount())

	if format == "svg" {
		svg, err := nodelink.RenderSVG(dot)
		if err != nil {
			s.writeError(w, r, apperr.Wrap(apperr.ErrCodeInternal, err, "render svg"))
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write(svg)
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	_, _ = w.Write([]byte(dot))
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(req.Jobs) == 0 {
		s.writeError(w, r, apperr.New(apperr.ErrCodeEmptyInput, "no jobs given"))
		return
	}
	if limit := s.opts.Config.Limits.MaxSequences; limit > 0 && len(req.Jobs) > limit {
		s.writeError(w, r, apperr.Wrap(apperr.ErrCodeInputTooLarge,
			&apperr.LimitError{What: "job count", Limit: limit, Got: len(req.Jobs)}, "too many jobs"))
		return
	}
	for i := range req.Jobs {
		s.prepare(&req.Jobs[i])
	}
	results, err := s.runner.RunBatch(r.Context(), req.Jobs, s.opts.BatchConcurrency)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, batchResponse{Results: results})
}

func (s *Server) decodeOptions(w http.ResponseWriter, r *http.Request) (pipeline.Options, error) {
	var opts pipeline.Options
	if err := s.decode(w, r, &opts); err != nil {
		return opts, err
	}
	s.prepare(&opts)
	return opts, nil
}

func (s *Server) prepare(opts *pipeline.Options) {
	opts.Config = s.opts.Config
	opts.Logger = s.logger
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.Wrap(apperr.ErrCodeInputTooLarge,
				&apperr.LimitError{What: "request body bytes", Limit: int(tooLarge.Limit), Got: int(tooLarge.Limit) + 1},
				"request body too large")
		}
		return apperr.Wrap(apperr.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errNotFound):
		return http.StatusNotFound
	case errors.Is(err, errMethodNotAllowed):
		return http.StatusMethodNotAllowed
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return 499 // client closed request
	}
	switch code := apperr.GetCode(err); code {
	case apperr.ErrCodeInputTooLarge:
		return http.StatusRequestEntityTooLarge
	case apperr.ErrCodeCyclicGraph:
		return http.StatusUnprocessableEntity
	case apperr.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		if code.Caller() {
			return http.StatusBadRequest
		}
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := apperr.GetCode(err)
	if code == "" {
		code = apperr.ErrCodeInternal
	}
	msg := apperr.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "id", RequestID(r.Context()), "error", err)
		msg = "internal error"
	}
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
	writeJSON(w, status, map[string]errorBody{
		"error": {Code: code, Message: msg, RequestID: RequestID(r.Context())},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func boolParam(s string) bool {
	b, _ := strconv.ParseBool(s)
	return b
}
