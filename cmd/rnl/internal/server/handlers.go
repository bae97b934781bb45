package server

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/rafaelsantos01/react-nextjs-logger/cmd/rnl/internal/auth"
	"github.com/rafaelsantos01/react-nextjs-logger/cmd/rnl/internal/constants"
	apperrors "github.com/rafaelsantos01/react-nextjs-logger/cmd/rnl/internal/errors"
	"github.com/rafaelsantos01/react-nextjs-logger/cmd/rnl/internal/logging"
	"github.com/rafaelsantos01/react-nextjs-logger/cmd/rnl/internal/store"
	"github.com/rafaelsantos01/react-nextjs-logger/cmd/rnl/internal/ulid"
)

// IngestRequest is the body of POST /logs:ingest.
type IngestRequest struct {
	Entries []logging.Entry `json:"entries"`
}

// IngestResponse lists the IDs assigned to the accepted entries.
type IngestResponse struct {
	Accepted int      `json:"accepted"`
	IDs      []string `json:"ids"`
}

// ListResponse is the body of GET /logs:list. NextBefore is set when more
// entries may follow.
type ListResponse struct {
	Entries    []store.Record `json:"entries"`
	Total      int            `json:"total"`
	NextBefore string         `json:"next_before,omitempty"`
}

func (s *Server) ingestHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, int64(s.config.Ingest.MaxPayloadBytes)))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			apperrors.WriteError(w, r, apperrors.NewPayloadTooLargeError(apperrors.CodePayloadTooLarge,
				"Request body too large").WithDetails(map[string]any{"limit_bytes": tooLarge.Limit}))
			return
		}
		apperrors.WriteError(w, r, apperrors.NewBadRequestError(apperrors.CodeBadRequest, "Failed to read request body").Wrap(err))
		return
	}

	var req IngestRequest
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		apperrors.WriteError(w, r, apperrors.NewBadRequestError(apperrors.CodeInvalidJSON, "Invalid JSON body").Wrap(err))
		return
	}

	if len(req.Entries) == 0 {
		apperrors.WriteError(w, r, apperrors.NewBadRequestError(apperrors.CodeBadRequest, "No entries in request"))
		return
	}
	if len(req.Entries) > s.config.Ingest.MaxBatch {
		apperrors.WriteError(w, r, apperrors.NewPayloadTooLargeError(apperrors.CodeBatchTooLarge,
			"Too many entries in request").WithDetails(map[string]any{
			"max_batch": s.config.Ingest.MaxBatch,
			"received":  len(req.Entries),
		}))
		return
	}

	clientID := ""
	if claims, ok := auth.GetClaims(r.Context()); ok {
		clientID = claims.ClientID
	}

	records := make([]store.Record, len(req.Entries))
	for i := range req.Entries {
		e := &req.Entries[i]
		if e.Level == "" {
			e.Level = logging.LevelInfo
		}
		level, err := logging.ParseLevel(string(e.Level))
		if err != nil {
			apperrors.WriteError(w, r, apperrors.NewBadRequestError(apperrors.CodeInvalidLevel, err.Error()).
				WithDetails(map[string]any{"index": i}))
			return
		}
		e.Level = level
		e.Source = constants.SourceClient

		data, err := s.maskData(e)
		if err != nil {
			apperrors.WriteError(w, r, apperrors.NewInternalError("Failed to encode entry data").Wrap(err))
			return
		}

		records[i] = store.Record{
			Timestamp: e.Timestamp,
			Level:     e.Level,
			Message:   e.Message,
			Source:    e.Source,
			Hostname:  e.Hostname,
			Service:   e.Service,
			Env:       e.Env,
			Version:   e.Version,
			RequestID: e.RequestID,
			ClientID:  clientID,
			Data:      data,
		}
	}

	ids, err := s.store.Insert(r.Context(), records...)
	if err != nil {
		apperrors.WriteError(w, r, apperrors.NewDatabaseError(err))
		return
	}

	for i := range req.Entries {
		req.Entries[i].ID = ids[i]
		s.logger.Forward(req.Entries[i])
	}

	s.writeJSON(w, http.StatusOK, IngestResponse{Accepted: len(ids), IDs: ids})
}

// maskData masks e.Data in place and returns its stored JSON form. Data that
// cannot be masked is replaced by the placeholder.
func (s *Server) maskData(e *logging.Entry) (json.RawMessage, error) {
	if len(e.Data) == 0 {
		return nil, nil
	}

	masked, err := s.redactor.MaskAny(e.Data)
	if err != nil {
		e.Data = map[string]any{
			"data":       constants.MaskPlaceholder,
			"mask_error": err.Error(),
		}
		return json.Marshal(e.Data)
	}

	if m, ok := masked.Interface().(map[string]any); ok {
		e.Data = m
	}
	return masked.MarshalJSON()
}

func (s *Server) listHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.Filter{
		Source:   q.Get("source"),
		Service:  q.Get("service"),
		ClientID: q.Get("client_id"),
		Before:   q.Get("before"),
	}

	if lv := q.Get("level"); lv != "" {
		level, err := logging.ParseLevel(lv)
		if err != nil {
			apperrors.WriteError(w, r, apperrors.NewBadRequestError(apperrors.CodeInvalidLevel, err.Error()))
			return
		}
		filter.MinLevel = level
	}
	if filter.Before != "" {
		if err := ulid.Validate(filter.Before); err != nil {
			apperrors.WriteError(w, r, apperrors.NewBadRequestError(apperrors.CodeInvalidULID, "Invalid before cursor").Wrap(err))
			return
		}
	}
	if ls := q.Get("limit"); ls != "" {
		limit, err := strconv.Atoi(ls)
		if err != nil || limit < 1 {
			apperrors.WriteError(w, r, apperrors.NewBadRequestError(apperrors.CodeBadRequest, "limit must be a positive integer"))
			return
		}
		filter.Limit = limit
	}

	records, err := s.store.List(r.Context(), filter)
	if err != nil {
		apperrors.WriteError(w, r, apperrors.NewDatabaseError(err))
		return
	}

	countFilter := filter
	countFilter.Before = ""
	total, err := s.store.Count(r.Context(), countFilter)
	if err != nil {
		apperrors.WriteError(w, r, apperrors.NewDatabaseError(err))
		return
	}

	resp := ListResponse{Entries: records, Total: total}
	limit := filter.Limit
	if limit == 0 {
		limit = constants.DefaultListLimit
	}
	if len(records) == min(limit, constants.MaxListLimit) {
		resp.NextBefore = records[len(records)-1].ID
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// healthHandler always answers 200; clients check the status field.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), constants.HealthCheckTimeout)
	defer cancel()

	status := "live"
	if err := s.store.Ping(ctx); err != nil {
		status = "down"
		s.logger.WithContext(r.Context()).ErrorWithErr("Store ping failed", err)
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  status,
		"name":    "rnl",
		"version": s.version,
	})
}
