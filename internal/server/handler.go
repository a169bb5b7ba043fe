package server

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mcncl/jsontyper/internal/converter"
	"github.com/mcncl/jsontyper/internal/errors"
	"github.com/mcncl/jsontyper/internal/naming"
	"github.com/mcncl/jsontyper/internal/schema"
	"github.com/mcncl/jsontyper/internal/typedata"
)

const (
	// ConvertPath is the conversion endpoint.
	ConvertPath = "/jsonToRecordTypes/convert"
	// HealthPath answers liveness probes.
	HealthPath = "/healthz"

	// RequestIDHeader carries the request ID, echoed back when the client sets it.
	RequestIDHeader = "X-Request-Id"
	// CacheHeader reports whether a response came from the cache.
	CacheHeader = "X-Cache"

	maxBodyBytes = 10 << 20
)

// ConvertRequest is the wire form of a conversion request.
type ConvertRequest struct {
	JSONString string `json:"jsonString"`
	RecordName string `json:"recordName,omitempty"`
	Prefix     string `json:"prefix,omitempty"`
	NameStyle  string `json:"nameStyle,omitempty"`

	// IsRecordTypeDesc asks for the root type with every named type inlined.
	IsRecordTypeDesc        bool `json:"isRecordTypeDesc,omitempty"`
	IsClosed                bool `json:"isClosed,omitempty"`
	IsNullAsOptional        bool `json:"isNullAsOptional,omitempty"`
	ForceFormatRecordFields bool `json:"forceFormatRecordFields,omitempty"`

	ExistingNames []string          `json:"existingNames,omitempty"`
	ExistingTypes map[string]string `json:"existingTypes,omitempty"`

	Format      string `json:"format,omitempty"`
	InputFormat string `json:"inputFormat,omitempty"`
}

// TypeDeclaration is one rendered declaration.
type TypeDeclaration struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ConvertResponse carries either the rendered output or an error.
type ConvertResponse struct {
	Types  []TypeDeclaration `json:"types,omitempty"`
	Nodes  []*typedata.Node  `json:"nodes,omitempty"`
	Schema *schema.Schema    `json:"schema,omitempty"`
	Error  *ErrorBody        `json:"error,omitempty"`
}

// ErrorBody describes a failed conversion.
type ErrorBody struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Handler routes service requests. Successful conversions are cached by
// request content.
type Handler struct {
	mux   *http.ServeMux
	cache *lru.Cache[string, []byte]
}

// NewHandler creates a handler. A cacheSize of zero disables caching.
func NewHandler(cacheSize int) (*Handler, error) {
	h := &Handler{mux: http.NewServeMux()}
	if cacheSize > 0 {
		cache, err := lru.New[string, []byte](cacheSize)
		if err != nil {
			return nil, errors.NewConfigError("failed to create response cache", err)
		}
		h.cache = cache
	}

	h.mux.HandleFunc("POST "+ConvertPath, h.handleConvert)
	h.mux.HandleFunc("GET "+HealthPath, h.handleHealth)
	return h, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id := r.Header.Get(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set(RequestIDHeader, id)

	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	h.mux.ServeHTTP(rec, r)

	log.Printf("[%s] %s %s %d %s", id, r.Method, r.URL.Path, rec.status, time.Since(start))
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (h *Handler) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req ConvertRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, errors.NewInputError("request body is not a valid conversion request", err))
		return
	}

	key, err := cacheKey(req)
	if err != nil {
		writeError(w, errors.NewInternalInvariantError("failed to hash request", err))
		return
	}
	if h.cache != nil {
		if body, ok := h.cache.Get(key); ok {
			w.Header().Set(CacheHeader, "hit")
			writeBody(w, http.StatusOK, body)
			return
		}
	}

	resp, err := Convert(req)
	if err != nil {
		writeError(w, err)
		return
	}

	body, err := json.Marshal(resp)
	if err != nil {
		writeError(w, errors.NewOutputError("failed to encode response", err))
		return
	}
	if h.cache != nil {
		h.cache.Add(key, body)
		w.Header().Set(CacheHeader, "miss")
	}
	writeBody(w, http.StatusOK, body)
}

// Convert runs one wire request through the converter.
func Convert(req ConvertRequest) (*ConvertResponse, error) {
	result, err := converter.Convert(converter.Request{
		JSON:           req.JSONString,
		InputFormat:    converter.InputFormat(req.InputFormat),
		RootName:       req.RecordName,
		TypeNamePrefix: req.Prefix,
		NameStyle:      naming.Style(req.NameStyle),
		IsClosed:       req.IsClosed,
		Inline:         req.IsRecordTypeDesc,
		NullAsOptional: req.IsNullAsOptional,
		ExistingNames:  req.ExistingNames,
		ExistingTypes:  req.ExistingTypes,
	})
	if err != nil {
		return nil, err
	}

	rendered, err := converter.Render(result, converter.RenderOptions{
		Format:    converter.Format(req.Format),
		MultiLine: req.ForceFormatRecordFields,
	})
	if err != nil {
		return nil, err
	}

	resp := &ConvertResponse{Nodes: rendered.Nodes, Schema: rendered.Schema}
	for _, d := range rendered.Declarations {
		resp.Types = append(resp.Types, TypeDeclaration{Name: d.Name, Type: d.Text})
	}
	return resp, nil
}

func cacheKey(req ConvertRequest) (string, error) {
	// map keys marshal sorted, so equal requests hash equally
	data, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func statusFor(err error) int {
	switch errors.TypeOf(err) {
	case errors.ErrorTypeInput, errors.ErrorTypeParsing, errors.ErrorTypeUnsupportedRoot,
		errors.ErrorTypeRender, errors.ErrorTypeConfig:
		return http.StatusBadRequest
	case errors.ErrorTypeNameConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	errType := errors.TypeOf(err)
	body, marshalErr := json.Marshal(ConvertResponse{
		Error: &ErrorBody{Type: string(errType), Message: errors.UserFriendlyError(err)},
	})
	if marshalErr != nil {
		http.Error(w, fmt.Sprintf("failed to encode error: %v", marshalErr), http.StatusInternalServerError)
		return
	}
	writeBody(w, statusFor(err), body)
}

func writeBody(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
