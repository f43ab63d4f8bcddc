package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"flowpath/common"

	log "github.com/sirupsen/logrus"
)

// APIResponse is the envelope of REST error responses
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// RespondWithJSON writes payload with statusCode, or a 500 envelope when it cannot be encoded
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("RespondWithJSON: encode %T failed: %v", payload, err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		body = []byte(`{"success":false,"error":"failed to encode response"}`)
	} else {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
	}

	if _, err := w.Write(body); err != nil {
		log.Warnf("RespondWithJSON: write failed: %v", err)
	}
}

// RespondWithError wraps message in a failed APIResponse
func RespondWithError(w http.ResponseWriter, statusCode int, message string) {
	RespondWithJSON(w, statusCode, APIResponse{Success: false, Error: message})
}

// JSON-RPC 2.0 error codes
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeFetchFailed    = -32000
	CodeUnreachable    = -32001
)

var errInvalidParams = errors.New("invalid params")

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// errorCode maps the error taxonomy to a JSON-RPC code
func errorCode(err error) int {
	switch {
	case errors.Is(err, errInvalidParams):
		return CodeInvalidParams
	case errors.Is(err, common.ErrFetch):
		return CodeFetchFailed
	case errors.Is(err, common.ErrUnreachable):
		return CodeUnreachable
	default:
		return CodeInternalError
	}
}

// httpStatus maps the error taxonomy to a REST status
func httpStatus(err error) int {
	switch {
	case errors.Is(err, errInvalidParams):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrFetch):
		return http.StatusBadGateway
	case errors.Is(err, common.ErrUnreachable):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
