package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"flowpath/query"
	"flowpath/snapshot"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const maxRequestBody = 1 << 20

// Handler exposes the query service over JSON-RPC 2.0 and the legacy REST routes
type Handler struct {
	service *query.Service
	methods MethodRegistry
}

func NewHandler(service *query.Service) *Handler {
	return &Handler{
		service: service,
		methods: newMethodRegistry(service),
	}
}

// Methods returns the JSON-RPC method table
func (h *Handler) Methods() MethodRegistry {
	return h.methods
}

// Router builds the HTTP routes
func (h *Handler) Router() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/", h.serveRPC).Methods(http.MethodPost)

	s := router.Methods(http.MethodGet).Subrouter()
	s.HandleFunc("/getPhysicalFlowpaths", h.getPhysicalFlowpaths)
	s.HandleFunc("/getVirtualFlowpaths", h.getVirtualFlowpaths)
	s.HandleFunc("/getRoute", h.getRoute)
	s.HandleFunc("/methods", func(w http.ResponseWriter, r *http.Request) {
		RespondWithJSON(w, http.StatusOK, h.methods.Names())
	})

	return router
}

func (h *Handler) serveRPC(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		writeRPCError(w, nil, CodeParseError, fmt.Sprintf("read request: %v", err))
		return
	}

	var req rpcRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeRPCError(w, nil, CodeParseError, fmt.Sprintf("parse error: %v", err))
		return
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		writeRPCError(w, req.ID, CodeInvalidRequest, "invalid request")
		return
	}

	handler, ok := h.methods.Lookup(req.Method)
	if !ok {
		writeRPCError(w, req.ID, CodeMethodNotFound, fmt.Sprintf("method not found: %s", req.Method))
		return
	}

	result, err := handler(r.Context(), req.Params)
	if err != nil {
		log.Warnf("serveRPC: %s failed: %v", req.Method, err)
		writeRPCError(w, req.ID, errorCode(err), err.Error())
		return
	}
	RespondWithJSON(w, http.StatusOK, rpcResponse{JSONRPC: "2.0", ID: rpcID(req.ID), Result: result})
}

func writeRPCError(w http.ResponseWriter, id json.RawMessage, code int, message string) {
	RespondWithJSON(w, http.StatusOK, rpcResponse{
		JSONRPC: "2.0",
		ID:      rpcID(id),
		Error:   &RPCError{Code: code, Message: message},
	})
}

func rpcID(id json.RawMessage) json.RawMessage {
	if len(id) == 0 {
		return json.RawMessage("null")
	}
	return id
}

func (h *Handler) getPhysicalFlowpaths(w http.ResponseWriter, r *http.Request) {
	paths, err := collectFlowpaths(r.Context(), h.service, snapshot.Physical)
	if err != nil {
		respondWithTaxonomyError(w, "getPhysicalFlowpaths", err)
		return
	}
	RespondWithJSON(w, http.StatusOK, paths)
}

func (h *Handler) getVirtualFlowpaths(w http.ResponseWriter, r *http.Request) {
	tenantID, err := strconv.Atoi(r.URL.Query().Get("tenantId"))
	if err != nil || tenantID <= 0 {
		RespondWithError(w, http.StatusBadRequest, "tenantId must be a positive integer")
		return
	}
	paths, err := collectFlowpaths(r.Context(), h.service, snapshot.Tenant(tenantID))
	if err != nil {
		respondWithTaxonomyError(w, "getVirtualFlowpaths", err)
		return
	}
	RespondWithJSON(w, http.StatusOK, paths)
}

func (h *Handler) getRoute(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	scope := snapshot.Physical
	if raw := q.Get("tenantId"); raw != "" {
		tenantID, err := strconv.Atoi(raw)
		if err != nil || tenantID < 0 {
			RespondWithError(w, http.StatusBadRequest, "tenantId must be a non-negative integer")
			return
		}
		scope = snapshot.Tenant(tenantID)
	}
	result, err := route(r.Context(), h.service, scope, q.Get("src"), q.Get("dst"))
	if err != nil {
		respondWithTaxonomyError(w, "getRoute", err)
		return
	}
	RespondWithJSON(w, http.StatusOK, result)
}

func respondWithTaxonomyError(w http.ResponseWriter, op string, err error) {
	log.Warnf("%s failed: %v", op, err)
	RespondWithError(w, httpStatus(err), err.Error())
}
