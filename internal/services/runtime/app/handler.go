package app

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	apperrors "github.com/louisbranch/runtimekit/internal/platform/errors"
	"github.com/louisbranch/runtimekit/internal/platform/errors/i18n"
	"github.com/louisbranch/runtimekit/internal/platform/grpc/pagination"
	"github.com/louisbranch/runtimekit/internal/services/runtime/domain/runtime"
	"github.com/louisbranch/runtimekit/internal/services/runtime/storage"
)

const maxBlockBytes = 1 << 20

var auditPageSize = pagination.PageSizeConfig{Default: 50, Max: 200}

type handler struct {
	node   *Node
	reader storage.AuditEventReader
}

func newHandler(node *Node, reader storage.AuditEventReader) http.Handler {
	h := &handler{node: node, reader: reader}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/blocks", h.executeBlock)
	mux.HandleFunc("GET /v1/status", h.status)
	mux.HandleFunc("GET /v1/calls", h.calls)
	mux.HandleFunc("GET /v1/accounts", h.accounts)
	mux.HandleFunc("GET /v1/accounts/{id}", h.account)
	mux.HandleFunc("GET /v1/claims/{claim}", h.claim)
	mux.HandleFunc("GET /v1/state", h.state)
	mux.HandleFunc("GET /v1/audit", h.audit)
	return mux
}

type errorResponse struct {
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Aborted  bool              `json:"block_aborted,omitempty"`

	// Localized is rendered from the code and metadata for the caller's
	// Accept-Language.
	Localized string `json:"localized_message"`
	Locale    string `json:"locale"`
}

type statusResponse struct {
	BlockNumber   BlockNumber `json:"block_number"`
	TotalIssuance *Balance    `json:"total_issuance,omitempty"`
	AuditEnabled  bool        `json:"audit_enabled"`
}

type claimResponse struct {
	Claim Claim     `json:"claim"`
	Owner AccountID `json:"owner"`
}

type auditEventResponse struct {
	ID             int64          `json:"id"`
	Timestamp      string         `json:"timestamp"`
	EventName      string         `json:"event_name"`
	Severity       string         `json:"severity"`
	BlockNumber    *uint64        `json:"block_number,omitempty"`
	ExtrinsicIndex *int           `json:"extrinsic_index,omitempty"`
	Caller         string         `json:"caller,omitempty"`
	Call           string         `json:"call,omitempty"`
	ErrorCode      string         `json:"error_code,omitempty"`
	Message        string         `json:"message,omitempty"`
	TraceID        string         `json:"trace_id,omitempty"`
	Attributes     map[string]any `json:"attributes,omitempty"`
}

type auditPageResponse struct {
	Events        []auditEventResponse `json:"events"`
	NextPageToken string               `json:"next_page_token,omitempty"`
}

func (h *handler) executeBlock(w http.ResponseWriter, r *http.Request) {
	var env BlockEnvelope
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBlockBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&env); err != nil {
		writeError(w, r, apperrors.Wrap(apperrors.CodeInvalidArgument, "invalid block: "+err.Error(), err))
		return
	}
	block, err := h.node.DecodeBlock(env)
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.node.ExecuteBlock(r.Context(), block)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) status(w http.ResponseWriter, _ *http.Request) {
	resp := statusResponse{
		BlockNumber:  h.node.BlockNumber(),
		AuditEnabled: h.reader != nil,
	}
	if total, ok := h.node.TotalIssuance(); ok {
		resp.TotalIssuance = &total
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) calls(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"calls": h.node.Calls()})
}

func (h *handler) accounts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]AccountView{"accounts": h.node.Accounts()})
}

func (h *handler) account(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, r, apperrors.New(apperrors.CodeInvalidArgument, "account id is required"))
		return
	}
	writeJSON(w, http.StatusOK, h.node.Account(id))
}

func (h *handler) claim(w http.ResponseWriter, r *http.Request) {
	claim := r.PathValue("claim")
	owner, ok := h.node.GetClaim(claim)
	if !ok {
		writeError(w, r, apperrors.WithMetadata(apperrors.CodeNotFound, "claim not found", map[string]string{"claim": claim}))
		return
	}
	writeJSON(w, http.StatusOK, claimResponse{Claim: claim, Owner: owner})
}

func (h *handler) state(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.node.Snapshot())
}

func (h *handler) audit(w http.ResponseWriter, r *http.Request) {
	if h.reader == nil {
		writeError(w, r, apperrors.New(apperrors.CodeNotFound, "audit log is disabled"))
		return
	}
	query := r.URL.Query()
	pageSize, err := pagination.ParsePageSize(query.Get("page_size"), auditPageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := h.reader.ListAuditEvents(r.Context(), storage.AuditEventQuery{
		Filter:    query.Get("filter"),
		PageSize:  pageSize,
		PageToken: query.Get("page_token"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := auditPageResponse{
		Events:        make([]auditEventResponse, 0, len(page.Events)),
		NextPageToken: page.NextPageToken,
	}
	for _, evt := range page.Events {
		resp.Events = append(resp.Events, auditEventResponse{
			ID:             evt.ID,
			Timestamp:      evt.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"),
			EventName:      evt.EventName,
			Severity:       evt.Severity,
			BlockNumber:    evt.BlockNumber,
			ExtrinsicIndex: evt.ExtrinsicIndex,
			Caller:         evt.Caller,
			Call:           evt.Call,
			ErrorCode:      evt.ErrorCode,
			Message:        evt.Message,
			TraceID:        evt.TraceID,
			Attributes:     evt.Attributes,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperrors.CodeOf(err)
	resp := errorResponse{
		Code:    string(code),
		Message: err.Error(),
		Aborted: runtime.IsBlockAbort(err),
	}
	var domainErr *apperrors.Error
	if errors.As(err, &domainErr) {
		resp.Metadata = domainErr.Metadata
	}
	catalog := i18n.ForAcceptLanguage(r.Header.Get("Accept-Language"))
	resp.Localized = catalog.Format(string(code), resp.Metadata)
	resp.Locale = catalog.Locale()
	if code == apperrors.CodeUnknown {
		log.Printf("runtime API error: %v", err)
		resp.Message = "internal error"
	}
	writeJSON(w, code.HTTPStatus(), resp)
}

// writeJSON writes JSON responses with a consistent content type.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	_ = encoder.Encode(payload)
}
