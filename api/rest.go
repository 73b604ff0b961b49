package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"

	"github.com/dzeckelev/quickpay/data"
	"github.com/dzeckelev/quickpay/errs"
	"github.com/dzeckelev/quickpay/registry"
	"github.com/dzeckelev/quickpay/service"
)

// Ledger is the ledger service behind the REST endpoints.
type Ledger interface {
	RecordTransaction(ctx context.Context,
		in *service.TransactionInput) (*service.RecordResult, error)
	ListTransactions(ctx context.Context,
		address string) ([]service.TransactionView, error)
	ClaimReward(ctx context.Context, address,
		transactionID string) (*service.ClaimResult, error)
	ListRewards(ctx context.Context, address string) ([]*data.Reward, error)
	EligibleTransactions(ctx context.Context,
		address string) ([]service.TransactionView, error)
	Profile(ctx context.Context, address string) (*service.Profile, error)
}

// Registrar resolves and registers usernames.
type Registrar interface {
	Resolve(ctx context.Context, username string) (string, error)
	Register(ctx context.Context, from, username string) (string, error)
}

// RESTHandlers exposes the ledger and the username registry over HTTP.
type RESTHandlers struct {
	logger    *slog.Logger
	ledger    Ledger
	registrar Registrar
}

// NewRESTHandlers creates REST handlers.
func NewRESTHandlers(logger *slog.Logger, ledger Ledger,
	registrar Registrar) *RESTHandlers {
	return &RESTHandlers{
		logger:    logger,
		ledger:    ledger,
		registrar: registrar,
	}
}

type transactionsResponse struct {
	Transactions []service.TransactionView `json:"transactions"`
}

type rewardsResponse struct {
	Rewards []*data.Reward `json:"rewards"`
}

type claimRequest struct {
	Address       string `json:"address"`
	TransactionID string `json:"transactionId"`
}

type usernameResponse struct {
	Username string `json:"username"`
	Address  string `json:"address"`
}

type registerRequest struct {
	Address  string `json:"address"`
	Username string `json:"username"`
}

type registerResponse struct {
	Success  bool   `json:"success"`
	Username string `json:"username"`
	TxHash   string `json:"txHash"`
}

func addressParam(r *http.Request) (string, error) {
	address := strings.TrimSpace(r.URL.Query().Get("address"))
	if address == "" {
		return "", errs.Required("address")
	}
	return address, nil
}

func (h *RESTHandlers) listTransactions(w http.ResponseWriter, r *http.Request) {
	address, err := addressParam(r)
	if err != nil {
		h.fail(w, err, "Failed to fetch transactions")
		return
	}

	txs, err := h.ledger.ListTransactions(r.Context(), address)
	if err != nil {
		h.fail(w, err, "Failed to fetch transactions")
		return
	}

	respondJSON(w, http.StatusOK, transactionsResponse{Transactions: txs})
}

func (h *RESTHandlers) recordTransaction(w http.ResponseWriter, r *http.Request) {
	var in service.TransactionInput
	if err := decodeJSON(r, &in); err != nil {
		h.fail(w, err, "Failed to store transaction")
		return
	}

	result, err := h.ledger.RecordTransaction(r.Context(), &in)
	if err != nil {
		h.fail(w, err, "Failed to store transaction")
		return
	}

	status := http.StatusCreated
	if result.AlreadyExists {
		status = http.StatusOK
	}
	respondJSON(w, status, result)
}

func (h *RESTHandlers) listRewards(w http.ResponseWriter, r *http.Request) {
	address, err := addressParam(r)
	if err != nil {
		h.fail(w, err, "Failed to fetch rewards")
		return
	}

	rewards, err := h.ledger.ListRewards(r.Context(), address)
	if err != nil {
		h.fail(w, err, "Failed to fetch rewards")
		return
	}
	if rewards == nil {
		rewards = []*data.Reward{}
	}

	respondJSON(w, http.StatusOK, rewardsResponse{Rewards: rewards})
}

func (h *RESTHandlers) eligibleTransactions(w http.ResponseWriter,
	r *http.Request) {
	address, err := addressParam(r)
	if err != nil {
		h.fail(w, err, "Failed to fetch eligible transactions")
		return
	}

	txs, err := h.ledger.EligibleTransactions(r.Context(), address)
	if err != nil {
		h.fail(w, err, "Failed to fetch eligible transactions")
		return
	}

	respondJSON(w, http.StatusOK, transactionsResponse{Transactions: txs})
}

func (h *RESTHandlers) claimReward(w http.ResponseWriter, r *http.Request) {
	var req claimRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, err, "Failed to claim reward")
		return
	}

	result, err := h.ledger.ClaimReward(r.Context(), req.Address,
		req.TransactionID)
	if err != nil {
		h.fail(w, err, "Failed to claim reward")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *RESTHandlers) profile(w http.ResponseWriter, r *http.Request) {
	address, err := addressParam(r)
	if err != nil {
		h.fail(w, err, "Failed to build profile")
		return
	}

	profile, err := h.ledger.Profile(r.Context(), address)
	if err != nil {
		h.fail(w, err, "Failed to build profile")
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

func (h *RESTHandlers) resolveUsername(w http.ResponseWriter, r *http.Request) {
	name := registry.Normalize(chi.URLParam(r, "name"))

	address, err := h.registrar.Resolve(r.Context(), name)
	if err != nil {
		h.fail(w, err, "Failed to resolve username")
		return
	}

	respondJSON(w, http.StatusOK, usernameResponse{
		Username: name,
		Address:  address,
	})
}

func (h *RESTHandlers) registerUsername(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, err, "Failed to register username")
		return
	}

	hash, err := h.registrar.Register(r.Context(), req.Address, req.Username)
	if err != nil {
		h.fail(w, err, "Failed to register username")
		return
	}

	respondJSON(w, http.StatusCreated, registerResponse{
		Success:  true,
		Username: registry.Normalize(req.Username),
		TxHash:   hash,
	})
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errs.Invalid("body", "malformed JSON")
	}
	return nil
}

// fail maps err to a status: validation 400, not found 404 and anything
// else 500 with a generic message.
func (h *RESTHandlers) fail(w http.ResponseWriter, err error, internal string) {
	var nf *errs.NotFoundError

	switch {
	case errs.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &nf):
		msg := err.Error()
		if nf.Hint != "" {
			msg += ". " + nf.Hint
		}
		writeError(w, http.StatusNotFound, msg)
	default:
		h.logger.Error(internal, "error", err)
		writeError(w, http.StatusInternalServerError, internal)
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
