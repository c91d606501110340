package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/staking-gateway/internal/application/services"
	"github.com/bimakw/staking-gateway/internal/domain/entities"
)

// ActionHandler handles the mutating actions. Every action responds with
// the receipt of its confirmed transaction.
type ActionHandler struct {
	service *services.TransactionService
	logger  *zap.Logger
}

// NewActionHandler creates a new action handler
func NewActionHandler(service *services.TransactionService, logger *zap.Logger) *ActionHandler {
	return &ActionHandler{
		service: service,
		logger:  logger,
	}
}

// AmountRequest carries a decimal amount
type AmountRequest struct {
	Amount string `json:"amount"`
	User   string `json:"user,omitempty"`
}

// ModifyPoolRequest carries the new APY of a pool
type ModifyPoolRequest struct {
	APY string `json:"apy"`
}

// TransferRequest carries a deposit token transfer
type TransferRequest struct {
	Amount string `json:"amount"`
	To     string `json:"to"`
}

// BuyRequest carries the number of whole tokens to buy
type BuyRequest struct {
	Quantity string `json:"quantity"`
}

// AddressRequest carries a single address
type AddressRequest struct {
	Address string `json:"address"`
}

// PriceRequest carries a sale price in whole native coins
type PriceRequest struct {
	Price string `json:"price"`
}

// AddressResponse is the checksummed and the display form of an address
type AddressResponse struct {
	Address string `json:"address"`
	Short   string `json:"short"`
}

// RegisterRoutes registers the action routes
func (h *ActionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/pools", h.CreatePool)
	r.Put("/pools/{id}", h.ModifyPool)
	r.Post("/pools/{id}/deposit", h.Deposit)
	r.Post("/pools/{id}/withdraw", h.Withdraw)
	r.Post("/pools/{id}/claim", h.ClaimReward)
	r.Post("/sweep", h.Sweep)
	r.Post("/transfers", h.TransferToken)
	r.Post("/wallet/watch-asset", h.AddTokenToWallet)
	r.Post("/sale/buy", h.BuyToken)
	r.Post("/sale/withdraw", h.WithdrawAllTokens)
	r.Put("/sale/token", h.UpdateTokenAddress)
	r.Put("/sale/price", h.UpdateTokenPrice)
	r.Post("/address/copy", h.CopyAddress)
}

func (h *ActionHandler) respondReceipt(w http.ResponseWriter, action string, receipt *entities.Receipt, err error) {
	if err != nil {
		respondFailure(w, h.logger.With(zap.String("action", action)), "Action failed", err)
		return
	}
	respondJSON(w, http.StatusOK, receipt)
}

// Deposit handles POST /api/v1/pools/{id}/deposit
func (h *ActionHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	id, ok := poolID(w, r)
	if !ok {
		return
	}
	var req AmountRequest
	if !decodeBody(w, r, &req) {
		return
	}

	receipt, err := h.service.Deposit(r.Context(), id, req.Amount, req.User)
	h.respondReceipt(w, services.ActionDeposit, receipt, err)
}

// Withdraw handles POST /api/v1/pools/{id}/withdraw
func (h *ActionHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	id, ok := poolID(w, r)
	if !ok {
		return
	}
	var req AmountRequest
	if !decodeBody(w, r, &req) {
		return
	}

	receipt, err := h.service.Withdraw(r.Context(), id, req.Amount)
	h.respondReceipt(w, services.ActionWithdraw, receipt, err)
}

// ClaimReward handles POST /api/v1/pools/{id}/claim
func (h *ActionHandler) ClaimReward(w http.ResponseWriter, r *http.Request) {
	id, ok := poolID(w, r)
	if !ok {
		return
	}

	receipt, err := h.service.ClaimReward(r.Context(), id)
	h.respondReceipt(w, services.ActionClaimReward, receipt, err)
}

// CreatePool handles POST /api/v1/pools
func (h *ActionHandler) CreatePool(w http.ResponseWriter, r *http.Request) {
	var req entities.PoolParams
	if !decodeBody(w, r, &req) {
		return
	}

	receipt, err := h.service.CreatePool(r.Context(), req)
	h.respondReceipt(w, services.ActionCreatePool, receipt, err)
}

// ModifyPool handles PUT /api/v1/pools/{id}
func (h *ActionHandler) ModifyPool(w http.ResponseWriter, r *http.Request) {
	id, ok := poolID(w, r)
	if !ok {
		return
	}
	var req ModifyPoolRequest
	if !decodeBody(w, r, &req) {
		return
	}

	receipt, err := h.service.ModifyPool(r.Context(), id, req.APY)
	h.respondReceipt(w, services.ActionModifyPool, receipt, err)
}

// Sweep handles POST /api/v1/sweep
func (h *ActionHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	var req entities.SweepParams
	if !decodeBody(w, r, &req) {
		return
	}

	receipt, err := h.service.Sweep(r.Context(), req)
	h.respondReceipt(w, services.ActionSweep, receipt, err)
}

// TransferToken handles POST /api/v1/transfers
func (h *ActionHandler) TransferToken(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if !decodeBody(w, r, &req) {
		return
	}

	receipt, err := h.service.TransferToken(r.Context(), req.Amount, req.To)
	h.respondReceipt(w, services.ActionTransferToken, receipt, err)
}

// AddTokenToWallet handles POST /api/v1/wallet/watch-asset
func (h *ActionHandler) AddTokenToWallet(w http.ResponseWriter, r *http.Request) {
	req, err := h.service.AddTokenToWallet(r.Context())
	if err != nil {
		respondFailure(w, h.logger.With(zap.String("action", services.ActionAddTokenToWallet)), "Action failed", err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

// BuyToken handles POST /api/v1/sale/buy
func (h *ActionHandler) BuyToken(w http.ResponseWriter, r *http.Request) {
	var req BuyRequest
	if !decodeBody(w, r, &req) {
		return
	}

	receipt, err := h.service.BuyToken(r.Context(), req.Quantity)
	h.respondReceipt(w, services.ActionBuyToken, receipt, err)
}

// WithdrawAllTokens handles POST /api/v1/sale/withdraw
func (h *ActionHandler) WithdrawAllTokens(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.service.WithdrawAllTokens(r.Context())
	h.respondReceipt(w, services.ActionWithdrawAllTokens, receipt, err)
}

// UpdateTokenAddress handles PUT /api/v1/sale/token
func (h *ActionHandler) UpdateTokenAddress(w http.ResponseWriter, r *http.Request) {
	var req AddressRequest
	if !decodeBody(w, r, &req) {
		return
	}

	receipt, err := h.service.UpdateTokenAddress(r.Context(), req.Address)
	h.respondReceipt(w, services.ActionUpdateTokenAddress, receipt, err)
}

// UpdateTokenPrice handles PUT /api/v1/sale/price
func (h *ActionHandler) UpdateTokenPrice(w http.ResponseWriter, r *http.Request) {
	var req PriceRequest
	if !decodeBody(w, r, &req) {
		return
	}

	receipt, err := h.service.UpdateTokenPrice(r.Context(), req.Price)
	h.respondReceipt(w, services.ActionUpdateTokenPrice, receipt, err)
}

// CopyAddress handles POST /api/v1/address/copy
func (h *ActionHandler) CopyAddress(w http.ResponseWriter, r *http.Request) {
	var req AddressRequest
	if !decodeBody(w, r, &req) {
		return
	}

	address, err := h.service.CopyAddress(r.Context(), req.Address)
	if err != nil {
		respondFailure(w, h.logger.With(zap.String("action", services.ActionCopyAddress)), "Action failed", err)
		return
	}
	respondJSON(w, http.StatusOK, AddressResponse{
		Address: address,
		Short:   services.ShortenAddress(address),
	})
}
