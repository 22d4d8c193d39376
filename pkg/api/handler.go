package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tonkeeper/tongo"
	"go.uber.org/zap"

	"github.com/arnac-io/safekeeper/pkg/core"
	"github.com/arnac-io/safekeeper/pkg/ledger"
	"github.com/arnac-io/safekeeper/pkg/safe"
)

const (
	senderHeader = "X-Sender"
	txHashHeader = "X-Tx-Hash"
)

// Handler exposes the safe over HTTP.
type Handler struct {
	logger    *zap.Logger
	wallet    wallet
	depositor depositor
}

// HandlerOptions is a configuration of Handler.
type HandlerOptions struct {
	depositor depositor
}

type HandlerOption func(o *HandlerOptions)

// WithDepositor credits the host on every recorded incoming transfer.
func WithDepositor(d depositor) HandlerOption {
	return func(o *HandlerOptions) {
		o.depositor = d
	}
}

func NewHandler(logger *zap.Logger, w wallet, opts ...HandlerOption) *Handler {
	options := &HandlerOptions{}
	for _, o := range opts {
		o(options)
	}
	return &Handler{
		logger:    logger,
		wallet:    w,
		depositor: options.depositor,
	}
}

type submitRequest struct {
	Destination string `json:"destination" binding:"required"`
	Method      string `json:"method"`
	Params      string `json:"params"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

type incomingRequest struct {
	Token  string `json:"token"`
	Source string `json:"source" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

type idResponse struct {
	ID uint64 `json:"id"`
}

type countResponse struct {
	Count int `json:"count"`
}

func (h *Handler) GetSafe(c *gin.Context) {
	ctx := c.Request.Context()
	name, err := h.wallet.SafeName(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	count, err := h.wallet.WalletOwnersCount(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	required, err := h.wallet.WalletOwnersRequired(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Safe{
		Address:        h.wallet.Address().ToRaw(),
		Name:           name,
		OwnersCount:    count,
		OwnersRequired: required,
	})
}

func (h *Handler) GetOwners(c *gin.Context) {
	offset, err := offsetQuery(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	owners, err := h.wallet.WalletOwners(c.Request.Context(), offset)
	if err != nil {
		h.fail(c, err)
		return
	}
	res := make([]Owner, 0, len(owners))
	for _, o := range owners {
		res = append(res, convertOwner(o))
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) GetOwner(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	owner, err := h.wallet.WalletOwner(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, convertOwner(owner))
}

func (h *Handler) GetOwnerByAddress(c *gin.Context) {
	address, err := tongo.ParseAccountID(c.Param("address"))
	if err != nil {
		h.fail(c, BadRequest("invalid address"))
		return
	}
	ctx := c.Request.Context()
	id, err := h.wallet.WalletOwnerID(ctx, address)
	if err != nil {
		h.fail(c, err)
		return
	}
	owner, err := h.wallet.WalletOwner(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, convertOwner(owner))
}

func (h *Handler) GetTransactions(c *gin.Context) {
	index, err := indexQuery(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	offset, err := offsetQuery(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	txs, err := h.wallet.Transactions(c.Request.Context(), index, offset)
	if err != nil {
		h.fail(c, err)
		return
	}
	res := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		res = append(res, convertTransaction(tx))
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) GetTransactionsCount(c *gin.Context) {
	index, err := indexQuery(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	count, err := h.wallet.TransactionsCount(c.Request.Context(), index)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, countResponse{Count: count})
}

func (h *Handler) GetTransaction(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	tx, err := h.wallet.Transaction(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, convertTransaction(tx))
}

func (h *Handler) SubmitTransaction(c *gin.Context) {
	call, err := callFromRequest(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	var body submitRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.fail(c, BadRequest(err.Error()))
		return
	}
	destination, err := tongo.ParseAccountID(body.Destination)
	if err != nil {
		h.fail(c, BadRequest("invalid destination"))
		return
	}
	req := core.SubmitRequest{
		Destination: destination,
		Method:      body.Method,
		Params:      body.Params,
		Description: body.Description,
	}
	if body.Amount != "" {
		if req.Amount, err = core.ParseAmount(body.Amount, 0); err != nil {
			h.fail(c, err)
			return
		}
	}
	id, err := h.wallet.SubmitTransaction(c.Request.Context(), call, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, idResponse{ID: id})
}

func (h *Handler) ConfirmTransaction(c *gin.Context) {
	h.vote(c, h.wallet.ConfirmTransaction)
}

func (h *Handler) RejectTransaction(c *gin.Context) {
	h.vote(c, h.wallet.RejectTransaction)
}

func (h *Handler) RevokeTransaction(c *gin.Context) {
	h.vote(c, h.wallet.RevokeTransaction)
}

func (h *Handler) vote(c *gin.Context, fn func(ctx context.Context, call safe.Call, id uint64) error) {
	call, err := callFromRequest(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	id, err := idParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	ctx := c.Request.Context()
	if err := fn(ctx, call, id); err != nil {
		h.fail(c, err)
		return
	}
	tx, err := h.wallet.Transaction(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, convertTransaction(tx))
}

// RecordIncoming registers a transfer into the safe. An empty token means
// the native currency, otherwise the token contract is the sender.
func (h *Handler) RecordIncoming(c *gin.Context) {
	var body incomingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.fail(c, BadRequest(err.Error()))
		return
	}
	source, err := tongo.ParseAccountID(body.Source)
	if err != nil {
		h.fail(c, BadRequest("invalid source"))
		return
	}
	token := core.NativeToken
	if body.Token != "" {
		if token, err = tongo.ParseAccountID(body.Token); err != nil {
			h.fail(c, BadRequest("invalid token"))
			return
		}
	}
	amount, err := core.ParseAmount(body.Amount, 0)
	if err != nil {
		h.fail(c, err)
		return
	}
	txHash, err := txHashFromRequest(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	if h.depositor != nil {
		h.depositor.Deposit(token, h.wallet.Address(), amount)
	}
	ctx := c.Request.Context()
	var id uint64
	if token == core.NativeToken {
		id, err = h.wallet.ReceiveNative(ctx, safe.Call{Sender: source, TxHash: txHash}, amount)
	} else {
		id, err = h.wallet.ReceiveToken(ctx, safe.Call{Sender: token, TxHash: txHash}, source, amount)
	}
	if err != nil {
		if h.depositor != nil {
			if werr := h.depositor.Withdraw(token, h.wallet.Address(), amount); werr != nil {
				h.logger.Error("failed to take back deposit", zap.Error(werr))
			}
		}
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, idResponse{ID: id})
}

// GetEvents lists the hashes of calls that raised events.
func (h *Handler) GetEvents(c *gin.Context) {
	offset, err := offsetQuery(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	entries, err := h.wallet.Events(c.Request.Context(), offset)
	if err != nil {
		h.fail(c, err)
		return
	}
	res := make([]EventLogEntry, 0, len(entries))
	for _, e := range entries {
		res = append(res, convertEventLogEntry(e))
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) GetBalanceTrackers(c *gin.Context) {
	offset, err := offsetQuery(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	tokens, err := h.wallet.BalanceTrackers(c.Request.Context(), offset)
	if err != nil {
		h.fail(c, err)
		return
	}
	res := make([]string, 0, len(tokens))
	for _, t := range tokens {
		res = append(res, t.ToRaw())
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) AddBalanceTracker(c *gin.Context) {
	h.tracker(c, h.wallet.AddBalanceTracker)
}

func (h *Handler) RemoveBalanceTracker(c *gin.Context) {
	h.tracker(c, h.wallet.RemoveBalanceTracker)
}

func (h *Handler) tracker(c *gin.Context, fn func(ctx context.Context, call safe.Call, token tongo.AccountID) error) {
	call, err := callFromRequest(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	token, err := tokenParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := fn(c.Request.Context(), call, token); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) GetBalanceHistory(c *gin.Context) {
	token, err := tokenParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	offset, err := offsetQuery(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	entries, err := h.wallet.BalanceHistory(c.Request.Context(), token, offset)
	if err != nil {
		h.fail(c, err)
		return
	}
	res := make([]BalanceHistoryEntry, 0, len(entries))
	for _, e := range entries {
		res = append(res, convertBalanceHistoryEntry(e))
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) fail(c *gin.Context, err error) {
	httpErr := toHTTPError(err)
	if httpErr.Code >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.AbortWithStatusJSON(httpErr.Code, httpErr)
}

func callFromRequest(c *gin.Context) (safe.Call, error) {
	sender, err := tongo.ParseAccountID(c.GetHeader(senderHeader))
	if err != nil {
		return safe.Call{}, BadRequest("missing or invalid " + senderHeader + " header")
	}
	txHash, err := txHashFromRequest(c)
	if err != nil {
		return safe.Call{}, err
	}
	return safe.Call{Sender: sender, TxHash: txHash}, nil
}

// txHashFromRequest reads the hash of the originating chain transaction.
// Requests without one get a random hash so records stay distinguishable.
func txHashFromRequest(c *gin.Context) (tongo.Bits256, error) {
	value := c.GetHeader(txHashHeader)
	if value == "" {
		var hash tongo.Bits256
		hi, lo := uuid.New(), uuid.New()
		copy(hash[:16], hi[:])
		copy(hash[16:], lo[:])
		return hash, nil
	}
	hash, err := tongo.ParseHash(value)
	if err != nil {
		return tongo.Bits256{}, BadRequest("invalid " + txHashHeader + " header")
	}
	return hash, nil
}

func idParam(c *gin.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, BadRequest("invalid id")
	}
	return id, nil
}

func tokenParam(c *gin.Context) (tongo.AccountID, error) {
	value := c.Param("token")
	if value == "native" {
		return core.NativeToken, nil
	}
	token, err := tongo.ParseAccountID(value)
	if err != nil {
		return tongo.AccountID{}, BadRequest("invalid token")
	}
	return token, nil
}

func offsetQuery(c *gin.Context) (int, error) {
	value := c.DefaultQuery("offset", "0")
	offset, err := strconv.Atoi(value)
	if err != nil || offset < 0 {
		return 0, BadRequest("invalid offset")
	}
	return offset, nil
}

func indexQuery(c *gin.Context) (ledger.Index, error) {
	index, err := ledger.ParseIndex(c.DefaultQuery("status", string(ledger.All)))
	if err != nil {
		return "", BadRequest(err.Error())
	}
	return index, nil
}
