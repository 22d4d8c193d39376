package api

import (
	"bytes"
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/tonkeeper/tongo"
	"go.uber.org/zap"

	"github.com/arnac-io/safekeeper/pkg/core"
	"github.com/arnac-io/safekeeper/pkg/host"
	"github.com/arnac-io/safekeeper/pkg/kvstore"
	"github.com/arnac-io/safekeeper/pkg/safe"
)

var (
	safeAddress = tongo.MustParseAccountID("0:6ccd325a858c379693fae2bcaab1c2906831a4e10a6c3bb44ee8b615bca1d220")
	alice       = tongo.AccountID{Address: [32]byte{0xa}}
	bob         = tongo.AccountID{Address: [32]byte{0xb}}
	stranger    = tongo.AccountID{Address: [32]byte{0xc}}
	receiver    = tongo.AccountID{Address: [32]byte{0xe}}
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	host   *host.Memory
}

func newTestServer(t *testing.T) *testServer {
	store, err := kvstore.NewBadgerStore(zap.NewNop())
	require.Nil(t, err)
	t.Cleanup(func() { store.Close() })

	memory := host.NewMemory(safeAddress)
	memory.Deposit(core.NativeToken, safeAddress, big.NewInt(1000))
	s := safe.New(zap.NewNop(), store, safeAddress, memory)
	owners := []core.OwnerDescription{
		{Address: alice, Name: "alice"},
		{Address: bob, Name: "bob"},
	}
	require.Nil(t, s.Install(context.Background(), safe.Call{Sender: safeAddress}, owners, 2, "treasury"))

	handler := NewHandler(zap.NewNop(), s, WithDepositor(memory))
	return &testServer{
		t:      t,
		router: NewRouter(zap.NewNop(), handler, WithMetricsEndpoint()),
		host:   memory,
	}
}

func (s *testServer) do(method, path string, sender *tongo.AccountID, body any, out any) int {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.Nil(s.t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if sender != nil {
		req.Header.Set(senderHeader, sender.ToRaw())
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if out != nil && rec.Code < http.StatusBadRequest {
		require.Nil(s.t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec.Code
}

func TestHandler_Safe(t *testing.T) {
	s := newTestServer(t)
	var info Safe
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/v1/safe", nil, nil, &info))
	require.Equal(t, Safe{
		Address:        safeAddress.ToRaw(),
		Name:           "treasury",
		OwnersCount:    2,
		OwnersRequired: 2,
	}, info)

	var owners []Owner
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/v1/owners", nil, nil, &owners))
	require.Len(t, owners, 2)

	var owner Owner
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/v1/owners/address/"+bob.ToRaw(), nil, nil, &owner))
	require.Equal(t, "bob", owner.Name)
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/v1/owners/1", nil, nil, &owner))
	require.Equal(t, "alice", owner.Name)
	require.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/v1/owners/address/"+stranger.ToRaw(), nil, nil, nil))
}

func TestHandler_TransactionLifecycle(t *testing.T) {
	s := newTestServer(t)

	var created idResponse
	status := s.do(http.MethodPost, "/v1/transactions", &alice, submitRequest{
		Destination: receiver.ToRaw(),
		Amount:      "100",
		Description: "rent",
	}, &created)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, uint64(1), created.ID)

	var tx Transaction
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/v1/transactions/1", nil, nil, &tx))
	require.Equal(t, "waiting", tx.State)
	require.Equal(t, []uint64{1}, tx.Confirmations)
	require.Equal(t, "0.0000001", tx.AmountDisplay)

	var count countResponse
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/v1/transactions/count?status=waiting", nil, nil, &count))
	require.Equal(t, 1, count.Count)

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/v1/transactions/1/confirm", &bob, nil, &tx))
	require.Equal(t, "executed", tx.State)
	require.NotNil(t, tx.ExecutedTxHash)
	require.Equal(t, big.NewInt(100), s.host.BalanceOf(core.NativeToken, receiver))
	require.Equal(t, http.StatusConflict, s.do(http.MethodPost, "/v1/transactions/1/revoke", &alice, nil, nil))

	var executed []Transaction
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/v1/transactions?status=executed", nil, nil, &executed))
	require.Len(t, executed, 1)

	var log []EventLogEntry
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/v1/events/log", nil, nil, &log))
	require.Len(t, log, 2)
	require.Equal(t, *tx.ExecutedTxHash, log[0].TxHash)
}

func TestHandler_Errors(t *testing.T) {
	s := newTestServer(t)
	submit := submitRequest{Destination: receiver.ToRaw(), Amount: "1"}

	tests := []struct {
		name   string
		method string
		path   string
		sender *tongo.AccountID
		body   any
		want   int
	}{
		{"stranger submits", http.MethodPost, "/v1/transactions", &stranger, submit, http.StatusForbidden},
		{"missing sender", http.MethodPost, "/v1/transactions", nil, submit, http.StatusBadRequest},
		{"fractional amount", http.MethodPost, "/v1/transactions", &alice, submitRequest{Destination: receiver.ToRaw(), Amount: "0.5"}, http.StatusBadRequest},
		{"method on a wallet", http.MethodPost, "/v1/transactions", &alice, submitRequest{Destination: receiver.ToRaw(), Method: "transfer"}, http.StatusBadRequest},
		{"unknown transaction", http.MethodGet, "/v1/transactions/42", nil, nil, http.StatusNotFound},
		{"bad id", http.MethodGet, "/v1/transactions/abc", nil, nil, http.StatusBadRequest},
		{"bad status", http.MethodGet, "/v1/transactions?status=pending", nil, nil, http.StatusBadRequest},
		{"bad offset", http.MethodGet, "/v1/owners?offset=-1", nil, nil, http.StatusBadRequest},
		{"confirm unknown", http.MethodPost, "/v1/transactions/42/confirm", &bob, nil, http.StatusNotFound},
		{"untracked token", http.MethodDelete, "/v1/balances/trackers/" + receiver.ToRaw(), &alice, nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, s.do(tt.method, tt.path, tt.sender, tt.body, nil))
		})
	}
}

func TestHandler_IncomingAndBalances(t *testing.T) {
	s := newTestServer(t)

	var created idResponse
	status := s.do(http.MethodPost, "/v1/incoming", nil, incomingRequest{
		Source: stranger.ToRaw(),
		Amount: "50",
	}, &created)
	require.Equal(t, http.StatusOK, status)

	var tx Transaction
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/v1/transactions/1", nil, nil, &tx))
	require.Equal(t, "incoming", tx.Type)
	require.Equal(t, "executed", tx.State)
	require.Equal(t, stranger.ToRaw(), *tx.Source)

	var trackers []string
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/v1/balances/trackers", nil, nil, &trackers))
	require.Equal(t, []string{core.NativeToken.ToRaw()}, trackers)

	var history []BalanceHistoryEntry
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/v1/balances/native", nil, nil, &history))
	require.Len(t, history, 2)
	require.Equal(t, "1050", history[0].Balance)
	require.Equal(t, created.ID, history[0].TransactionID)

	require.Equal(t, http.StatusNoContent, s.do(http.MethodPost, "/v1/balances/trackers/"+receiver.ToRaw(), &alice, nil, nil))
	require.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/v1/balances/trackers/"+receiver.ToRaw(), &stranger, nil, nil))
}

func TestHandler_IncomingOnUninstalledSafe(t *testing.T) {
	store, err := kvstore.NewBadgerStore(zap.NewNop())
	require.Nil(t, err)
	defer store.Close()
	memory := host.NewMemory(safeAddress)
	handler := NewHandler(zap.NewNop(), safe.New(zap.NewNop(), store, safeAddress, memory), WithDepositor(memory))
	s := &testServer{t: t, router: NewRouter(zap.NewNop(), handler), host: memory}

	status := s.do(http.MethodPost, "/v1/incoming", nil, incomingRequest{Source: stranger.ToRaw(), Amount: "500"}, nil)
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, 0, memory.BalanceOf(core.NativeToken, safeAddress).Sign())

	status = s.do(http.MethodPost, "/v1/incoming", nil, incomingRequest{Source: stranger.ToRaw(), Token: receiver.ToRaw(), Amount: "7"}, nil)
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, 0, memory.BalanceOf(receiver, safeAddress).Sign())
}

func TestHandler_Metrics(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/v1/safe", nil, nil, nil))
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/metrics", nil, nil, nil))
}

func TestHandler_EventStreamRoute(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/v1/events", nil, nil, nil))

	streamed := false
	handler := NewHandler(zap.NewNop(), nil)
	router := NewRouter(zap.NewNop(), handler, WithEventStream(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		streamed = true
		w.WriteHeader(http.StatusOK)
	})))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/events", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, streamed)
}
