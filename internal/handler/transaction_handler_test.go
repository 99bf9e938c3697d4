package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/stakemesh/wallet-gateway/internal/domain"
)

type stubTransactionLog struct {
	listFn   func() []domain.TrackedTransaction
	cancelFn func(hash common.Hash) bool
}

func (s *stubTransactionLog) List() []domain.TrackedTransaction {
	if s.listFn == nil {
		return nil
	}
	return s.listFn()
}

func (s *stubTransactionLog) Cancel(hash common.Hash) bool {
	if s.cancelFn == nil {
		return false
	}
	return s.cancelFn(hash)
}

func TestTransactionHandler_List(t *testing.T) {
	t.Parallel()

	log := &stubTransactionLog{
		listFn: func() []domain.TrackedTransaction {
			return []domain.TrackedTransaction{
				{Hash: "0xaaa", Description: "Stake 500", Status: domain.TxStatusPending, SubmittedAt: time.Now()},
				{Hash: "0xbbb", Description: "Claim rewards", Status: domain.TxStatusSuccess, SubmittedAt: time.Now()},
			}
		},
	}

	app := newTestApp(t)
	if err := RegisterTransactionRoutes(app, log); err != nil {
		t.Fatalf("RegisterTransactionRoutes() error = %v", err)
	}

	resp := doJSON(t, app, "GET", "/v1/transactions", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body listTransactionsResponse
	decodeJSON(t, resp, &body)
	if len(body.Data) != 2 {
		t.Fatalf("data length = %d, want 2", len(body.Data))
	}
	if body.Data[0].Status != domain.TxStatusPending {
		t.Fatalf("first status = %s, want PENDING", body.Data[0].Status)
	}
}

func TestTransactionHandler_Cancel(t *testing.T) {
	t.Parallel()

	hash := common.HexToHash("0x01")
	var cancelled common.Hash
	log := &stubTransactionLog{
		cancelFn: func(h common.Hash) bool {
			cancelled = h
			return true
		},
	}

	app := newTestApp(t)
	if err := RegisterTransactionRoutes(app, log); err != nil {
		t.Fatalf("RegisterTransactionRoutes() error = %v", err)
	}

	resp := doJSON(t, app, "POST", "/v1/transactions/"+hash.Hex()+"/cancel", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}
	if cancelled != hash {
		t.Fatalf("cancelled = %s, want %s", cancelled.Hex(), hash.Hex())
	}
}

func TestTransactionHandler_CancelNotPending(t *testing.T) {
	t.Parallel()

	log := &stubTransactionLog{
		cancelFn: func(h common.Hash) bool { return false },
	}

	app := newTestApp(t)
	if err := RegisterTransactionRoutes(app, log); err != nil {
		t.Fatalf("RegisterTransactionRoutes() error = %v", err)
	}

	resp := doJSON(t, app, "POST", "/v1/transactions/"+common.HexToHash("0x02").Hex()+"/cancel", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestTransactionHandler_CancelRejectsMalformedHash(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	if err := RegisterTransactionRoutes(app, &stubTransactionLog{}); err != nil {
		t.Fatalf("RegisterTransactionRoutes() error = %v", err)
	}

	resp := doJSON(t, app, "POST", "/v1/transactions/nope/cancel", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}
