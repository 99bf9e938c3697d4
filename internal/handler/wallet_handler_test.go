package handler

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stakemesh/wallet-gateway/internal/domain"
	"github.com/stakemesh/wallet-gateway/internal/wallet"
)

type stubWalletService struct {
	connectFn     func(ctx context.Context, connectorID string) error
	disconnectFn  func(ctx context.Context) error
	setRememberFn func(ctx context.Context, remember bool) error
	openModalFn   func(pending wallet.PendingAction)
	closeModalFn  func()
	sessionFn     func() domain.WalletSession
}

func (s *stubWalletService) ConnectWith(ctx context.Context, connectorID string) error {
	if s.connectFn == nil {
		return nil
	}
	return s.connectFn(ctx, connectorID)
}

func (s *stubWalletService) Disconnect(ctx context.Context) error {
	if s.disconnectFn == nil {
		return nil
	}
	return s.disconnectFn(ctx)
}

func (s *stubWalletService) SetRemember(ctx context.Context, remember bool) error {
	if s.setRememberFn == nil {
		return nil
	}
	return s.setRememberFn(ctx, remember)
}

func (s *stubWalletService) OpenModal(pending wallet.PendingAction) {
	if s.openModalFn != nil {
		s.openModalFn(pending)
	}
}

func (s *stubWalletService) CloseModal() {
	if s.closeModalFn != nil {
		s.closeModalFn()
	}
}

func (s *stubWalletService) Session() domain.WalletSession {
	if s.sessionFn == nil {
		return domain.WalletSession{State: domain.ConnStateDisconnected}
	}
	return s.sessionFn()
}

type stubCatalog struct {
	ids []string
}

func (s *stubCatalog) IDs() []string { return s.ids }

func TestWalletHandler_Connect(t *testing.T) {
	t.Parallel()

	var connectedWith string
	svc := &stubWalletService{
		connectFn: func(ctx context.Context, connectorID string) error {
			connectedWith = connectorID
			return nil
		},
		sessionFn: func() domain.WalletSession {
			return domain.WalletSession{
				Address:   "0x1111111111111111111111111111111111111111",
				Connected: true,
				ChainID:   137,
				State:     domain.ConnStateConnected,
			}
		},
	}

	app := newTestApp(t)
	if err := RegisterWalletRoutes(app, svc, &stubCatalog{ids: []string{"metamask"}}); err != nil {
		t.Fatalf("RegisterWalletRoutes() error = %v", err)
	}

	resp := doJSON(t, app, "POST", "/v1/wallet/connect", map[string]any{"connectorId": "metamask"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if connectedWith != "metamask" {
		t.Fatalf("connected with %q, want metamask", connectedWith)
	}

	var body sessionResponse
	decodeJSON(t, resp, &body)
	if !body.Session.Connected {
		t.Fatal("expected connected session in response")
	}
	if body.Session.ChainID != 137 {
		t.Fatalf("chainId = %d, want 137", body.Session.ChainID)
	}
	if len(body.Connectors) != 1 || body.Connectors[0] != "metamask" {
		t.Fatalf("connectors = %v, want [metamask]", body.Connectors)
	}
}

func TestWalletHandler_ConnectRequiresConnectorID(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	if err := RegisterWalletRoutes(app, &stubWalletService{}, &stubCatalog{}); err != nil {
		t.Fatalf("RegisterWalletRoutes() error = %v", err)
	}

	resp := doJSON(t, app, "POST", "/v1/wallet/connect", map[string]any{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestWalletHandler_ConnectUnknownConnector(t *testing.T) {
	t.Parallel()

	svc := &stubWalletService{
		connectFn: func(ctx context.Context, connectorID string) error {
			return fmt.Errorf("%w: connector %q", domain.ErrNotFound, connectorID)
		},
	}

	app := newTestApp(t)
	if err := RegisterWalletRoutes(app, svc, &stubCatalog{}); err != nil {
		t.Fatalf("RegisterWalletRoutes() error = %v", err)
	}

	resp := doJSON(t, app, "POST", "/v1/wallet/connect", map[string]any{"connectorId": "ghost"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestWalletHandler_ConnectAppliesRememberFlag(t *testing.T) {
	t.Parallel()

	var remembered *bool
	svc := &stubWalletService{
		setRememberFn: func(ctx context.Context, remember bool) error {
			remembered = &remember
			return nil
		},
	}

	app := newTestApp(t)
	if err := RegisterWalletRoutes(app, svc, &stubCatalog{}); err != nil {
		t.Fatalf("RegisterWalletRoutes() error = %v", err)
	}

	resp := doJSON(t, app, "POST", "/v1/wallet/connect", map[string]any{
		"connectorId": "metamask",
		"remember":    true,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if remembered == nil || !*remembered {
		t.Fatal("expected remember flag to be applied before connecting")
	}
}

func TestWalletHandler_ModalLifecycle(t *testing.T) {
	t.Parallel()

	opened := 0
	closed := 0
	svc := &stubWalletService{
		openModalFn:  func(pending wallet.PendingAction) { opened++ },
		closeModalFn: func() { closed++ },
	}

	app := newTestApp(t)
	if err := RegisterWalletRoutes(app, svc, &stubCatalog{}); err != nil {
		t.Fatalf("RegisterWalletRoutes() error = %v", err)
	}

	if resp := doJSON(t, app, "POST", "/v1/wallet/modal/open", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("open status = %d, want 200", resp.StatusCode)
	}
	if resp := doJSON(t, app, "POST", "/v1/wallet/modal/close", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("close status = %d, want 200", resp.StatusCode)
	}

	if opened != 1 || closed != 1 {
		t.Fatalf("opened=%d closed=%d, want 1 and 1", opened, closed)
	}
}

func TestWalletHandler_Disconnect(t *testing.T) {
	t.Parallel()

	disconnects := 0
	svc := &stubWalletService{
		disconnectFn: func(ctx context.Context) error {
			disconnects++
			return nil
		},
	}

	app := newTestApp(t)
	if err := RegisterWalletRoutes(app, svc, &stubCatalog{}); err != nil {
		t.Fatalf("RegisterWalletRoutes() error = %v", err)
	}

	resp := doJSON(t, app, "POST", "/v1/wallet/disconnect", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if disconnects != 1 {
		t.Fatalf("disconnects = %d, want 1", disconnects)
	}
}
