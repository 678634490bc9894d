// Package web exposes the reporting and ledger API over HTTP/JSON.
package web

import (
	"context"
	"crypto/tls"
	"net/http"
	"time"

	"github.com/centavo-app/centavo/internal/domain"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"
)

type balanceReader interface {
	TotalBalance(ctx context.Context, userID uuid.UUID, asOf time.Time, baseCurrency string) (decimal.Decimal, error)
	AccountsBalance(ctx context.Context, userID uuid.UUID, asOf time.Time, baseCurrency string) ([]domain.AccountBalance, decimal.Decimal, error)
	BalanceHistory(ctx context.Context, userID uuid.UUID, from, to time.Time, period domain.Period, baseCurrency string, accountID *uuid.UUID) ([]domain.BalancePoint, error)
	AccountBalance(ctx context.Context, accountID uuid.UUID, asOf time.Time) (decimal.Decimal, string, error)
}

type ledgerWriter interface {
	CreateAccount(ctx context.Context, userID uuid.UUID, name string, accountType domain.AccountType, currency string, initialBalance decimal.Decimal) (domain.Account, error)
	Accounts(ctx context.Context, userID uuid.UUID) ([]domain.Account, error)
	RemoveAccount(ctx context.Context, userID, accountID uuid.UUID) error
	Record(ctx context.Context, userID, accountID uuid.UUID, txType domain.TransactionType, amount decimal.Decimal, date time.Time) (domain.Transaction, error)
	Update(ctx context.Context, userID, txID, accountID uuid.UUID, txType domain.TransactionType, amount decimal.Decimal, date time.Time) (domain.Transaction, error)
	Remove(ctx context.Context, userID, txID uuid.UUID) error
}

// Server exposes the balance reports and the ledger write path over HTTP.
type Server struct {
	addr         string
	baseCurrency string
	balance      balanceReader
	ledger       ledgerWriter
	logger       *zap.Logger
}

// NewServer creates a new API server instance. baseCurrency is the
// default conversion currency for reports when the request names none.
func NewServer(addr, baseCurrency string, balance balanceReader, ledger ledgerWriter, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		addr:         addr,
		baseCurrency: baseCurrency,
		balance:      balance,
		ledger:       ledger,
		logger:       logger,
	}
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is
// cancelled.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("http server listening", zap.String("addr", s.addr))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "http server failed")
	}
	return nil
}

// StartWithAutoTLS runs the API over HTTPS with certificates obtained via
// ACME. A plain HTTP listener on port 80 answers the HTTP-01 challenges.
func (s *Server) StartWithAutoTLS(ctx context.Context, domains []string, cacheDir string) error {
	if len(domains) == 0 {
		return errors.New("no domains provided for automatic TLS")
	}
	if cacheDir == "" {
		cacheDir = "cert-cache"
	}

	manager := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(domains...),
		Cache:      autocert.DirCache(cacheDir),
	}

	challengeSrv := &http.Server{
		Addr:              ":80",
		Handler:           manager.HTTPHandler(nil),
		ReadHeaderTimeout: 5 * time.Second,
	}

	tlsConfig := manager.TLSConfig()
	tlsConfig.MinVersion = tls.VersionTLS12

	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		TLSConfig:         tlsConfig,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = challengeSrv.Shutdown(shutdownCtx)
		_ = server.Shutdown(shutdownCtx)
	}()

	go func() {
		if err := challengeSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("acme challenge server failed", zap.Error(err))
		}
	}()

	s.logger.Info("https server listening", zap.String("addr", s.addr), zap.Strings("domains", domains))

	if err := server.ListenAndServeTLS("", ""); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "https server failed")
	}
	return nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /reporting/balance", s.handleTotalBalance)
	mux.HandleFunc("GET /reporting/balance/accounts", s.handleAccountsBalance)
	mux.HandleFunc("GET /reporting/balance/history", s.handleBalanceHistory)

	mux.HandleFunc("GET /accounts", s.handleListAccounts)
	mux.HandleFunc("POST /accounts", s.handleCreateAccount)
	mux.HandleFunc("DELETE /accounts/{id}", s.handleRemoveAccount)
	mux.HandleFunc("GET /accounts/{id}/balance", s.handleAccountBalance)

	mux.HandleFunc("POST /transactions", s.handleRecordTransaction)
	mux.HandleFunc("PUT /transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /transactions/{id}", s.handleRemoveTransaction)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return recovery(s.logger, logging(s.logger, mux))
}
