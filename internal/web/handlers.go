package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/centavo-app/centavo/internal/domain"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type balanceResponse struct {
	AsOf     string `json:"as_of"`
	Currency string `json:"currency"`
	Balance  string `json:"balance"`
}

type accountBalanceItem struct {
	AccountID        string `json:"account_id"`
	AccountName      string `json:"account_name"`
	Currency         string `json:"currency"`
	BalanceNative    string `json:"balance_native"`
	BalanceConverted string `json:"balance_converted"`
}

type balanceAccountsResponse struct {
	AsOf     string               `json:"as_of"`
	Currency string               `json:"currency"`
	Accounts []accountBalanceItem `json:"accounts"`
	Total    string               `json:"total"`
}

type balancePointDTO struct {
	Date    string `json:"date"`
	Balance string `json:"balance"`
}

type balanceHistoryResponse struct {
	Currency string            `json:"currency"`
	Period   string            `json:"period"`
	Points   []balancePointDTO `json:"points"`
}

type accountResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	Currency       string `json:"currency"`
	InitialBalance string `json:"initial_balance"`
	CreatedAt      string `json:"created_at"`
}

type accountBalanceResponse struct {
	AccountID string `json:"account_id"`
	AsOf      string `json:"as_of"`
	Currency  string `json:"currency"`
	Balance   string `json:"balance"`
}

type transactionResponse struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`
	Type      string `json:"type"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
	Date      string `json:"date"`
}

type createAccountRequest struct {
	UserID         string `json:"user_id"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	Currency       string `json:"currency"`
	InitialBalance string `json:"initial_balance"`
}

type transactionRequest struct {
	UserID    string `json:"user_id"`
	AccountID string `json:"account_id"`
	Type      string `json:"type"`
	Amount    string `json:"amount"`
	Date      string `json:"date"`
}

func (s *Server) handleTotalBalance(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	asOf, err := dateFromQuery(r, "as_of", time.Now().UTC())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	currency := currencyFromQuery(r, s.baseCurrency)

	total, err := s.balance.TotalBalance(r.Context(), userID, asOf, currency)
	if err != nil {
		s.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, balanceResponse{
		AsOf:     asOf.Format(time.DateOnly),
		Currency: currency,
		Balance:  total.StringFixed(2),
	})
}

func (s *Server) handleAccountsBalance(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	asOf, err := dateFromQuery(r, "as_of", time.Now().UTC())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	currency := currencyFromQuery(r, s.baseCurrency)

	accounts, total, err := s.balance.AccountsBalance(r.Context(), userID, asOf, currency)
	if err != nil {
		s.respondError(w, err)
		return
	}

	items := make([]accountBalanceItem, 0, len(accounts))
	for _, a := range accounts {
		items = append(items, accountBalanceItem{
			AccountID:        a.AccountID.String(),
			AccountName:      a.AccountName,
			Currency:         a.Currency,
			BalanceNative:    a.Native.StringFixed(2),
			BalanceConverted: a.Converted.StringFixed(2),
		})
	}

	writeJSON(w, http.StatusOK, balanceAccountsResponse{
		AsOf:     asOf.Format(time.DateOnly),
		Currency: currency,
		Accounts: items,
		Total:    total.StringFixed(2),
	})
}

func (s *Server) handleBalanceHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	from, err := requiredDateFromQuery(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := requiredDateFromQuery(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	period := domain.PeriodMonth
	if raw := r.URL.Query().Get("period"); raw != "" {
		period = domain.Period(raw)
	}

	currency := currencyFromQuery(r, s.baseCurrency)

	var accountID *uuid.UUID
	if raw := r.URL.Query().Get("account_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "account_id must be a valid uuid")
			return
		}
		accountID = &id
	}

	points, err := s.balance.BalanceHistory(r.Context(), userID, from, to, period, currency, accountID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	dtos := make([]balancePointDTO, 0, len(points))
	for _, p := range points {
		dtos = append(dtos, balancePointDTO{
			Date:    p.Date.Format(time.DateOnly),
			Balance: p.Balance.StringFixed(2),
		})
	}

	writeJSON(w, http.StatusOK, balanceHistoryResponse{
		Currency: currency,
		Period:   period.String(),
		Points:   dtos,
	})
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	accounts, err := s.ledger.Accounts(r.Context(), userID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	items := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		items = append(items, toAccountResponse(a))
	}

	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "user_id must be a valid uuid")
		return
	}

	initial := decimal.Zero
	if req.InitialBalance != "" {
		if initial, err = decimal.NewFromString(req.InitialBalance); err != nil {
			writeError(w, http.StatusBadRequest, "initial_balance must be a decimal number")
			return
		}
	}

	account, err := s.ledger.CreateAccount(r.Context(), userID, req.Name, domain.AccountType(req.Type), req.Currency, initial)
	if err != nil {
		s.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAccountResponse(account))
}

func (s *Server) handleRemoveAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	userID, err := userIDFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.ledger.RemoveAccount(r.Context(), userID, accountID); err != nil {
		s.respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAccountBalance(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	asOf, err := dateFromQuery(r, "as_of", time.Now().UTC())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	balance, currency, err := s.balance.AccountBalance(r.Context(), accountID, asOf)
	if err != nil {
		s.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, accountBalanceResponse{
		AccountID: accountID.String(),
		AsOf:      asOf.Format(time.DateOnly),
		Currency:  currency,
		Balance:   balance.StringFixed(2),
	})
}

func (s *Server) handleRecordTransaction(w http.ResponseWriter, r *http.Request) {
	req, userID, accountID, amount, date, ok := s.decodeTransaction(w, r)
	if !ok {
		return
	}

	tx, err := s.ledger.Record(r.Context(), userID, accountID, domain.TransactionType(req.Type), amount, date)
	if err != nil {
		s.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	txID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req, userID, accountID, amount, date, ok := s.decodeTransaction(w, r)
	if !ok {
		return
	}

	tx, err := s.ledger.Update(r.Context(), userID, txID, accountID, domain.TransactionType(req.Type), amount, date)
	if err != nil {
		s.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTransactionResponse(tx))
}

func (s *Server) handleRemoveTransaction(w http.ResponseWriter, r *http.Request) {
	txID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	userID, err := userIDFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.ledger.Remove(r.Context(), userID, txID); err != nil {
		s.respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// decodeTransaction parses the shared body of the transaction create and
// update handlers, writing the 400 response itself when the body is bad.
func (s *Server) decodeTransaction(w http.ResponseWriter, r *http.Request) (transactionRequest, uuid.UUID, uuid.UUID, decimal.Decimal, time.Time, bool) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, uuid.Nil, uuid.Nil, decimal.Zero, time.Time{}, false
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "user_id must be a valid uuid")
		return req, uuid.Nil, uuid.Nil, decimal.Zero, time.Time{}, false
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "account_id must be a valid uuid")
		return req, uuid.Nil, uuid.Nil, decimal.Zero, time.Time{}, false
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "amount must be a decimal number")
		return req, uuid.Nil, uuid.Nil, decimal.Zero, time.Time{}, false
	}

	date, err := parseDate(req.Date, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return req, uuid.Nil, uuid.Nil, decimal.Zero, time.Time{}, false
	}

	return req, userID, accountID, amount, date, true
}

// respondError maps service errors onto HTTP statuses. Unrecognized
// errors are logged and hidden behind a generic 500.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound), errors.Is(err, domain.ErrTransactionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidDateRange),
		errors.Is(err, domain.ErrUnsupportedPeriod):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func toAccountResponse(a domain.Account) accountResponse {
	return accountResponse{
		ID:             a.ID.String(),
		Name:           a.Name,
		Type:           a.Type.String(),
		Currency:       a.Currency,
		InitialBalance: a.InitialBalance.StringFixed(2),
		CreatedAt:      a.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toTransactionResponse(tx domain.Transaction) transactionResponse {
	return transactionResponse{
		ID:        tx.ID.String(),
		AccountID: tx.AccountID.String(),
		Type:      tx.Type.String(),
		Amount:    tx.Amount.StringFixed(2),
		Currency:  tx.Currency,
		Date:      tx.Date.Format(time.DateOnly),
	}
}

func userIDFromQuery(r *http.Request) (uuid.UUID, error) {
	raw := r.URL.Query().Get("user_id")
	if raw == "" {
		return uuid.Nil, errors.New("user_id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.New("user_id must be a valid uuid")
	}
	return id, nil
}

func currencyFromQuery(r *http.Request, fallback string) string {
	if raw := r.URL.Query().Get("currency"); raw != "" {
		return raw
	}
	return fallback
}

func dateFromQuery(r *http.Request, name string, fallback time.Time) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return domain.DateOf(fallback), nil
	}
	return parseDate(raw, name)
}

func requiredDateFromQuery(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, errors.Errorf("%s is required", name)
	}
	return parseDate(raw, name)
}

func parseDate(raw, name string) (time.Time, error) {
	d, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, errors.Errorf("%s must be a date formatted as YYYY-MM-DD", name)
	}
	return domain.DateOf(d), nil
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, errors.New("id must be a valid uuid")
	}
	return id, nil
}
