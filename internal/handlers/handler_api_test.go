package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/yaaccu/yaaccu_app/internal/core/domain"
	portssvc "github.com/yaaccu/yaaccu_app/internal/core/ports/services"
	"github.com/yaaccu/yaaccu_app/internal/core/services"
	"github.com/yaaccu/yaaccu_app/internal/dto"
	"github.com/yaaccu/yaaccu_app/internal/handlers"
	"github.com/yaaccu/yaaccu_app/internal/middleware"
	"github.com/yaaccu/yaaccu_app/internal/repositories/memory"
	"github.com/yaaccu/yaaccu_app/internal/utils"
	"github.com/yaaccu/yaaccu_app/pkg/config"
)

// APITestSuite drives the HTTP surface end to end against the in-memory
// store: real services, real middleware, real binding.
type APITestSuite struct {
	suite.Suite
	router *gin.Engine
	store  *memory.Store
	ledger portssvc.LedgerSvcFacade
	bank   domain.Account
}

func (suite *APITestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	suite.store = memory.NewStore()
	container := &portssvc.ServiceContainer{
		Account:  services.NewAccountService(suite.store, time.Hour, time.Hour),
		Currency: services.NewCurrencyService(suite.store),
		Ledger:   services.NewLedgerService(suite.store),
	}
	suite.ledger = container.Ledger

	cfg := &config.Config{
		Port:                "8080",
		TokenExpiryDuration: time.Hour,
		ProofExpiryDuration: time.Hour,
	}

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	suite.router = gin.New()
	suite.router.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	handlers.RegisterRoutes(suite.router, cfg, container)

	bank, err := suite.store.SaveAccount(ctx, domain.Account{Address: "0xbank", Type: domain.Passive})
	suite.Require().NoError(err)
	suite.bank = *bank
}

func (suite *APITestSuite) doJSON(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(middleware.TokenHeader, token)
	}
	rec := httptest.NewRecorder()
	suite.router.ServeHTTP(rec, req)
	return rec
}

// newFundedAccount creates an account through the insecure endpoint and funds
// it from the passive bank account.
func (suite *APITestSuite) newFundedAccount(amount int64, currency domain.Currency) dto.InsecureAccountResponse {
	rec := suite.doJSON(http.MethodPost, "/api/v1/accounts/insecure", nil, "")
	suite.Require().Equal(http.StatusCreated, rec.Code)

	var resp dto.InsecureAccountResponse
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))

	if amount > 0 {
		ctx := context.Background()
		account, err := suite.store.FindAccountByAddress(ctx, resp.Account)
		suite.Require().NoError(err)
		_, _, err = suite.ledger.CreateTransfer(ctx, suite.bank, *account, decimal.NewFromInt(amount), currency)
		suite.Require().NoError(err)
	}
	return resp
}

func (suite *APITestSuite) createCurrency(name, symbol string) domain.Currency {
	rec := suite.doJSON(http.MethodPost, "/api/v1/currencies", dto.CreateCurrencyRequest{Name: name, Symbol: symbol}, "")
	suite.Require().Equal(http.StatusCreated, rec.Code)
	var resp dto.CurrencyResponse
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	return domain.Currency{ID: resp.ID, Name: resp.Name, Symbol: resp.Symbol}
}

func (suite *APITestSuite) TestHome() {
	rec := suite.doJSON(http.MethodGet, "/", nil, "")
	suite.Equal(http.StatusOK, rec.Code)
}

func (suite *APITestSuite) TestCreateAccount() {
	priv, _, pubPEM, err := utils.GenerateKeyPair()
	suite.Require().NoError(err)
	timestamp := time.Now().Unix()
	sign, err := utils.SignAccountProof(priv, pubPEM, timestamp)
	suite.Require().NoError(err)

	req := dto.CreateAccountRequest{PubKey: pubPEM, Timestamp: timestamp, Sign: sign}
	rec := suite.doJSON(http.MethodPost, "/api/v1/accounts", req, "")
	suite.Require().Equal(http.StatusCreated, rec.Code)

	var resp dto.AccountResponse
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	suite.Equal(utils.PubKeyToAddress(pubPEM), resp.Account)

	// Same proof again: the account already exists.
	rec = suite.doJSON(http.MethodPost, "/api/v1/accounts", req, "")
	suite.Equal(http.StatusConflict, rec.Code)

	// Tampering with the timestamp breaks the signature.
	req.Timestamp++
	rec = suite.doJSON(http.MethodPost, "/api/v1/accounts", req, "")
	suite.Equal(http.StatusBadRequest, rec.Code)
}

func (suite *APITestSuite) TestCreateAccount_MissingFields() {
	rec := suite.doJSON(http.MethodPost, "/api/v1/accounts", gin.H{"pub_key": "only-a-key"}, "")
	suite.Equal(http.StatusBadRequest, rec.Code)
}

func (suite *APITestSuite) TestBalanceRequiresToken() {
	rec := suite.doJSON(http.MethodGet, "/api/v1/balance", nil, "")
	suite.Equal(http.StatusForbidden, rec.Code)

	rec = suite.doJSON(http.MethodGet, "/api/v1/balance", nil, "not-a-token")
	suite.Equal(http.StatusForbidden, rec.Code)
}

func (suite *APITestSuite) TestBalance() {
	usd := suite.createCurrency("US Dollar", "USD")
	account := suite.newFundedAccount(100, usd)

	rec := suite.doJSON(http.MethodGet, "/api/v1/balance", nil, account.Token)
	suite.Require().Equal(http.StatusOK, rec.Code)

	var resp dto.BalanceResponse
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	suite.Equal(account.Account, resp.Account)
	suite.True(resp.Balance.Equal(decimal.NewFromInt(100)))
}

func (suite *APITestSuite) TestTransfer() {
	usd := suite.createCurrency("US Dollar", "USD")
	sender := suite.newFundedAccount(100, usd)
	receiver := suite.newFundedAccount(0, usd)

	body := gin.H{"receiver": receiver.Account, "currency": "USD", "amount": "60"}
	rec := suite.doJSON(http.MethodPost, "/api/v1/transfers", body, sender.Token)
	suite.Require().Equal(http.StatusOK, rec.Code)

	var resp dto.DocumentResponse
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	suite.True(resp.Committed)
	suite.Len(resp.Operations, 2)

	// Overdraft: only 40 left.
	rec = suite.doJSON(http.MethodPost, "/api/v1/transfers", body, sender.Token)
	suite.Equal(http.StatusBadRequest, rec.Code)

	// Receiver's side of the story.
	rec = suite.doJSON(http.MethodGet, "/api/v1/balance", nil, receiver.Token)
	suite.Require().Equal(http.StatusOK, rec.Code)
	var balance dto.BalanceResponse
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &balance))
	suite.True(balance.Balance.Equal(decimal.NewFromInt(60)))
}

func (suite *APITestSuite) TestTransfer_BadRequests() {
	usd := suite.createCurrency("US Dollar", "USD")
	sender := suite.newFundedAccount(100, usd)
	receiver := suite.newFundedAccount(0, usd)

	// Unknown currency.
	body := gin.H{"receiver": receiver.Account, "currency": "XXX", "amount": "10"}
	rec := suite.doJSON(http.MethodPost, "/api/v1/transfers", body, sender.Token)
	suite.Equal(http.StatusBadRequest, rec.Code)

	// Unknown receiver.
	body = gin.H{"receiver": "0xnobody", "currency": "USD", "amount": "10"}
	rec = suite.doJSON(http.MethodPost, "/api/v1/transfers", body, sender.Token)
	suite.Equal(http.StatusBadRequest, rec.Code)

	// Non-positive amounts never reach the service.
	body = gin.H{"receiver": receiver.Account, "currency": "USD", "amount": "0"}
	rec = suite.doJSON(http.MethodPost, "/api/v1/transfers", body, sender.Token)
	suite.Equal(http.StatusBadRequest, rec.Code)

	body = gin.H{"receiver": receiver.Account, "currency": "USD", "amount": "-5"}
	rec = suite.doJSON(http.MethodPost, "/api/v1/transfers", body, sender.Token)
	suite.Equal(http.StatusBadRequest, rec.Code)

	// No token at all.
	body = gin.H{"receiver": receiver.Account, "currency": "USD", "amount": "10"}
	rec = suite.doJSON(http.MethodPost, "/api/v1/transfers", body, "")
	suite.Equal(http.StatusForbidden, rec.Code)
}

func (suite *APITestSuite) TestGetTransfer() {
	usd := suite.createCurrency("US Dollar", "USD")
	sender := suite.newFundedAccount(100, usd)
	receiver := suite.newFundedAccount(0, usd)

	body := gin.H{"receiver": receiver.Account, "currency": "USD", "amount": "25"}
	rec := suite.doJSON(http.MethodPost, "/api/v1/transfers", body, sender.Token)
	suite.Require().Equal(http.StatusOK, rec.Code)
	var created dto.DocumentResponse
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &created))

	rec = suite.doJSON(http.MethodGet, "/api/v1/transfers/2", nil, sender.Token)
	suite.Require().Equal(http.StatusOK, rec.Code)

	rec = suite.doJSON(http.MethodGet, "/api/v1/transfers/999", nil, sender.Token)
	suite.Equal(http.StatusNotFound, rec.Code)

	rec = suite.doJSON(http.MethodGet, "/api/v1/transfers/abc", nil, sender.Token)
	suite.Equal(http.StatusBadRequest, rec.Code)
}

func (suite *APITestSuite) TestCurrencies() {
	suite.createCurrency("US Dollar", "USD")

	rec := suite.doJSON(http.MethodPost, "/api/v1/currencies", dto.CreateCurrencyRequest{Name: "US Dollar", Symbol: "USD"}, "")
	suite.Equal(http.StatusConflict, rec.Code)

	rec = suite.doJSON(http.MethodGet, "/api/v1/currencies", nil, "")
	suite.Require().Equal(http.StatusOK, rec.Code)
	var list []dto.CurrencyResponse
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &list))
	suite.Len(list, 1)

	rec = suite.doJSON(http.MethodGet, "/api/v1/currencies/USD", nil, "")
	suite.Equal(http.StatusOK, rec.Code)
	rec = suite.doJSON(http.MethodGet, "/api/v1/currencies/EUR", nil, "")
	suite.Equal(http.StatusNotFound, rec.Code)
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}
