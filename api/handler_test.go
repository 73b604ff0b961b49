package api_test

import (
	"bytes"
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/abi/bind/backends"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/params"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"gopkg.in/reform.v1"

	"github.com/dzeckelev/quickpay/api"
	"github.com/dzeckelev/quickpay/auth"
	"github.com/dzeckelev/quickpay/chat"
	"github.com/dzeckelev/quickpay/command"
	"github.com/dzeckelev/quickpay/config"
	"github.com/dzeckelev/quickpay/data"
	"github.com/dzeckelev/quickpay/db"
	"github.com/dzeckelev/quickpay/errs"
	"github.com/dzeckelev/quickpay/eth"
	"github.com/dzeckelev/quickpay/gen"
	"github.com/dzeckelev/quickpay/logging"
	"github.com/dzeckelev/quickpay/reward"
	"github.com/dzeckelev/quickpay/service"
)

const gasLimit uint64 = 8000000

const (
	bob  = "0xa7dba6053a0d631177340e8061bc12f5009ba453"
	hash = "0x64e604787cbf194841e7b68d7cd28786f6c9a0a3ab9f8b0a0e87cb4387ab0107"
)

var txColumns = []string{"tx_hash", "sender", "recipient", "sender_username",
	"recipient_username", "amount", "currency", "purpose", "tag", "timestamp",
	"status", "block"}

var (
	handler   *api.Handler
	router    http.Handler
	dataBase  *reform.DB
	sqlMock   sqlmock.Sqlmock
	ethClient *eth.MockClient
	sender    string
	names     registrar
)

type registrar map[string]string

func (r registrar) Resolve(_ context.Context, name string) (string, error) {
	if addr, ok := r[name]; ok {
		return addr, nil
	}
	return "", &errs.NotFoundError{Kind: "username", Key: name,
		Hint: "Did you mean @bob?"}
}

func (r registrar) UsernameOf(_ context.Context, address string) (string, error) {
	for name, addr := range r {
		if addr == address {
			return name, nil
		}
	}
	return "", errs.NotFound("address", address)
}

func (r registrar) Register(_ context.Context, from,
	name string) (string, error) {
	if _, ok := r[name]; ok {
		return "", errs.Invalid("username", "already taken")
	}
	r[name] = from
	return "0xregistered", nil
}

// transfer pays usernames with plain transfers to their address.
type transfer struct {
	client eth.GethClient
}

func (p transfer) Pay(ctx context.Context, from common.Address, username,
	_ string, value *big.Int) (string, error) {
	return p.client.SendTransaction(ctx, from,
		common.HexToAddress(names[username]), value, nil)
}

func newEthClient() (*eth.MockClient, string) {
	key, _ := crypto.GenerateKey()
	opts, _ := bind.NewKeyedTransactorWithChainID(key, big.NewInt(1337))
	addr := eth.AddressString(opts.From)

	balance := new(big.Int).Mul(big.NewInt(1000), big.NewInt(params.Ether))
	alloc := core.GenesisAlloc{opts.From: {Balance: balance}}
	sim := backends.NewSimulatedBackend(alloc, gasLimit)

	return &eth.MockClient{
		Acc:     map[string]*bind.TransactOpts{addr: opts},
		NetID:   big.NewInt(1337),
		Backend: sim,
	}, addr
}

func txRow(rows *sqlmock.Rows, tx *data.Transaction) *sqlmock.Rows {
	var block driver.Value
	if tx.Block != nil {
		block = int64(*tx.Block)
	}
	return rows.AddRow(tx.Hash, tx.Sender, tx.Recipient, nil, nil, tx.Amount,
		tx.Currency, tx.Purpose, tx.Tag, tx.Timestamp, tx.Status, block)
}

func do(t *testing.T, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}

func checkExpectations(t *testing.T) {
	t.Helper()
	require.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestListTransactions(t *testing.T) {
	tx := &data.Transaction{
		Hash:      hash,
		Sender:    sender,
		Recipient: bob,
		Amount:    "0.5",
		Currency:  "ETH",
		Purpose:   "#lunch",
		Tag:       "#lunch",
		Timestamp: 1700000000000,
		Status:    data.TxCompleted,
	}

	sqlMock.ExpectQuery(`SELECT (.+) FROM "transactions"`).
		WithArgs(sender).
		WillReturnRows(txRow(sqlmock.NewRows(txColumns), tx))

	rec := do(t, http.MethodGet, "/api/transactions?address="+sender, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	checkExpectations(t)

	var payload struct {
		Transactions []service.TransactionView `json:"transactions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Transactions, 1)

	view := payload.Transactions[0]
	require.Equal(t, hash, view.ID)
	require.Equal(t, service.Sent, view.Type)
	require.Equal(t, bob, view.To)
	require.Equal(t, []string{"#lunch"}, view.Tags)
	require.Equal(t, "2023-11-14T22:13:20Z", view.Date)
}

func TestMissingAddress(t *testing.T) {
	for _, target := range []string{"/api/transactions", "/api/rewards",
		"/api/rewards/eligible", "/api/profile?address=%20"} {
		rec := do(t, http.MethodGet, target, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code, target)
		require.Equal(t, "address is required", decode(t, rec)["error"])
	}

	rec := do(t, http.MethodPost, "/api/transactions", map[string]interface{}{
		"txHash": hash, "sender": sender,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "recipient is required", decode(t, rec)["error"])

	rec = do(t, http.MethodPost, "/api/rewards/claim", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecordTransaction(t *testing.T) {
	sqlMock.ExpectQuery(`SELECT (.+) FROM "transactions"`).
		WithArgs(hash).WillReturnRows(sqlmock.NewRows(txColumns))
	sqlMock.ExpectQuery(`INSERT INTO "transactions"`).
		WillReturnRows(sqlmock.NewRows([]string{"tx_hash"}).AddRow(hash))

	rec := do(t, http.MethodPost, "/api/transactions", map[string]interface{}{
		"txHash":    hash,
		"sender":    sender,
		"recipient": bob,
		"amount":    "0.25",
		"purpose":   "Rent",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "Transaction stored successfully",
		decode(t, rec)["message"])
	checkExpectations(t)

	// Duplicate.
	sqlMock.ExpectQuery(`SELECT (.+) FROM "transactions"`).
		WithArgs(hash).WillReturnRows(txRow(sqlmock.NewRows(txColumns),
		&data.Transaction{Hash: hash, Status: data.TxPending}))

	rec = do(t, http.MethodPost, "/api/transactions", map[string]interface{}{
		"txHash":    hash,
		"sender":    sender,
		"recipient": bob,
		"amount":    0.25,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Transaction already exists", decode(t, rec)["message"])
	checkExpectations(t)
}

func TestClaimReward(t *testing.T) {
	sqlMock.ExpectQuery(`SELECT (.+) FROM "transactions"`).
		WithArgs("0xmissing").WillReturnRows(sqlmock.NewRows(txColumns))

	rec := do(t, http.MethodPost, "/api/rewards/claim", map[string]string{
		"address": sender, "transactionId": "0xmissing",
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
	checkExpectations(t)

	tx := &data.Transaction{Hash: hash, Sender: sender, Recipient: bob,
		Amount: "1", Currency: "ETH", Status: data.TxCompleted}

	sqlMock.ExpectQuery(`SELECT (.+) FROM "transactions"`).
		WithArgs(hash).WillReturnRows(txRow(sqlmock.NewRows(txColumns), tx))
	sqlMock.ExpectQuery(`SELECT (.+) FROM "rewards"`).
		WithArgs(sender, hash).WillReturnRows(sqlmock.NewRows(
		[]string{"id", "address", "transaction_id", "amount", "currency",
			"claimed_at", "status"}))
	sqlMock.ExpectQuery(`INSERT INTO "rewards"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("reward-1"))

	rec = do(t, http.MethodPost, "/api/rewards/claim", map[string]string{
		"address": sender, "transactionId": hash,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	checkExpectations(t)

	var payload service.ClaimResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.True(t, payload.Success)
	require.Equal(t, "Reward claimed successfully", payload.Message)
	require.Equal(t, sender, payload.Reward.Address)
	require.Equal(t, hash, payload.Reward.TransactionID)
	require.Equal(t, data.RewardClaimed, payload.Reward.Status)
}

func TestInternalError(t *testing.T) {
	sqlMock.ExpectQuery(`SELECT (.+) FROM "rewards"`).
		WillReturnError(errors.New("connection reset"))

	rec := do(t, http.MethodGet, "/api/rewards?address="+sender, nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "Failed to fetch rewards", decode(t, rec)["error"])
	checkExpectations(t)
}

func TestUsernames(t *testing.T) {
	rec := do(t, http.MethodGet, "/api/usernames/@Bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, bob, decode(t, rec)["address"])

	rec = do(t, http.MethodGet, "/api/usernames/bbo", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "username bbo not found. Did you mean @bob?",
		decode(t, rec)["error"])

	rec = do(t, http.MethodPost, "/api/usernames", map[string]string{
		"address": sender, "username": "@Carol",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	payload := decode(t, rec)
	require.Equal(t, "carol", payload["username"])
	require.Equal(t, "0xregistered", payload["txHash"])

	rec = do(t, http.MethodPost, "/api/usernames", map[string]string{
		"address": sender, "username": "bob",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	rec := do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", decode(t, rec)["status"])
}

func TestChat(t *testing.T) {
	ctx := context.Background()

	opened, err := handler.Open(sender)
	require.NoError(t, err)
	require.NotEmpty(t, opened.Token)
	require.Len(t, opened.Messages, 2)

	res, err := handler.Send(ctx, opened.Token, "send 2 eth to @bob for rent")
	require.NoError(t, err)
	require.Equal(t, chat.StateAwaitingConfirmation, res.State.Name)
	require.Equal(t, "bob", res.State.Payment.Recipient)

	// The confirmed payment is recorded once mined.
	sqlMock.ExpectQuery(`SELECT (.+) FROM "transactions"`).
		WillReturnRows(sqlmock.NewRows(txColumns))
	sqlMock.ExpectQuery(`INSERT INTO "transactions"`).
		WillReturnRows(sqlmock.NewRows([]string{"tx_hash"}).AddRow(hash))

	res, err = handler.Send(ctx, opened.Token, "yes")
	require.NoError(t, err)
	require.Equal(t, chat.StateIdle, res.State.Name)
	require.Len(t, res.Messages, 3)
	require.Equal(t, "✅ Successfully sent 2 ETH to @bob for rent!",
		res.Messages[1].Content)
	require.True(t, strings.HasPrefix(res.Messages[2].Content,
		"Transaction hash: 0x"))
	checkExpectations(t)

	balance, err := eth.Balance(ctx, ethClient, common.HexToAddress(bob))
	require.NoError(t, err)
	require.Equal(t, "2", balance.String())

	state, err := handler.State(opened.Token)
	require.NoError(t, err)
	require.Equal(t, chat.StateIdle, state.State.Name)

	_, err = handler.State("forged")
	require.Error(t, err)

	_, err = handler.Open("not an address")
	require.Error(t, err)
}

func TestChatOverRPC(t *testing.T) {
	srv := rpc.NewServer()
	require.NoError(t, srv.RegisterName("chat", handler))
	defer srv.Stop()

	client := rpc.DialInProc(srv)
	defer client.Close()

	var opened api.OpenResult
	require.NoError(t, client.Call(&opened, "chat_open", ""))
	require.Len(t, opened.Messages, 1)

	var res api.SendResult
	require.NoError(t, client.Call(&res, "chat_send", opened.Token,
		"send 1 eth to @bob"))
	require.Equal(t, "Please connect your wallet first to send payments.",
		res.Messages[0].Content)

	var state api.StateResult
	require.NoError(t, client.Call(&state, "chat_state", opened.Token))
	require.Equal(t, chat.StateIdle, state.State.Name)
}

func testMain(m *testing.M) int {
	var err error
	var sqlDB *sql.DB

	sqlDB, sqlMock, err = sqlmock.New()
	if err != nil {
		return 1
	}

	dataBase = db.NewDB(sqlDB)
	defer db.CloseDB(dataBase)

	ethClient, sender = newEthClient()
	defer ethClient.Backend.Close()

	names = registrar{"bob": bob}
	logger := logging.Discard()
	cfg := config.NewConfig()
	cfg.Payment.ReceiptPause = time.Millisecond

	txs := db.NewTransactions(dataBase)
	ledger := service.NewLedger(txs, db.NewRewards(dataBase), names,
		reward.NewGenerator(nil), gen.NewUUID, logger)
	payments := service.NewPayments(cfg.Payment, ethClient,
		transfer{client: ethClient}, names, txs, logger)

	var n int
	sessions := chat.NewSessions(func() string {
		n++
		return fmt.Sprintf("session-%d", n)
	})
	bot := chat.NewBot(command.NewInterpreter(nil), payments, nil,
		cfg.Payment.NativeSymbol, logger)

	cfg.Auth.Secret = "test"
	handler = api.NewHandler(sessions, bot, auth.NewTokens(cfg.Auth), logger)

	router = api.NewRouter(logger, api.RouterDependencies{
		REST:   api.NewRESTHandlers(logger, ledger, names),
		Health: api.NodeHealth{Client: ethClient},
	})

	return m.Run()
}

func TestMain(m *testing.M) {
	os.Exit(testMain(m))
}
