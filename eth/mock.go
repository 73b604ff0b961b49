package eth

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/abi/bind/backends"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

// MockClient is a GethClient over a simulated blockchain. Every sent
// transaction is mined immediately.
type MockClient struct {
	Acc     map[string]*bind.TransactOpts
	NetID   *big.Int
	Backend *backends.SimulatedBackend
}

// SendTransaction signs the transaction with a known account.
func (c *MockClient) SendTransaction(ctx context.Context, from,
	to common.Address, amount *big.Int, data []byte) (string, error) {
	acc, ok := c.Acc[strings.ToLower(from.String())]
	if !ok {
		return "", errors.Errorf("unknown account %s", from.Hex())
	}

	nonce, err := c.Backend.PendingNonceAt(ctx, acc.From)
	if err != nil {
		return "", err
	}

	gasPrice, err := c.Backend.SuggestGasPrice(ctx)
	if err != nil {
		return "", err
	}

	gas, err := c.Backend.EstimateGas(ctx, ethereum.CallMsg{
		From:  acc.From,
		To:    &to,
		Value: amount,
		Data:  data,
	})
	if err != nil {
		return "", errors.Wrap(err, "estimate gas")
	}

	rawTx := types.NewTransaction(nonce, to, amount, gas, gasPrice, data)

	signTx, err := acc.Signer(acc.From, rawTx)
	if err != nil {
		return "", err
	}

	if err := c.Backend.SendTransaction(ctx, signTx); err != nil {
		return "", err
	}
	c.Backend.Commit()

	return HashString(signTx.Hash()), nil
}

func (c *MockClient) NetworkID(ctx context.Context) (*big.Int, error) {
	return c.NetID, nil
}

func (c *MockClient) HeaderByNumber(ctx context.Context,
	number *big.Int) (*types.Header, error) {
	return c.Backend.HeaderByNumber(ctx, number)
}

// TransactionReceipt reports ethereum.NotFound for unknown transactions, as
// the node does.
func (c *MockClient) TransactionReceipt(ctx context.Context,
	txHash common.Hash) (*types.Receipt, error) {
	receipt, err := c.Backend.TransactionReceipt(ctx, txHash)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, ethereum.NotFound
	}
	return receipt, nil
}

func (c *MockClient) BalanceAt(ctx context.Context, account common.Address,
	blockNumber *big.Int) (*big.Int, error) {
	return c.Backend.BalanceAt(ctx, account, blockNumber)
}

func (c *MockClient) CallContract(ctx context.Context, msg ethereum.CallMsg,
	blockNumber *big.Int) ([]byte, error) {
	return c.Backend.CallContract(ctx, msg, blockNumber)
}

// SyncProgress always reports a synchronized node.
func (c *MockClient) SyncProgress(
	ctx context.Context) (*ethereum.SyncProgress, error) {
	return nil, nil
}
