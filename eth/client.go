package eth

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
)

// GethClient describes Ethereum client interface.
type GethClient interface {
	SendTransaction(ctx context.Context, from, to common.Address,
		amount *big.Int, data []byte) (string, error)
	NetworkID(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	TransactionReceipt(ctx context.Context,
		txHash common.Hash) (*types.Receipt, error)
	BalanceAt(ctx context.Context, account common.Address,
		blockNumber *big.Int) (*big.Int, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg,
		blockNumber *big.Int) ([]byte, error)
	SyncProgress(ctx context.Context) (*ethereum.SyncProgress, error)
}

// Client is an Ethereum JSON-RPC client.
type Client struct {
	rpcCli *rpc.Client
	ethCli *ethclient.Client
}

// SendTxArgs is an arguments to send transaction.
type SendTxArgs struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Gas      string `json:"gas"`
	GasPrice string `json:"gasPrice"`
	Value    string `json:"value"`
	Data     string `json:"data,omitempty"`
}

// NewClient creates a new  Ethereum JSON-RPC client.
func NewClient(ctx context.Context, url string) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", url)
	}

	return &Client{
		rpcCli: rpcClient,
		ethCli: ethclient.NewClient(rpcClient),
	}, nil
}

// Close closes an Ethereum JSON-RPC client.
func (c *Client) Close() {
	c.rpcCli.Close()
}

// SendTransaction sends a transaction through Geth node and returns its
// hash. Account must be unlocked.
func (c *Client) SendTransaction(ctx context.Context, from, to common.Address,
	amount *big.Int, data []byte) (string, error) {
	gasPrice, err := c.ethCli.SuggestGasPrice(ctx)
	if err != nil {
		return "", err
	}

	gas, err := c.ethCli.EstimateGas(ctx, ethereum.CallMsg{
		From:  from,
		To:    &to,
		Value: amount,
		Data:  data,
	})
	if err != nil {
		return "", errors.Wrap(err, "estimate gas")
	}

	args := SendTxArgs{
		From:     from.Hex(),
		To:       to.Hex(),
		Gas:      hexutil.EncodeUint64(gas),
		GasPrice: hexutil.EncodeBig(gasPrice),
		Value:    hexutil.EncodeBig(amount),
	}
	if len(data) > 0 {
		args.Data = hexutil.Encode(data)
	}

	var result common.Hash
	if err := c.rpcCli.CallContext(ctx, &result,
		"eth_sendTransaction", args); err != nil {
		return "", err
	}

	return HashString(result), nil
}

func (c *Client) NetworkID(ctx context.Context) (*big.Int, error) {
	return c.ethCli.NetworkID(ctx)
}

func (c *Client) HeaderByNumber(ctx context.Context,
	number *big.Int) (*types.Header, error) {
	return c.ethCli.HeaderByNumber(ctx, number)
}

func (c *Client) TransactionReceipt(ctx context.Context,
	txHash common.Hash) (*types.Receipt, error) {
	return c.ethCli.TransactionReceipt(ctx, txHash)
}

func (c *Client) BalanceAt(ctx context.Context, account common.Address,
	blockNumber *big.Int) (*big.Int, error) {
	return c.ethCli.BalanceAt(ctx, account, blockNumber)
}

func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg,
	blockNumber *big.Int) ([]byte, error) {
	return c.ethCli.CallContract(ctx, msg, blockNumber)
}

func (c *Client) SyncProgress(
	ctx context.Context) (*ethereum.SyncProgress, error) {
	return c.ethCli.SyncProgress(ctx)
}
