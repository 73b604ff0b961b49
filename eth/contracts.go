package eth

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// RegistryABI is the username registry contract interface.
const RegistryABI = `[
{"type":"function","name":"registerUsername","stateMutability":"nonpayable",
 "inputs":[{"name":"username","type":"string"}],"outputs":[]},
{"type":"function","name":"getAddressByUsername","stateMutability":"view",
 "inputs":[{"name":"username","type":"string"}],
 "outputs":[{"name":"","type":"address"}]},
{"type":"function","name":"getUsernameByAddress","stateMutability":"view",
 "inputs":[{"name":"userAddress","type":"address"}],
 "outputs":[{"name":"","type":"string"}]},
{"type":"function","name":"isUsernameRegistered","stateMutability":"view",
 "inputs":[{"name":"username","type":"string"}],
 "outputs":[{"name":"","type":"bool"}]}
]`

// QuickPayABI is the payment contract interface.
const QuickPayABI = `[
{"type":"function","name":"sendPaymentByUsername","stateMutability":"payable",
 "inputs":[{"name":"username","type":"string"},{"name":"purpose","type":"string"}],
 "outputs":[]}
]`

// contract binds an ABI to a deployed address.
type contract struct {
	client  GethClient
	address common.Address
	abi     abi.ABI
}

func newContract(client GethClient, address common.Address,
	definition string) (*contract, error) {
	parsed, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		return nil, errors.Wrap(err, "parse abi")
	}
	return &contract{client: client, address: address, abi: parsed}, nil
}

func (c *contract) call(ctx context.Context, method string,
	args ...interface{}) ([]interface{}, error) {
	input, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "pack %s", method)
	}

	output, err := c.client.CallContract(ctx, ethereum.CallMsg{
		To:   &c.address,
		Data: input,
	}, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "call %s", method)
	}

	values, err := c.abi.Unpack(method, output)
	if err != nil {
		return nil, errors.Wrapf(err, "unpack %s", method)
	}
	if len(values) == 0 {
		return nil, errors.Errorf("%s returned nothing", method)
	}
	return values, nil
}

func (c *contract) transact(ctx context.Context, from common.Address,
	value *big.Int, method string, args ...interface{}) (string, error) {
	input, err := c.abi.Pack(method, args...)
	if err != nil {
		return "", errors.Wrapf(err, "pack %s", method)
	}

	if value == nil {
		value = new(big.Int)
	}

	hash, err := c.client.SendTransaction(ctx, from, c.address, value, input)
	return hash, errors.Wrapf(err, "send %s", method)
}

// Registry is the on-chain username registry.
type Registry struct {
	c *contract
}

// NewRegistry binds the registry deployed at address.
func NewRegistry(client GethClient, address common.Address) (*Registry, error) {
	c, err := newContract(client, address, RegistryABI)
	if err != nil {
		return nil, err
	}
	return &Registry{c: c}, nil
}

// AddressOf returns the address registered for username. The zero address
// means the name is free.
func (r *Registry) AddressOf(ctx context.Context,
	username string) (common.Address, error) {
	values, err := r.c.call(ctx, "getAddressByUsername", username)
	if err != nil {
		return common.Address{}, err
	}

	addr, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, errors.New("unexpected address type")
	}
	return addr, nil
}

// UsernameOf returns the name registered by addr, empty when none.
func (r *Registry) UsernameOf(ctx context.Context,
	addr common.Address) (string, error) {
	values, err := r.c.call(ctx, "getUsernameByAddress", addr)
	if err != nil {
		return "", err
	}

	name, ok := values[0].(string)
	if !ok {
		return "", errors.New("unexpected username type")
	}
	return name, nil
}

// IsRegistered reports whether username is taken.
func (r *Registry) IsRegistered(ctx context.Context,
	username string) (bool, error) {
	values, err := r.c.call(ctx, "isUsernameRegistered", username)
	if err != nil {
		return false, err
	}

	taken, ok := values[0].(bool)
	if !ok {
		return false, errors.New("unexpected registration type")
	}
	return taken, nil
}

// Register registers username for from and returns the transaction hash.
func (r *Registry) Register(ctx context.Context, from common.Address,
	username string) (string, error) {
	return r.c.transact(ctx, from, nil, "registerUsername", username)
}

// QuickPay is the payment contract forwarding value to a username.
type QuickPay struct {
	c *contract
}

// NewQuickPay binds the payment contract deployed at address.
func NewQuickPay(client GethClient, address common.Address) (*QuickPay, error) {
	c, err := newContract(client, address, QuickPayABI)
	if err != nil {
		return nil, err
	}
	return &QuickPay{c: c}, nil
}

// Pay sends value wei from from to the owner of username.
func (q *QuickPay) Pay(ctx context.Context, from common.Address,
	username, purpose string, value *big.Int) (string, error) {
	return q.c.transact(ctx, from, value, "sendPaymentByUsername",
		username, purpose)
}
