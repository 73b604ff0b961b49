// Package registry resolves usernames through the on-chain registry with a
// local cache consulted when the chain is unreachable.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/ethereum/go-ethereum/common"

	"github.com/dzeckelev/quickpay/data"
	"github.com/dzeckelev/quickpay/errs"
)

const service = "username registry"

// maxSuggestDistance bounds "did you mean" suggestions.
const maxSuggestDistance = 2

var hexAddress = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

var usernameRe = regexp.MustCompile(`^[a-z0-9_]{1,32}$`)

// Remote is the authoritative registry.
type Remote interface {
	AddressOf(ctx context.Context, username string) (common.Address, error)
	UsernameOf(ctx context.Context, addr common.Address) (string, error)
	IsRegistered(ctx context.Context, username string) (bool, error)
	Register(ctx context.Context, from common.Address,
		username string) (string, error)
}

// Cache is the best-effort local copy of the registry.
type Cache interface {
	Save(ctx context.Context, username, address string, at time.Time) error
	ByName(ctx context.Context, username string) (*data.Username, error)
	ByAddress(ctx context.Context, address string) (*data.Username, error)
	Names(ctx context.Context) ([]string, error)
}

// Resolver looks names up remotely first. A remote answer always overwrites
// the cache; the cache only answers when the remote call fails.
type Resolver struct {
	remote Remote
	cache  Cache
	logger *slog.Logger
	now    func() time.Time
}

// NewResolver creates a resolver.
func NewResolver(remote Remote, cache Cache, logger *slog.Logger) *Resolver {
	return &Resolver{
		remote: remote,
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}
}

// Normalize strips the @ marker and lower-cases a username.
func Normalize(username string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(username), "@"))
}

// IsAddress reports whether s is a 0x-prefixed 20 byte hex address.
func IsAddress(s string) bool {
	return hexAddress.MatchString(s)
}

// Resolve returns the lower-cased address registered for username. A hex
// address is returned as is.
func (r *Resolver) Resolve(ctx context.Context, username string) (string, error) {
	if IsAddress(strings.TrimSpace(username)) {
		return strings.ToLower(strings.TrimSpace(username)), nil
	}

	name := Normalize(username)
	if name == "" {
		return "", errs.Required("recipient")
	}

	addr, err := r.remote.AddressOf(ctx, name)
	if err != nil {
		r.logger.Warn("registry lookup failed, using cache",
			"username", name, "error", err)

		entry, cacheErr := r.cache.ByName(ctx, name)
		if cacheErr != nil {
			return "", errs.Remote(service, err)
		}
		return entry.Address, nil
	}

	if addr == (common.Address{}) {
		return "", &errs.NotFoundError{
			Kind: "username",
			Key:  name,
			Hint: r.suggest(ctx, name),
		}
	}

	address := strings.ToLower(addr.Hex())
	r.remember(ctx, name, address)

	return address, nil
}

// UsernameOf returns the username registered by address.
func (r *Resolver) UsernameOf(ctx context.Context, address string) (string, error) {
	if !IsAddress(address) {
		return "", errs.Invalid("address", "not a hex address")
	}

	name, err := r.remote.UsernameOf(ctx, common.HexToAddress(address))
	if err != nil {
		r.logger.Warn("registry reverse lookup failed, using cache",
			"address", address, "error", err)

		entry, cacheErr := r.cache.ByAddress(ctx, address)
		if cacheErr != nil {
			return "", errs.Remote(service, err)
		}
		return entry.Username, nil
	}

	if name == "" {
		return "", errs.NotFound("address", address)
	}

	name = Normalize(name)
	r.remember(ctx, name, strings.ToLower(address))

	return name, nil
}

// Register registers username for from and returns the transaction hash.
func (r *Resolver) Register(ctx context.Context, from,
	username string) (string, error) {
	if !IsAddress(from) {
		return "", errs.Invalid("address", "not a hex address")
	}

	name := Normalize(username)
	if !usernameRe.MatchString(name) {
		return "", errs.Invalid("username",
			"use up to 32 letters, digits or underscores")
	}

	taken, err := r.remote.IsRegistered(ctx, name)
	if err != nil {
		return "", errs.Remote(service, err)
	}
	if taken {
		return "", errs.Invalid("username", fmt.Sprintf(
			"@%s is already taken, please choose a different username", name))
	}

	owner := common.HexToAddress(from)

	if current, err := r.remote.UsernameOf(ctx, owner); err == nil &&
		current != "" {
		return "", errs.Invalid("address", fmt.Sprintf(
			"wallet already has the username @%s registered", current))
	}

	hash, err := r.remote.Register(ctx, owner, name)
	if err != nil {
		return "", errs.Remote(service, err)
	}

	r.remember(ctx, name, strings.ToLower(from))

	return hash, nil
}

func (r *Resolver) remember(ctx context.Context, name, address string) {
	if err := r.cache.Save(ctx, name, address, r.now()); err != nil {
		r.logger.Warn("failed to cache username", "username", name,
			"error", err)
	}
}

// suggest returns a hint naming the closest cached username.
func (r *Resolver) suggest(ctx context.Context, name string) string {
	names, err := r.cache.Names(ctx)
	if err != nil {
		return ""
	}

	best, bestDistance := "", maxSuggestDistance+1
	for _, candidate := range names {
		if candidate == name {
			continue
		}
		if d := levenshtein.ComputeDistance(name, candidate); d < bestDistance {
			best, bestDistance = candidate, d
		}
	}

	if best == "" {
		return ""
	}
	return fmt.Sprintf("Did you mean @%s?", best)
}
