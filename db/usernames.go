package db

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/reform.v1"

	"github.com/dzeckelev/quickpay/data"
	"github.com/dzeckelev/quickpay/errs"
)

// Usernames is the local cache of the on-chain username registry.
type Usernames struct {
	db *reform.DB
}

// NewUsernames creates a username cache store.
func NewUsernames(database *reform.DB) *Usernames {
	return &Usernames{db: database}
}

// Save stores or overwrites the mapping of username to address.
func (s *Usernames) Save(ctx context.Context, username, address string,
	at time.Time) error {
	entry := &data.Username{
		Username:  strings.ToLower(username),
		Address:   strings.ToLower(address),
		UpdatedAt: at.UTC(),
	}
	return errors.Wrap(s.db.WithContext(ctx).Save(entry), "save username")
}

// ByName returns the cached entry for username.
func (s *Usernames) ByName(ctx context.Context,
	username string) (*data.Username, error) {
	entry := &data.Username{}
	err := s.db.WithContext(ctx).FindByPrimaryKeyTo(entry,
		strings.ToLower(username))
	if err != nil {
		if err == reform.ErrNoRows {
			return nil, errs.NotFound("username", username)
		}
		return nil, errors.Wrap(err, "find username")
	}
	return entry, nil
}

// ByAddress returns the most recently cached entry for address.
func (s *Usernames) ByAddress(ctx context.Context,
	address string) (*data.Username, error) {
	q := s.db.WithContext(ctx)

	entry := &data.Username{}
	err := q.SelectOneTo(entry, "WHERE address = "+q.Placeholder(1)+
		" ORDER BY updated_at DESC LIMIT 1", strings.ToLower(address))
	if err != nil {
		if err == reform.ErrNoRows {
			return nil, errs.NotFound("address", address)
		}
		return nil, errors.Wrap(err, "find username by address")
	}
	return entry, nil
}

// Names returns every cached username.
func (s *Usernames) Names(ctx context.Context) ([]string, error) {
	items, err := s.db.WithContext(ctx).SelectAllFrom(data.UsernameTable, "")
	if err != nil {
		return nil, errors.Wrap(err, "list usernames")
	}

	names := make([]string, len(items))
	for k, item := range items {
		names[k] = item.(*data.Username).Username
	}
	return names, nil
}
