package keys

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	iamv1 "google.golang.org/api/iam/v1"

	"github.com/keyrotator/cli/internal/iam"
)

// Lister fetches the user-managed keys of an account.
type Lister struct {
	Client iam.Client
	Log    zerolog.Logger
}

// List returns every user-managed key of the account. An account without keys
// yields an empty slice.
func (l *Lister) List(ctx context.Context, scope Scope) ([]Key, error) {
	resp, err := l.Client.ListKeys(ctx, scope.AccountName(), iam.KeyTypeUserManaged)
	if err != nil {
		return nil, fmt.Errorf("list keys for %s: %w", scope.AccountName(), err)
	}

	keys := make([]Key, 0, len(resp))
	for _, k := range resp {
		key := FromAPI(k)
		l.Log.Info().
			Str("key", key.ID()).
			Str("created", key.ValidAfterTime).
			Str("expires", key.ValidBeforeTime).
			Msg("Key")
		keys = append(keys, key)
	}
	return keys, nil
}

// Creator creates new keys.
type Creator struct {
	Client iam.Client
	Log    zerolog.Logger
}

// Create requests a new key. Empty keyType or keyAlgorithm fall back to
// DefaultKeyType and DefaultKeyAlgorithm; other values are passed through
// for the API to judge.
func (c *Creator) Create(ctx context.Context, scope Scope, keyType, keyAlgorithm string) (Key, error) {
	if keyType == "" {
		keyType = DefaultKeyType
	}
	if keyAlgorithm == "" {
		keyAlgorithm = DefaultKeyAlgorithm
	}

	resp, err := c.Client.CreateKey(ctx, scope.AccountName(), &iamv1.CreateServiceAccountKeyRequest{
		PrivateKeyType: keyType,
		KeyAlgorithm:   keyAlgorithm,
	})
	if err != nil {
		return Key{}, fmt.Errorf("create key for %s: %w", scope.AccountName(), err)
	}

	key := FromAPI(resp)
	if key.Record, err = json.Marshal(resp); err != nil {
		return Key{}, fmt.Errorf("encode created key %s: %w", key.Name, err)
	}
	c.Log.Info().Str("key", key.ID()).Msg("Key successfully created.")
	c.Log.Debug().Interface("details", key.Redacted()).Msg("Key details")
	return key, nil
}

// Deleter removes keys.
type Deleter struct {
	Client iam.Client
	Log    zerolog.Logger
}

// Delete removes a key. keyID may be a bare identifier or a fully-qualified
// name.
func (d *Deleter) Delete(ctx context.Context, scope Scope, keyID string) error {
	name := scope.KeyName(keyID)
	if name != keyID {
		d.Log.Debug().Str("key", keyID).Msg("Key id is not fully qualified, expanding")
	}

	if err := d.Client.DeleteKey(ctx, name); err != nil {
		return fmt.Errorf("delete key %s: %w", name, err)
	}

	d.Log.Info().Str("key", name).Msg("Key deleted")
	return nil
}
