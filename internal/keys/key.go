// Package keys implements the service account key lifecycle: listing,
// creating and deleting keys, and cleaning up keys past a maximum age.
package keys

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	iamv1 "google.golang.org/api/iam/v1"

	"github.com/keyrotator/cli/internal/iam"
)

const (
	// DefaultKeyType is the private key format requested when none is given.
	DefaultKeyType = "TYPE_GOOGLE_CREDENTIALS_FILE"

	// DefaultKeyAlgorithm is the key algorithm requested when none is given.
	DefaultKeyAlgorithm = "KEY_ALG_RSA_2048"

	// NoExpiry is the validBeforeTime the API reports for keys that never expire.
	NoExpiry = "9999-12-31T23:59:59Z"
)

// Key is one service account key as reported by the remote API.
type Key struct {
	Name            string `json:"name" yaml:"name"`
	ValidAfterTime  string `json:"validAfterTime" yaml:"validAfterTime"`
	ValidBeforeTime string `json:"validBeforeTime,omitempty" yaml:"validBeforeTime,omitempty"`
	KeyAlgorithm    string `json:"keyAlgorithm,omitempty" yaml:"keyAlgorithm,omitempty"`
	KeyOrigin       string `json:"keyOrigin,omitempty" yaml:"keyOrigin,omitempty"`
	KeyType         string `json:"keyType,omitempty" yaml:"keyType,omitempty"`
	PrivateKeyType  string `json:"privateKeyType,omitempty" yaml:"privateKeyType,omitempty"`
	PrivateKeyData  string `json:"privateKeyData,omitempty" yaml:"-"`
	Disabled        bool   `json:"disabled,omitempty" yaml:"disabled,omitempty"`

	// Record is the API response as received, set for newly created keys.
	Record []byte `json:"-" yaml:"-"`
}

// FromAPI converts an API key record.
func FromAPI(k *iamv1.ServiceAccountKey) Key {
	if k == nil {
		return Key{}
	}
	return Key{
		Name:            k.Name,
		ValidAfterTime:  k.ValidAfterTime,
		ValidBeforeTime: k.ValidBeforeTime,
		KeyAlgorithm:    k.KeyAlgorithm,
		KeyOrigin:       k.KeyOrigin,
		KeyType:         k.KeyType,
		PrivateKeyType:  k.PrivateKeyType,
		PrivateKeyData:  k.PrivateKeyData,
		Disabled:        k.Disabled,
	}
}

// ID returns the short key identifier.
func (k Key) ID() string {
	return iam.KeyID(k.Name)
}

// CreatedAt parses ValidAfterTime.
func (k Key) CreatedAt() (time.Time, error) {
	return ParseTimestamp(k.ValidAfterTime)
}

// NeverExpires reports whether the key has no expiry.
func (k Key) NeverExpires() bool {
	return k.ValidBeforeTime == "" || k.ValidBeforeTime == NoExpiry
}

// Redacted returns a copy of the key without its private key material.
func (k Key) Redacted() Key {
	if k.PrivateKeyData != "" {
		k.PrivateKeyData = "REDACTED"
	}
	k.Record = nil
	return k
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses an API timestamp. Layouts without a zone are read as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// Scope addresses the keys of one service account.
type Scope struct {
	ProjectID string `validate:"required,excludesall=/,nowhitespace" flag:"project-id"`
	Account   string `validate:"required,excludesall=/,nowhitespace" flag:"iam-account"`
}

var validate = validator.New()

func init() {
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("flag")
	})
	validate.RegisterValidation("nowhitespace", func(fl validator.FieldLevel) bool {
		return !strings.ContainsFunc(fl.Field().String(), unicode.IsSpace)
	})
}

// Validate checks the scope before any remote call is made.
func (s Scope) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("--%s is required", fe.Field()))
		case "excludesall":
			msgs = append(msgs, fmt.Sprintf("--%s must not contain '/'", fe.Field()))
		case "nowhitespace":
			msgs = append(msgs, fmt.Sprintf("--%s must not contain whitespace", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("--%s is invalid", fe.Field()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

// AccountName returns the fully-qualified service account name.
func (s Scope) AccountName() string {
	return iam.AccountName(s.ProjectID, s.Account)
}

// KeyName qualifies keyID under this scope unless it is already qualified.
func (s Scope) KeyName(keyID string) string {
	return iam.QualifyKeyName(s.ProjectID, s.Account, keyID)
}
