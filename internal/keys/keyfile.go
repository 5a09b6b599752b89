package keys

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// WriteKeyFile persists a newly created key at path with owner-only
// permissions. By default the full API record is written as JSON, verbatim
// when the key carries its Record. With decode
// set, the base64 private key payload is decoded and written instead, which for
// TYPE_GOOGLE_CREDENTIALS_FILE keys is a ready-to-use credentials file.
func WriteKeyFile(path string, key Key, decode bool) error {
	var data []byte
	if decode {
		if key.PrivateKeyData == "" {
			return errors.New("key has no private key data to decode")
		}
		raw, err := base64.StdEncoding.DecodeString(key.PrivateKeyData)
		if err != nil {
			return fmt.Errorf("failed to decode private key data: %w", err)
		}
		data = raw
	} else if len(key.Record) > 0 {
		data = key.Record
	} else {
		raw, err := json.Marshal(key)
		if err != nil {
			return fmt.Errorf("failed to marshal key: %w", err)
		}
		data = raw
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create key directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write key file: %w", err)
	}
	return nil
}
