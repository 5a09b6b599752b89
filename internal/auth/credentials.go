// Package auth resolves the credentials used to call the IAM API.
package auth

import (
	"encoding/json"
	"fmt"
	"os"

	"google.golang.org/api/option"
)

// EnvCredentials is the environment variable application default credentials
// read a credentials file from.
const EnvCredentials = "GOOGLE_APPLICATION_CREDENTIALS"

// CredentialsFile is the subset of a Google credentials JSON file needed to
// describe the identity in use.
type CredentialsFile struct {
	// Type is "service_account", "authorized_user" or "external_account".
	Type string `json:"type"`

	// ProjectID is set for service account keys.
	ProjectID string `json:"project_id,omitempty"`

	// ClientEmail is the service account email, if any.
	ClientEmail string `json:"client_email,omitempty"`
}

// LoadCredentialsFile reads and sanity-checks a credentials file.
func LoadCredentialsFile(path string) (*CredentialsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("credentials file %s does not exist", path)
		}
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	var creds CredentialsFile
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials %s: %w", path, err)
	}
	if creds.Type == "" {
		return nil, fmt.Errorf("credentials %s: missing \"type\" field", path)
	}

	return &creds, nil
}

// CredentialsPath returns the explicit credentials file, falling back to
// GOOGLE_APPLICATION_CREDENTIALS. Empty means ambient credentials (gcloud,
// metadata server).
func CredentialsPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return os.Getenv(EnvCredentials)
}

// Options describes how to reach and authenticate to the API.
type Options struct {
	// CredentialsFile is an explicit credentials JSON path. Optional.
	CredentialsFile string

	// Endpoint overrides the API base URL. Optional.
	Endpoint string

	// NoAuth disables authentication entirely, for local emulators.
	NoAuth bool
}

// ClientOptions turns o into client options. An explicit credentials file is
// checked up front so a bad path is reported before any remote call.
func ClientOptions(o Options) ([]option.ClientOption, *CredentialsFile, error) {
	var opts []option.ClientOption
	var creds *CredentialsFile

	if o.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(o.Endpoint))
	}

	if o.NoAuth {
		return append(opts, option.WithoutAuthentication()), nil, nil
	}

	if o.CredentialsFile != "" {
		c, err := LoadCredentialsFile(o.CredentialsFile)
		if err != nil {
			return nil, nil, err
		}
		creds = c
		opts = append(opts, option.WithCredentialsFile(o.CredentialsFile))
	}

	return opts, creds, nil
}
