// Package iam talks to the Google Cloud IAM service account keys API.
package iam

import (
	"context"
	"fmt"

	iamv1 "google.golang.org/api/iam/v1"
	"google.golang.org/api/option"
)

// Client is the subset of the IAM API used to manage service account keys.
type Client interface {
	// ListKeys returns the keys of the account, filtered server-side by key type.
	ListKeys(ctx context.Context, accountName string, keyTypes ...string) ([]*iamv1.ServiceAccountKey, error)

	// CreateKey creates a new key for the account.
	CreateKey(ctx context.Context, accountName string, req *iamv1.CreateServiceAccountKeyRequest) (*iamv1.ServiceAccountKey, error)

	// DeleteKey deletes the key with the given fully-qualified name.
	DeleteKey(ctx context.Context, keyName string) error
}

// Service is the production Client backed by the generated IAM v1 bindings.
type Service struct {
	keys *iamv1.ProjectsServiceAccountsKeysService
}

// NewService builds an authenticated IAM client. With no options it uses
// application default credentials.
func NewService(ctx context.Context, opts ...option.ClientOption) (*Service, error) {
	svc, err := iamv1.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create IAM service: %w", err)
	}
	return &Service{keys: svc.Projects.ServiceAccounts.Keys}, nil
}

func (s *Service) ListKeys(ctx context.Context, accountName string, keyTypes ...string) ([]*iamv1.ServiceAccountKey, error) {
	call := s.keys.List(accountName).Context(ctx)
	if len(keyTypes) > 0 {
		call = call.KeyTypes(keyTypes...)
	}
	resp, err := call.Do()
	if err != nil {
		return nil, err
	}
	return resp.Keys, nil
}

func (s *Service) CreateKey(ctx context.Context, accountName string, req *iamv1.CreateServiceAccountKeyRequest) (*iamv1.ServiceAccountKey, error) {
	return s.keys.Create(accountName, req).Context(ctx).Do()
}

func (s *Service) DeleteKey(ctx context.Context, keyName string) error {
	_, err := s.keys.Delete(keyName).Context(ctx).Do()
	return err
}
