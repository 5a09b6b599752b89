package iam

import (
	"context"
	"time"

	iamv1 "google.golang.org/api/iam/v1"

	"github.com/keyrotator/cli/internal/retry"
)

// RetryPolicy returns the retry policy for IAM calls: server errors are
// retried with exponential backoff from initial, bounded by maxElapsed. Zero
// values fall back to the retry package defaults.
func RetryPolicy(initial, maxElapsed time.Duration) retry.Policy {
	p := retry.DefaultPolicy()
	if initial > 0 {
		p.InitialInterval = initial
	}
	if maxElapsed > 0 {
		p.MaxElapsedTime = maxElapsed
	}
	p.Retryable = IsServerError
	return p
}

type retryingClient struct {
	next   Client
	policy retry.Policy
}

// WithRetry wraps c so every call is retried according to p.
func WithRetry(c Client, p retry.Policy) Client {
	return &retryingClient{next: c, policy: p}
}

func (r *retryingClient) ListKeys(ctx context.Context, accountName string, keyTypes ...string) ([]*iamv1.ServiceAccountKey, error) {
	return retry.Do(ctx, "list", r.policy, func(ctx context.Context) ([]*iamv1.ServiceAccountKey, error) {
		return r.next.ListKeys(ctx, accountName, keyTypes...)
	})
}

func (r *retryingClient) CreateKey(ctx context.Context, accountName string, req *iamv1.CreateServiceAccountKeyRequest) (*iamv1.ServiceAccountKey, error) {
	return retry.Do(ctx, "create", r.policy, func(ctx context.Context) (*iamv1.ServiceAccountKey, error) {
		return r.next.CreateKey(ctx, accountName, req)
	})
}

func (r *retryingClient) DeleteKey(ctx context.Context, keyName string) error {
	_, err := retry.Do(ctx, "delete", r.policy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.next.DeleteKey(ctx, keyName)
	})
	return err
}
