package keys

import (
	"context"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	iamv1 "google.golang.org/api/iam/v1"
)

// fakeClient is an in-memory iam.Client holding keys in insertion order.
type fakeClient struct {
	keys     []*iamv1.ServiceAccountKey
	deleted  []string
	created  []*iamv1.CreateServiceAccountKeyRequest
	listed   []string
	keyTypes [][]string

	listErr   error
	createErr error
	// deleteErrs maps a key name to the error returned when it is deleted.
	deleteErrs map[string]error
}

func (f *fakeClient) ListKeys(ctx context.Context, accountName string, keyTypes ...string) ([]*iamv1.ServiceAccountKey, error) {
	f.listed = append(f.listed, accountName)
	f.keyTypes = append(f.keyTypes, keyTypes)
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*iamv1.ServiceAccountKey
	for _, k := range f.keys {
		if strings.HasPrefix(k.Name, accountName+"/keys/") {
			out = append(out, k)
		}
	}
	return out, nil
}

func (f *fakeClient) CreateKey(ctx context.Context, accountName string, req *iamv1.CreateServiceAccountKeyRequest) (*iamv1.ServiceAccountKey, error) {
	f.created = append(f.created, req)
	if f.createErr != nil {
		return nil, f.createErr
	}
	k := &iamv1.ServiceAccountKey{
		Name:            accountName + "/keys/created",
		ValidAfterTime:  "2024-03-01T00:00:00Z",
		ValidBeforeTime: NoExpiry,
		KeyAlgorithm:    req.KeyAlgorithm,
		PrivateKeyType:  req.PrivateKeyType,
		PrivateKeyData:  "eyJ0eXBlIjoic2VydmljZV9hY2NvdW50In0=",
		PublicKeyData:   "cHVibGljLWtleQ==",
	}
	f.keys = append(f.keys, k)
	return k, nil
}

func (f *fakeClient) DeleteKey(ctx context.Context, keyName string) error {
	if err, ok := f.deleteErrs[keyName]; ok {
		return err
	}
	for i, k := range f.keys {
		if k.Name == keyName {
			f.keys = append(f.keys[:i], f.keys[i+1:]...)
			f.deleted = append(f.deleted, keyName)
			return nil
		}
	}
	return &googleapi.Error{Code: http.StatusNotFound, Message: "key not found"}
}

func apiKey(name, validAfter string) *iamv1.ServiceAccountKey {
	return &iamv1.ServiceAccountKey{
		Name:            "projects/p1/serviceAccounts/a1/keys/" + name,
		ValidAfterTime:  validAfter,
		ValidBeforeTime: NoExpiry,
	}
}

func key(name, validAfter string) Key {
	return FromAPI(apiKey(name, validAfter))
}

type countingObserver struct {
	listed, skipped, deleted, failed int
}

func (o *countingObserver) KeysListed(n int) { o.listed += n }
func (o *countingObserver) KeySkipped()      { o.skipped++ }
func (o *countingObserver) KeyDeleted()      { o.deleted++ }
func (o *countingObserver) KeyDeleteFailed() { o.failed++ }
