package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	iamv1 "google.golang.org/api/iam/v1"
)

const accountPath = "/v1/projects/p1/serviceAccounts/a1/keys"

// fakeIAM serves the keys endpoints of the IAM v1 API for a single account.
type fakeIAM struct {
	mu       sync.Mutex
	keys     []*iamv1.ServiceAccountKey
	calls    map[string]int
	failures map[string]int
	created  *iamv1.CreateServiceAccountKeyRequest
	newKey   *iamv1.ServiceAccountKey
}

func newFakeIAM(t *testing.T, keys ...*iamv1.ServiceAccountKey) (*fakeIAM, *httptest.Server) {
	t.Helper()
	f := &fakeIAM{
		keys:     keys,
		calls:    map[string]int{},
		failures: map[string]int{},
	}
	server := httptest.NewServer(f)
	t.Cleanup(server.Close)
	return f, server
}

func (f *fakeIAM) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[r.Method]++
	if f.failures[r.Method] > 0 {
		f.failures[r.Method]--
		writeAPIError(w, http.StatusServiceUnavailable, "backend unavailable")
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == accountPath:
		writeJSON(w, &iamv1.ListServiceAccountKeysResponse{Keys: f.keys})

	case r.Method == http.MethodPost && r.URL.Path == accountPath:
		var req iamv1.CreateServiceAccountKeyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeAPIError(w, http.StatusBadRequest, err.Error())
			return
		}
		f.created = &req
		key := f.newKey
		if key == nil {
			key = serviceKey("new1", "2024-03-01T00:00:00Z")
		}
		key.KeyAlgorithm = req.KeyAlgorithm
		key.PrivateKeyType = req.PrivateKeyType
		f.keys = append(f.keys, key)
		writeJSON(w, key)

	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, accountPath+"/"):
		name := strings.TrimPrefix(r.URL.Path, "/v1/")
		for i, k := range f.keys {
			if k.Name == name {
				f.keys = append(f.keys[:i], f.keys[i+1:]...)
				writeJSON(w, struct{}{})
				return
			}
		}
		writeAPIError(w, http.StatusNotFound, "key not found: "+name)

	default:
		writeAPIError(w, http.StatusNotFound, "unknown path "+r.URL.Path)
	}
}

func (f *fakeIAM) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.keys))
	for _, k := range f.keys {
		out = append(out, k.Name[strings.LastIndex(k.Name, "/")+1:])
	}
	return out
}

func (f *fakeIAM) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func serviceKey(id, validAfter string) *iamv1.ServiceAccountKey {
	return &iamv1.ServiceAccountKey{
		Name:            "projects/p1/serviceAccounts/a1/keys/" + id,
		ValidAfterTime:  validAfter,
		ValidBeforeTime: "9999-12-31T23:59:59Z",
		KeyAlgorithm:    "KEY_ALG_RSA_2048",
		KeyType:         "USER_MANAGED",
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"error":{"code":%d,"message":%q}}`, code, message)
}

// writeConfig writes a config file pointing at server without authentication.
// extra is appended verbatim.
func writeConfig(t *testing.T, server *httptest.Server, extra string) string {
	t.Helper()
	content := fmt.Sprintf(`project_id = "p1"
iam_account = "a1"
endpoint = "%s/"
no_auth = true

[retry]
initial_interval = "1ms"
max_elapsed = "1s"
%s`, server.URL, extra)

	path := filepath.Join(t.TempDir(), "keyrotatorrc")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// resetFlags restores every flag of c and its subcommands to its default so
// values from one invocation do not leak into the next.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// executeCommand runs the root command with args and returns stdout and the
// log output.
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := Execute(context.Background())
	return stdout.String(), stderr.String(), err
}
