package iam

import (
	"fmt"
	"regexp"
	"strings"
)

// KeyTypeUserManaged restricts listings to keys the account holder created.
// System-managed keys are never returned or considered.
const KeyTypeUserManaged = "USER_MANAGED"

// qualifiedKeyPattern matches a fully-qualified key resource path.
var qualifiedKeyPattern = regexp.MustCompile(`^projects/.+/serviceAccounts/.+/keys/.+$`)

// AccountName returns the resource name of a service account.
func AccountName(projectID, account string) string {
	return fmt.Sprintf("projects/%s/serviceAccounts/%s", projectID, account)
}

// KeyName returns the resource name of a service account key.
func KeyName(projectID, account, keyID string) string {
	return fmt.Sprintf("%s/keys/%s", AccountName(projectID, account), keyID)
}

// IsQualifiedKeyName reports whether name is already a full key resource path.
func IsQualifiedKeyName(name string) bool {
	return qualifiedKeyPattern.MatchString(name)
}

// QualifyKeyName returns keyID unchanged if it is already fully qualified,
// otherwise it is expanded under the given project and account.
func QualifyKeyName(projectID, account, keyID string) string {
	if IsQualifiedKeyName(keyID) {
		return keyID
	}
	return KeyName(projectID, account, keyID)
}

// KeyID returns the trailing key identifier of a key resource name.
// Names without a keys/ segment are returned as-is.
func KeyID(name string) string {
	if i := strings.LastIndex(name, "keys/"); i >= 0 {
		return name[i+len("keys/"):]
	}
	return name
}
