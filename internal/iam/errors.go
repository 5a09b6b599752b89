package iam

import (
	"errors"
	"net/http"

	"google.golang.org/api/googleapi"
)

// StatusCode returns the HTTP status carried by a remote API error, or 0 if
// err did not come from the API.
func StatusCode(err error) int {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}

// IsServerError reports whether err is a server-side failure (5xx). These are
// the only failures worth retrying.
func IsServerError(err error) bool {
	code := StatusCode(err)
	return code >= 500 && code <= 599
}

// IsNotFound reports whether the remote API answered 404.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}
