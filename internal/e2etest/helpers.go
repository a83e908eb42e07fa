package e2etest

import (
	"errors"
	"io"
	"net/http"
	"strings"
)

// ErrUnexpectedStatus is returned by [Client.DoJSON] when the server answers with another status than expected.
var ErrUnexpectedStatus = errors.New("unexpected status code")

// ReadBody reads and closes the body of resp.
func ReadBody(resp *http.Response) (string, error) {
	defer func() {
		_ = resp.Body.Close()
	}()
	var sb strings.Builder
	if _, err := io.Copy(&sb, resp.Body); err != nil {
		return "", err //nolint:wrapcheck // test helper.
	}
	return sb.String(), nil
}
