package servertest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ToStringContent turns a request body into a reader. Strings, byte slices
// and readers pass through unchanged; any other value is JSON-encoded. A nil
// body yields a nil reader.
func ToStringContent(v any) (io.Reader, error) {
	switch body := v.(type) {
	case nil:
		return nil, nil
	case io.Reader:
		return body, nil
	case []byte:
		return bytes.NewReader(body), nil
	case string:
		return strings.NewReader(body), nil
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("servertest: encode body: %w", err)
		}
		return bytes.NewReader(data), nil
	}
}

// DecodeBody reads the JSON body of resp into a T and closes it. An empty
// body yields the zero value. The status code is not checked.
func DecodeBody[T any](resp *http.Response) (T, error) {
	var data T
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return data, fmt.Errorf("servertest: read response body: %w", err)
	}
	if len(body) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return data, fmt.Errorf("servertest: decode response: %w", err)
	}
	return data, nil
}
