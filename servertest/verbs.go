package servertest

import (
	"context"
	"net/http"
	"net/url"
)

// NewRequest builds a request against the host. uri may be relative to the
// configured base URL or absolute. A non-nil body is sent as JSON.
func (f *Fixture) NewRequest(ctx context.Context, method, uri string, body any) (*http.Request, error) {
	target, err := f.resolve(uri)
	if err != nil {
		return nil, err
	}
	reader, err := ToStringContent(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// Do sends a request to the host and returns the raw response. Any status
// code is a successful call; the caller must close the body.
func (f *Fixture) Do(ctx context.Context, method, uri string, body any) (*http.Response, error) {
	req, err := f.NewRequest(ctx, method, uri, body)
	if err != nil {
		return nil, err
	}
	return f.client.Do(req)
}

// Get sends a GET request.
func (f *Fixture) Get(ctx context.Context, uri string) (*http.Response, error) {
	return f.Do(ctx, http.MethodGet, uri, nil)
}

// Post sends a POST request with body.
func (f *Fixture) Post(ctx context.Context, uri string, body any) (*http.Response, error) {
	return f.Do(ctx, http.MethodPost, uri, body)
}

// Put sends a PUT request with body.
func (f *Fixture) Put(ctx context.Context, uri string, body any) (*http.Response, error) {
	return f.Do(ctx, http.MethodPut, uri, body)
}

// Delete sends a DELETE request.
func (f *Fixture) Delete(ctx context.Context, uri string) (*http.Response, error) {
	return f.Do(ctx, http.MethodDelete, uri, nil)
}

// Get sends a GET request and decodes the response body into a T.
func Get[T any](ctx context.Context, f *Fixture, uri string) (T, error) {
	return do[T](ctx, f, http.MethodGet, uri, nil)
}

// Post sends a POST request with body and decodes the response body into a T.
func Post[T any](ctx context.Context, f *Fixture, uri string, body any) (T, error) {
	return do[T](ctx, f, http.MethodPost, uri, body)
}

// Put sends a PUT request with body and decodes the response body into a T.
func Put[T any](ctx context.Context, f *Fixture, uri string, body any) (T, error) {
	return do[T](ctx, f, http.MethodPut, uri, body)
}

// Delete sends a DELETE request and decodes the response body into a T.
func Delete[T any](ctx context.Context, f *Fixture, uri string) (T, error) {
	return do[T](ctx, f, http.MethodDelete, uri, nil)
}

func do[T any](ctx context.Context, f *Fixture, method, uri string, body any) (T, error) {
	resp, err := f.Do(ctx, method, uri, body)
	if err != nil {
		var zero T
		return zero, err
	}
	return DecodeBody[T](resp)
}

func (f *Fixture) resolve(uri string) (string, error) {
	ref, err := url.Parse(uri)
	if err != nil {
		return "", err
	}
	return f.baseURL.ResolveReference(ref).String(), nil
}
