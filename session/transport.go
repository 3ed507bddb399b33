package session

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
)

type retriedKey struct{}

func withRetried(ctx context.Context) context.Context {
	return context.WithValue(ctx, retriedKey{}, true)
}

func isRetried(ctx context.Context) bool {
	retried, _ := ctx.Value(retriedKey{}).(bool)
	return retried
}

// Transport intercepts 401 responses. The first 401 for a request starts or
// joins the client's pending token refresh and, once it succeeds, replays the
// request a single time. Refresh requests themselves are never intercepted.
type Transport struct {
	Base   http.RoundTripper
	client *Client
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base().RoundTrip(req)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}
	if isRetried(req.Context()) || t.client.isRefreshRequest(req) {
		return resp, nil
	}

	replay, err := replayRequest(req)
	if err != nil {
		// Body cannot be rewound, hand back the original 401
		return resp, nil
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if err := t.client.refreshForReplay(req.Context()); err != nil {
		return nil, err
	}

	resp, err = t.client.http.Do(replay)
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}
	return resp, err
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

// replayRequest copies req for a second attempt. The cookie header is dropped
// so the jar can supply the refreshed cookies.
func replayRequest(req *http.Request) (*http.Request, error) {
	replay := req.Clone(withRetried(req.Context()))
	replay.Header.Del("Cookie")

	if req.Body == nil || req.Body == http.NoBody {
		return replay, nil
	}
	if req.GetBody == nil {
		return nil, errors.New("request body cannot be replayed")
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	replay.Body = body
	return replay, nil
}
