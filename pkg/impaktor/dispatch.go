package impaktor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/impaktor/pkg/codec"
	"github.com/impaktor/pkg/outcome"
)

// Call sends req and resolves it to an outcome: Success with the body decoded
// as S for a 2xx response, Failure with the body decoded as F for any other
// status, and TransportError for everything that produced no usable payload.
// Call never panics and never returns a nil-kind outcome.
func Call[S any, F outcome.Reasoner](ctx context.Context, c *Client, req Request) outcome.Outcome[S, F] {
	if c == nil {
		return outcome.TransportError[S, F](MessageNotConfigured)
	}

	// Keys are canonical so the token replaces a caller Authorization header
	// whatever its casing.
	headers := make(Values, len(req.Headers)+1)
	for k, v := range req.Headers {
		headers[http.CanonicalHeaderKey(k)] = v
	}
	if req.AuthToken != "" {
		headers["Authorization"] = authorization(req.AuthToken)
	}

	switch req.Verb {
	case VerbGet:
		return get[S, F](ctx, c, req.BaseAddress, req.Path, headers, req.Query)
	case VerbPost:
		return post[S, F](ctx, c, req.BaseAddress, req.Path, headers, req.Body)
	case VerbPut:
		return put[S, F](ctx, c, req.BaseAddress, req.Path, headers, req.Body)
	case VerbDelete:
		return del[S, F](ctx, c, req.BaseAddress, req.Path, headers, req.Body)
	case VerbPatch:
		return patch[S, F](ctx, c, req.BaseAddress, req.Path, headers, req.Body)
	default:
		return dispatch[S, F](ctx, c, exchange{verb: req.Verb, base: req.BaseAddress, path: req.Path})
	}
}

// authorization prefixes a bare token with the Bearer scheme.
func authorization(token string) string {
	token = strings.TrimSpace(token)
	if strings.ContainsRune(token, ' ') {
		return token
	}
	return "Bearer " + token
}

func get[S any, F outcome.Reasoner](ctx context.Context, c *Client, base, path string, headers, query Values) outcome.Outcome[S, F] {
	return dispatch[S, F](ctx, c, exchange{verb: VerbGet, base: base, path: path, headers: headers, query: query})
}

func post[S any, F outcome.Reasoner](ctx context.Context, c *Client, base, path string, headers Values, body any) outcome.Outcome[S, F] {
	return dispatch[S, F](ctx, c, exchange{verb: VerbPost, base: base, path: path, headers: headers, body: body})
}

func put[S any, F outcome.Reasoner](ctx context.Context, c *Client, base, path string, headers Values, body any) outcome.Outcome[S, F] {
	return dispatch[S, F](ctx, c, exchange{verb: VerbPut, base: base, path: path, headers: headers, body: body})
}

func del[S any, F outcome.Reasoner](ctx context.Context, c *Client, base, path string, headers Values, body any) outcome.Outcome[S, F] {
	return dispatch[S, F](ctx, c, exchange{verb: VerbDelete, base: base, path: path, headers: headers, body: body})
}

func patch[S any, F outcome.Reasoner](ctx context.Context, c *Client, base, path string, headers Values, body any) outcome.Outcome[S, F] {
	return dispatch[S, F](ctx, c, exchange{verb: VerbPatch, base: base, path: path, headers: headers, body: body})
}

// exchange is one request as the send path sees it.
type exchange struct {
	verb    Verb
	base    string
	path    string
	headers Values
	query   Values
	body    any
}

// result is what came back from the wire.
type result struct {
	url    string
	status int
	body   []byte
}

// dispatch sends ex, decodes a 2xx body as S and classifies anything else.
func dispatch[S any, F outcome.Reasoner](ctx context.Context, c *Client, ex exchange) (o outcome.Outcome[S, F]) {
	start := time.Now()

	var res result
	defer func() {
		if r := recover(); r != nil {
			c.logFailure(ex.verb, res.url, ClassUnexpected, res.status, fmt.Errorf("%w: %v", errPanic, r))
			o = outcome.TransportError[S, F](MessageUnexpected)
			c.finishAfterPanic(ex.verb, ex.path, res.status, time.Since(start))
		}
	}()

	c.callStarted(ex.verb, ex.path)

	res, err := c.send(ctx, ex)
	if err == nil {
		var value S
		if len(bytes.TrimSpace(res.body)) > 0 {
			if derr := c.codec.Unmarshal(res.body, &value); derr != nil {
				err = &DecodeError{Op: "decode response", Err: derr}
			}
		}
		if err == nil {
			c.logger.Debug("call succeeded",
				zap.String("verb", string(ex.verb)),
				zap.String("url", res.url),
				zap.Int("status", res.status),
			)
			c.callFinished(ex.verb, ex.path, ClassSuccess, res.status, time.Since(start))
			return outcome.Success[S, F](value)
		}
	}

	o, class := classify[S, F](err, c.codec)
	c.logFailure(ex.verb, res.url, class, res.status, err)
	c.callFinished(ex.verb, ex.path, class, res.status, time.Since(start))
	return o
}

// finishAfterPanic notifies observers of a call that ended in a recovered
// panic. A panicking observer is not allowed to escape a second time.
func (c *Client) finishAfterPanic(verb Verb, path string, status int, d time.Duration) {
	defer func() { _ = recover() }()
	c.callFinished(verb, path, ClassUnexpected, status, d)
}

// send performs the HTTP exchange. On a non-2xx status it returns the
// response in res together with a *StatusError.
func (c *Client) send(ctx context.Context, ex exchange) (result, error) {
	var res result

	if !ex.verb.Valid() {
		return res, fmt.Errorf("%w: %q", ErrUnsupportedVerb, ex.verb)
	}

	cfg := c.Config()
	base := cfg.BaseAddress
	if ex.base != "" {
		addr, err := normalizeBaseAddress(ex.base)
		if err != nil {
			return res, err
		}
		base = addr
	}
	if base == "" {
		return res, ErrNotConfigured
	}

	target, err := buildURL(base, ex.path, ex.query)
	if err != nil {
		return res, err
	}
	res.url = target

	var body io.Reader
	if ex.body != nil && ex.verb != VerbGet {
		data, err := c.codec.Marshal(ex.body)
		if err != nil {
			return res, &DecodeError{Op: "encode request", Err: err}
		}
		body = bytes.NewReader(data)
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, string(ex.verb), target, body)
	if err != nil {
		return res, fmt.Errorf("impaktor: build request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	for k, v := range codec.StringMap(ex.headers).Strings() {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return res, &NetworkError{Op: string(ex.verb) + " " + target, Err: contextCause(ctx, err)}
	}
	defer func() { _ = httpResp.Body.Close() }()

	res.status = httpResp.StatusCode
	res.body, err = io.ReadAll(httpResp.Body)
	if err != nil {
		return res, &NetworkError{Op: "read response", Err: contextCause(ctx, err)}
	}

	if httpResp.StatusCode >= http.StatusMultipleChoices {
		return res, &StatusError{
			StatusCode: httpResp.StatusCode,
			Body:       res.body,
			Method:     string(ex.verb),
			URL:        target,
		}
	}
	return res, nil
}

// contextCause prefers the context's error once it is done, so an expired
// deadline or cancellation is reported as such whatever the transport said.
func contextCause(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", ctxErr, err)
	}
	return err
}

// buildURL joins base and path and appends query, always over https.
func buildURL(base, path string, query Values) (string, error) {
	u, err := url.Parse("https://" + base)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidBaseAddress, err)
	}
	u.Scheme = "https"

	prefix := strings.Trim(u.Path, "/")
	path = strings.TrimLeft(path, "/")
	switch {
	case prefix == "":
		u.Path = "/" + path
	case path == "":
		u.Path = "/" + prefix
	default:
		u.Path = "/" + prefix + "/" + path
	}

	if len(query) > 0 {
		q := url.Values{}
		for k, v := range codec.StringMap(query).Strings() {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
