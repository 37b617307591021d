package impaktor

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type loginResponse struct {
	Data struct {
		Identifier string `json:"identifier"`
		Token      string `json:"token"`
	} `json:"data"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func baseOf(srv *httptest.Server) string {
	return strings.TrimPrefix(srv.URL, "https://")
}

func newTestClient(t *testing.T, srv *httptest.Server, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{
		WithBaseAddress(baseOf(srv)),
		WithHTTPClient(srv.Client()),
	}, opts...)
	c, err := New(opts...)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestCall_LoginSuccess(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/login" {
			t.Errorf("got %s %s, want POST /auth/login", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		var in map[string]string
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("decode body: %v", err)
		}
		writeJSON(w, http.StatusOK, `{"data":{"identifier":"`+in["identifier"]+`","token":"t"},"message":"ok","status":200,"extra":true}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	res := Call[loginResponse, APIError](context.Background(), c, Request{
		Verb: VerbPost,
		Path: "auth/login",
		Body: map[string]string{"identifier": "a@b.com", "password": "x"},
	})

	if !res.IsSuccessful() {
		t.Fatalf("outcome = %v, want success", res)
	}
	got := res.Unwrap()
	if got.Data.Identifier != "a@b.com" || got.Message != "ok" || got.Status != 200 {
		t.Fatalf("payload = %+v", got)
	}
}

func TestCall_LoginFailure(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"message":"Invalid credentials"}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	res := Call[loginResponse, APIError](context.Background(), c, Request{
		Verb: VerbPost,
		Path: "auth/login",
		Body: map[string]string{"identifier": "a@b.com", "password": "x"},
	})

	if !res.IsFailure() {
		t.Fatalf("outcome = %v, want failure", res)
	}
	if got := res.Reason(); got != "Invalid credentials" {
		t.Fatalf("Reason() = %q, want %q", got, "Invalid credentials")
	}
}

func TestCall_UnparseableErrorBody(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "<html>internal error</html>")
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	res := Call[loginResponse, APIError](context.Background(), c, Request{Verb: VerbPost, Path: "auth/login"})

	if msg, ok := res.Message(); !ok || msg != MessageBadStatus {
		t.Fatalf("outcome = %v, want transport error %q", res, MessageBadStatus)
	}
}

func TestCall_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	c := newTestClient(t, srv, WithTimeout(50*time.Millisecond))
	res := Call[loginResponse, APIError](context.Background(), c, Request{Verb: VerbGet, Path: "slow"})

	if msg, ok := res.Message(); !ok || msg != MessageTimeout {
		t.Fatalf("outcome = %v, want transport error %q", res, MessageTimeout)
	}
}

func TestCall_CallerCancellation(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{}`)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestClient(t, srv)
	res := Call[loginResponse, APIError](ctx, c, Request{Verb: VerbGet, Path: "me"})

	if msg, ok := res.Message(); !ok || msg != MessageTimeout {
		t.Fatalf("outcome = %v, want transport error %q", res, MessageTimeout)
	}
}

func TestCall_NotConfigured(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if c.Configured() {
		t.Fatal("Configured() = true for a client without a base address")
	}

	res := Call[loginResponse, APIError](context.Background(), c, Request{Verb: VerbGet, Path: "me"})
	if msg, ok := res.Message(); !ok || msg != MessageNotConfigured {
		t.Fatalf("outcome = %v, want transport error %q", res, MessageNotConfigured)
	}

	var nilClient *Client
	res = Call[loginResponse, APIError](context.Background(), nilClient, Request{Verb: VerbGet, Path: "me"})
	if msg, ok := res.Message(); !ok || msg != MessageNotConfigured {
		t.Fatalf("nil client outcome = %v, want transport error %q", res, MessageNotConfigured)
	}
}

func TestCall_StatusCodes(t *testing.T) {
	tests := []struct {
		status int
		body   string
		kind   string
	}{
		{http.StatusOK, `{"message":"ok"}`, "success"},
		{http.StatusCreated, `{"message":"created"}`, "success"},
		{http.StatusNoContent, ``, "success"},
		{http.StatusMovedPermanently, `{"message":"moved"}`, "failure"},
		{http.StatusFound, `{"message":"found"}`, "failure"},
		{http.StatusBadRequest, `{"error":"bad input"}`, "failure"},
		{http.StatusNotFound, `{"message":"missing"}`, "failure"},
		{http.StatusInternalServerError, `{"message":"boom"}`, "failure"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.status >= 300 && tt.status < 400 {
					w.Header().Set("Location", "/elsewhere")
				}
				writeJSON(w, tt.status, tt.body)
			}))
			defer srv.Close()

			c := newTestClient(t, srv)
			res := Call[APIError, APIError](context.Background(), c, Request{Verb: VerbGet, Path: "thing"})

			if got := res.Kind().String(); got != tt.kind {
				t.Fatalf("Kind() = %s, want %s (outcome %v)", got, tt.kind, res)
			}
		})
	}
}

func TestCall_EmptySuccessBodyIsZeroValue(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	res := Call[loginResponse, APIError](context.Background(), c, Request{Verb: VerbDelete, Path: "sessions/1"})

	got, ok := res.Value()
	if !ok || got != (loginResponse{}) {
		t.Fatalf("outcome = %v, want success with zero payload", res)
	}
}

func TestCall_NetworkError(t *testing.T) {
	srv := httptest.NewTLSServer(http.NotFoundHandler())
	base := baseOf(srv)
	client := srv.Client()
	srv.Close()

	c, err := New(WithBaseAddress(base), WithHTTPClient(client))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	res := Call[loginResponse, APIError](context.Background(), c, Request{Verb: VerbGet, Path: "me"})

	if msg, ok := res.Message(); !ok || msg != MessageNetwork {
		t.Fatalf("outcome = %v, want transport error %q", res, MessageNetwork)
	}
}

func TestCall_MalformedSuccessBody(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data": [`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	res := Call[loginResponse, APIError](context.Background(), c, Request{Verb: VerbGet, Path: "me"})

	if msg, ok := res.Message(); !ok || msg != MessageSerialization {
		t.Fatalf("outcome = %v, want transport error %q", res, MessageSerialization)
	}
}

func TestCall_UnencodableBody(t *testing.T) {
	srv, reqs := capturingServer(http.StatusOK, `{}`)
	defer srv.Close()

	c := newTestClient(t, srv)
	res := Call[loginResponse, APIError](context.Background(), c, Request{
		Verb: VerbPost,
		Path: "things",
		Body: map[string]any{"ch": make(chan int)},
	})

	if msg, ok := res.Message(); !ok || msg != MessageSerialization {
		t.Fatalf("outcome = %v, want transport error %q", res, MessageSerialization)
	}
	if len(reqs) != 0 {
		t.Fatalf("server received %d requests for an unencodable body", len(reqs))
	}
}

func TestCall_GetWireShape(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Method = %s", r.Method)
		}
		if r.URL.RawQuery != "active=true&page=2&q=go+lang" {
			t.Errorf("RawQuery = %q", r.URL.RawQuery)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer t0k" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("X-Trace"); got != "42" {
			t.Errorf("X-Trace = %q", got)
		}
		if got := r.Header.Get("Accept-Language"); got != "en" {
			t.Errorf("Accept-Language = %q", got)
		}
		if r.ContentLength > 0 {
			t.Errorf("GET carried a %d byte body", r.ContentLength)
		}
		writeJSON(w, http.StatusOK, `{"message":"ok"}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	res := Call[APIError, APIError](context.Background(), c, Request{
		Verb:      VerbGet,
		Path:      "/search",
		Body:      map[string]string{"ignored": "yes"},
		AuthToken: "t0k",
		Query:     Values{"page": 2, "q": "go lang", "active": true},
		Headers:   Values{"X-Trace": 42, "Accept-Language": "en"},
	})

	if !res.IsSuccessful() {
		t.Fatalf("outcome = %v, want success", res)
	}
}

func TestCall_CallerHeadersOverrideDefaults(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Content-Type"); got != "application/vnd.api+json" {
			t.Errorf("Content-Type = %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Basic abc" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("User-Agent"); got != "tests/1.0" {
			t.Errorf("User-Agent = %q", got)
		}
		writeJSON(w, http.StatusOK, `{}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, WithUserAgent("tests/1.0"))
	res := Call[APIError, APIError](context.Background(), c, Request{
		Verb:      VerbPut,
		Path:      "things/1",
		AuthToken: "Basic abc",
		Headers:   Values{"Content-Type": "application/vnd.api+json"},
	})
	if !res.IsSuccessful() {
		t.Fatalf("outcome = %v, want success", res)
	}
}

type captured struct {
	method string
	path   string
	body   []byte
}

func capturingServer(status int, body string) (*httptest.Server, <-chan captured) {
	ch := make(chan captured, 4)
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		ch <- captured{method: r.Method, path: r.URL.Path, body: data}
		writeJSON(w, status, body)
	}))
	return srv, ch
}

func TestCall_BodyVerbs(t *testing.T) {
	for _, verb := range []Verb{VerbPost, VerbPut, VerbDelete, VerbPatch} {
		t.Run(string(verb), func(t *testing.T) {
			srv, reqs := capturingServer(http.StatusOK, `{}`)
			defer srv.Close()

			c := newTestClient(t, srv)

			res := Call[APIError, APIError](context.Background(), c, Request{Verb: verb, Path: "items/7"})
			if !res.IsSuccessful() {
				t.Fatalf("outcome = %v, want success", res)
			}
			got := <-reqs
			if got.method != string(verb) {
				t.Errorf("Method = %s, want %s", got.method, verb)
			}
			if len(got.body) != 0 {
				t.Errorf("nil body sent as %q", got.body)
			}

			res = Call[APIError, APIError](context.Background(), c, Request{
				Verb: verb,
				Path: "items/7",
				Body: struct {
					Name  string `json:"name"`
					Count int    `json:"count"`
				}{Name: "x"},
			})
			if !res.IsSuccessful() {
				t.Fatalf("outcome = %v, want success", res)
			}
			if got := <-reqs; string(got.body) != `{"name":"x","count":0}` {
				t.Errorf("body = %s", got.body)
			}
		})
	}
}

func TestCall_BaseAddressPrefix(t *testing.T) {
	srv, reqs := capturingServer(http.StatusOK, `{}`)
	defer srv.Close()

	c, err := New(WithBaseAddress(baseOf(srv)+"/api/v1/"), WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	Call[APIError, APIError](context.Background(), c, Request{Verb: VerbGet, Path: "/users/me"})

	if got := <-reqs; got.path != "/api/v1/users/me" {
		t.Fatalf("path = %q, want /api/v1/users/me", got.path)
	}
}

func TestCall_BaseAddressOverride(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"message":"override"}`)
	}))
	defer srv.Close()

	c, err := New(WithBaseAddress("unreachable.invalid"), WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	res := Call[APIError, APIError](context.Background(), c, Request{
		Verb:        VerbGet,
		Path:        "ping",
		BaseAddress: baseOf(srv),
	})
	if got, ok := res.Value(); !ok || got.Message != "override" {
		t.Fatalf("outcome = %v, want success from the override address", res)
	}

	res = Call[APIError, APIError](context.Background(), c, Request{
		Verb:        VerbGet,
		Path:        "ping",
		BaseAddress: "https://" + baseOf(srv),
	})
	if msg, ok := res.Message(); !ok || msg != MessageUnexpected {
		t.Fatalf("outcome = %v, want transport error %q for a schemed override", res, MessageUnexpected)
	}
}

func TestCall_UnsupportedVerb(t *testing.T) {
	srv := httptest.NewTLSServer(http.NotFoundHandler())
	defer srv.Close()

	c := newTestClient(t, srv)
	res := Call[APIError, APIError](context.Background(), c, Request{Verb: "TRACE", Path: "x"})
	if msg, ok := res.Message(); !ok || msg != MessageUnexpected {
		t.Fatalf("outcome = %v, want transport error %q", res, MessageUnexpected)
	}
}

func TestAuthorization(t *testing.T) {
	tests := map[string]string{
		"abc":          "Bearer abc",
		" abc ":        "Bearer abc",
		"Bearer abc":   "Bearer abc",
		"Token abc":    "Token abc",
		"Basic dXNlcg": "Basic dXNlcg",
	}
	for in, want := range tests {
		if got := authorization(in); got != want {
			t.Errorf("authorization(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCall_LogsClassifiedFailures(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"message":"Invalid credentials"}`)
	}))
	defer srv.Close()

	core, logs := observer.New(zapcore.DebugLevel)
	c := newTestClient(t, srv, WithLogger(zap.New(core)))
	Call[APIError, APIError](context.Background(), c, Request{Verb: VerbPost, Path: "auth/login"})

	entries := logs.FilterMessage("call failed").All()
	if len(entries) != 1 {
		t.Fatalf("logged %d failures, want 1", len(entries))
	}
	e := entries[0]
	if e.Level != zapcore.WarnLevel {
		t.Errorf("Level = %s, want warn", e.Level)
	}
	fields := e.ContextMap()
	if fields["class"] != string(ClassFailure) {
		t.Errorf("class = %v", fields["class"])
	}
	if fields["status"] != int64(http.StatusUnauthorized) {
		t.Errorf("status = %v", fields["status"])
	}
}

type panicCore struct {
	zapcore.LevelEnabler
}

func (c panicCore) With([]zapcore.Field) zapcore.Core { return c }

func (c panicCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	return ce.AddCore(e, c)
}

func (panicCore) Write(zapcore.Entry, []zapcore.Field) error { panic("logger exploded") }

func (panicCore) Sync() error { return nil }

func TestCall_LoggerPanicDoesNotFailCall(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, `{"error":"forbidden"}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, WithLogger(zap.New(panicCore{zapcore.WarnLevel})))
	res := Call[APIError, APIError](context.Background(), c, Request{Verb: VerbGet, Path: "admin"})

	if !res.IsFailure() || res.Reason() != "forbidden" {
		t.Fatalf("outcome = %v, want failure %q", res, "forbidden")
	}
}

type recordingObserver struct {
	mu       sync.Mutex
	started  []string
	finished []Class
	statuses []int
}

func (o *recordingObserver) CallStarted(verb Verb, path string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started = append(o.started, string(verb)+" "+path)
}

func (o *recordingObserver) CallFinished(verb Verb, path string, class Class, status int, d time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished = append(o.finished, class)
	o.statuses = append(o.statuses, status)
}

func TestCall_NotifiesObservers(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			writeJSON(w, http.StatusNotFound, `{"message":"nope"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{}`)
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	c := newTestClient(t, srv, WithObserver(obs))
	Call[APIError, APIError](context.Background(), c, Request{Verb: VerbGet, Path: "ok"})
	Call[APIError, APIError](context.Background(), c, Request{Verb: VerbGet, Path: "missing"})

	if len(obs.started) != 2 || obs.started[0] != "GET ok" || obs.started[1] != "GET missing" {
		t.Fatalf("started = %v", obs.started)
	}
	if len(obs.finished) != 2 || obs.finished[0] != ClassSuccess || obs.finished[1] != ClassFailure {
		t.Fatalf("finished = %v", obs.finished)
	}
	if obs.statuses[0] != http.StatusOK || obs.statuses[1] != http.StatusNotFound {
		t.Fatalf("statuses = %v", obs.statuses)
	}
}

func TestCall_NegotiatesHTTP2(t *testing.T) {
	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ProtoMajor != 2 {
			t.Errorf("Proto = %s, want HTTP/2", r.Proto)
		}
		writeJSON(w, http.StatusOK, `{}`)
	}))
	srv.EnableHTTP2 = true
	srv.StartTLS()
	defer srv.Close()

	pool := x509.NewCertPool()
	pool.AddCert(srv.Certificate())

	c, err := New(WithBaseAddress(baseOf(srv)), WithTLSConfig(&tls.Config{RootCAs: pool}))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer c.Close()

	res := Call[APIError, APIError](context.Background(), c, Request{Verb: VerbGet, Path: "h2"})
	if !res.IsSuccessful() {
		t.Fatalf("outcome = %v, want success", res)
	}
}

func TestWithHTTPClient_CopiesClient(t *testing.T) {
	hc := &http.Client{}
	c, err := New(WithHTTPClient(hc))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if hc.CheckRedirect != nil {
		t.Fatal("New mutated the caller's http.Client")
	}
	if c.httpClient == hc || c.httpClient.CheckRedirect == nil {
		t.Fatal("client copy does not refuse redirects")
	}
}

func TestCall_ConcurrentWithReconfigure(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"message":"ok"}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := Call[APIError, APIError](context.Background(), c, Request{Verb: VerbGet, Path: "ping"})
			if !res.IsSuccessful() {
				t.Errorf("outcome = %v, want success", res)
			}
		}()
	}
	for i := 0; i < 8; i++ {
		if err := c.InitWithTimeout(baseOf(srv), int64(10+i), Seconds); err != nil {
			t.Errorf("InitWithTimeout returned error: %v", err)
		}
	}
	wg.Wait()
}

type panickingCodec struct{}

func (panickingCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (panickingCodec) Unmarshal([]byte, any) error { panic("decoder exploded") }

func TestCall_PanicStillFinishesObservers(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"message":"ok"}`)
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	c := newTestClient(t, srv, WithCodec(panickingCodec{}), WithObserver(obs))

	res := Call[APIError, APIError](context.Background(), c, Request{Verb: VerbGet, Path: "boom"})
	if msg, _ := res.Message(); msg != MessageUnexpected {
		t.Fatalf("outcome = %v, want %q", res, MessageUnexpected)
	}

	obs.mu.Lock()
	defer obs.mu.Unlock()
	if len(obs.started) != 1 || len(obs.finished) != 1 {
		t.Fatalf("started = %v, finished = %v; want one of each", obs.started, obs.finished)
	}
	if obs.finished[0] != ClassUnexpected || obs.statuses[0] != http.StatusOK {
		t.Errorf("finished = %v with status %v", obs.finished, obs.statuses)
	}
}

func TestCall_TokenReplacesCallerAuthorization(t *testing.T) {
	seen := make(chan string, 64)
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen <- r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, `{}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	for _, key := range []string{"authorization", "AUTHORIZATION", "Authorization"} {
		for i := 0; i < 20; i++ {
			res := Call[APIError, APIError](context.Background(), c, Request{
				Verb:      VerbGet,
				Path:      "me",
				AuthToken: "tok",
				Headers:   Values{key: "caller", "x-trace": "1"},
			})
			if !res.IsSuccessful() {
				t.Fatalf("outcome = %v, want success", res)
			}
			if got := <-seen; got != "Bearer tok" {
				t.Fatalf("%s header: Authorization = %q, want %q", key, got, "Bearer tok")
			}
		}
	}
}

func TestCall_CallerAuthorizationWithoutToken(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "caller" {
			t.Errorf("Authorization = %q, want %q", got, "caller")
		}
		writeJSON(w, http.StatusOK, `{}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	res := Call[APIError, APIError](context.Background(), c, Request{
		Verb:    VerbGet,
		Path:    "me",
		Headers: Values{"authorization": "caller"},
	})
	if !res.IsSuccessful() {
		t.Fatalf("outcome = %v, want success", res)
	}
}
