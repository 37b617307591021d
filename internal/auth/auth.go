// Package auth holds the login exchange shared by the command line and the
// login screen.
package auth

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/impaktor/pkg/impaktor"
	"github.com/impaktor/pkg/outcome"
)

// LoginPath is the endpoint credentials are posted to.
const LoginPath = "auth/login"

// Credentials is the login request body.
type Credentials struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// Response is the envelope the backend wraps every payload in.
type Response struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Status  int             `json:"status"`
}

// Token returns data.token when the payload carries one.
func (r Response) Token() string {
	var data struct {
		Token       string `json:"token"`
		AccessToken string `json:"access_token"`
	}
	if len(r.Data) == 0 || json.Unmarshal(r.Data, &data) != nil {
		return ""
	}
	if data.Token != "" {
		return data.Token
	}
	return data.AccessToken
}

// Login posts creds and resolves the outcome.
func Login(ctx context.Context, c *impaktor.Client, creds Credentials) outcome.Outcome[Response, impaktor.APIError] {
	creds.Identifier = strings.TrimSpace(creds.Identifier)
	return impaktor.Call[Response, impaktor.APIError](ctx, c, impaktor.Request{
		Verb: impaktor.VerbPost,
		Path: LoginPath,
		Body: creds,
	})
}
