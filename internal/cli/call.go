package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/impaktor/pkg/impaktor"
)

type callOptions struct {
	data    string
	query   []string
	headers []string
	token   string
	raw     bool
}

func newCallCmd(root *rootOptions) *cobra.Command {
	opts := &callOptions{}

	cmd := &cobra.Command{
		Use:   "call VERB PATH",
		Short: "Send one request and print the outcome",
		Long: `Send one request and print the outcome.

On success the response body is printed. On a failure status the reason
from the error body is printed and the command exits non-zero, as it does
for timeouts, network errors and undecodable responses.

Example:
  impaktor call GET users --query page=2 --query active=true
  impaktor call POST users --data '{"name":"ada"}' --token $TOKEN
  impaktor call DELETE users/42 --header X-Request-Id=abc`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(cmd, root, opts, args[0], args[1])
		},
	}

	cmd.Flags().StringVarP(&opts.data, "data", "d", "", "JSON request body (ignored for GET)")
	cmd.Flags().StringArrayVarP(&opts.query, "query", "q", nil, "Query parameter key=value (GET only, repeatable)")
	cmd.Flags().StringArrayVarP(&opts.headers, "header", "H", nil, "Header key=value (repeatable)")
	cmd.Flags().StringVarP(&opts.token, "token", "t", "", "Bearer token (defaults to the configured auth_token)")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "Print the body as received instead of indented")

	return cmd
}

func runCall(cmd *cobra.Command, root *rootOptions, opts *callOptions, verbArg, path string) error {
	verb := impaktor.Verb(strings.ToUpper(verbArg))
	if !verb.Valid() {
		return fmt.Errorf("%w: %q", impaktor.ErrUnsupportedVerb, verbArg)
	}

	query, err := parsePairs("query", opts.query)
	if err != nil {
		return err
	}
	headers, err := parsePairs("header", opts.headers)
	if err != nil {
		return err
	}

	var body any
	if opts.data != "" {
		if !json.Valid([]byte(opts.data)) {
			return fmt.Errorf("--data is not valid JSON")
		}
		body = json.RawMessage(opts.data)
	}

	cfg, err := root.load()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, "")
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	client, err := newClient(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	token := opts.token
	if token == "" {
		token = cfg.AuthToken
	}

	res := impaktor.Call[json.RawMessage, impaktor.APIError](cmd.Context(), client, impaktor.Request{
		Verb:      verb,
		Path:      path,
		Body:      body,
		AuthToken: token,
		Query:     query,
		Headers:   headers,
	})
	if !res.IsSuccessful() {
		return fmt.Errorf("%s %s: %s", verb, path, res.Reason())
	}

	return printBody(cmd, res.Unwrap(), opts.raw)
}

// printBody writes a JSON body, indented unless raw is set.
func printBody(cmd *cobra.Command, body json.RawMessage, raw bool) error {
	if len(body) == 0 {
		return nil
	}
	out := cmd.OutOrStdout()
	if raw {
		_, err := fmt.Fprintln(out, string(body))
		return err
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		return err
	}
	_, err := fmt.Fprintln(out, buf.String())
	return err
}
