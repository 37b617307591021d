package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/impaktor/internal/auth"
	"github.com/impaktor/internal/logging"
	"github.com/impaktor/internal/tui"
)

type loginOptions struct {
	identifier string
	password   string
}

func newLoginCmd(root *rootOptions) *cobra.Command {
	opts := &loginOptions{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with an identifier and password",
		Long: `Sign in by posting credentials to auth/login.

Without --identifier on a terminal, an interactive login screen opens.
Without --password the password is read without echo from the terminal,
or as one line from stdin when stdin is not a terminal.

Example:
  impaktor login
  impaktor login --identifier you@example.com
  echo "$PASSWORD" | impaktor login -i you@example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.identifier, "identifier", "i", "", "Account identifier, usually an email address")
	cmd.Flags().StringVarP(&opts.password, "password", "p", "", "Password (prompted for when omitted)")

	return cmd
}

func runLogin(cmd *cobra.Command, root *rootOptions, opts *loginOptions) error {
	cfg, err := root.load()
	if err != nil {
		return err
	}

	interactive := opts.identifier == "" && isTerminal(os.Stdin)
	if !interactive && opts.identifier == "" {
		return errors.New("--identifier is required when stdin is not a terminal")
	}

	// The screen owns the terminal, so an interactive session logs to a file.
	logFile := ""
	if interactive {
		logFile = logging.DefaultFile()
	}
	logger, err := newLogger(cfg, logFile)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	client, err := newClient(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	if interactive {
		model := tui.NewLoginModel(cmd.Context(), client, "", logger)
		final, err := tea.NewProgram(model, tea.WithContext(cmd.Context())).Run()
		if err != nil {
			return fmt.Errorf("login screen: %w", err)
		}
		if m, ok := final.(tui.LoginModel); ok {
			if res, done := m.Result(); done && !res.IsSuccessful() {
				return errors.New(res.Reason())
			}
		}
		return nil
	}

	password := opts.password
	if password == "" {
		if password, err = readPassword(cmd); err != nil {
			return err
		}
	}

	res := auth.Login(cmd.Context(), client, auth.Credentials{
		Identifier: opts.identifier,
		Password:   password,
	})
	if !res.IsSuccessful() {
		return fmt.Errorf("login failed: %s", res.Reason())
	}

	resp := res.Unwrap()
	out := cmd.OutOrStdout()
	msg := resp.Message
	if msg == "" {
		msg = "signed in"
	}
	fmt.Fprintf(out, "%s %s\n", tui.CheckMark, msg)
	if token := resp.Token(); token != "" {
		fmt.Fprintf(out, "token: %s\n", token)
	}
	return nil
}

// readPassword prompts without echo on a terminal and reads one line otherwise.
func readPassword(cmd *cobra.Command) (string, error) {
	if isTerminal(os.Stdin) {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("password is required")
	}
	return password, nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
