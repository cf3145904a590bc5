package cmd

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"todoapi/internal/shared/models"
)

type authClient struct {
	serverURL *string
	email     string
	password  string
}

func newAuthCmd(serverURL *string) *cobra.Command {
	a := &authClient{serverURL: serverURL}
	cmd := &cobra.Command{Use: "auth", Short: "Authentication commands"}

	register := &cobra.Command{Use: "register", Short: "Register new user and store tokens", Args: cobra.NoArgs, RunE: a.register}
	login := &cobra.Command{Use: "login", Short: "Login and store tokens", Args: cobra.NoArgs, RunE: a.login}
	for _, c := range []*cobra.Command{register, login} {
		c.Flags().StringVar(&a.email, "email", "", "account email (prompted when empty)")
		c.Flags().StringVar(&a.password, "password", "", "account password (prompted when empty)")
	}
	cmd.AddCommand(register, login)
	cmd.AddCommand(&cobra.Command{Use: "refresh", Short: "Rotate stored tokens", Args: cobra.NoArgs, RunE: a.refresh})
	return cmd
}

func (a *authClient) register(cmd *cobra.Command, _ []string) error {
	return a.exchange(cmd, "/auth/register", "Registered")
}

func (a *authClient) login(cmd *cobra.Command, _ []string) error {
	return a.exchange(cmd, "/auth/login", "Logged in")
}

// exchange posts credentials to path and stores the returned token pair.
func (a *authClient) exchange(cmd *cobra.Command, path, done string) error {
	email, password, err := a.credentials(cmd)
	if err != nil {
		return err
	}
	var pair models.TokenResponse
	body := map[string]string{"email": email, "password": password}
	if err := newAPIClient(*a.serverURL).do(cmd.Context(), http.MethodPost, path, "", body, &pair); err != nil {
		return err
	}
	if err := saveTokens(pair); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), done)
	return nil
}

func (a *authClient) refresh(cmd *cobra.Command, _ []string) error {
	if _, err := newAPIClient(*a.serverURL).refresh(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Tokens refreshed")
	return nil
}

func (a *authClient) credentials(cmd *cobra.Command) (email, password string, err error) {
	email, password = a.email, a.password
	if email == "" {
		fmt.Fprint(cmd.OutOrStdout(), "Email: ")
		if email, err = readLine(cmd.InOrStdin()); err != nil {
			return "", "", err
		}
	}
	if password == "" {
		if password, err = promptPassword(cmd, "Password: "); err != nil {
			return "", "", err
		}
	}
	if email == "" || password == "" {
		return "", "", errors.New("email and password required")
	}
	return email, password, nil
}

// promptPassword reads without echo from a terminal and falls back to a
// plain line read when input is piped.
func promptPassword(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		pass, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		return string(pass), err
	}
	return readLine(cmd.InOrStdin())
}

// readLine reads a single line one byte at a time so that consecutive
// prompts can share the same reader.
func readLine(r io.Reader) (string, error) {
	var sb strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if buf[0] == '\n' {
				break
			}
			sb.WriteByte(buf[0])
		}
		if err == io.EOF && sb.Len() > 0 {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
