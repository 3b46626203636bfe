package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"leaddesk/internal/session"
	"leaddesk/internal/validate"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
)

var (
	authEmail     string
	authPassword  string
	authFirstName string
	authLastName  string
)

// loginCmd signs in and stores the session
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the lead manager",
	Long: `Signs in with email and password. Missing values are prompted for.

The session cookie and bearer token are stored in the local database, so
later commands and the dashboard start signed in.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

// registerCmd creates an account
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	Args:  cobra.NoArgs,
	RunE:  runRegister,
}

// logoutCmd ends the session
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

// whoamiCmd prints the resolved identity
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().StringVar(&authEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&authPassword, "password", "", "Account password (prompted when omitted)")

	registerCmd.Flags().StringVar(&authFirstName, "first-name", "", "First name")
	registerCmd.Flags().StringVar(&authLastName, "last-name", "", "Last name")
	registerCmd.Flags().StringVar(&authEmail, "email", "", "Account email")
	registerCmd.Flags().StringVar(&authPassword, "password", "", "Account password (prompted when omitted)")
}

// prompter reads answers from the command's input. Passwords are read
// without echo when the input is a terminal.
type prompter struct {
	in  io.Reader
	out io.Writer
	r   *bufio.Reader
}

func newPrompter(cmd *cobra.Command) *prompter {
	in := cmd.InOrStdin()
	return &prompter{in: in, out: cmd.OutOrStdout(), r: bufio.NewReader(in)}
}

func (p *prompter) ask(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	line, err := p.r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("reading %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}

func (p *prompter) secret(label string) (string, error) {
	if f, ok := p.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprintf(p.out, "%s: ", label)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", strings.ToLower(label), err)
		}
		return string(b), nil
	}
	return p.ask(label)
}

func (p *prompter) fill(dst *string, label string, secret bool) error {
	if *dst != "" {
		return nil
	}
	var (
		v   string
		err error
	)
	if secret {
		v, err = p.secret(label)
	} else {
		v, err = p.ask(label)
	}
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// reportValidation prints each field message and returns errReported.
func (a *app) reportValidation(err error) error {
	var ve *validate.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	for _, f := range ve.Fields {
		a.printer.Error("%s", f.Message)
	}
	return errReported
}

func runLogin(cmd *cobra.Command, args []string) error {
	p := newPrompter(cmd)
	email, password := authEmail, authPassword
	if err := p.fill(&email, "Email", false); err != nil {
		return err
	}
	if err := p.fill(&password, "Password", true); err != nil {
		return err
	}

	a, err := openApp(cmd, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	logger.Debug("login", zap.String("email", email))
	if err := a.resolver.Login(cmd.Context(), email, password); err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			return a.reportValidation(err)
		}
		return errReported
	}
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	p := newPrompter(cmd)
	prof := session.Profile{FirstName: authFirstName, LastName: authLastName, Email: authEmail, Password: authPassword}
	for _, f := range []struct {
		dst    *string
		label  string
		secret bool
	}{
		{&prof.FirstName, "First name", false},
		{&prof.LastName, "Last name", false},
		{&prof.Email, "Email", false},
		{&prof.Password, "Password", true},
	} {
		if err := p.fill(f.dst, f.label, f.secret); err != nil {
			return err
		}
	}

	a, err := openApp(cmd, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.resolver.Register(cmd.Context(), prof); err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			return a.reportValidation(err)
		}
		return errReported
	}
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	a.resolver.Logout(cmd.Context())
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	st := a.resolver.Resolve(cmd.Context())
	if !st.Authenticated() {
		a.printer.Print("not signed in")
		return nil
	}
	a.printer.Print("%s <%s>", st.User.DisplayName(), st.User.Email)
	return nil
}
