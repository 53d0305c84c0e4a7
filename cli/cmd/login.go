// ABOUTME: login, logout and whoami commands
// ABOUTME: Exchanges credentials for a bearer token and stores it in the config file

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/MohamedIjlal27/LMS/models"
	"github.com/MohamedIjlal27/LMS/services"
)

var errNotLoggedIn = errors.New(`not logged in; run "learnctl login" first`)

// promptCredentials is replaced in tests.
var promptCredentials = func(email, password *string) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Email").Value(email),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(password),
		),
	).Run()
}

type loginOptions struct {
	email    string
	password string
}

var loginOpts loginOptions

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store a token",
	Long:  `Sign in to the LMS backend. Missing credentials are prompted for interactively.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLogin(cmd.Context(), cmd.OutOrStdout(), loginOpts)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored token",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLogout(cmd.Context(), cmd.OutOrStdout())
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWhoami(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginOpts.email, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginOpts.password, "password", "", "Account password (prompted when omitted)")
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
}

func runLogin(ctx context.Context, w io.Writer, opts loginOptions) error {
	if opts.email == "" || opts.password == "" {
		if err := promptCredentials(&opts.email, &opts.password); err != nil {
			return fmt.Errorf("reading credentials: %w", err)
		}
	}
	form := models.LoginForm{Email: strings.TrimSpace(opts.email), Password: opts.password}
	if errs := models.Validate(form); errs != nil {
		return errs
	}

	c := newClient()
	resp, err := c.Login(ctx, models.LoginRequest{Email: form.Email, Password: form.Password})
	if err != nil {
		if errors.Is(err, services.ErrUnauthorized) {
			return errors.New(services.MsgInvalidCredentials)
		}
		return fmt.Errorf("login failed: %w", err)
	}
	token := resp.BearerToken()
	if token == "" {
		return errors.New("login failed: backend returned no token")
	}

	user := resp.User
	if user == nil {
		me, err := c.Me(ctx, token)
		if err != nil {
			return fmt.Errorf("loading profile: %w", err)
		}
		user = &me
	}

	if err := saveToken(token); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	return printUser(w, user)
}

func runLogout(ctx context.Context, w io.Writer) error {
	if token := storedToken(); token != "" {
		// Best effort; the local token is removed regardless
		_ = newClient().Logout(ctx, token)
	}
	if err := saveToken(""); err != nil {
		return fmt.Errorf("removing token: %w", err)
	}
	fmt.Fprintln(w, "Logged out.")
	return nil
}

func runWhoami(ctx context.Context, w io.Writer) error {
	token := storedToken()
	if token == "" {
		return errNotLoggedIn
	}
	me, err := newClient().Me(ctx, token)
	if errors.Is(err, services.ErrUnauthorized) {
		return errors.New(services.MsgSessionExpired)
	}
	if err != nil {
		return err
	}
	return printUser(w, &me)
}

func printUser(w io.Writer, u *models.User) error {
	if IsJSONOutput() {
		return printJSON(w, u)
	}
	fmt.Fprintf(w, "%s %s <%s> (%s)\n", styleOK.Render("Signed in as"), u.Name, u.Email, u.Role)
	return nil
}
