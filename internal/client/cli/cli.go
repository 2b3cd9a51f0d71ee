package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/AnthoniusHendriyanto/dashboard-auth/internal/client"
	"github.com/AnthoniusHendriyanto/dashboard-auth/internal/client/session"
	"go.uber.org/zap"
)

const usage = `usage: dashctl <command> [flags]

commands:
  signup        create an account (-name, -email)
  login         sign in with email and password (-email)
  google-login  sign in with a Google ID token (-id-token)
  forgot        request a password reset code (-email)
  reset         set a new password with the emailed code (-otp, -email)
  status        show who is signed in
  logout        end the session
  client-id     print the Google client id configured on the server
`

var ErrUsage = errors.New("invalid usage")

type app struct {
	api   *client.Client
	guard *session.Guard
	in    *bufio.Reader
	out   io.Writer
}

// terminal renders guard decisions as plain text.
type terminal struct {
	out io.Writer
}

func (t terminal) ShowIdentity(u client.User) {
	fmt.Fprintf(t.out, "Signed in as %s <%s>\n", u.Name, u.Email)
}

func (t terminal) RedirectToLogin() {
	fmt.Fprintln(t.out, "Not signed in. Run `dashctl login` to continue.")
}

func (t terminal) ShowRetry(err error) {
	fmt.Fprintf(t.out, "Logout failed: %v. Please try again.\n", err)
}

// Run executes one dashctl command against the server in cfg.
func Run(ctx context.Context, cfg Config, args []string, in io.Reader, out io.Writer, logger *zap.Logger) error {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return ErrUsage
	}

	store, err := session.Open(cfg.StatePath)
	if err != nil {
		return err
	}
	defer store.Close()

	api := client.New(cfg.Server, nil)
	a := &app{
		api:   api,
		guard: session.NewGuard(api, store, terminal{out: out}, logger),
		in:    bufio.NewReader(in),
		out:   out,
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "signup":
		return a.signup(ctx, rest)
	case "login":
		return a.login(ctx, rest)
	case "google-login":
		return a.googleLogin(ctx, rest)
	case "forgot":
		return a.forgot(ctx, rest)
	case "reset":
		return a.reset(ctx, rest)
	case "status":
		return a.guard.Open(ctx)
	case "logout":
		return a.logout(ctx)
	case "client-id":
		return a.clientID(ctx)
	default:
		fmt.Fprintf(out, "unknown command %q\n\n%s", cmd, usage)
		return ErrUsage
	}
}

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

func (a *app) valueOrPrompt(v *string, prompt string) error {
	if *v != "" {
		return nil
	}
	line, err := promptLine(a.in, a.out, prompt)
	if err != nil {
		return err
	}
	*v = line
	return nil
}

func (a *app) signup(ctx context.Context, args []string) error {
	fs := a.flags("signup")
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}
	if err := a.valueOrPrompt(name, "Name"); err != nil {
		return err
	}
	if err := a.valueOrPrompt(email, "Email"); err != nil {
		return err
	}
	password, err := promptPassword(a.out, "Password")
	if err != nil {
		return err
	}

	sess, err := a.api.Signup(ctx, *name, *email, password)
	if err != nil {
		return err
	}
	return a.signedIn(sess)
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := a.flags("login")
	email := fs.String("email", "", "email address")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}
	if err := a.valueOrPrompt(email, "Email"); err != nil {
		return err
	}
	password, err := promptPassword(a.out, "Password")
	if err != nil {
		return err
	}

	sess, err := a.api.Login(ctx, *email, password)
	if err != nil {
		return err
	}
	return a.signedIn(sess)
}

func (a *app) googleLogin(ctx context.Context, args []string) error {
	fs := a.flags("google-login")
	idToken := fs.String("id-token", "", "Google ID token")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}
	if err := a.valueOrPrompt(idToken, "Google ID token"); err != nil {
		return err
	}

	sess, err := a.api.FederatedLogin(ctx, *idToken)
	if err != nil {
		return err
	}
	return a.signedIn(sess)
}

func (a *app) signedIn(sess *client.Session) error {
	if err := a.guard.Remember(*sess); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as %s <%s>\n", sess.User.Name, sess.User.Email)
	return nil
}

func (a *app) forgot(ctx context.Context, args []string) error {
	fs := a.flags("forgot")
	email := fs.String("email", "", "email address")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}
	if err := a.valueOrPrompt(email, "Email"); err != nil {
		return err
	}

	devNote, err := a.api.ForgotPassword(ctx, *email)
	if err != nil {
		return err
	}
	if err := a.guard.BeginReset(*email); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "A reset code was sent to %s. Run `dashctl reset` to continue.\n", *email)
	if devNote != "" {
		fmt.Fprintln(a.out, devNote)
	}
	return nil
}

func (a *app) reset(ctx context.Context, args []string) error {
	fs := a.flags("reset")
	email := fs.String("email", "", "email address (defaults to the one from `forgot`)")
	code := fs.String("otp", "", "6-digit code from the email")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}
	if *email == "" {
		stored, err := a.guard.ResetEmail()
		if err != nil {
			return err
		}
		*email = stored
	}
	if *email == "" {
		fmt.Fprintln(a.out, "No pending reset. Run `dashctl forgot` first or pass -email.")
		return ErrUsage
	}
	if err := a.valueOrPrompt(code, "Code"); err != nil {
		return err
	}
	password, err := promptPassword(a.out, "New password")
	if err != nil {
		return err
	}

	if err := a.api.ResetPassword(ctx, *email, *code, password); err != nil {
		return err
	}
	if err := a.guard.EndReset(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Password reset successful. You can now log in.")
	return nil
}

func (a *app) logout(ctx context.Context) error {
	if err := a.guard.Open(ctx); err != nil {
		return err
	}
	if a.guard.State() != session.Authenticated {
		return nil
	}
	return a.guard.Logout(ctx)
}

func (a *app) clientID(ctx context.Context) error {
	id, err := a.api.IdentityProviderClientID(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, id)
	return nil
}
