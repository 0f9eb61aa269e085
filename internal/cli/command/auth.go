package command

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/wizcli-go/internal/cli/output"
	"github.com/yndnr/wizcli-go/internal/core/domain"
	"github.com/yndnr/wizcli-go/internal/core/service"
)

// errReported ends a command whose failure was already printed.
var errReported = cli.Exit("", 1)

func credentialFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "user-id",
			Aliases: []string{"u"},
			Usage:   "Account name of your WizNote (prompted when missing)",
		},
		&cli.StringFlag{
			Name:    "password",
			Aliases: []string{"p"},
			Usage:   "Account password (prompted when missing; avoid on shared machines, it stays in shell history)",
		},
	}
}

// credentials returns the user id and password from flags or prompts.
func credentials(c *cli.Context, rt *Runtime) (string, string, error) {
	userID := c.String("user-id")
	if userID == "" {
		var err error
		if userID, err = rt.promptLine("User Name: "); err != nil {
			return "", "", err
		}
	}
	if userID == "" {
		return "", "", domain.ErrMissingArgument.WithDetails("user id")
	}

	password := c.String("password")
	if !c.IsSet("password") {
		var err error
		if password, err = rt.promptSecret("Password: "); err != nil {
			return "", "", err
		}
	}
	return userID, password, nil
}

// reportCredentialError prints the messages for unknown users and wrong
// passwords. It returns errReported for those and err otherwise.
func reportCredentialError(rt *Runtime, userID string, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidUser):
		fmt.Fprintf(rt.errOut, "User `%s` does not exist!\n", userID)
		return errReported
	case errors.Is(err, domain.ErrInvalidPassword):
		fmt.Fprintf(rt.errOut, "Password of `%s` is not correct!\n", userID)
		return errReported
	default:
		return err
	}
}

// LoginCommand returns the login command.
func LoginCommand(rt *Runtime) *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Login to WizNote server",
		Flags: append(credentialFlags(),
			&cli.BoolFlag{
				Name:    "remember",
				Aliases: []string{"r"},
				Usage:   "Save the session (token encrypted) for later runs",
			},
		),
		Action: func(c *cli.Context) error {
			if rt.tokens.State() == service.StateAuthenticated {
				user := rt.tokens.UserInfo()
				rt.printf("Already logged in as %s. Run `logout` first to switch accounts.\n", user.UserID)
				return nil
			}

			userID, password, err := credentials(c, rt)
			if err != nil {
				return err
			}

			user, err := rt.tokens.Login(c.Context, userID, password)
			if err != nil {
				return reportCredentialError(rt, userID, err)
			}

			if c.Bool("remember") {
				if err := rt.remember(c.Context); err != nil {
					return fmt.Errorf("save session: %w", err)
				}
			}

			if rt.format != output.FormatTable {
				return rt.render(publicUser(user))
			}
			name := user.DisplayName
			if name == "" {
				name = user.UserID
			}
			rt.printf("Hello '%s'\n", name)
			return nil
		},
	}
}

// LogoutCommand returns the logout command.
func LogoutCommand(rt *Runtime) *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Logout and invalidate the session token",
		Action: func(c *cli.Context) error {
			logoutErr := rt.tokens.Logout(c.Context)
			if logoutErr != nil && !errors.Is(logoutErr, domain.ErrUnauthenticated) {
				return logoutErr
			}

			forgot, err := rt.forget(c.Context)
			if err != nil {
				return fmt.Errorf("forget saved session: %w", err)
			}
			if logoutErr != nil && !forgot {
				return logoutErr
			}
			rt.printf("Logged out.\n")
			return nil
		},
	}
}

// KeepCommand returns the keep-alive command.
func KeepCommand(rt *Runtime) *cli.Command {
	return &cli.Command{
		Name:    "keep",
		Aliases: []string{"keep-alive"},
		Usage:   "Extend the session token expiry on the server",
		Action: func(c *cli.Context) error {
			if err := rt.tokens.KeepAlive(c.Context); err != nil {
				return err
			}
			rt.printf("Session kept alive.\n")
			return nil
		},
	}
}

// TokenCommand returns the token command.
func TokenCommand(rt *Runtime) *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Exchange credentials for a new token without changing the session",
		Flags: credentialFlags(),
		Action: func(c *cli.Context) error {
			userID, password, err := credentials(c, rt)
			if err != nil {
				return err
			}

			token, err := rt.tokens.FetchToken(c.Context, userID, password)
			if err != nil {
				return reportCredentialError(rt, userID, err)
			}

			if rt.format != output.FormatTable {
				return rt.render(map[string]string{"token": token})
			}
			rt.printf("%s\n", token)
			return nil
		},
	}
}

// publicUser returns a copy of user without its token.
func publicUser(user *domain.UserInfo) *domain.UserInfo {
	u := user.Clone()
	u.Token = ""
	return u
}
