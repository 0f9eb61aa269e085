package command

import (
	"errors"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/wizcli-go/internal/core/domain"
	"github.com/yndnr/wizcli-go/pkg/crypto/adaptive"
)

// sessionView is the output of `session show`.
type sessionView struct {
	State         string              `json:"state" yaml:"state"`
	UserID        string              `json:"userId,omitempty" yaml:"userId,omitempty"`
	KbGUID        string              `json:"kbGuid,omitempty" yaml:"kbGuid,omitempty"`
	KbServer      string              `json:"kbServer,omitempty" yaml:"kbServer,omitempty" table:"wide"`
	LastUsed      time.Time           `json:"lastUsed,omitempty" yaml:"lastUsed,omitempty"`
	LikelyExpired bool                `json:"likelyExpired" yaml:"likelyExpired"`
	Remembered    bool                `json:"remembered" yaml:"remembered"`
	SavedAt       time.Time           `json:"savedAt,omitempty" yaml:"savedAt,omitempty"`
	Cipher        adaptive.CipherType `json:"cipher,omitempty" yaml:"cipher,omitempty" table:"wide"`
}

// SessionCommand returns the session command group.
func SessionCommand(rt *Runtime) *cli.Command {
	return &cli.Command{
		Name:  "session",
		Usage: "Inspect and manage the local session",
		Subcommands: []*cli.Command{
			sessionShowCommand(rt),
			sessionSaveCommand(rt),
			sessionForgetCommand(rt),
		},
	}
}

func sessionShowCommand(rt *Runtime) *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Show the login state and the remembered session",
		Action: func(c *cli.Context) error {
			view := sessionView{State: rt.tokens.State().String()}
			if user := rt.tokens.UserInfo(); user != nil {
				view.UserID = user.UserID
				view.KbGUID = user.KbGUID
				view.KbServer = user.KbServer
				view.LastUsed = rt.tokens.LastUsed()
				view.LikelyExpired = rt.tokens.LikelyExpired(rt.now())
			}

			if rt.store != nil || sessionDirExists(rt) {
				store, err := rt.sessionStore()
				if err != nil {
					return err
				}
				meta, err := store.Meta(c.Context)
				switch {
				case err == nil:
					view.Remembered = true
					view.SavedAt = meta.SavedAt
					view.Cipher = meta.Cipher
				case !errors.Is(err, domain.ErrSessionNotFound):
					return err
				}
			}
			return rt.render(view)
		},
	}
}

func sessionSaveCommand(rt *Runtime) *cli.Command {
	return &cli.Command{
		Name:  "save",
		Usage: "Remember the current session for later runs",
		Action: func(c *cli.Context) error {
			if err := rt.remember(c.Context); err != nil {
				return err
			}
			rt.printf("Session saved.\n")
			return nil
		},
	}
}

func sessionForgetCommand(rt *Runtime) *cli.Command {
	return &cli.Command{
		Name:  "forget",
		Usage: "Delete the remembered session without logging out",
		Action: func(c *cli.Context) error {
			removed, err := rt.forget(c.Context)
			if err != nil {
				return err
			}
			if removed {
				rt.printf("Saved session removed.\n")
			} else {
				rt.printf("No saved session.\n")
			}
			return nil
		},
	}
}

func sessionDirExists(rt *Runtime) bool {
	_, err := os.Stat(rt.cfg.SessionDir())
	return err == nil
}
