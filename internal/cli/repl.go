package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	helpLoggedOut = "Available commands: signup, login, users, seed, exit"
	helpLoggedIn  = "Available commands: whoami, users, chats, open, group, send, read, react, block, unblock, verify, country, seed, logout, exit"
)

// runREPL reads one command per line and dispatches it. Command errors
// are printed and the loop goes on; it ends on EOF, exit or quit.
func (a *App) runREPL(ctx context.Context) {
	for {
		fmt.Fprintf(a.out, "sigmax %s> ", a.status(ctx))
		line, err := a.reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			fmt.Fprintln(a.out)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd, args := parts[0], parts[1:]
		if cmd == "exit" || cmd == "quit" {
			fmt.Fprintln(a.out, "Bye!")
			return
		}
		if err := a.exec(ctx, cmd, args); err != nil {
			fmt.Fprintln(a.out, "Error:", err)
		}
	}
}

func (a *App) exec(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help":
		if a.isLoggedIn(ctx) {
			fmt.Fprintln(a.out, helpLoggedIn)
		} else {
			fmt.Fprintln(a.out, helpLoggedOut)
		}
		return nil
	case "signup":
		return a.Signup(ctx)
	case "login":
		return a.Login(ctx)
	case "users":
		return a.Users(ctx)
	case "seed":
		return a.Seed(ctx)
	}

	sess, err := a.sessions.Current(ctx)
	if err != nil {
		return err
	}
	if !sess.Active() {
		return errNotLoggedIn
	}

	switch cmd {
	case "logout":
		return a.Logout(ctx)
	case "whoami":
		return a.Whoami(ctx, sess)
	case "chats":
		return a.Chats(ctx, sess)
	case "open":
		return a.Open(ctx, sess, args)
	case "group":
		return a.Group(ctx, sess, args)
	case "send":
		return a.Send(ctx, sess, args)
	case "read":
		return a.Read(ctx, sess, args)
	case "react":
		return a.React(ctx, sess, args)
	case "block":
		return a.Block(ctx, sess, args)
	case "unblock":
		return a.Unblock(ctx, sess, args)
	case "verify":
		return a.Verify(ctx, sess, args)
	case "country":
		return a.Country(ctx, sess, args)
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func (a *App) isLoggedIn(ctx context.Context) bool {
	s, err := a.sessions.Current(ctx)
	return err == nil && s.Active()
}

func (a *App) status(ctx context.Context) string {
	s, err := a.sessions.Current(ctx)
	if err != nil || !s.Active() {
		return ""
	}
	u, err := a.chat.GetUser(ctx, s.UserID)
	if err != nil {
		return "(" + s.UserID + ") "
	}
	return "(" + u.PhoneNumber + ") "
}
