package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/sigmax/internal/chat"
	"github.com/dmitrijs2005/sigmax/internal/common"
	"github.com/dmitrijs2005/sigmax/internal/media"
	"github.com/dmitrijs2005/sigmax/internal/models"
	"github.com/dmitrijs2005/sigmax/internal/session"
)

var errNotLoggedIn = errors.New("not logged in, use login or signup")

// getSimpleText and getPassword are swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

func usage(s string) error {
	return fmt.Errorf("%w: usage: %s", common.ErrorIncorrectArgument, s)
}

// Signup registers a citizen and logs them in.
func (a *App) Signup(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	handle, err := getSimpleText(a.reader, "Enter communicator ID (+SIG-nnnn)", a.out)
	if err != nil {
		return err
	}
	country, err := getSimpleText(a.reader, "Enter faction (empty for POWERLINGX)", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, sess, err := a.chat.Signup(ctx, chat.Profile{
		Name:        name,
		PhoneNumber: handle,
		Password:    string(password),
		Country:     models.Country(strings.ToUpper(country)),
	})
	if err != nil {
		return err
	}
	if err := a.sessions.Save(ctx, sess); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Welcome, %s (%s)\n", u.Name, u.ID)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	handle, err := getSimpleText(a.reader, "Enter communicator ID", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, sess, err := a.chat.Login(ctx, handle, string(password))
	if err != nil {
		return err
	}
	if err := a.sessions.Save(ctx, sess); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s\n", u.Name)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.sessions.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) Seed(ctx context.Context) error {
	if err := a.chat.Seed(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Network seeded")
	return nil
}

func (a *App) Whoami(ctx context.Context, sess session.Session) error {
	u, err := a.chat.GetUser(ctx, sess.UserID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s %s %s [%s] %s verified=%t\n", u.ID, u.PhoneNumber, u.Name, u.SecurityLevel, u.Country, u.IsVerified)
	return nil
}

func (a *App) Users(ctx context.Context) error {
	users, err := a.chat.GetUserMap(ctx)
	if err != nil {
		return err
	}
	list := make([]*models.User, 0, len(users))
	for _, u := range users {
		list = append(list, u)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].PhoneNumber < list[j].PhoneNumber })
	for _, u := range list {
		fmt.Fprintf(a.out, "%-10s %-24s %-8s %s\n", u.PhoneNumber, u.Name, u.SecurityLevel, u.ID)
	}
	return nil
}

func (a *App) Chats(ctx context.Context, sess session.Session) error {
	chats, err := a.chat.GetUserChats(ctx, sess.UserID)
	if err != nil {
		return err
	}
	for _, c := range chats {
		name := c.Name
		if c.Type == models.ChatPrivate {
			name = c.Peer(sess.UserID)
		}
		last := ""
		if c.LastMessage != nil {
			last = c.LastMessage.Text
		}
		fmt.Fprintf(a.out, "%s\t%s\t%s\t%s\n", c.ID, c.Type, name, last)
	}
	return nil
}

func (a *App) Open(ctx context.Context, sess session.Session, args []string) error {
	if len(args) != 1 {
		return usage("open <handle>")
	}
	c, err := a.chat.CreatePrivateChat(ctx, sess, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, c.ID)
	return nil
}

func (a *App) Group(ctx context.Context, sess session.Session, args []string) error {
	if len(args) < 2 {
		return usage("group <group|channel> <name> [handle...]")
	}
	c, err := a.chat.CreateGroup(ctx, sess, args[1], args[2:], models.ChatType(args[0]))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s (%d members)\n", c.ID, len(c.Participants))
	return nil
}

func (a *App) Send(ctx context.Context, sess session.Session, args []string) error {
	if len(args) < 2 {
		return usage("send <chatId> <text>")
	}
	m, err := a.chat.SendMessage(ctx, sess, models.Message{ChatID: args[0], Text: strings.Join(args[1:], " ")})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, m.ID)
	return nil
}

func (a *App) Read(ctx context.Context, sess session.Session, args []string) error {
	if len(args) != 1 {
		return usage("read <chatId>")
	}
	msgs, err := a.chat.GetMessages(ctx, sess, args[0])
	if err != nil {
		return err
	}
	for _, m := range msgs {
		fmt.Fprintf(a.out, "[%s] %s: %s\n", m.Timestamp, m.SenderID, m.Text)
	}
	return nil
}

func (a *App) React(ctx context.Context, sess session.Session, args []string) error {
	if len(args) != 3 {
		return usage("react <chatId> <messageId> <emoji>")
	}
	m, err := a.chat.AddReaction(ctx, sess, args[0], args[1], args[2])
	if err != nil {
		return err
	}
	if m == nil {
		fmt.Fprintln(a.out, "No such message")
		return nil
	}
	fmt.Fprintf(a.out, "%s: %d reactors\n", args[2], len(m.Reactions[args[2]]))
	return nil
}

func (a *App) Block(ctx context.Context, sess session.Session, args []string) error {
	if len(args) != 1 {
		return usage("block <handle>")
	}
	if _, err := a.chat.BlockUserByPhone(ctx, sess, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Blocked")
	return nil
}

func (a *App) Unblock(ctx context.Context, sess session.Session, args []string) error {
	if len(args) != 1 {
		return usage("unblock <userId>")
	}
	if _, err := a.chat.UnblockUser(ctx, sess, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Unblocked")
	return nil
}

// Verify stamps the logged-in user as verified. An optional credential
// label must be on the allow-list.
func (a *App) Verify(ctx context.Context, sess session.Session, args []string) error {
	var cred models.Credential
	if label := strings.Join(args, " "); label != "" {
		var ok bool
		if cred, ok = models.ParseCredential(label); !ok {
			return fmt.Errorf("%w: %q", common.ErrUnknownCredential, label)
		}
	}
	u, err := a.chat.VerifyUser(ctx, sess.UserID, media.NewReportID(time.Now()), cred)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Verified: %s [%s], report %s\n", u.Role, u.SecurityLevel, u.VerificationData.ReportID)
	return nil
}

func (a *App) Country(ctx context.Context, sess session.Session, args []string) error {
	if len(args) != 1 {
		return usage("country <faction>")
	}
	u, err := a.chat.UpdateUserCountry(ctx, sess.UserID, models.Country(strings.ToUpper(args[0])))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Faction: %s\n", u.Country)
	return nil
}
