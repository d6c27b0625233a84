package botcmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kavisanghavi/logline/db"
	"github.com/kavisanghavi/logline/db/models"
	"github.com/kavisanghavi/logline/internal/daylog"
	"github.com/kavisanghavi/logline/internal/docstore"
	"github.com/kavisanghavi/logline/internal/refine"
	"github.com/kavisanghavi/logline/internal/secretbox"
	"github.com/kavisanghavi/logline/internal/userlock"
	"github.com/kavisanghavi/logline/scheduler"
	"gorm.io/gorm"
)

const defaultDocumentTitle = "Work Log"

const setupText = "You are not set up yet. An admin needs to register you with `logline users add` (document credential, timezone) before I can log anything."

const reauthText = "Your document credential has expired. Ask an admin to refresh it with `logline users add`; until then I cannot write to your log."

type handler struct {
	log      *slog.Logger
	gdb      *gorm.DB
	box      *secretbox.Box
	refiner  refine.Refiner
	docsHTTP *http.Client
	docsBase string
	locks    *userlock.Registry
	slack    *slackAPI

	// Now is injectable for tests.
	Now func() time.Time
}

func (h *handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// handle runs one DM command end to end and returns the reply text. All
// failures are folded into a user-facing reply; the caller only posts it.
func (h *handler) handle(ctx context.Context, msg inboundMessage) string {
	user, err := db.FindUserBySlack(ctx, h.gdb, msg.TeamID, msg.UserID)
	if errors.Is(err, db.ErrUserNotFound) {
		return setupText
	}
	if err != nil {
		h.log.Error("user_lookup_error", "team_id", msg.TeamID, "user_id", msg.UserID, "error", err.Error())
		return "Something went wrong looking up your account. Try again in a moment."
	}
	if strings.TrimSpace(user.CredentialCiphertext) == "" {
		return setupText
	}
	if user.CredentialExpired {
		return reauthText
	}

	store := docstore.NewClient(h.docsHTTP, h.docsBase, h.credentialToken(user))

	cmd := parseCommand(msg.Text)
	reply, err := h.run(ctx, user, store, cmd)
	if errors.Is(err, docstore.ErrCredentialExpired) {
		h.markCredentialExpired(ctx, user)
		return reauthText
	}
	if err != nil {
		h.log.Error("command_error", "team_id", msg.TeamID, "user_id", msg.UserID, "kind", int(cmd.Kind), "error", err.Error())
		return "That did not work: " + err.Error()
	}
	return reply
}

func (h *handler) run(ctx context.Context, user *models.User, store *docstore.Client, cmd command) (string, error) {
	switch cmd.Kind {
	case cmdHelp:
		return helpText, nil
	case cmdRemind:
		h.syncTimezoneFromSlack(ctx, user)
		if _, err := scheduler.UpsertJob(ctx, h.gdb, user.ID, cmd.Arg, ""); err != nil {
			return "", err
		}
		return fmt.Sprintf("Daily reminder set for %s (%s).", cmd.Arg, user.Timezone), nil
	case cmdRemindOff:
		if err := scheduler.DisableJob(ctx, h.gdb, user.ID); err != nil {
			return "", err
		}
		return "Daily reminder turned off.", nil
	}

	docID, err := h.ensureDocument(ctx, user, store)
	if err != nil {
		return "", err
	}
	dlog, err := daylog.NewLog(daylog.LogOptions{Store: store})
	if err != nil {
		return "", err
	}

	switch cmd.Kind {
	case cmdLog:
		lines, err := h.refiner.Refine(ctx, cmd.Arg)
		if err != nil {
			return "", err
		}
		if len(lines) == 0 {
			return "There was nothing to log in that message.", nil
		}
		var res daylog.AppendResult
		h.locks.Do(h.lockKey(user), func() {
			res, err = dlog.Append(ctx, docID, h.today(user), strings.Join(lines, "\n"))
		})
		if err != nil {
			return "", err
		}
		return formatAppendReply(res), nil

	case cmdUndo:
		var (
			rec daylog.Record
			ok  bool
		)
		h.locks.Do(h.lockKey(user), func() {
			rec, ok, err = dlog.Undo(ctx, docID)
		})
		if err != nil {
			return "", err
		}
		return formatUndoReply(rec, ok), nil

	case cmdSearch:
		records, err := dlog.Search(ctx, docID, cmd.Arg)
		if err != nil {
			return "", err
		}
		return formatRecords(records, fmt.Sprintf("No entries match %q.", cmd.Arg)), nil

	case cmdWeek:
		end := h.today(user)
		records, err := dlog.Range(ctx, docID, end.AddDate(0, 0, -6), end)
		if err != nil {
			return "", err
		}
		return formatRecords(records, "No entries in the last seven days."), nil
	}
	return "", fmt.Errorf("unknown command kind %d", cmd.Kind)
}

// ensureDocument creates the user's log document on first use.
func (h *handler) ensureDocument(ctx context.Context, user *models.User, store *docstore.Client) (string, error) {
	if id := strings.TrimSpace(user.DocumentID); id != "" {
		return id, nil
	}
	doc, err := store.Create(ctx, defaultDocumentTitle)
	if err != nil {
		return "", fmt.Errorf("create document: %w", err)
	}
	user.DocumentID = doc.DocumentID
	if err := db.SaveUser(ctx, h.gdb, user); err != nil {
		return "", err
	}
	h.log.Info("document_created", "user_id", user.ID, "document_id", doc.DocumentID)
	return doc.DocumentID, nil
}

func (h *handler) credentialToken(user *models.User) docstore.TokenFunc {
	return func(ctx context.Context) (string, error) {
		raw, err := h.box.Open(user.CredentialCiphertext)
		if err != nil {
			return "", fmt.Errorf("open credential: %w", err)
		}
		return string(raw), nil
	}
}

// syncTimezoneFromSlack adopts the user's Slack profile timezone when the
// stored one is still the registration default. Best effort; reminder setup
// proceeds on UTC if the lookup fails.
func (h *handler) syncTimezoneFromSlack(ctx context.Context, user *models.User) {
	if h.slack == nil {
		return
	}
	tz := strings.TrimSpace(user.Timezone)
	if tz != "" && tz != "UTC" {
		return
	}
	info, err := h.slack.userInfo(ctx, user.SlackUserID)
	if err != nil || strings.TrimSpace(info.Timezone) == "" {
		return
	}
	if _, err := time.LoadLocation(info.Timezone); err != nil {
		return
	}
	user.Timezone = info.Timezone
	if err := db.SaveUser(ctx, h.gdb, user); err != nil {
		h.log.Warn("timezone_sync_error", "user_id", user.ID, "error", err.Error())
		return
	}
	h.log.Info("timezone_synced", "user_id", user.ID, "timezone", info.Timezone)
}

func (h *handler) markCredentialExpired(ctx context.Context, user *models.User) {
	user.CredentialExpired = true
	if err := db.SaveUser(ctx, h.gdb, user); err != nil {
		h.log.Error("credential_flag_error", "user_id", user.ID, "error", err.Error())
	}
	h.log.Warn("credential_expired", "user_id", user.ID)
}

func (h *handler) lockKey(user *models.User) string {
	return user.SlackTeamID + ":" + user.SlackUserID
}

// today is the current moment in the user's timezone; a bad timezone value
// degrades to UTC rather than failing the command.
func (h *handler) today(user *models.User) time.Time {
	loc, err := time.LoadLocation(strings.TrimSpace(user.Timezone))
	if err != nil {
		loc = time.UTC
	}
	return h.now().In(loc)
}
