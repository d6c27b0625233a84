package userscmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kavisanghavi/logline/db"
	"github.com/kavisanghavi/logline/db/models"
	"github.com/kavisanghavi/logline/internal/configutil"
	"github.com/kavisanghavi/logline/internal/secretbox"
	"github.com/spf13/cobra"
)

// NewCommand returns the admin surface for registering users: the bot only
// serves users that exist here with a sealed document credential.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage registered users",
	}
	cmd.AddCommand(newAddCmd())
	cmd.AddCommand(newListCmd())
	return cmd
}

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a user or refresh their credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			teamID := strings.TrimSpace(configutil.FlagOrViperString(cmd, "team", ""))
			userID := strings.TrimSpace(configutil.FlagOrViperString(cmd, "user", ""))
			token := strings.TrimSpace(configutil.FlagOrViperString(cmd, "token", ""))
			if teamID == "" || userID == "" {
				return fmt.Errorf("--team and --user are required")
			}
			if token == "" {
				return fmt.Errorf("--token is required")
			}
			timezone := strings.TrimSpace(configutil.FlagOrViperString(cmd, "timezone", ""))
			if timezone == "" {
				timezone = "UTC"
			}
			if _, err := time.LoadLocation(timezone); err != nil {
				return fmt.Errorf("invalid timezone %q: %w", timezone, err)
			}

			secretKey := strings.TrimSpace(configutil.FlagOrViperString(cmd, "secret-key", "secret.key"))
			if secretKey == "" {
				return fmt.Errorf("missing secret.key (set via --secret-key or LOGLINE_SECRET_KEY)")
			}
			box, err := secretbox.New(secretKey)
			if err != nil {
				return fmt.Errorf("secret key: %w", err)
			}
			sealed, err := box.Seal([]byte(token))
			if err != nil {
				return err
			}

			dbCfg := db.DefaultConfig()
			dbCfg.DSN = configutil.FlagOrViperString(cmd, "db-dsn", "db.dsn")
			gdb, err := db.Open(cmd.Context(), dbCfg)
			if err != nil {
				return err
			}

			user, err := db.FindUserBySlack(cmd.Context(), gdb, teamID, userID)
			switch {
			case errors.Is(err, db.ErrUserNotFound):
				user = &models.User{
					SlackTeamID: teamID,
					SlackUserID: userID,
				}
			case err != nil:
				return err
			}
			user.Timezone = timezone
			user.CredentialCiphertext = sealed
			user.CredentialExpired = false
			if documentID := strings.TrimSpace(configutil.FlagOrViperString(cmd, "document", "")); documentID != "" {
				user.DocumentID = documentID
			}
			if err := db.SaveUser(cmd.Context(), gdb, user); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s:%s (timezone %s)\n", teamID, userID, timezone)
			return nil
		},
	}
	cmd.Flags().String("team", "", "Slack team id.")
	cmd.Flags().String("user", "", "Slack user id.")
	cmd.Flags().String("token", "", "Document API access token to seal and store.")
	cmd.Flags().String("timezone", "UTC", "IANA timezone for day headings and reminders.")
	cmd.Flags().String("document", "", "Existing document id to link (empty lets the bot create one).")
	cmd.Flags().String("secret-key", "", "Base64 32-byte key used to seal stored document credentials.")
	cmd.Flags().String("db-dsn", "", "SQLite path (defaults to ~/.logline/logline.sqlite).")
	return cmd
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered users",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbCfg := db.DefaultConfig()
			dbCfg.DSN = configutil.FlagOrViperString(cmd, "db-dsn", "db.dsn")
			gdb, err := db.Open(cmd.Context(), dbCfg)
			if err != nil {
				return err
			}
			var users []models.User
			if err := gdb.WithContext(cmd.Context()).Order("created_at asc").Find(&users).Error; err != nil {
				return err
			}
			if len(users) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no users registered")
				return nil
			}
			for _, u := range users {
				status := "ok"
				if strings.TrimSpace(u.CredentialCiphertext) == "" {
					status = "no credential"
				} else if u.CredentialExpired {
					status = "credential expired"
				}
				doc := u.DocumentID
				if strings.TrimSpace(doc) == "" {
					doc = "-"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s:%s\ttz=%s\tdoc=%s\t%s\n", u.SlackTeamID, u.SlackUserID, u.Timezone, doc, status)
			}
			return nil
		},
	}
	cmd.Flags().String("db-dsn", "", "SQLite path (defaults to ~/.logline/logline.sqlite).")
	return cmd
}
