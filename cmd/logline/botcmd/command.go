package botcmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/kavisanghavi/logline/db"
	"github.com/kavisanghavi/logline/db/models"
	"github.com/kavisanghavi/logline/internal/configutil"
	"github.com/kavisanghavi/logline/internal/dedup"
	"github.com/kavisanghavi/logline/internal/healthcheck"
	"github.com/kavisanghavi/logline/internal/refine"
	"github.com/kavisanghavi/logline/internal/secretbox"
	"github.com/kavisanghavi/logline/internal/userlock"
	"github.com/kavisanghavi/logline/scheduler"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultReminderText = "What did you work on today? Message me and I will log it."

type Dependencies struct {
	LoggerFromViper func() (*slog.Logger, error)
}

var deps Dependencies

func NewCommand(d Dependencies) *cobra.Command {
	deps = d
	return newServeCmd()
}

func loggerFromViper() (*slog.Logger, error) {
	if deps.LoggerFromViper == nil {
		return nil, fmt.Errorf("LoggerFromViper dependency missing")
	}
	return deps.LoggerFromViper()
}

type userWorker struct {
	Jobs chan inboundMessage
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the work-log Slack bot with Socket Mode",
		RunE: func(cmd *cobra.Command, args []string) error {
			botToken := strings.TrimSpace(configutil.FlagOrViperString(cmd, "slack-bot-token", "slack.bot_token"))
			if botToken == "" {
				return fmt.Errorf("missing slack.bot_token (set via --slack-bot-token or LOGLINE_SLACK_BOT_TOKEN)")
			}
			appToken := strings.TrimSpace(configutil.FlagOrViperString(cmd, "slack-app-token", "slack.app_token"))
			if appToken == "" {
				return fmt.Errorf("missing slack.app_token (set via --slack-app-token or LOGLINE_SLACK_APP_TOKEN)")
			}
			secretKey := strings.TrimSpace(configutil.FlagOrViperString(cmd, "secret-key", "secret.key"))
			if secretKey == "" {
				return fmt.Errorf("missing secret.key (set via --secret-key or LOGLINE_SECRET_KEY)")
			}

			logger, err := loggerFromViper()
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			box, err := secretbox.New(secretKey)
			if err != nil {
				return fmt.Errorf("secret key: %w", err)
			}

			dbCfg := db.DefaultConfig()
			dbCfg.DSN = configutil.FlagOrViperString(cmd, "db-dsn", "db.dsn")
			gdb, err := db.Open(cmd.Context(), dbCfg)
			if err != nil {
				return err
			}

			httpClient := &http.Client{Timeout: 30 * time.Second}
			api := newSlackAPI(httpClient, "https://slack.com/api", botToken, appToken)
			auth, err := api.authTest(cmd.Context())
			if err != nil {
				return fmt.Errorf("slack auth.test: %w", err)
			}
			botUserID := strings.TrimSpace(auth.UserID)
			if botUserID == "" {
				return fmt.Errorf("slack auth.test returned empty user_id")
			}

			refiner := refinerFromConfig(cmd, httpClient, logger)

			cache, err := dedup.NewCache(dedup.CacheOptions{TTL: 10 * time.Minute})
			if err != nil {
				return err
			}

			docsBase := strings.TrimSpace(configutil.FlagOrViperString(cmd, "docs-base-url", "docs.base_url"))
			h := &handler{
				log:      logger,
				gdb:      gdb,
				box:      box,
				refiner:  refiner,
				docsHTTP: httpClient,
				docsBase: docsBase,
				locks:    userlock.NewRegistry(),
				slack:    api,
			}

			maxConc := configutil.FlagOrViperInt(cmd, "max-concurrency", "slack.max_concurrency")
			if maxConc <= 0 {
				maxConc = 3
			}
			sem := make(chan struct{}, maxConc)
			handleTimeout := configutil.FlagOrViperDuration(cmd, "handle-timeout", "slack.handle_timeout")
			if handleTimeout <= 0 {
				handleTimeout = 60 * time.Second
			}

			schedCfg := scheduler.DefaultConfig()
			schedCfg.Enabled = configutil.FlagOrViperBool(cmd, "reminders-enabled", "reminders.enabled")
			if tick := viper.GetDuration("reminders.tick"); tick > 0 {
				schedCfg.Tick = tick
			}
			sched, err := scheduler.New(gdb, reminderRunner(api), schedCfg, logger)
			if err != nil {
				return err
			}
			if err := sched.Start(cmd.Context()); err != nil {
				return err
			}

			healthListen := healthcheck.NormalizeListen(configutil.FlagOrViperString(cmd, "health-listen", "health.listen"))
			if healthListen != "" {
				healthServer, err := healthcheck.StartServer(cmd.Context(), logger, healthListen, "serve")
				if err != nil {
					logger.Warn("health_server_start_error", "addr", healthListen, "error", err.Error())
				} else {
					defer func() {
						shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
						_ = healthServer.Shutdown(shutdownCtx)
						cancel()
					}()
				}
			}

			var (
				mu      sync.Mutex
				workers = make(map[string]*userWorker)
			)
			getOrStartWorkerLocked := func(key string) *userWorker {
				if w, ok := workers[key]; ok && w != nil {
					return w
				}
				w := &userWorker{Jobs: make(chan inboundMessage, 16)}
				workers[key] = w
				go func() {
					for msg := range w.Jobs {
						sem <- struct{}{}
						func() {
							defer func() { <-sem }()
							ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
							reply := h.handle(ctx, msg)
							if reply != "" {
								if err := api.postMessage(ctx, msg.ChannelID, reply, ""); err != nil {
									logger.Warn("post_message_error", "channel_id", msg.ChannelID, "error", err.Error())
								}
							}
							cancel()
						}()
					}
				}()
				return w
			}

			enqueue := func(ctx context.Context, msg inboundMessage) error {
				mu.Lock()
				w := getOrStartWorkerLocked(msg.TeamID + ":" + msg.UserID)
				mu.Unlock()
				select {
				case <-ctx.Done():
					return ctx.Err()
				case w.Jobs <- msg:
					return nil
				}
			}

			logger.Info("serve_start",
				"bot_user_id", botUserID,
				"max_concurrency", maxConc,
				"handle_timeout", handleTimeout.String(),
				"reminders_enabled", schedCfg.Enabled,
			)

			for {
				if cmd.Context().Err() != nil {
					logger.Info("serve_stop", "reason", "context_canceled")
					return nil
				}
				conn, err := api.connectSocket(cmd.Context())
				if err != nil {
					if cmd.Context().Err() != nil {
						logger.Info("serve_stop", "reason", "context_canceled")
						return nil
					}
					logger.Warn("socket_connect_error", "error", err.Error())
					if err := sleepWithContext(cmd.Context(), 2*time.Second); err != nil {
						return nil
					}
					continue
				}
				logger.Info("socket_connected")
				readErr := consumeSlackSocket(cmd.Context(), conn, func(envelope slackSocketEnvelope) error {
					msg, ok, err := parseInboundDM(envelope, botUserID)
					if err != nil {
						logger.Warn("event_parse_error", "error", err.Error())
						return nil
					}
					if !ok {
						return nil
					}
					handle, err := shouldHandle(cache, msg)
					if err != nil {
						return err
					}
					if !handle {
						logger.Debug("inbound_deduped", "channel_id", msg.ChannelID, "message_ts", msg.MessageTS)
						return nil
					}
					return enqueue(cmd.Context(), msg)
				})
				_ = conn.Close()
				if readErr != nil && !errors.Is(readErr, context.Canceled) && !errors.Is(readErr, context.DeadlineExceeded) {
					logger.Warn("socket_read_error", "error", readErr.Error())
				}
			}
		},
	}

	cmd.Flags().String("slack-bot-token", "", "Slack bot token (xoxb-...).")
	cmd.Flags().String("slack-app-token", "", "Slack app-level token for Socket Mode (xapp-...).")
	cmd.Flags().String("secret-key", "", "Base64 32-byte key used to seal stored document credentials.")
	cmd.Flags().String("db-dsn", "", "SQLite path (defaults to ~/.logline/logline.sqlite).")
	cmd.Flags().String("docs-base-url", "", "Document API base URL.")
	cmd.Flags().String("llm-endpoint", "", "OpenAI-compatible endpoint for entry refinement (empty disables the LLM refiner).")
	cmd.Flags().String("llm-api-key", "", "API key for the refinement endpoint.")
	cmd.Flags().String("llm-model", "", "Model for entry refinement.")
	cmd.Flags().Int("max-concurrency", 3, "Max number of users handled concurrently.")
	cmd.Flags().Duration("handle-timeout", 60*time.Second, "Per-message handling timeout.")
	cmd.Flags().Bool("reminders-enabled", false, "Run the daily reminder scheduler.")
	cmd.Flags().String("health-listen", "", "Health check listen address (e.g. :8080). Empty disables.")

	return cmd
}

// refinerFromConfig builds the refinement chain. The deterministic local
// cleanup is always the fallback, so a missing or failing LLM never blocks
// logging.
func refinerFromConfig(cmd *cobra.Command, httpClient *http.Client, logger *slog.Logger) refine.Refiner {
	local := refine.LocalCleanup{}
	endpoint := strings.TrimSpace(configutil.FlagOrViperString(cmd, "llm-endpoint", "llm.endpoint"))
	model := strings.TrimSpace(configutil.FlagOrViperString(cmd, "llm-model", "llm.model"))
	if endpoint == "" || model == "" {
		return local
	}
	llm, err := refine.NewLLMRefiner(refine.LLMRefinerOptions{
		HTTPClient: httpClient,
		Endpoint:   endpoint,
		APIKey:     configutil.FlagOrViperString(cmd, "llm-api-key", "llm.api_key"),
		Model:      model,
	})
	if err != nil {
		logger.Warn("llm_refiner_disabled", "error", err.Error())
		return local
	}
	return refine.Chain{Primary: llm, Fallback: local, Logger: logger}
}

// reminderRunner delivers one reminder DM. Each user is handled
// independently; a failed delivery only fails that user's run.
func reminderRunner(api *slackAPI) scheduler.ReminderRunner {
	return func(ctx context.Context, user models.User, job models.ReminderJob) (*string, error) {
		channelID, err := api.openIM(ctx, user.SlackUserID)
		if err != nil {
			return nil, err
		}
		text := strings.TrimSpace(job.Message)
		if text == "" {
			text = defaultReminderText
		}
		if err := api.postMessage(ctx, channelID, text, ""); err != nil {
			return nil, err
		}
		summary := "reminder delivered to " + channelID
		return &summary, nil
	}
}
