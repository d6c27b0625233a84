package botcmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kavisanghavi/logline/internal/dedup"
)

type slackSocketEnvelope struct {
	EnvelopeID string          `json:"envelope_id,omitempty"`
	Type       string          `json:"type,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

type slackEventAuthorization struct {
	TeamID string `json:"team_id,omitempty"`
	UserID string `json:"user_id,omitempty"`
	IsBot  bool   `json:"is_bot,omitempty"`
}

type slackEventsAPIPayload struct {
	TeamID         string                    `json:"team_id,omitempty"`
	EventID        string                    `json:"event_id,omitempty"`
	EventTime      int64                     `json:"event_time,omitempty"`
	Event          json.RawMessage           `json:"event,omitempty"`
	Authorizations []slackEventAuthorization `json:"authorizations,omitempty"`
}

type slackEvent struct {
	Type        string `json:"type,omitempty"`
	Subtype     string `json:"subtype,omitempty"`
	User        string `json:"user,omitempty"`
	Text        string `json:"text,omitempty"`
	Channel     string `json:"channel,omitempty"`
	ChannelType string `json:"channel_type,omitempty"`
	TS          string `json:"ts,omitempty"`
	ThreadTS    string `json:"thread_ts,omitempty"`
	BotID       string `json:"bot_id,omitempty"`
	Team        string `json:"team,omitempty"`
	EventTS     string `json:"event_ts,omitempty"`
}

type inboundMessage struct {
	TeamID    string
	ChannelID string
	MessageTS string
	ThreadTS  string
	UserID    string
	Text      string
	EventID   string
	SentAt    time.Time
}

// DedupKey identifies one delivery attempt. Socket Mode redelivers events
// that were not acked in time, so the same message can arrive more than once.
func (m inboundMessage) DedupKey() string {
	return m.TeamID + ":" + m.ChannelID + ":" + m.MessageTS
}

// shouldHandle reports whether the message is a first delivery. Redeliveries
// of an already-observed message are dropped.
func shouldHandle(cache *dedup.Cache, msg inboundMessage) (bool, error) {
	dup, err := cache.Observe(msg.DedupKey())
	if err != nil {
		return false, err
	}
	return !dup, nil
}

func consumeSlackSocket(ctx context.Context, conn *websocket.Conn, onEnvelope func(envelope slackSocketEnvelope) error) error {
	if conn == nil {
		return fmt.Errorf("slack websocket connection is nil")
	}
	for {
		if ctx != nil && ctx.Err() != nil {
			return ctx.Err()
		}
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var envelope slackSocketEnvelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			continue
		}
		if strings.TrimSpace(envelope.EnvelopeID) != "" {
			if err := conn.WriteJSON(map[string]string{"envelope_id": envelope.EnvelopeID}); err != nil {
				return err
			}
		}
		if onEnvelope == nil {
			continue
		}
		if err := onEnvelope(envelope); err != nil {
			return err
		}
	}
}

// parseInboundDM extracts a direct message from an events_api envelope.
// Everything else (channels, bot echoes, edits, join notices) reports ok=false.
func parseInboundDM(envelope slackSocketEnvelope, botUserID string) (inboundMessage, bool, error) {
	if strings.TrimSpace(envelope.Type) != "events_api" || len(envelope.Payload) == 0 {
		return inboundMessage{}, false, nil
	}
	var payload slackEventsAPIPayload
	if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
		return inboundMessage{}, false, err
	}
	var event slackEvent
	if err := json.Unmarshal(payload.Event, &event); err != nil {
		return inboundMessage{}, false, err
	}
	if strings.TrimSpace(event.Type) != "message" {
		return inboundMessage{}, false, nil
	}
	if strings.TrimSpace(event.Subtype) != "" {
		return inboundMessage{}, false, nil
	}
	if strings.TrimSpace(event.BotID) != "" {
		return inboundMessage{}, false, nil
	}
	if !isDirectMessage(event.ChannelType, event.Channel) {
		return inboundMessage{}, false, nil
	}
	userID := strings.TrimSpace(event.User)
	if userID == "" || userID == strings.TrimSpace(botUserID) {
		return inboundMessage{}, false, nil
	}
	channelID := strings.TrimSpace(event.Channel)
	if channelID == "" {
		return inboundMessage{}, false, nil
	}
	messageTS := strings.TrimSpace(event.TS)
	if messageTS == "" {
		return inboundMessage{}, false, nil
	}
	text := strings.TrimSpace(event.Text)
	if text == "" {
		return inboundMessage{}, false, nil
	}
	teamID := strings.TrimSpace(payload.TeamID)
	if teamID == "" {
		teamID = strings.TrimSpace(event.Team)
	}
	if teamID == "" && len(payload.Authorizations) > 0 {
		teamID = strings.TrimSpace(payload.Authorizations[0].TeamID)
	}
	if teamID == "" {
		return inboundMessage{}, false, fmt.Errorf("missing team_id in slack event")
	}

	sentAt := time.Now().UTC()
	if payload.EventTime > 0 {
		sentAt = time.Unix(payload.EventTime, 0).UTC()
	}

	return inboundMessage{
		TeamID:    teamID,
		ChannelID: channelID,
		MessageTS: messageTS,
		ThreadTS:  strings.TrimSpace(event.ThreadTS),
		UserID:    userID,
		Text:      text,
		EventID:   strings.TrimSpace(payload.EventID),
		SentAt:    sentAt,
	}, true, nil
}

func isDirectMessage(channelType, channelID string) bool {
	if strings.EqualFold(strings.TrimSpace(channelType), "im") {
		return true
	}
	return strings.TrimSpace(channelType) == "" && strings.HasPrefix(strings.TrimSpace(channelID), "D")
}
