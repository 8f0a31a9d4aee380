package simmer

import (
	"context"
	"fmt"

	"github.com/casualjim/simmer/internal/directory"
	"github.com/go-openapi/strfmt"
	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ChannelInfo describes one channel known to a registry.
type ChannelInfo struct {
	Actor       string          `json:"actor"`
	Channel     string          `json:"channel"`
	MessageType string          `json:"message_type"`
	Receivers   int             `json:"receivers"`
	Capacity    int             `json:"capacity"`
	CreatedAt   strfmt.DateTime `json:"created_at"`
}

// MarshalJSON implements custom JSON marshaling for ChannelInfo
func (c ChannelInfo) MarshalJSON() ([]byte, error) {
	result := []byte(`{}`)

	fields := []struct {
		path  string
		value any
	}{
		{"actor", c.Actor},
		{"channel", c.Channel},
		{"message_type", c.MessageType},
		{"receivers", c.Receivers},
		{"capacity", c.Capacity},
		{"created_at", c.CreatedAt.String()},
	}

	var err error
	for _, f := range fields {
		result, err = sjson.SetBytes(result, f.path, f.value)
		if err != nil {
			return nil, fmt.Errorf("failed to set %s: %w", f.path, err)
		}
	}
	return result, nil
}

// UnmarshalJSON implements custom JSON unmarshaling for ChannelInfo
func (c *ChannelInfo) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid json: %s", data)
	}

	for _, required := range []string{"actor", "channel", "message_type"} {
		if !gjson.GetBytes(data, required).Exists() {
			return fmt.Errorf("missing required field '%s'", required)
		}
	}

	c.Actor = gjson.GetBytes(data, "actor").String()
	c.Channel = gjson.GetBytes(data, "channel").String()
	c.MessageType = gjson.GetBytes(data, "message_type").String()
	c.Receivers = int(gjson.GetBytes(data, "receivers").Int())
	c.Capacity = int(gjson.GetBytes(data, "capacity").Int())

	if createdAt := gjson.GetBytes(data, "created_at"); createdAt.Exists() {
		dt, err := strfmt.ParseDateTime(createdAt.String())
		if err != nil {
			return fmt.Errorf("invalid created_at: %w", err)
		}
		c.CreatedAt = dt
	}
	return nil
}

type channelStats interface {
	ReceiverCount() int
	Capacity() int
}

// snapshot describes every channel in d. It runs on the registry task.
func snapshot(d *directory.Directory) []ChannelInfo {
	entries := d.Entries()
	infos := make([]ChannelInfo, 0, len(entries))
	for _, entry := range entries {
		info := ChannelInfo{
			Actor:       entry.Key.Actor,
			Channel:     entry.Key.Channel,
			MessageType: fmt.Sprint(entry.Key.MessageType),
			CreatedAt:   strfmt.DateTime(entry.CreatedAt),
		}
		if stats, ok := entry.Value.(channelStats); ok {
			info.Receivers = stats.ReceiverCount()
			info.Capacity = stats.Capacity()
		}
		infos = append(infos, info)
	}
	return infos
}

// Channels returns the channels known to the registry in creation order.
// The answer comes from the registry task, so it reflects every request
// queued before it.
func (r *Registry) Channels(ctx context.Context) ([]ChannelInfo, error) {
	req := &listRequest{ctx: ctx, reply: make(chan []ChannelInfo, 1)}
	if err := r.submit(ctx, req); err != nil {
		return nil, err
	}
	return awaitReply[[]ChannelInfo](ctx, r, req.reply, ErrStopped)
}

// ChannelsJSON returns Channels encoded as a JSON array.
func (r *Registry) ChannelsJSON(ctx context.Context) ([]byte, error) {
	infos, err := r.Channels(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(infos)
}

// Channels lists the channels of the default registry.
func Channels(ctx context.Context) ([]ChannelInfo, error) {
	return Default().Channels(ctx)
}
