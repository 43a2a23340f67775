package server

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
)

// Client is a typed client for ReminderService. Registry errors come back as
// *reminder.ValidationError and *reminder.NotFoundError.
type Client struct {
	conn grpc.ClientConnInterface
}

// NewClient wraps conn. The connection must use the JSON codec, see DialOptions.
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// DialOptions returns the call options required to talk to the server.
func DialOptions() []grpc.DialOption {
	return []grpc.DialOption{
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
	}
}

func (c *Client) invoke(ctx context.Context, method string, in, out interface{}) error {
	err := c.conn.Invoke(ctx, "/"+ServiceName+"/"+method, in, out)
	return fromStatus(err)
}

// Add creates a reminder.
func (c *Client) Add(ctx context.Context, message string, interval time.Duration) (*Reminder, error) {
	out := new(Reminder)
	err := c.invoke(ctx, "AddReminder", &AddReminderRequest{Message: message, Interval: durationpb.New(interval)}, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Edit changes the message and/or interval. Nil arguments are kept.
func (c *Client) Edit(ctx context.Context, id string, message *string, interval *time.Duration) (*Reminder, error) {
	req := &EditReminderRequest{ID: id, Message: message}
	if interval != nil {
		req.Interval = durationpb.New(*interval)
	}
	out := new(Reminder)
	if err := c.invoke(ctx, "EditReminder", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) byID(ctx context.Context, method, id string) (*Reminder, error) {
	out := new(Reminder)
	if err := c.invoke(ctx, method, &ReminderID{ID: id}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Pause disables a reminder.
func (c *Client) Pause(ctx context.Context, id string) (*Reminder, error) {
	return c.byID(ctx, "PauseReminder", id)
}

// Resume re-enables a reminder.
func (c *Client) Resume(ctx context.Context, id string) (*Reminder, error) {
	return c.byID(ctx, "ResumeReminder", id)
}

// Trigger makes a reminder fire on the next tick.
func (c *Client) Trigger(ctx context.Context, id string) (*Reminder, error) {
	return c.byID(ctx, "TriggerReminder", id)
}

// Snooze postpones a reminder by d.
func (c *Client) Snooze(ctx context.Context, id string, d time.Duration) (*Reminder, error) {
	out := new(Reminder)
	if err := c.invoke(ctx, "SnoozeReminder", &SnoozeReminderRequest{ID: id, Duration: durationpb.New(d)}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// TriggerAll triggers every enabled reminder and returns how many were triggered.
func (c *Client) TriggerAll(ctx context.Context) (int, error) {
	out := new(TriggerAllResponse)
	if err := c.invoke(ctx, "TriggerAll", &emptypb.Empty{}, out); err != nil {
		return 0, err
	}
	return int(out.Triggered), nil
}

// Remove deletes a reminder.
func (c *Client) Remove(ctx context.Context, id string) error {
	return c.invoke(ctx, "RemoveReminder", &ReminderID{ID: id}, &emptypb.Empty{})
}

// List returns every reminder in insertion order.
func (c *Client) List(ctx context.Context) ([]*Reminder, error) {
	out := new(ReminderList)
	if err := c.invoke(ctx, "ListReminders", &emptypb.Empty{}, out); err != nil {
		return nil, err
	}
	return out.Reminders, nil
}

// SetMuted sets the manual mute toggle.
func (c *Client) SetMuted(ctx context.Context, muted bool) (*MuteStatus, error) {
	out := new(MuteStatus)
	if err := c.invoke(ctx, "SetMuted", &SetMutedRequest{Muted: muted}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetFollowFocusAssist sets whether Focus Assist mutes notifications.
func (c *Client) SetFollowFocusAssist(ctx context.Context, follow bool) (*MuteStatus, error) {
	out := new(MuteStatus)
	if err := c.invoke(ctx, "SetFollowFocusAssist", &SetFollowFocusAssistRequest{Follow: follow}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Status returns the daemon status.
func (c *Client) Status(ctx context.Context) (*DaemonStatus, error) {
	out := new(DaemonStatus)
	if err := c.invoke(ctx, "GetStatus", &emptypb.Empty{}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Shutdown asks the daemon to exit.
func (c *Client) Shutdown(ctx context.Context) error {
	return c.invoke(ctx, "Shutdown", &emptypb.Empty{}, &emptypb.Empty{})
}
