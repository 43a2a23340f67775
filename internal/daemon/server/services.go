package server

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/breakreminder/breakreminder/internal/reminder"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "breakreminder.ReminderService"

// ============================================================================
// gRPC Service Definition (hand-written, served with the JSON codec)
// ============================================================================

// ReminderServiceServer is the server interface for ReminderService.
type ReminderServiceServer interface {
	AddReminder(context.Context, *AddReminderRequest) (*Reminder, error)
	EditReminder(context.Context, *EditReminderRequest) (*Reminder, error)
	PauseReminder(context.Context, *ReminderID) (*Reminder, error)
	ResumeReminder(context.Context, *ReminderID) (*Reminder, error)
	SnoozeReminder(context.Context, *SnoozeReminderRequest) (*Reminder, error)
	TriggerReminder(context.Context, *ReminderID) (*Reminder, error)
	TriggerAll(context.Context, *emptypb.Empty) (*TriggerAllResponse, error)
	RemoveReminder(context.Context, *ReminderID) (*emptypb.Empty, error)
	ListReminders(context.Context, *emptypb.Empty) (*ReminderList, error)
	SetMuted(context.Context, *SetMutedRequest) (*MuteStatus, error)
	SetFollowFocusAssist(context.Context, *SetFollowFocusAssistRequest) (*MuteStatus, error)
	GetStatus(context.Context, *emptypb.Empty) (*DaemonStatus, error)
	Shutdown(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
}

// ============================================================================
// Message Types
// ============================================================================

// Reminder represents a reminder in the gRPC API.
type Reminder struct {
	ID             string
	Message        string
	Interval       *durationpb.Duration
	Enabled        bool
	Status         string
	Label          string
	FireCount      int32
	TriggerPending bool
	CreatedAt      *timestamppb.Timestamp
	LastFiredAt    *timestamppb.Timestamp
	SnoozedUntil   *timestamppb.Timestamp
	NextDue        *timestamppb.Timestamp
}

// ReminderID identifies a reminder.
type ReminderID struct {
	ID string
}

// ReminderList holds reminders in insertion order.
type ReminderList struct {
	Reminders []*Reminder
}

// AddReminderRequest contains the fields for creating a reminder.
type AddReminderRequest struct {
	Message  string
	Interval *durationpb.Duration
}

// EditReminderRequest contains the fields to change. Nil fields are kept.
type EditReminderRequest struct {
	ID       string
	Message  *string
	Interval *durationpb.Duration
}

// SnoozeReminderRequest postpones a reminder by Duration.
type SnoozeReminderRequest struct {
	ID       string
	Duration *durationpb.Duration
}

// TriggerAllResponse reports how many reminders were triggered.
type TriggerAllResponse struct {
	Triggered int32
}

// SetMutedRequest sets the manual mute toggle.
type SetMutedRequest struct {
	Muted bool
}

// SetFollowFocusAssistRequest sets the Focus Assist following toggle.
type SetFollowFocusAssistRequest struct {
	Follow bool
}

// MuteStatus represents the global mute state.
type MuteStatus struct {
	Muted             bool
	FollowFocusAssist bool
	FocusSuppressed   bool
	Effective         bool
}

// DaemonStatus represents the current status of the daemon.
type DaemonStatus struct {
	Host      string
	Port      int32
	Pid       int32
	Version   string
	StartedAt *timestamppb.Timestamp
	Reminders int32
	Active    int32
	Mute      *MuteStatus
}

// ============================================================================
// Service Registration
// ============================================================================

// RegisterReminderServiceServer registers srv with the gRPC server.
func RegisterReminderServiceServer(s grpc.ServiceRegistrar, srv ReminderServiceServer) {
	s.RegisterService(&reminderServiceDesc, srv)
}

func unaryHandler[Req any, Resp any](method string, call func(ReminderServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	fullMethod := "/" + ServiceName + "/" + method
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ReminderServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(ReminderServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var reminderServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ReminderServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "AddReminder", Handler: unaryHandler("AddReminder", ReminderServiceServer.AddReminder)},
		{MethodName: "EditReminder", Handler: unaryHandler("EditReminder", ReminderServiceServer.EditReminder)},
		{MethodName: "PauseReminder", Handler: unaryHandler("PauseReminder", ReminderServiceServer.PauseReminder)},
		{MethodName: "ResumeReminder", Handler: unaryHandler("ResumeReminder", ReminderServiceServer.ResumeReminder)},
		{MethodName: "SnoozeReminder", Handler: unaryHandler("SnoozeReminder", ReminderServiceServer.SnoozeReminder)},
		{MethodName: "TriggerReminder", Handler: unaryHandler("TriggerReminder", ReminderServiceServer.TriggerReminder)},
		{MethodName: "TriggerAll", Handler: unaryHandler("TriggerAll", ReminderServiceServer.TriggerAll)},
		{MethodName: "RemoveReminder", Handler: unaryHandler("RemoveReminder", ReminderServiceServer.RemoveReminder)},
		{MethodName: "ListReminders", Handler: unaryHandler("ListReminders", ReminderServiceServer.ListReminders)},
		{MethodName: "SetMuted", Handler: unaryHandler("SetMuted", ReminderServiceServer.SetMuted)},
		{MethodName: "SetFollowFocusAssist", Handler: unaryHandler("SetFollowFocusAssist", ReminderServiceServer.SetFollowFocusAssist)},
		{MethodName: "GetStatus", Handler: unaryHandler("GetStatus", ReminderServiceServer.GetStatus)},
		{MethodName: "Shutdown", Handler: unaryHandler("Shutdown", ReminderServiceServer.Shutdown)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "breakreminder/reminder.proto",
}

// ============================================================================
// Service Implementation
// ============================================================================

type reminderService struct {
	server *Server
}

func (s *reminderService) registry() *reminder.Registry {
	return s.server.backend.Registry()
}

func (s *reminderService) respond(rem reminder.Reminder, err error) (*Reminder, error) {
	if err != nil {
		return nil, toStatus(err)
	}
	return modelToProtoReminder(reminder.NewView(rem, s.registry().Clock().Now())), nil
}

func (s *reminderService) AddReminder(ctx context.Context, req *AddReminderRequest) (*Reminder, error) {
	return s.respond(s.registry().Add(req.Message, durationOrZero(req.Interval)))
}

func (s *reminderService) EditReminder(ctx context.Context, req *EditReminderRequest) (*Reminder, error) {
	opts := reminder.EditOptions{Message: req.Message}
	if req.Interval != nil {
		d := req.Interval.AsDuration()
		opts.Interval = &d
	}
	return s.respond(s.registry().Edit(req.ID, opts))
}

func (s *reminderService) PauseReminder(ctx context.Context, req *ReminderID) (*Reminder, error) {
	return s.respond(s.registry().Pause(req.ID))
}

func (s *reminderService) ResumeReminder(ctx context.Context, req *ReminderID) (*Reminder, error) {
	return s.respond(s.registry().Resume(req.ID))
}

func (s *reminderService) SnoozeReminder(ctx context.Context, req *SnoozeReminderRequest) (*Reminder, error) {
	return s.respond(s.registry().Snooze(req.ID, durationOrZero(req.Duration)))
}

func (s *reminderService) TriggerReminder(ctx context.Context, req *ReminderID) (*Reminder, error) {
	return s.respond(s.registry().TriggerNow(req.ID))
}

func (s *reminderService) TriggerAll(ctx context.Context, _ *emptypb.Empty) (*TriggerAllResponse, error) {
	return &TriggerAllResponse{Triggered: int32(s.registry().TriggerAll())}, nil
}

func (s *reminderService) RemoveReminder(ctx context.Context, req *ReminderID) (*emptypb.Empty, error) {
	if err := s.registry().Remove(req.ID); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *reminderService) ListReminders(ctx context.Context, _ *emptypb.Empty) (*ReminderList, error) {
	views := s.registry().Views(s.registry().Clock().Now())
	list := &ReminderList{Reminders: make([]*Reminder, 0, len(views))}
	for _, v := range views {
		list.Reminders = append(list.Reminders, modelToProtoReminder(v))
	}
	return list, nil
}

func (s *reminderService) SetMuted(ctx context.Context, req *SetMutedRequest) (*MuteStatus, error) {
	if err := s.server.backend.SetMuted(req.Muted); err != nil {
		return nil, toStatus(err)
	}
	return modelToProtoMute(s.registry().MuteState()), nil
}

func (s *reminderService) SetFollowFocusAssist(ctx context.Context, req *SetFollowFocusAssistRequest) (*MuteStatus, error) {
	if err := s.server.backend.SetFollowFocusAssist(req.Follow); err != nil {
		return nil, toStatus(err)
	}
	return modelToProtoMute(s.registry().MuteState()), nil
}

func (s *reminderService) GetStatus(ctx context.Context, _ *emptypb.Empty) (*DaemonStatus, error) {
	reg := s.registry()
	active := 0
	for _, r := range reg.List() {
		if r.Enabled {
			active++
		}
	}

	return &DaemonStatus{
		Host:      "localhost",
		Port:      int32(s.server.Port()),
		Pid:       int32(s.server.pid),
		Version:   s.server.version,
		StartedAt: timestamppb.New(s.server.startedAt),
		Reminders: int32(reg.Len()),
		Active:    int32(active),
		Mute:      modelToProtoMute(reg.MuteState()),
	}, nil
}

func (s *reminderService) Shutdown(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	// Let the response reach the client before the server stops.
	go func() {
		time.Sleep(100 * time.Millisecond)
		s.server.backend.RequestShutdown()
	}()
	return &emptypb.Empty{}, nil
}

// ============================================================================
// Conversion Functions
// ============================================================================

func durationOrZero(d *durationpb.Duration) time.Duration {
	if d == nil {
		return 0
	}
	return d.AsDuration()
}

func timestampOrNil(t time.Time) *timestamppb.Timestamp {
	if t.IsZero() {
		return nil
	}
	return timestamppb.New(t)
}

func modelToProtoReminder(v reminder.View) *Reminder {
	r := &Reminder{
		ID:             v.ID,
		Message:        v.Message,
		Interval:       durationpb.New(v.Interval),
		Enabled:        v.Enabled,
		Status:         string(v.Status),
		Label:          v.Label,
		FireCount:      int32(v.FireCount),
		TriggerPending: v.TriggerPending(),
		CreatedAt:      timestamppb.New(v.CreatedAt),
		LastFiredAt:    timestamppb.New(v.LastFiredAt),
		NextDue:        timestampOrNil(v.NextDue),
	}
	if v.SnoozedUntil != nil {
		r.SnoozedUntil = timestamppb.New(*v.SnoozedUntil)
	}
	return r
}

func modelToProtoMute(m reminder.MuteState) *MuteStatus {
	return &MuteStatus{
		Muted:             m.Muted,
		FollowFocusAssist: m.FollowFocusAssist,
		FocusSuppressed:   m.FocusSuppressed,
		Effective:         m.Effective(),
	}
}
