package app

import "context"

// AgendaActions is the surface both front ends drive. *Actions implements it.
type AgendaActions interface {
	ApproveAgenda(ctx context.Context, meetingID string) (*AgendaResult, error)
	ApproveAgendaAndCloseMeeting(ctx context.Context, meetingID string) (*AgendaResult, error)
	CloseMeeting(ctx context.Context, meetingID string) (*AgendaResult, error)
	ReopenPreviousAgenda(ctx context.Context, meetingID string) (*AgendaResult, error)
	CreateDesignAgenda(ctx context.Context, meetingID string) (*AgendaResult, error)
	ApproveOnly(ctx context.Context, meetingID string) (*AgendaResult, error)
	DeleteAgenda(ctx context.Context, meetingID, agendaID string) error
	Overview(ctx context.Context, meetingID string) (*MeetingView, error)
}

var _ AgendaActions = (*Actions)(nil)
