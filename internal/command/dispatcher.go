package command

import (
	"context"
	"time"

	"github.com/tbourn/go-messenger-backend/internal/auth"
	"github.com/tbourn/go-messenger-backend/internal/domain"
)

// ChatCommands is the channel/membership contract the dispatcher routes to.
type ChatCommands interface {
	CreateChannel(ctx context.Context, callerID, title string) (*domain.ChatSummary, error)
	JoinChannel(ctx context.Context, callerID, chatID string) (*domain.ChatSummary, error)
	LeaveChannel(ctx context.Context, callerID, chatID string) (*domain.ChatSummary, error)
	SearchChannels(ctx context.Context, title string) ([]domain.ChatSummary, error)
}

// MessageCommands is the message lifecycle contract.
type MessageCommands interface {
	Send(ctx context.Context, callerID, chatID, text string) (*domain.MessageView, error)
	Edit(ctx context.Context, callerID, chatID, messageID, text string) (*domain.MessageView, error)
	Delete(ctx context.Context, callerID, chatID, messageID string) error
	ListPage(ctx context.Context, callerID, chatID string, page, pageSize int) ([]domain.MessageView, int64, error)
	Search(ctx context.Context, callerID, chatID, text string) ([]domain.MessageView, error)
}

// ModerationCommands is the restriction contract.
type ModerationCommands interface {
	ImposeRestriction(ctx context.Context, callerID, chatID, targetID, kind string, d time.Duration) (*domain.Restriction, error)
}

// Dispatcher routes commands to their handlers. It is the single pipeline
// stage between the transport and the services: it resolves the caller
// identity from the context and stamps it into the command before the
// handler sees it.
type Dispatcher struct {
	Chats      ChatCommands
	Messages   MessageCommands
	Moderation ModerationCommands
}

// inject fills the command's identity placeholder from the authenticated
// context. A missing identity is a dispatcher-wiring defect, not a user
// error: no anonymous commands exist in this design, so this panics rather
// than limping on.
func inject(ctx context.Context, cmd identified) {
	id, ok := auth.IdentityFrom(ctx)
	if !ok {
		panic("command: dispatched without authenticated identity")
	}
	cmd.setIdentity(id)
}

// MessagePage is the ListMessages payload.
type MessagePage struct {
	Items    []domain.MessageView `json:"items"`
	Total    int64                `json:"total"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"page_size"`
}

// ChannelList is the SearchChannels payload.
type ChannelList struct {
	Items []domain.ChatSummary `json:"items"`
}

// SendMessage stores a new message unless the caller is muted.
func (d *Dispatcher) SendMessage(ctx context.Context, cmd SendMessage) Result[domain.MessageView] {
	inject(ctx, &cmd)
	view, err := d.Messages.Send(ctx, cmd.UserID(), cmd.ChatID, cmd.Text)
	if err != nil {
		return FromError[domain.MessageView](err)
	}
	return Ok(view)
}

// JoinChannel joins the caller to a channel unless banned.
func (d *Dispatcher) JoinChannel(ctx context.Context, cmd JoinChannel) Result[domain.ChatSummary] {
	inject(ctx, &cmd)
	summary, err := d.Chats.JoinChannel(ctx, cmd.UserID(), cmd.ChatID)
	if err != nil {
		return FromError[domain.ChatSummary](err)
	}
	return Ok(summary)
}

// LeaveChannel removes the caller from a channel.
func (d *Dispatcher) LeaveChannel(ctx context.Context, cmd LeaveChannel) Result[domain.ChatSummary] {
	inject(ctx, &cmd)
	summary, err := d.Chats.LeaveChannel(ctx, cmd.UserID(), cmd.ChatID)
	if err != nil {
		return FromError[domain.ChatSummary](err)
	}
	return Ok(summary)
}

// CreateChannel creates a channel owned by the caller.
func (d *Dispatcher) CreateChannel(ctx context.Context, cmd CreateChannel) Result[domain.ChatSummary] {
	inject(ctx, &cmd)
	summary, err := d.Chats.CreateChannel(ctx, cmd.UserID(), cmd.Title)
	if err != nil {
		return FromError[domain.ChatSummary](err)
	}
	return Ok(summary)
}

// SearchChannels finds channels by title.
func (d *Dispatcher) SearchChannels(ctx context.Context, cmd SearchChannels) Result[ChannelList] {
	inject(ctx, &cmd)
	items, err := d.Chats.SearchChannels(ctx, cmd.Title)
	if err != nil {
		return FromError[ChannelList](err)
	}
	return Ok(&ChannelList{Items: items})
}

// EditMessage overwrites a message's text.
func (d *Dispatcher) EditMessage(ctx context.Context, cmd EditMessage) Result[domain.MessageView] {
	inject(ctx, &cmd)
	view, err := d.Messages.Edit(ctx, cmd.UserID(), cmd.ChatID, cmd.MessageID, cmd.Text)
	if err != nil {
		return FromError[domain.MessageView](err)
	}
	return Ok(view)
}

// DeleteMessage removes a message.
func (d *Dispatcher) DeleteMessage(ctx context.Context, cmd DeleteMessage) Result[Unit] {
	inject(ctx, &cmd)
	if err := d.Messages.Delete(ctx, cmd.UserID(), cmd.ChatID, cmd.MessageID); err != nil {
		return FromError[Unit](err)
	}
	return Ok(&Unit{})
}

// ListMessages pages through a chat's messages.
func (d *Dispatcher) ListMessages(ctx context.Context, cmd ListMessages) Result[MessagePage] {
	inject(ctx, &cmd)
	items, total, err := d.Messages.ListPage(ctx, cmd.UserID(), cmd.ChatID, cmd.Page, cmd.PageSize)
	if err != nil {
		return FromError[MessagePage](err)
	}
	return Ok(&MessagePage{Items: items, Total: total, Page: cmd.Page, PageSize: cmd.PageSize})
}

// SearchMessages finds messages in a chat by text.
func (d *Dispatcher) SearchMessages(ctx context.Context, cmd SearchMessages) Result[MessagePage] {
	inject(ctx, &cmd)
	items, err := d.Messages.Search(ctx, cmd.UserID(), cmd.ChatID, cmd.Text)
	if err != nil {
		return FromError[MessagePage](err)
	}
	return Ok(&MessagePage{Items: items, Total: int64(len(items))})
}

// ImposeRestriction mutes or bans a user in a chat.
func (d *Dispatcher) ImposeRestriction(ctx context.Context, cmd ImposeRestriction) Result[Unit] {
	inject(ctx, &cmd)
	if _, err := d.Moderation.ImposeRestriction(ctx, cmd.UserID(), cmd.ChatID, cmd.TargetID, cmd.Kind, cmd.Duration); err != nil {
		return FromError[Unit](err)
	}
	return Ok(&Unit{})
}
