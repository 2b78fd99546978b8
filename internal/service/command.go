package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrMissingParam   = errors.New("missing command parameter")
)

// CommandParams is the raw parameter bag a client sends alongside the
// command name. Each command variant validates the fields it needs.
type CommandParams struct {
	Username  string `json:"username"`
	Reason    string `json:"reason"`
	Duration  string `json:"duration"`
	MessageID int64  `json:"message_id"`
	NewText   string `json:"new_text"`
	Message   string `json:"message"`
}

// Command is the validated form of an admin slash-command. One variant
// per command keeps the dispatch switch exhaustive instead of stringly.
type Command interface {
	isCommand()
}

type BanCommand struct {
	Username string
	Reason   string
}

type UnbanCommand struct {
	Username string
}

type MuteCommand struct {
	Username        string
	DurationMinutes int
}

type UnmuteCommand struct {
	Username string
}

type ClearCommand struct{}

type EditCommand struct {
	MessageID int64
	NewText   string
}

type AnnounceCommand struct {
	Message string
}

func (BanCommand) isCommand()      {}
func (UnbanCommand) isCommand()    {}
func (MuteCommand) isCommand()     {}
func (UnmuteCommand) isCommand()   {}
func (ClearCommand) isCommand()    {}
func (EditCommand) isCommand()     {}
func (AnnounceCommand) isCommand() {}

// ParseCommand validates a raw command against the fixed vocabulary and
// returns its typed form. An unparsable mute duration falls back to the
// default rather than failing.
func ParseCommand(name string, params CommandParams) (Command, error) {
	switch name {
	case "/ban":
		if params.Username == "" {
			return nil, fmt.Errorf("%w: username", ErrMissingParam)
		}
		return BanCommand{Username: params.Username, Reason: params.Reason}, nil
	case "/unban":
		if params.Username == "" {
			return nil, fmt.Errorf("%w: username", ErrMissingParam)
		}
		return UnbanCommand{Username: params.Username}, nil
	case "/mute":
		if params.Username == "" {
			return nil, fmt.Errorf("%w: username", ErrMissingParam)
		}
		minutes, err := strconv.Atoi(params.Duration)
		if err != nil || minutes <= 0 {
			minutes = DefaultMuteMinutes
		}
		return MuteCommand{Username: params.Username, DurationMinutes: minutes}, nil
	case "/unmute":
		if params.Username == "" {
			return nil, fmt.Errorf("%w: username", ErrMissingParam)
		}
		return UnmuteCommand{Username: params.Username}, nil
	case "/clear":
		return ClearCommand{}, nil
	case "/edit":
		if params.MessageID == 0 {
			return nil, fmt.Errorf("%w: message_id", ErrMissingParam)
		}
		if params.NewText == "" {
			return nil, fmt.Errorf("%w: new_text", ErrMissingParam)
		}
		return EditCommand{MessageID: params.MessageID, NewText: params.NewText}, nil
	case "/announce":
		if params.Message == "" {
			return nil, fmt.Errorf("%w: message", ErrMissingParam)
		}
		return AnnounceCommand{Message: params.Message}, nil
	default:
		return nil, ErrUnknownCommand
	}
}

// ICommandService dispatches validated admin commands
type ICommandService interface {
	Dispatch(ctx context.Context, adminID uint, cmd Command) (string, error)
}

type CommandService struct {
	moderation IModerationService
	messages   IMessageService
}

func NewCommandService(moderation IModerationService, messages IMessageService) ICommandService {
	return &CommandService{
		moderation: moderation,
		messages:   messages,
	}
}

// Dispatch routes a command to the moderation ledger or message store
// and returns a human-readable confirmation. The admin check happens at
// the HTTP layer before parsing.
func (s *CommandService) Dispatch(ctx context.Context, adminID uint, cmd Command) (string, error) {
	switch c := cmd.(type) {
	case BanCommand:
		if _, err := s.moderation.Ban(ctx, c.Username, c.Reason, adminID); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s has been banned", c.Username), nil
	case UnbanCommand:
		if err := s.moderation.Unban(ctx, c.Username, adminID); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s has been unbanned", c.Username), nil
	case MuteCommand:
		if _, err := s.moderation.Mute(ctx, c.Username, c.DurationMinutes, adminID); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s has been muted for %d minute(s)", c.Username, c.DurationMinutes), nil
	case UnmuteCommand:
		if err := s.moderation.Unmute(ctx, c.Username, adminID); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s has been unmuted", c.Username), nil
	case ClearCommand:
		if err := s.messages.ClearAll(ctx); err != nil {
			return "", err
		}
		return "all messages cleared", nil
	case EditCommand:
		if err := s.messages.Edit(ctx, c.MessageID, c.NewText); err != nil {
			return "", err
		}
		return "message updated", nil
	case AnnounceCommand:
		if _, err := s.messages.Announce(ctx, adminID, c.Message); err != nil {
			return "", err
		}
		return "announcement posted", nil
	default:
		return "", ErrUnknownCommand
	}
}
