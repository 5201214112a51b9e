package commands

import (
	"fmt"
	"strings"
	"time"
)

type Type string

const (
	TypeAdd    Type = "add"
	TypeFocus  Type = "focus"
	TypeDone   Type = "done"
	TypeMove   Type = "move"
	TypeDelete Type = "delete"
	TypeRemind Type = "remind"
	TypeGoto   Type = "goto"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func invalid(format string, args ...any) error {
	return &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// AddArgs carries an optional "@HH:MM" start and "~45m" duration pulled out of
// the title.
type AddArgs struct {
	Title    string
	At       string
	Duration time.Duration
}

// TargetArgs names a task by id or id prefix.
type TargetArgs struct {
	Ref string
}

type MoveArgs struct {
	Ref  string
	When string
}

type RemindArgs struct {
	Ref  string
	When string
}

type GotoArgs struct {
	Day string
}

type Command struct {
	Type   Type
	Raw    string
	Add    *AddArgs
	Target *TargetArgs
	Move   *MoveArgs
	Remind *RemindArgs
	Goto   *GotoArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeFocus, TypeDone, TypeDelete:
		if len(args) != 1 {
			return Command{}, invalid("%s requires exactly one task reference", head)
		}
		return Command{Type: Type(head), Raw: input, Target: &TargetArgs{Ref: args[0]}}, nil
	case TypeMove:
		if len(args) < 2 {
			return Command{}, invalid("move requires a task and a time")
		}
		when := strings.Join(args[1:], " ")
		if err := checkWhen(when); err != nil {
			return Command{}, err
		}
		return Command{Type: TypeMove, Raw: input, Move: &MoveArgs{Ref: args[0], When: when}}, nil
	case TypeRemind:
		if len(args) < 2 {
			return Command{}, invalid("remind requires a task and a time")
		}
		when := strings.Join(args[1:], " ")
		if err := checkWhen(when); err != nil {
			return Command{}, err
		}
		return Command{Type: TypeRemind, Raw: input, Remind: &RemindArgs{Ref: args[0], When: when}}, nil
	case TypeGoto:
		if len(args) != 1 {
			return Command{}, invalid("goto requires a day")
		}
		if _, err := ParseDay(args[0], time.Now()); err != nil {
			return Command{}, err
		}
		return Command{Type: TypeGoto, Raw: input, Goto: &GotoArgs{Day: strings.ToLower(args[0])}}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw string, args []string) (Command, error) {
	out := AddArgs{}
	words := make([]string, 0, len(args))
	for _, arg := range args {
		switch {
		case len(arg) > 1 && strings.HasPrefix(arg, "@"):
			out.At = arg[1:]
			if err := checkWhen(out.At); err != nil {
				return Command{}, err
			}
		case len(arg) > 1 && strings.HasPrefix(arg, "~"):
			d, err := ParseDuration(arg[1:])
			if err != nil {
				return Command{}, err
			}
			out.Duration = d
		default:
			words = append(words, arg)
		}
	}
	out.Title = strings.TrimSpace(strings.Join(words, " "))
	if out.Title == "" {
		return Command{}, invalid("add requires a title")
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &out}, nil
}

func checkWhen(raw string) error {
	_, err := ParseWhen(raw, time.Now())
	return err
}
