package chat

import (
	"fmt"
	"strings"
)

type commandKind string

const (
	cmdSend   commandKind = "send"
	cmdName   commandKind = "name"
	cmdJoin   commandKind = "join"
	cmdCreate commandKind = "create"
	cmdLeave  commandKind = "leave"
	cmdKick   commandKind = "kick"
	cmdClose  commandKind = "close"
	cmdQuit   commandKind = "quit"
)

type command struct {
	kind commandKind
	arg  string
}

var slashCommands = map[string]commandKind{
	"/name":   cmdName,
	"/join":   cmdJoin,
	"/create": cmdCreate,
	"/leave":  cmdLeave,
	"/kick":   cmdKick,
	"/close":  cmdClose,
	"/quit":   cmdQuit,
	"/q":      cmdQuit,
}

// parseInput turns an input line into a command. Lines that do not start
// with a slash are messages; "//" escapes a leading slash.
func parseInput(line string) (command, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return command{}, fmt.Errorf("nothing to send")
	}

	if strings.HasPrefix(trimmed, "//") {
		return command{kind: cmdSend, arg: trimmed[1:]}, nil
	}
	if !strings.HasPrefix(trimmed, "/") {
		return command{kind: cmdSend, arg: trimmed}, nil
	}

	word, rest, _ := strings.Cut(trimmed, " ")
	kind, ok := slashCommands[strings.ToLower(word)]
	if !ok {
		return command{}, fmt.Errorf("unknown command %s", word)
	}

	return command{kind: kind, arg: strings.TrimSpace(rest)}, nil
}

func confirmed(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
