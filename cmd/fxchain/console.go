package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cbegin/fxchain-go"
)

const consoleHelp = `insert POS KIND [k=v ...]   add a stage (id=NAME sets its id)
remove REF                  remove a stage by position or id
move REF POS                move a stage
set REF k=v ...             change live parameters of a stage
src k=v ...                 change source parameters (amp)
dst k=v ...                 change destination parameters (amp)
channels N | downmix spread|weighted | input on|off | fade DURATION
play [OFFSET] | stop | status | help | quit`

var errUsage = errors.New("wrong arguments, see help")

type console struct {
	chain *fxchain.Chain
	out   io.Writer
}

// exec runs one console line.
func (c *console) exec(line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	cmd, args := fields[0], fields[1:]
	switch cmd {
	case "quit", "exit":
		return true, nil
	case "help":
		fmt.Fprintln(c.out, consoleHelp)
		return false, nil
	case "status":
		return false, c.status()
	case "insert":
		if len(args) < 2 {
			return false, errUsage
		}
		pos, err := strconv.Atoi(args[0])
		if err != nil {
			return false, errUsage
		}
		params, err := parseAssignments(args[2:])
		if err != nil {
			return false, err
		}
		var id string
		if v, ok := params["id"]; ok {
			id = fmt.Sprint(v)
			delete(params, "id")
		}
		return false, c.chain.InsertStage(pos, fxchain.Stage(args[1], id, params))
	case "remove":
		if len(args) != 1 {
			return false, errUsage
		}
		return false, c.chain.RemoveStage(fxchain.ParseRef(args[0]))
	case "move":
		if len(args) != 2 {
			return false, errUsage
		}
		pos, err := strconv.Atoi(args[1])
		if err != nil {
			return false, errUsage
		}
		return false, c.chain.MoveStage(fxchain.ParseRef(args[0]), pos)
	case "set":
		if len(args) < 2 {
			return false, errUsage
		}
		params, err := parseAssignments(args[1:])
		if err != nil {
			return false, err
		}
		return false, c.chain.SetFx(fxchain.ParseRef(args[0]), params)
	case "src", "dst":
		if len(args) < 1 {
			return false, errUsage
		}
		params, err := parseAssignments(args)
		if err != nil {
			return false, err
		}
		if cmd == "src" {
			return false, c.chain.SetSource(params)
		}
		return false, c.chain.SetDest(params)
	case "channels":
		if len(args) != 1 {
			return false, errUsage
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return false, errUsage
		}
		return false, c.chain.SetChannels(n)
	case "downmix":
		if len(args) != 1 {
			return false, errUsage
		}
		return false, c.chain.SetDownmix(args[0])
	case "input":
		if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
			return false, errUsage
		}
		return false, c.chain.SetRealInput(args[0] == "on")
	case "fade":
		if len(args) != 1 {
			return false, errUsage
		}
		d, err := time.ParseDuration(args[0])
		if err != nil {
			return false, err
		}
		return false, c.chain.SetFade(d)
	case "play":
		offset := 0
		if len(args) == 1 {
			if offset, err = strconv.Atoi(args[0]); err != nil {
				return false, errUsage
			}
		}
		return false, c.chain.Play(offset)
	case "stop":
		return false, c.chain.Stop()
	default:
		return false, fmt.Errorf("unknown command %q", cmd)
	}
}

func (c *console) status() error {
	st, err := c.chain.Status()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(st)
	if err != nil {
		return err
	}
	_, err = c.out.Write(data)
	return err
}

// parseAssignments reads k=v pairs. Values are decoded as YAML scalars, so
// numbers, booleans and strings keep their types.
func parseAssignments(args []string) (map[string]any, error) {
	params := make(map[string]any, len(args))
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("expected key=value, got %q", a)
		}
		var val any
		if err := yaml.Unmarshal([]byte(v), &val); err != nil || val == nil {
			val = v
		}
		params[k] = val
	}
	return params, nil
}
