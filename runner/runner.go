package runner

import (
	"context"
	"fmt"

	"dscmd/command"
	"dscmd/processor"
)

// OutputMsg is sent through the channel for each line of output
type OutputMsg struct {
	Line     string
	Severity command.Severity
	IsErr    bool
	Done     bool
	ErrMsg   string
}

// Lines formats one command result as output lines: the command text followed
// by its status entries.
func Lines(res processor.Result) []OutputMsg {
	c := res.Command
	prefix := fmt.Sprintf("[%d] ", res.Index+1)
	out := []OutputMsg{{Line: prefix + c.String(), Severity: res.Severity, IsErr: res.Severity == command.SeverityFailure}}

	for _, e := range c.Status().All() {
		line := "    " + e.Severity.String() + " " + e.Phase.String() + ": " + e.Message
		if e.Recommendation != "" && e.Severity != command.SeveritySuccess {
			line += " (" + e.Recommendation + ")"
		}
		out = append(out, OutputMsg{Line: line, Severity: e.Severity, IsErr: e.Severity == command.SeverityFailure})
	}
	if res.Skipped {
		out = append(out, OutputMsg{Line: "    skipped: invalid parameters", Severity: command.SeverityFailure, IsErr: true})
	}
	return out
}

// Run executes cmds on proc and streams output through a channel. The channel
// is closed when the run ends. If ctx is canceled the run stops and no further
// messages are sent.
func Run(ctx context.Context, proc *processor.Processor, cmds []*command.Command, output chan<- OutputMsg) {
	defer close(output)

	send := func(m OutputMsg) bool {
		select {
		case output <- m:
			return true
		case <-ctx.Done():
			return false
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sum, err := proc.RunCommands(runCtx, cmds, func(res processor.Result) {
		for _, m := range Lines(res) {
			if !send(m) {
				cancel()
				return
			}
		}
	})
	if err != nil {
		send(OutputMsg{Done: true, ErrMsg: err.Error()})
		return
	}

	summary := fmt.Sprintf("%d commands, %d failed, %d with warnings", sum.Total, sum.Failed, sum.Warnings)
	if sum.Failed > 0 {
		send(OutputMsg{Done: true, Line: summary, ErrMsg: fmt.Sprintf("%d of %d commands failed", sum.Failed, sum.Total)})
		return
	}
	send(OutputMsg{Done: true, Line: summary})
}
