package command

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"dscmd/model"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrSyntax         = errors.New("syntax error")
)

var (
	commentDefinition = &Definition{Name: "#", Description: "Comment line", raw: true}
	unknownDefinition = &Definition{Name: "Unknown", Description: "Unrecognized command", raw: true}

	identRegex  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	nextParamRe = regexp.MustCompile(`^\s*,\s*[A-Za-z_][A-Za-z0-9_]*\s*=`)
)

// Parse reads one command line. Blank lines return a nil command. Lines that
// cannot be understood still return a command, which keeps the original text
// and reports the problem at INITIALIZATION, together with ErrUnknownCommand
// or ErrSyntax.
func Parse(line string) (*Command, error) {
	text := strings.TrimSpace(line)
	if text == "" {
		return nil, nil
	}
	if strings.HasPrefix(text, "#") {
		return &Command{def: commentDefinition, props: model.NewPropList(), raw: strings.TrimRight(line, " \t\r\n")}, nil
	}

	open := strings.IndexByte(text, '(')
	if open <= 0 || !strings.HasSuffix(text, ")") {
		err := fmt.Errorf("%w: expected Name(Param=\"value\",...): %s", ErrSyntax, text)
		return invalid(text, err, "Correct the command syntax."), err
	}
	name := strings.TrimSpace(text[:open])
	if !identRegex.MatchString(name) {
		err := fmt.Errorf("%w: invalid command name %q", ErrSyntax, name)
		return invalid(text, err, "Correct the command name."), err
	}

	props, err := parseParams(text[open+1 : len(text)-1])
	if err != nil {
		return invalid(text, err, "Correct the command parameters."), err
	}

	def, ok := Lookup(name)
	if !ok {
		err := fmt.Errorf("%w: %s", ErrUnknownCommand, name)
		hint := "Check the command name."
		if s := Suggest(name); len(s) > 0 {
			hint = fmt.Sprintf("Did you mean %s?", strings.Join(s, " or "))
		}
		return invalid(text, err, hint), err
	}
	return &Command{def: def, props: props}, nil
}

func invalid(text string, err error, hint string) *Command {
	return &Command{
		def:      unknownDefinition,
		props:    model.NewPropList(),
		raw:      text,
		parseErr: err,
		hint:     hint,
	}
}

// parseParams parses Key="value",Key2=value2. A quote closes a quoted value
// only when followed by ",Key=" or the end of the list, so values may contain
// quotes in other positions.
func parseParams(body string) (*model.PropList, error) {
	props := model.NewPropList()
	pos := 0
	for {
		for pos < len(body) && isSpace(body[pos]) {
			pos++
		}
		if pos >= len(body) {
			return props, nil
		}

		eq := strings.IndexByte(body[pos:], '=')
		if eq < 0 {
			return nil, fmt.Errorf("%w: missing '=' in %q", ErrSyntax, body[pos:])
		}
		key := strings.TrimSpace(body[pos : pos+eq])
		if !identRegex.MatchString(key) {
			return nil, fmt.Errorf("%w: invalid parameter name %q", ErrSyntax, key)
		}
		pos += eq + 1
		for pos < len(body) && isSpace(body[pos]) {
			pos++
		}

		var value string
		if pos < len(body) && body[pos] == '"' {
			end := closingQuote(body, pos+1)
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated value for %s", ErrSyntax, key)
			}
			value = body[pos+1 : end]
			pos = end + 1
		} else {
			end := strings.IndexByte(body[pos:], ',')
			if end < 0 {
				end = len(body) - pos
			}
			value = strings.TrimSpace(body[pos : pos+end])
			pos += end
		}
		props.Set(key, value)

		for pos < len(body) && isSpace(body[pos]) {
			pos++
		}
		if pos < len(body) {
			if body[pos] != ',' {
				return nil, fmt.Errorf("%w: expected ',' after %s", ErrSyntax, key)
			}
			pos++
		}
	}
}

func closingQuote(body string, from int) int {
	for i := from; i < len(body); i++ {
		if body[i] != '"' {
			continue
		}
		rest := body[i+1:]
		if strings.TrimSpace(rest) == "" || nextParamRe.MatchString(rest) {
			return i
		}
	}
	return -1
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t'
}
