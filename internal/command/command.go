// Package command builds the external tool invocations for spotdl, yt-dlp and eyeD3.
//
// Every builder is pure: the same input always yields the same [Command].
// A Command carries two renderings. [Command.Argv] is what gets executed,
// one element per argument and no shell in between. [Command.String] is the
// preview shown to the user, with user-supplied values re-quoted so that
// copying it into a shell runs the same thing. [Command.ShellString] quotes
// every argument that needs it and is what gets sent to a relay.
package command

import (
	"strings"
)

// Arg is one argument. Prefix and Suffix are literal text around Value,
// e.g. Prefix "--add-image=" and Suffix ":FRONT_COVER".
type Arg struct {
	Prefix string
	Value  string
	Suffix string
	Quote  bool
}

// Command is a program and its arguments.
type Command struct {
	Program string
	Args    []Arg
}

// Flag returns an unquoted literal argument.
func Flag(v string) Arg { return Arg{Value: v} }

// Quoted returns an argument that is double-quoted in the preview.
func Quoted(v string) Arg { return Arg{Value: v, Quote: true} }

// New returns a command for program with args.
func New(program string, args ...Arg) Command {
	return Command{Program: program, Args: args}
}

// Append returns a copy of c with args added. Empty literal flags are skipped.
func (c Command) Append(args ...Arg) Command {
	out := Command{Program: c.Program, Args: make([]Arg, 0, len(c.Args)+len(args))}
	out.Args = append(out.Args, c.Args...)
	for _, a := range args {
		if !a.Quote && a.Prefix == "" && a.Value == "" && a.Suffix == "" {
			continue
		}
		out.Args = append(out.Args, a)
	}
	return out
}

// Flags appends each non-empty literal in flags.
func (c Command) Flags(flags ...string) Command {
	args := make([]Arg, len(flags))
	for i, f := range flags {
		args[i] = Flag(f)
	}
	return c.Append(args...)
}

// Argv returns the program followed by the raw argument values.
func (c Command) Argv() []string {
	argv := make([]string, 0, len(c.Args)+1)
	argv = append(argv, c.Program)
	for _, a := range c.Args {
		argv = append(argv, a.Prefix+a.Value+a.Suffix)
	}
	return argv
}

// IsZero reports whether c has no program.
func (c Command) IsZero() bool {
	return c.Program == ""
}

// String renders the preview form, tokens separated by single spaces.
func (c Command) String() string {
	var b strings.Builder
	b.WriteString(c.Program)
	for _, a := range c.Args {
		b.WriteByte(' ')
		b.WriteString(a.Prefix)
		if a.Quote {
			b.WriteString(QuoteValue(a.Value))
		} else {
			b.WriteString(a.Value)
		}
		b.WriteString(a.Suffix)
	}
	return b.String()
}

// ShellString renders [Command.Argv] for a shell-style parser. Arguments
// holding anything but letters, digits and _@%+=:,./- are double-quoted, so
// "&" or "?" in a URL stays part of its argument.
func (c Command) ShellString() string {
	argv := c.Argv()
	parts := make([]string, len(argv))
	for i, a := range argv {
		if a == "" || strings.IndexFunc(a, unsafeRune) >= 0 {
			parts[i] = QuoteValue(a)
		} else {
			parts[i] = a
		}
	}
	return strings.Join(parts, " ")
}

func unsafeRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	}
	return !strings.ContainsRune("_@%+=:,./-", r)
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, `$`, `\$`, "`", "\\`")

// QuoteValue wraps v in double quotes, escaping the characters a POSIX shell
// still interprets inside them.
func QuoteValue(v string) string {
	return `"` + quoteEscaper.Replace(v) + `"`
}

// Strings renders each command's preview.
func Strings(cmds []Command) []string {
	out := make([]string, len(cmds))
	for i, c := range cmds {
		out[i] = c.String()
	}
	return out
}
