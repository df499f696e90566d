package cli

import (
	"strings"

	"github.com/spf13/pflag"
)

// NormalizeArgs rewrites command-line arguments into the form pflag expects.
//
// Flags may be written with one or two dashes. A flag's value is the next
// argument unless that argument starts with "-"; a value flag with nothing
// after it becomes "--name=" so the caller can substitute a default. Boolean
// flags never take the following argument. Arguments that are not known
// flags, and values without a flag, are returned in ignored.
func NormalizeArgs(flags *pflag.FlagSet, args []string) (normalized, ignored []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, value, hasValue, ok := splitFlag(arg)
		if !ok {
			ignored = append(ignored, arg)
			continue
		}

		flag := lookup(flags, name)
		if flag == nil {
			ignored = append(ignored, arg)
			continue
		}

		switch {
		case hasValue:
			normalized = append(normalized, "--"+flag.Name+"="+value)
		case flag.Value.Type() == "bool":
			normalized = append(normalized, "--"+flag.Name)
		case i+1 < len(args) && !strings.HasPrefix(args[i+1], "-"):
			normalized = append(normalized, "--"+flag.Name+"="+args[i+1])
			i++
		case flag.NoOptDefVal != "":
			normalized = append(normalized, "--"+flag.Name)
		default:
			normalized = append(normalized, "--"+flag.Name+"=")
		}
	}
	return normalized, ignored
}

// splitFlag parses "-name", "--name" and "--name=value".
func splitFlag(arg string) (name, value string, hasValue, ok bool) {
	if !strings.HasPrefix(arg, "-") {
		return "", "", false, false
	}
	name = strings.TrimPrefix(strings.TrimPrefix(arg, "-"), "-")
	if name == "" || strings.HasPrefix(name, "-") {
		return "", "", false, false
	}
	name, value, hasValue = strings.Cut(name, "=")
	return name, value, hasValue, name != ""
}

func lookup(flags *pflag.FlagSet, name string) *pflag.Flag {
	if f := flags.Lookup(name); f != nil {
		return f
	}
	if len(name) == 1 {
		return flags.ShorthandLookup(name)
	}
	return nil
}
