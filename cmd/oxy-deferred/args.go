package main

import (
	"strings"

	"github.com/urfave/cli"
)

// filterArgs splits command line arguments into those naming one of flags (with their values)
// and everything else. Unknown arguments are reported instead of aborting the parse.
//
// Parameters:
//   - args: the arguments without the program name
//   - flags: the flags the application accepts
//
// Returns:
//   - []string: the arguments to parse, in their original order
//   - []string: the unknown arguments, in their original order
func filterArgs(args []string, flags []cli.Flag) ([]string, []string) {
	takesValue := map[string]bool{}
	for _, f := range append([]cli.Flag{cli.HelpFlag, cli.VersionFlag}, flags...) {
		isBool := false
		switch f.(type) {
		case cli.BoolFlag, cli.BoolTFlag, *cli.BoolFlag, *cli.BoolTFlag:
			isBool = true
		}
		for _, name := range strings.Split(f.GetName(), ",") {
			takesValue[strings.TrimSpace(name)] = !isBool
		}
	}

	var known, unknown []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, ok := flagName(arg)
		if !ok {
			unknown = append(unknown, arg)
			continue
		}
		needsValue, found := takesValue[name]
		if !found {
			unknown = append(unknown, arg)
			continue
		}

		known = append(known, arg)
		if needsValue && !strings.Contains(arg, "=") && i+1 < len(args) {
			i++
			known = append(known, args[i])
		}
	}
	return known, unknown
}

// flagName returns the name of a -name, --name or --name=value argument.
func flagName(arg string) (string, bool) {
	if len(arg) < 2 || arg[0] != '-' || arg == "--" {
		return "", false
	}
	name := strings.TrimPrefix(strings.TrimPrefix(arg, "-"), "-")
	name, _, _ = strings.Cut(name, "=")
	return name, name != ""
}
