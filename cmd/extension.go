package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

// Environment variables passed to extensions. They are the ones config.Load
// reads, so an extension built on this module sees the same book.
const (
	EnvBook    = "CFL_BOOK"
	EnvConfig  = "CFL_CONFIG"
	EnvVerbose = "CFL_VERBOSE"
)

// RunExtension attempts to find and execute an external cfl-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found.
func RunExtension(subcommand string, args []string) (bool, int) {
	name := "cfl-" + subcommand
	lp, err := exec.LookPath(name)
	if err != nil {
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	// Pass global flags as environment variables
	cmd.Env = os.Environ()
	if *bookFile != "" {
		cmd.Env = append(cmd.Env, EnvBook+"="+*bookFile)
	}
	cmd.Env = append(cmd.Env, EnvConfig+"="+*configFile)
	cmd.Env = append(cmd.Env, EnvVerbose+"="+strconv.FormatBool(*Verbose))

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return true, exitErr.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", name, err)
		return true, 1
	}
	return true, 0
}
