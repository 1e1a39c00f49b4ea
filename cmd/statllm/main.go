package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/iblwz/statllm/internal/extract"
)

// Exit codes for different failure modes
const (
	ExitSuccess = 0 // Summary delivered (or nothing to do)
	ExitNoData  = 1 // Sources yielded no leaderboard data; notice sent
	ExitError   = 2 // Configuration or runtime error
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the process exit code. A no-data day is an
// expected outcome with its own code; everything else is a real failure.
func exitCode(err error) int {
	if errors.Is(err, extract.ErrNoData) {
		return ExitNoData
	}
	return ExitError
}
