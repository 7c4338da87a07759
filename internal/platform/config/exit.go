package config

import (
	"fmt"
	"os"
)

// Exitf reports a fatal startup or tool error on stderr and exits with code 1.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
