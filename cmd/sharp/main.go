// Command sharp explains a ranking of tabular data with Shapley values.
package main

import (
	"fmt"
	"os"

	"github.com/YuminosukeSato/sharp/pkg/errors"
)

// Exit codes for different failure modes
const (
	ExitSuccess = 0 // Influences computed
	ExitConfig  = 1 // Invalid configuration or input data
	ExitError   = 2 // Runtime error
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var ce *errors.ConfigurationError
		var ve *errors.ValidationError
		if errors.As(err, &ce) || errors.As(err, &ve) {
			os.Exit(ExitConfig)
		}
		os.Exit(ExitError)
	}
}
