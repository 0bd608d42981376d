// Command scr-client drives a car in a TORCS race over the SCR UDP protocol
// and writes the fitness of the run to a file.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
