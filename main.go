// Entry point for scint-sim. Command handling lives in cmd/.

package main

import (
	"github.com/scint-sim/scint-sim/cmd"
)

func main() {
	cmd.Execute()
}
