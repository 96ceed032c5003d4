// Command calories-admin inspects and maintains the credential and record
// stores outside the HTTP service, using the same configuration.
package main

import (
	"fmt"
	"os"
)

func main() {
	e := &env{}
	err := newRootCmd(e).Execute()
	e.close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
