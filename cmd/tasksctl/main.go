// Command tasksctl runs maintenance jobs against the task database:
// schema migration, user listing, admin promotion and the reclassify sweep.
package main

import "os"

func main() {
	if err := newRootCmd(openFromConfig).Execute(); err != nil {
		os.Exit(1)
	}
}
