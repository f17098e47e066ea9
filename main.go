// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/workingBen/forge-demo/cmd/forge"

func main() {
	cmd.Execute()
}
