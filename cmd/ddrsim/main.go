// Command ddrsim inspects DRAM parameter tables and runs a memory controller
// against synthetic traffic.
package main

import "github.com/sarchlab/ddrsim/cmd/ddrsim/cmd"

func main() {
	cmd.Execute()
}
