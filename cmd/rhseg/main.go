package main

import "github.com/arl/rhseg/cmd/rhseg/cmd"

func main() {
	cmd.Execute()
}
