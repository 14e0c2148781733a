package main

import "github.com/tfgate/tfgate/cmd/tfgate/cli"

func main() {
	cli.Execute()
}
