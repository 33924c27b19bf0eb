package main

import "github.com/camoufox/camoufox-server/cmd"

func main() {
	cmd.Execute()
}
