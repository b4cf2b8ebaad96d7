package main

import cmd "github.com/rohmanhakim/webgrab/internal/cli"

func main() {
	cmd.Execute()
}
