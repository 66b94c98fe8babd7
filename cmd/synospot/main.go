package main

import "github.com/synospot/synospot/cmd/synospot/cmd"

func main() {
	cmd.Execute()
}
