package main

import "github.com/nextlevelbuilder/concierge/cmd"

func main() {
	cmd.Execute()
}
