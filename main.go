package main

import "github.com/papapumpkin/compass/cmd"

func main() {
	cmd.Execute()
}
