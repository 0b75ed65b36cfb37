package main

import "github.com/bcmimarlik/site/cmd"

func main() {
	cmd.Execute()
}
