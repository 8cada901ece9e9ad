package main

import "github.com/Mohsinsiddi/raisin/cmd"

func main() {
	cmd.Execute()
}
