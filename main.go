package main

import "github.com/naka-gawa/gh-log/cmd"

func main() {
	cmd.Execute()
}
