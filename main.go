package main

import "github.com/naka-gawa/gitorg/cmd"

func main() {
	cmd.Execute()
}
