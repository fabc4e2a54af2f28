package main

import "github.com/kasuboski/simulcast/cmd"

func main() {
	cmd.Execute()
}
