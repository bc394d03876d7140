package main

import "github.com/KaramelBytes/empsent-cli/cmd"

func main() {
	cmd.Execute()
}
