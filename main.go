package main

import "github.com/KaramelBytes/chartly-cli/cmd"

func main() {
	cmd.Execute()
}
