package main

import "github.com/kodecrm/wacoex/cmd"

func main() {
	cmd.Execute()
}
