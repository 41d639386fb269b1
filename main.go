package main

import "headwater/cmd"

func main() {
	cmd.Execute()
}
