package main

import "ScrapBoard/cmd"

func main() {
	cmd.Execute()
}
