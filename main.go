package main

import "github.com/jobwire/boardcrawler/cmd"

func main() {
	cmd.Execute()
}
