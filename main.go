package main

import (
	"github.com/dreamerjackson/ghcrawler/cmd"
)

func main() {
	cmd.Execute()
}
