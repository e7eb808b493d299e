package main

import "github.com/pfrederiksen/du-scraper/internal/cli"

func main() {
	cli.Execute()
}
