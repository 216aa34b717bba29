package main

import cmd "github.com/rohmanhakim/pypi-scraper/internal/cli"

func main() {
	cmd.Execute()
}
