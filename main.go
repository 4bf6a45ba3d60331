package main

import "faqbot/internal/cli"

func main() {
	cli.Execute()
}
