package main

import "github.com/mvp-joe/project-portfolio/internal/cli"

func main() {
	cli.Execute()
}
