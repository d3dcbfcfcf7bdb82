package main

import (
	"github.com/mcoot/mafiagame-go/internal/cli"
)

func main() {
	cli.Execute()
}
