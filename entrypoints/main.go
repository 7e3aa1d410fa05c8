package main

import (
	"github.com/Laisky/amc-site/cmd"
)

func main() {
	cmd.Execute()
}
