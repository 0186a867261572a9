package main

import (
	"github.com/lexcodex/sslsense/app/cmd"
)

func main() {
	cmd.Execute()
}
