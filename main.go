package main

import (
	"context"
	"io"
	"os"

	"sweatpet/internal/cli"
)

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	return cli.Execute(context.Background(), args, stdin, stdout, stderr)
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
