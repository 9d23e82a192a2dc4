// Command interviewer is a terminal client for the interviewer API.
package main

import "github.com/interviewer-dev/interviewer/internal/cli"

func main() {
	cli.Execute()
}
