// Command campus serves and administers the campus record API.
package main

import "github.com/mesh-intelligence/campus/internal/cli"

func main() {
	cli.Execute()
}
