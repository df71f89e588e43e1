// Command mantella reads and edits Nextcloud Collectives from the terminal.
package main

import "github.com/johanforsgren/mantella/internal/cli"

func main() {
	cli.Execute()
}
