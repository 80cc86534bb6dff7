// Command slims queries and edits records of a SLIMS server from the shell.
package main

func main() {
	Execute()
}
