package main

import "storefront-sync/internal/cmd"

func main() {
	cmd.Execute()
}
