// Rays keeps a local library of stickers that can be searched by title and
// tag and shared to chat apps on an Android device.
//
// Usage:
//
//	rays import <files...>   Add images to the library
//	rays search [keyword]    Search stickers
//	rays share <uuid...>     Share stickers to the connected device
//	rays serve               Start the HTTP API
//	rays mcp                 Start the MCP server (stdio transport)
//	rays tui                 Browse the library interactively
package main

import (
	"fmt"
	"os"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "rays: %s\n", err)
		os.Exit(1)
	}
}
