package main

import (
	"fmt"
	"os"

	"github.com/rmax-ai/smoglight/pkg/mcp"
)

func main() {
	apiURL := os.Getenv("SMOGLIGHT_API_URL")

	s := mcp.NewServer(apiURL)
	if err := s.Serve(); err != nil {
		fmt.Fprintf(os.Stderr, "MCP server error: %v\n", err)
		os.Exit(1)
	}
}
