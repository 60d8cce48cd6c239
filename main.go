package main

import (
	"fmt"
	"os"
)

const (
	Version = "v0.01.00"
	License = "Apache-2.0"
)

func main() {
	cmd := "panel"
	var args []string
	if len(os.Args) > 1 {
		cmd, args = os.Args[1], os.Args[2:]
	}

	var err error
	switch cmd {
	case "panel":
		err = runPanel(args)
	case "check":
		err = runCheck(args)
	case "extract":
		err = runExtract(args)
	case "auto":
		err = runAuto(args)
	case "watch":
		err = runWatch(args)
	case "serve":
		err = runServe(args)
	case "mcp":
		err = runMCP(args)
	case "models":
		err = runModels(args)
	case "ping":
		err = runPing(args)
	case "settings":
		err = runSettings(args)
	case "chat":
		err = runChat(args)
	case "version", "--version", "-v":
		fmt.Printf("rpoptimizer %s (%s)\n", Version, License)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`rpoptimizer %s - rewrites sentences that use disabled words in roleplay chats

Usage:
  rpoptimizer [command] [arguments]

Commands:
  panel                     Interactive panel (default)
  check [text]              Report whether text (or the latest message) has a disabled word
  extract                   Print the numbered sentences to rewrite
  auto                      Extract, rewrite and replace on the latest message
  watch [--interval 2s]     Optimize new assistant messages as they arrive
  serve [--addr :8787]      HTTP sidecar for the host chat app
        [--watch]           also poll the chat store for new messages
  mcp                       MCP tool server on stdio
  models [query]            List backend models, fuzzy filtered by query
  ping                      Test the backend connection
  settings show [--format toml|json|yaml]
  settings set key=value...
  settings export <file> [--format toml|json|yaml]
  settings import <file> [--format toml|json|yaml]
  chat add <role> <text>    Append a message to the chat
  chat show                 Print the chat
  chat import <file.json>   Append messages from [{"role": "...", "content": "..."}]
  version                   Print version

Environment:
  RPO_PROVIDER, RPO_MODEL, RPO_BASE_URL, RPO_API_KEY, RPO_DATA_DIR,
  RPO_CHAT_BACKEND (json|sqlite), RPO_DEBUG
`, Version)
}
