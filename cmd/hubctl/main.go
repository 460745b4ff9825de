// Hubctl is a command line client for the Project Hub API. It keeps a
// logged-in session on disk and talks to the server through the shared API
// client, so cached reads and token refresh behave exactly like any other
// consumer.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
)

func main() {
	baseURL := flag.String("server", envOr("HUB_SERVER", "http://localhost:8080"), "API base URL")
	sessionPath := flag.String("session", defaultSessionPath(), "path to the session token file")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	if err := dispatch(*baseURL, *sessionPath, args[0], args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".hubctl-session.json"
	}
	return filepath.Join(home, ".config", "hubctl", "session.json")
}

func usage() {
	fmt.Fprint(os.Stderr, `usage: hubctl [flags] <command> [args]

commands:
  register <username> <email>     create an account (password prompted via HUB_PASSWORD)
  login <username>                sign in (password via HUB_PASSWORD)
  logout                          revoke the current session
  domains                         list catalog domains
  projects [query]                list published projects
  show <slug>                     show one project
  submit <domain> <title> <difficulty> [repo-url]
                                  submit a project for review
  bookmark <project-id>           save a project to your library
  progress <project-id> <status> <percent>
                                  update progress (started|in_progress|completed)
  achievements                    list your achievements
  leaderboard                     show the points leaderboard

flags:
`)
	flag.PrintDefaults()
}
