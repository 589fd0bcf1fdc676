// Package main implements enginectl, the inspection tool for the engine
// runtime core.
//
// Usage:
//
//	enginectl types                   # Print the engine type tree
//	enginectl types --json            # Print it as an identity manifest
//	enginectl manifest check m.json   # Check a manifest against this build
//	enginectl stress --count 65       # Exercise the allocation table
//	enginectl version
package main

func main() {
	execute()
}
