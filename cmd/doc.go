// Package cmd implements the dpool command-line interface. It runs the
// compose-review RPC server and drives it through a pooled text service client.
//
// Subpackages:
//
//   - serve: starts the RPC server and its admin HTTP endpoint
//   - text: text service operations (upload, get) and a load generator (perf)
//   - util: shared flag and configuration helpers (internal use)
//
// See dpool -help for a list of all commands.
package cmd
