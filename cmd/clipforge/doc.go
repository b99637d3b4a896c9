// Command clipforge turns long gameplay recordings into vertical shorts.
//
// The daemon subcommand watches a drop directory and processes recordings
// through the queue; process and plan run one file in the foreground; the
// queue and config subcommands manage state from the shell.
package main
