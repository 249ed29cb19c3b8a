// Package cli implements the ssup command line.
//
// ssup has a single root command. Its positional arguments are read as
// NETWORK COMMAND..., as COMMAND... when the Supfile declares no networks,
// or as TARGET... when every argument names a target. Run turns them into
// a playbook and hands it to an Executor; the built-in one prints the plan.
//
// Every flag can also be set through the environment with an SSUP_ prefix
// (SSUP_SSHCONFIG, SSUP_NO_COLOR, ...). Flags given on the command line win.
//
// Errors are returned as *errors.Error and mapped to exit codes by Execute:
// 2 for usage problems, 3 to 6 for host filter failures, 1 otherwise.
package cli
