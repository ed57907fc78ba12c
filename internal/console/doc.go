// Package console implements the interactive archive shell: a registry of commands, a read-eval loop,
// and the styled output those commands share.
//
// Errors returned by a [Command] never end the loop. [Env.Report] renders resolution and validation errors as
// warnings with any playlist suggestions, and everything else as an unexpected error followed by its wrapped chain.
package console
