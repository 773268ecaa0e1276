package cli

var (
	Version   = ""
	CommitSHA = ""
)

// Globals defines global flags available to all commands.
type Globals struct {
	Telemetry bool `help:"Show timing telemetry for operations."`
}

type Commands struct {
	Globals

	Tokens TokensCmd `cmd:"" help:"Tokenize a source file and print the token stream."`
	Check  CheckCmd  `cmd:"" help:"Lex a source file and report lexical errors."`
	Dump   DumpCmd   `cmd:"" help:"Write the token stream of a source file to a JSON file."`
	Watch  WatchCmd  `cmd:"" help:"Re-check a source file whenever it changes."`
}
