package cli

import (
	"io"

	"github.com/goliatone/go-streamfield/pkg/schema"
)

// SchemaCommand contains flags for the `schema` command line command.
type SchemaCommand struct {
	Output string `short:"o" long:"output" description:"output file (stdout if empty)" value-name:"<file>"`

	stdout io.Writer
}

// Execute prints the JSON Schema describing definition documents.
func (command *SchemaCommand) Execute(args []string) error {
	out, err := schema.JSONSchemaBytes()
	if err != nil {
		return err
	}
	return writeOutput(stdoutOr(command.stdout), command.Output, out)
}
