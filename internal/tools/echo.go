package tools

import "context"

// EchoTool echoes its input back with a prefix.
type EchoTool struct{}

func NewEchoTool() *EchoTool {
	return &EchoTool{}
}

func (e *EchoTool) Name() string {
	return "echo"
}

func (e *EchoTool) Description() string {
	return "Echoes the input back with a prefix."
}

func (e *EchoTool) Execute(_ context.Context, input string) Outcome {
	return Success("Echoed: " + input)
}
