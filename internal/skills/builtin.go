package skills

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"go-skillagent/pkg/models"
)

// RegisterBuiltins adds the stock skills every organization starts with.
func RegisterBuiltins(r *Registry, organizationID string) {
	r.Register(organizationID, models.Skill{
		Key:         "shell.run",
		Name:        "Run shell command",
		Description: "Runs one bash command inside the sandbox directory and returns its combined output. Expects the command under the context key \"command\".",
		Category:    "system",
		Active:      true,
	}, runShell)
}

func runShell(ctx context.Context, input map[string]any) (map[string]any, error) {
	command, _ := input["command"].(string)
	if command == "" {
		return nil, errors.New("no command in step context")
	}
	if err := os.MkdirAll("sandbox/tmp", os.ModePerm); err != nil {
		return nil, fmt.Errorf("sandbox: %w", err)
	}

	cmd := exec.CommandContext(ctx, "bash", "-c", command)
	cmd.Dir = "sandbox"
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("output=[%s], error=[%w]", output, err)
	}

	return map[string]any{"output": string(output)}, nil
}
