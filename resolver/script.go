package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/promptproof/promptproof/logger"
)

// ScriptLoader loads an external script and invokes an entry point with no
// arguments, returning the decoded result. An empty functionName selects the
// module's default entry point; loaders return the module's exported value
// unchanged when it is not callable.
//
// Invocation blocks until the underlying process exits. Cancellation comes
// only from ctx; a hung script blocks the enclosing resolution.
type ScriptLoader interface {
	Invoke(ctx context.Context, scriptPath, functionName string) (any, error)
}

// nodeHarness imports the target module, invokes the requested export
// (awaiting promises), and prints the JSON-encoded result on stdout.
const nodeHarness = `
const { pathToFileURL } = require('url');
const scriptPath = process.argv[1];
const functionName = process.argv[2];
(async () => {
  let mod = await import(pathToFileURL(scriptPath).href);
  if (mod && mod.default !== undefined) mod = mod.default;
  if (mod && mod.default !== undefined) mod = mod.default;
  let target = functionName ? mod[functionName] : mod;
  if (functionName && target === undefined) {
    throw new Error('export not found: ' + functionName);
  }
  const result = typeof target === 'function' ? await target() : target;
  process.stdout.write(JSON.stringify(result === undefined ? null : result));
})().catch((err) => {
  process.stderr.write(String(err && err.stack ? err.stack : err));
  process.exit(1);
});
`

// pythonHarness loads the target file as a module and prints the JSON-encoded
// result of calling the named function with no arguments.
const pythonHarness = `
import importlib.util
import json
import sys

script_path, function_name = sys.argv[1], sys.argv[2]
spec = importlib.util.spec_from_file_location("promptproof_script", script_path)
mod = importlib.util.module_from_spec(spec)
spec.loader.exec_module(mod)
result = getattr(mod, function_name)()
sys.stdout.write(json.dumps(result))
`

// NodeLoader invokes JavaScript/TypeScript modules through a node subprocess.
// TypeScript modules depend on the interpreter's native type stripping, which
// needs Node 22.6 or newer (enabled by default since Node 23); older
// interpreters fail the dynamic import.
type NodeLoader struct {
	// Command is the interpreter binary, "node" by default.
	Command string
}

// Invoke runs the module through the node harness.
func (l *NodeLoader) Invoke(ctx context.Context, scriptPath, functionName string) (any, error) {
	command := l.Command
	if command == "" {
		command = "node"
	}
	logger.ScriptInvoke("node", scriptPath, functionName)
	result, err := runHarness(ctx, command, []string{"-e", nodeHarness, scriptPath, functionName})
	if err != nil {
		return nil, typeScriptHint(err, scriptPath)
	}
	return result, nil
}

// typeScriptHint annotates load failures for .ts modules, whose import
// support depends on the interpreter version.
func typeScriptHint(err error, scriptPath string) error {
	if strings.EqualFold(filepath.Ext(scriptPath), ".ts") {
		return fmt.Errorf("%w (TypeScript modules require a node interpreter with type stripping, v22.6+)", err)
	}
	return err
}

// PythonLoader invokes Python scripts through an interpreter subprocess.
// Python invocation always requires a function name; the resolver enforces
// that before dispatching here.
type PythonLoader struct {
	// Command is the interpreter binary, "python3" by default.
	Command string
}

// Invoke runs the script through the python harness.
func (l *PythonLoader) Invoke(ctx context.Context, scriptPath, functionName string) (any, error) {
	command := l.Command
	if command == "" {
		command = "python3"
	}
	logger.ScriptInvoke("python", scriptPath, functionName)
	return runHarness(ctx, command, []string{"-c", pythonHarness, scriptPath, functionName})
}

// runHarness executes the interpreter and decodes its stdout.
func runHarness(ctx context.Context, command string, args []string) (any, error) {
	cmd := exec.CommandContext(ctx, command, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return nil, fmt.Errorf("%s invocation failed: %w: %s", command, err, detail)
		}
		return nil, fmt.Errorf("%s invocation failed: %w", command, err)
	}

	return decodeScriptOutput(stdout.Bytes()), nil
}

// decodeScriptOutput parses harness stdout as JSON, falling back to the raw
// text when the script printed something else.
func decodeScriptOutput(raw []byte) any {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	var decoded any
	if err := json.Unmarshal(trimmed, &decoded); err != nil {
		return string(trimmed)
	}
	return decoded
}
