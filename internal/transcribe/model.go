package transcribe

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/nguyentantai21042004/voice-insights/pkg/executor"
)

// commandModel runs an external acoustic model process. Samples are written
// to stdin as little-endian float32; the process prints a JSON [][]float32
// logits matrix on stdout.
type commandModel struct {
	command  string
	args     []string
	executor executor.Executor
}

// NewCommandModel creates an AcousticModel backed by an external process.
func NewCommandModel(command string, args []string, exec executor.Executor) AcousticModel {
	return &commandModel{command: command, args: args, executor: exec}
}

func (m *commandModel) Logits(ctx context.Context, input []float32) ([][]float32, error) {
	var stdin bytes.Buffer
	stdin.Grow(len(input) * 4)
	if err := binary.Write(&stdin, binary.LittleEndian, input); err != nil {
		return nil, fmt.Errorf("encode samples: %w", err)
	}

	out, err := m.executor.ExecuteWithInput(ctx, &stdin, m.command, m.args...)
	if err != nil {
		return nil, err
	}

	var logits [][]float32
	if err := json.Unmarshal(out, &logits); err != nil {
		return nil, fmt.Errorf("parse logits: %w", err)
	}
	return logits, nil
}
