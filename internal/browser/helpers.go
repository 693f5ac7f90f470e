package browser

import (
	"encoding/base64"
	"os"
	"path/filepath"

	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
)

func rodPoint(x, y float64) proto.Point {
	return proto.Point{X: x, Y: y}
}

// keyInputFor maps a single logical key name (as used by the send_keys
// action, e.g. "Enter", "Escape", "Control+a") onto go-rod's input.Key
// sequence. Only the handful of keys the action catalog actually sends
// are covered; anything else falls back to literal rune input.
func keyInputFor(keys string) []input.Key {
	switch keys {
	case "Enter":
		return []input.Key{input.Enter}
	case "Escape":
		return []input.Key{input.Escape}
	case "Tab":
		return []input.Key{input.Tab}
	case "Backspace":
		return []input.Key{input.Backspace}
	case "ArrowDown":
		return []input.Key{input.ArrowDown}
	case "ArrowUp":
		return []input.Key{input.ArrowUp}
	default:
		out := make([]input.Key, 0, len(keys))
		for _, r := range keys {
			out = append(out, input.Key(r))
		}
		return out
	}
}

func base64Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// atomicWriteFile writes via a temp file + rename so a crash mid-write
// never leaves storage_state.json truncated.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".storage-state-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}
