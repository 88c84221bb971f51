package cli

import (
	"bytes"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/aidanlsb/zinc/internal/config"
)

var captureStdoutMu sync.Mutex

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	captureStdoutMu.Lock()
	defer captureStdoutMu.Unlock()

	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}

	os.Stdout = w

	outputCh := make(chan string, 1)
	errCh := make(chan error, 1)
	go func() {
		var buf bytes.Buffer
		_, copyErr := io.Copy(&buf, r)
		_ = r.Close()
		if copyErr != nil {
			errCh <- copyErr
			return
		}
		outputCh <- buf.String()
	}()

	fn()

	os.Stdout = orig
	_ = w.Close()
	select {
	case err := <-errCh:
		t.Fatalf("io.Copy: %v", err)
		return ""
	case output := <-outputCh:
		return output
	}
}

// withGlobals restores the package-level flag state after the test.
func withGlobals(t *testing.T) {
	t.Helper()
	prevConfig := configPath
	prevDB := dbPathFlag
	prevVault := vaultPathFlag
	prevSubfolder := subfolderFlag
	prevJSON := jsonOutput
	prevCfg := cfg
	t.Cleanup(func() {
		configPath = prevConfig
		dbPathFlag = prevDB
		vaultPathFlag = prevVault
		subfolderFlag = prevSubfolder
		jsonOutput = prevJSON
		cfg = prevCfg
	})

	configPath = ""
	dbPathFlag = ""
	vaultPathFlag = ""
	subfolderFlag = ""
	jsonOutput = false
	cfg = &config.Config{}
}
