package tests

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/catapillie/marin/internal/config"
)

// TestFunctional runs every .mar file under tests/ that has a sibling
// .want file through the compiled marin binary and compares its combined
// stdout/stderr against the expected transcript. This exercises the real
// CLI end to end (cmd/marin, not the packages underneath it directly),
// the same black-box contract §6 describes.
func TestFunctional(t *testing.T) {
	projectRoot, err := filepath.Abs("..")
	if err != nil {
		t.Fatalf("failed to get project root: %v", err)
	}

	binaryPath := filepath.Join(projectRoot, "marin-test-binary")
	defer os.Remove(binaryPath)

	t.Log("building fresh binary...")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/marin")
	cmd.Dir = projectRoot
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("failed to build binary: %v\n%s", err, output)
	}

	var testFiles []string
	err = filepath.Walk(".", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !config.HasSourceExt(path) {
			return nil
		}
		wantFile := config.TrimSourceExt(path) + ".want"
		if _, err := os.Stat(wantFile); err == nil {
			testFiles = append(testFiles, path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("failed to walk directory: %v", err)
	}

	if len(testFiles) == 0 {
		t.Skip("no test files with .want found")
	}

	for _, testFile := range testFiles {
		testFile := testFile
		testName := strings.TrimSuffix(filepath.Base(testFile), config.SourceFileExt)

		t.Run(testName, func(t *testing.T) {
			absPath, err := filepath.Abs(testFile)
			if err != nil {
				t.Fatalf("failed to get absolute path: %v", err)
			}

			wantFile := config.TrimSourceExt(testFile) + ".want"
			wantBytes, err := os.ReadFile(wantFile)
			if err != nil {
				t.Fatalf("failed to read .want file: %v", err)
			}
			want := strings.TrimSpace(string(wantBytes))

			cmd := exec.Command(binaryPath, absPath)
			cmd.Dir = projectRoot
			var stdout, stderr bytes.Buffer
			cmd.Stdout = &stdout
			cmd.Stderr = &stderr
			_ = cmd.Run()

			var got string
			stdoutStr := strings.TrimSpace(stdout.String())
			stderrStr := strings.TrimSpace(strings.ReplaceAll(stderr.String(), projectRoot+"/", ""))
			switch {
			case stdoutStr != "" && stderrStr != "":
				got = stdoutStr + "\n" + stderrStr
			case stdoutStr != "":
				got = stdoutStr
			default:
				got = stderrStr
			}
			got = strings.TrimSpace(strings.ReplaceAll(got, "\r\n", "\n"))
			want = strings.TrimSpace(strings.ReplaceAll(want, "\r\n", "\n"))

			if got != want {
				t.Errorf("output mismatch:\n--- want ---\n%s\n--- got ---\n%s", want, got)
			}
		})
	}
}
