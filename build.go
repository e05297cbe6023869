//go:build ignore

// build.go - ganttreport build script
// Usage: go run build.go [-target=TARGET] [-v]
// Targets: build, test, release, clean

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const (
	module  = "ganttcli"
	command = "ganttreport"
)

var (
	distDir = "dist"

	// Release matrix, GOOS/GOARCH
	releaseTargets = []string{
		"linux/amd64",
		"linux/arm64",
		"darwin/arm64",
		"windows/amd64",
	}

	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
)

func main() {
	target := flag.String("target", "build", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	startTime := time.Now()

	var err error
	switch *target {
	case "build":
		err = buildBinary(runtime.GOOS, runtime.GOARCH, distDir, *verbose)
	case "test":
		err = run(*verbose, "go", "test", "./...")
	case "release":
		err = buildRelease(*verbose)
	case "clean":
		err = os.RemoveAll(distDir)
	default:
		showHelp()
		os.Exit(1)
	}

	if err != nil {
		printError(err.Error())
		os.Exit(1)
	}
	printSuccess(fmt.Sprintf("%s completed in %s", *target, time.Since(startTime).Round(time.Millisecond)))
}

// ldflags stamps build time and commit into pkg/contracts.
func ldflags() string {
	commit := "unknown"
	if out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output(); err == nil {
		commit = strings.TrimSpace(string(out))
	} else {
		printWarning("git commit unavailable, stamping 'unknown'")
	}

	pkg := module + "/pkg/contracts"
	return strings.Join([]string{
		"-s -w",
		fmt.Sprintf("-X %s.BuildTime=%s", pkg, time.Now().UTC().Format(time.RFC3339)),
		fmt.Sprintf("-X %s.GitCommit=%s", pkg, commit),
	}, " ")
}

func buildBinary(goos, goarch, outDir string, verbose bool) error {
	name := command
	if goos == "windows" {
		name += ".exe"
	}
	out := filepath.Join(outDir, name)
	printInfo(fmt.Sprintf("Building %s for %s/%s", out, goos, goarch))

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", outDir, err)
	}

	cmd := exec.Command("go", "build", "-trimpath", "-ldflags", ldflags(), "-o", out, "./cmd/"+command)
	cmd.Env = append(os.Environ(), "GOOS="+goos, "GOARCH="+goarch, "CGO_ENABLED=0")
	return runCmd(cmd, verbose)
}

func buildRelease(verbose bool) error {
	for _, t := range releaseTargets {
		goos, goarch, _ := strings.Cut(t, "/")
		if err := buildBinary(goos, goarch, filepath.Join(distDir, goos+"-"+goarch), verbose); err != nil {
			return fmt.Errorf("release %s: %w", t, err)
		}
	}
	return nil
}

func run(verbose bool, name string, args ...string) error {
	return runCmd(exec.Command(name, args...), verbose)
}

func runCmd(cmd *exec.Cmd, verbose bool) error {
	if verbose {
		printInfo(strings.Join(cmd.Args, " "))
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func showHelp() {
	fmt.Println("Usage: go run build.go [-target=TARGET] [-v]")
	fmt.Println()
	fmt.Println("Targets:")
	fmt.Println("  build    Build ganttreport for this platform into dist/ (default)")
	fmt.Println("  test     Run all tests")
	fmt.Println("  release  Cross-compile ganttreport for every release platform")
	fmt.Println("  clean    Remove dist/")
}

func printInfo(msg string) {
	fmt.Printf("%s[INFO]%s %s\n", colorBlue, colorReset, msg)
}

func printSuccess(msg string) {
	fmt.Printf("%s[SUCCESS]%s %s\n", colorGreen, colorReset, msg)
}

func printError(msg string) {
	fmt.Printf("%s[ERROR]%s %s\n", colorRed, colorReset, msg)
}

func printWarning(msg string) {
	fmt.Printf("%s[WARNING]%s %s\n", colorYellow, colorReset, msg)
}
