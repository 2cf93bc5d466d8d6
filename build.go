//go:build ignore

// build.go - pivotcli build system
// Usage: go run build.go [-target=TARGET] [-v]
// Targets: all, translate, extract, aggregate, chart, profile, report, test, clean, package

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"
)

const module = "pivotcli"

var (
	rootDir string
	distDir string

	// Binaries under cmd/
	commands = []string{"translate", "extract", "aggregate", "chart", "profile", "report"}

	// Copied next to the binaries by the package target
	packageFiles = []string{"jobs.yaml", "README.md"}

	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

func init() {
	cwd, err := os.Getwd()
	if err != nil {
		panic(fmt.Sprintf("Failed to get current directory: %v", err))
	}
	rootDir = cwd
	distDir = filepath.Join(rootDir, "dist")

	if _, err := os.Stat(filepath.Join(rootDir, "go.mod")); os.IsNotExist(err) {
		panic(fmt.Sprintf("go.mod not found in %s. Run build.go from the repository root.", rootDir))
	}
}

func main() {
	target := flag.String("target", "all", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	if runtime.GOOS == "windows" || os.Getenv("NO_COLOR") != "" {
		disableColors()
	}

	printHeader()
	startTime := time.Now()

	switch *target {
	case "all":
		buildAll(*verbose)
	case "test":
		runTests(*verbose)
	case "clean":
		clean(*verbose)
	case "package":
		createPackage(*verbose)
	default:
		if !isCommand(*target) {
			showHelp()
			os.Exit(1)
		}
		prepareDirectories(*verbose)
		buildCommand(*target, *verbose)
	}

	printSuccess(fmt.Sprintf("Build completed in %s", time.Since(startTime).Round(time.Millisecond)))
}

func printHeader() {
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println(colorCyan + "         pivotcli - Build System           " + colorReset)
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println()
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

func disableColors() {
	colorReset, colorRed, colorGreen, colorYellow, colorBlue, colorCyan = "", "", "", "", "", ""
}

func isCommand(name string) bool {
	for _, c := range commands {
		if c == name {
			return true
		}
	}
	return false
}

func buildAll(verbose bool) {
	printInfo("Building all commands...")
	if err := checkPrerequisites(); err != nil {
		printError(fmt.Sprintf("Prerequisites check failed: %v", err))
		os.Exit(1)
	}
	prepareDirectories(verbose)
	for _, name := range commands {
		buildCommand(name, verbose)
	}
}

func buildCommand(name string, verbose bool) {
	printInfo(fmt.Sprintf("Building %s...", name))

	exeName := name
	if runtime.GOOS == "windows" {
		exeName += ".exe"
	}
	outputPath := filepath.Join(distDir, exeName)

	ldflags := fmt.Sprintf("-s -w -X %[1]s/pkg/contracts.BuildTime=%[2]s -X %[1]s/pkg/contracts.GitCommit=%[3]s",
		module, time.Now().UTC().Format(time.RFC3339), gitCommit())

	args := []string{"build"}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, "-ldflags", ldflags, "-o", outputPath, "./cmd/"+name)

	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	if verbose {
		fmt.Printf("Running: go %s\n", strings.Join(args, " "))
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}
	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Failed to build %s: %v", name, err))
		os.Exit(1)
	}

	if info, err := os.Stat(outputPath); err == nil {
		printSuccess(fmt.Sprintf("Built %s (%.1f MB)", exeName, float64(info.Size())/1024/1024))
	}
}

func gitCommit() string {
	out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}

func runTests(verbose bool) {
	printInfo("Running Go tests...")
	args := []string{"test", "-race"}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, "./...")

	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Go tests failed: %v", err))
		os.Exit(1)
	}
	printSuccess("All tests passed")
}

func clean(verbose bool) {
	printInfo("Cleaning build artifacts...")
	if err := cleanDir(distDir); err != nil {
		printError(fmt.Sprintf("Failed to clean dist directory: %v", err))
	}
	matches, _ := filepath.Glob(filepath.Join(rootDir, module+"-v*"))
	for _, m := range matches {
		if verbose {
			fmt.Printf("Removing %s\n", m)
		}
		if err := os.RemoveAll(m); err != nil {
			printWarning(fmt.Sprintf("Failed to remove %s: %v", m, err))
		}
	}
	printSuccess("Build artifacts cleaned")
}

func createPackage(verbose bool) {
	printInfo("Creating distribution package...")
	buildAll(verbose)

	packageDir := filepath.Join(rootDir, fmt.Sprintf("%s-%s-%s", module, runtime.GOOS, runtime.GOARCH))
	os.RemoveAll(packageDir)
	if err := copyDir(distDir, packageDir); err != nil {
		printError(fmt.Sprintf("Failed to create package: %v", err))
		os.Exit(1)
	}
	for _, name := range packageFiles {
		src := filepath.Join(rootDir, name)
		if _, err := os.Stat(src); err != nil {
			continue
		}
		if err := copyFile(src, filepath.Join(packageDir, name)); err != nil {
			printWarning(fmt.Sprintf("Failed to copy %s: %v", name, err))
		}
	}
	for _, dir := range []string{"data", "reports", "charts", "logs"} {
		os.MkdirAll(filepath.Join(packageDir, dir), 0755)
	}
	printSuccess(fmt.Sprintf("Package created in %s", packageDir))
}

func checkPrerequisites() error {
	if _, err := exec.LookPath("go"); err != nil {
		return fmt.Errorf("go toolchain not found in PATH")
	}
	return nil
}

func prepareDirectories(verbose bool) {
	if err := os.MkdirAll(distDir, 0755); err != nil {
		printError(fmt.Sprintf("Failed to create %s: %v", distDir, err))
		os.Exit(1)
	}
	if verbose {
		fmt.Printf("Output directory: %s\n", distDir)
	}
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func copyDir(src, dest string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)
		if info.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		if err := copyFile(path, target); err != nil {
			return err
		}
		return os.Chmod(target, info.Mode())
	})
}

func cleanDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

func showHelp() {
	names := append([]string(nil), commands...)
	sort.Strings(names)
	fmt.Println("Usage: go run build.go [-target=TARGET] [-v]")
	fmt.Println()
	fmt.Println("Targets:")
	fmt.Println("  all        Build every command into dist/ (default)")
	fmt.Printf("  <command>  Build one of: %s\n", strings.Join(names, ", "))
	fmt.Println("  test       Run the Go tests with -race")
	fmt.Println("  clean      Remove build artifacts")
	fmt.Println("  package    Build and assemble a distribution directory")
}
