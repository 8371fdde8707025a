// Command jvmaotc is a thin CLI driver over package jvmaot: it loads a
// class-file, selects a method, and compiles it to a native executable.
// Wiring the compiler to bundled sample classes is out of scope (spec.md
// §1); the driver only takes a user-supplied class-file path.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"jvmaot"
	"jvmaot/codegen"
	"jvmaot/container"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	outputPath := "a.out"
	var classPath string
	method := ""
	format := defaultFormat()
	isa := defaultISA()
	fold := false
	symbols := false
	runMode := false
	analyzeMode := false

	i := 1
	for i < len(os.Args) {
		switch {
		case os.Args[i] == "-o" && i+1 < len(os.Args):
			outputPath = os.Args[i+1]
			i = i + 2
		case os.Args[i] == "-method" && i+1 < len(os.Args):
			method = os.Args[i+1]
			i = i + 2
		case os.Args[i] == "-T" && i+1 < len(os.Args):
			var err error
			format, isa, err = parseTarget(os.Args[i+1])
			if err != nil {
				fmt.Fprintf(os.Stderr, "jvmaotc: %v\n", err)
				os.Exit(1)
			}
			i = i + 2
		case os.Args[i] == "-fold":
			fold = true
			i = i + 1
		case os.Args[i] == "-symbols":
			symbols = true
			i = i + 1
		case os.Args[i] == "-run":
			runMode = true
			i = i + 1
		case os.Args[i] == "-analyze":
			analyzeMode = true
			i = i + 1
		default:
			classPath = os.Args[i]
			i = i + 1
		}
	}

	if classPath == "" {
		usage()
		os.Exit(1)
	}

	data, err := os.ReadFile(classPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jvmaotc: reading %s: %v\n", classPath, err)
		os.Exit(1)
	}

	if analyzeMode {
		runAnalyze(data)
		return
	}

	if method == "" {
		fmt.Fprintf(os.Stderr, "jvmaotc: -method is required\n")
		os.Exit(1)
	}

	if err := jvmaot.CompileMethodNative(data, method, outputPath, format, isa, fold, symbols); err != nil {
		fmt.Fprintf(os.Stderr, "jvmaotc: %v\n", err)
		os.Exit(1)
	}

	if runMode {
		runPath := outputPath
		if !strings.ContainsRune(runPath, '/') {
			runPath = "./" + runPath // a bare name would be looked up in $PATH
		}
		cmd := exec.Command(runPath)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		runErr := cmd.Run()
		if runErr != nil {
			if exitErr, ok := runErr.(*exec.ExitError); ok {
				os.Exit(exitErr.ExitCode())
			}
			fmt.Fprintf(os.Stderr, "jvmaotc -run: %v\n", runErr)
			os.Exit(1)
		}
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s [-o output] [-method name[ descriptor]] [-T os/arch] [-fold] [-symbols] [-run] [-analyze] <class-file>\n", os.Args[0])
}

// runAnalyze prints one line per method's MethodInfo, noting why a method
// is considered hot (analysis.MethodInfo.Reason) when it is. It never
// compiles anything; spec.md §6's analyze(class) has no output-file knob.
func runAnalyze(data []byte) {
	infos, err := jvmaot.Analyze(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jvmaotc -analyze: %v\n", err)
		os.Exit(1)
	}
	for selector, mi := range infos {
		hot := "cold"
		if mi.IsHot() {
			hot = "hot (" + mi.Reason() + ")"
		}
		fmt.Printf("%s: instructions=%d arithmetic=%d calls=%d fields=%d branches=%d returns=%d %s\n",
			selector, mi.InstructionCount, mi.ArithmeticOps, mi.MethodCallCount, mi.FieldAccessCount, mi.BranchCount, mi.ReturnCount, hot)
	}
}

func defaultFormat() container.Format {
	if runtime.GOOS == "darwin" {
		return container.MachO
	}
	return container.ELF
}

func defaultISA() codegen.ISA {
	if runtime.GOARCH == "arm64" {
		return codegen.ARM64
	}
	return codegen.X86_64
}

// parseTarget accepts "linux/amd64", "linux/arm64", "darwin/arm64", etc.
func parseTarget(target string) (container.Format, codegen.ISA, error) {
	parts := strings.SplitN(target, "/", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid target %q: expected os/arch", target)
	}
	var format container.Format
	switch parts[0] {
	case "linux":
		format = container.ELF
	case "darwin":
		format = container.MachO
	default:
		return 0, 0, fmt.Errorf("invalid target %q: unsupported os %q", target, parts[0])
	}
	var isa codegen.ISA
	switch parts[1] {
	case "amd64", "x86_64":
		isa = codegen.X86_64
	case "arm64":
		isa = codegen.ARM64
	default:
		return 0, 0, fmt.Errorf("invalid target %q: unsupported arch %q", target, parts[1])
	}
	return format, isa, nil
}
