// Package app provides the startup and shutdown shared by the pivotcli
// binaries.
//
// # Initialization Flow
//
//	1. Parse command flags plus -config and -version
//	2. Load configuration from defaults, the YAML file and PIVOT_* variables
//	3. Resolve and create the data, reports, charts and logs directories
//	4. Initialize the slog logger and OpenTelemetry
//	5. Run the command with a trace ID on a context cancelled by SIGINT/SIGTERM
//	6. Flush metrics and traces, close the log file
//
// # Usage
//
//	func main() {
//	    fs := flag.NewFlagSet("profile", flag.ContinueOnError)
//	    in := fs.String("in", "", "input table")
//	    os.Exit(app.Main(fs, os.Args[1:], os.Stdout, os.Stderr,
//	        func(ctx context.Context, a *app.Application) error {
//	            ...
//	        }))
//	}
//
// # Error Handling
//
// Main never calls os.Exit. It prints the error to stderr and returns the
// exit code, leaving the exit to main.
package app
