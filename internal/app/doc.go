// Package app wires the CFEM × CRM analytics server together: configuration,
// logging, OpenTelemetry, the ingestion pipeline, the session service and the
// HTTP router.
//
// # Initialization Flow
//
//	1. Load configuration from .env, environment variables and the YAML file
//	2. Initialize logging and OpenTelemetry
//	3. Build the pipeline, exporter, session and health services
//	4. Set up the chi router and its middleware chain
//	5. Create the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication(nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Source File
//
// When source.path is set the file is loaded at start-up. With source.watch
// the parent directory is watched and the dataset is replaced after each
// burst of writes settles. The current selection survives a reload.
//
// # Graceful Shutdown
//
// Run stops on SIGINT or SIGTERM: in-flight requests finish, the source
// watcher is closed and telemetry is flushed.
//
// Initialization errors are returned to the caller. The package never calls
// os.Exit.
package app
