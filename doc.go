// Package credman wires a file-backed credential store into an MCP server.
//
// Options are parsed from command line flags and environment variables, the
// store is opened in read-only or read-write mode, and the server is exposed
// over stdio, SSE or streamable HTTP:
//
//	if err := credman.Run(os.Args[1:]); err != nil {
//		log.Fatal(err)
//	}
//
// Environment:
//   - CREDENTIAL_MANAGER_STORE_PATH, the store file (default credentials.json)
//   - CREDENTIAL_MANAGER_READ_ONLY, read-only unless set to a value other than true, 1 or yes
//   - LOG_LEVEL and ENV, process logging (see internal/logger)
package credman
