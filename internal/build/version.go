package build

// AppName is reported by the CLI and the MCP server.
const AppName = "spotter"

// Version is overridden at link time with -ldflags "-X".
var Version = "0.1.0-dev"
