package version

// Version is the application version. Overridden at release time via
// -ldflags "-X chronoscope/pkg/version.Version=x.y.z".
var Version = "0.4.0-dev"
