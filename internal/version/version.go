// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - HTTP API, WebSocket frame stream, Prometheus metrics, TOML config
// 0.2.0 - Camera navigation: zoom-to-target, inactivity auto-reset, selection marker
// 0.1.0 - Initial release: exoplanet catalog, orbital animation, TUI and headless modes
