// Package platform contains OS and external tooling glue: filesystem helpers,
// served-file resolution, supported-platform URL matching, logger construction
// and YouTube playlist previews through the ytdlp library.
package platform
