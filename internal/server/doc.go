// Package server is the HTTP boundary of the downloader: JSON endpoints on
// echo, request validation and serving of downloaded files.
package server
