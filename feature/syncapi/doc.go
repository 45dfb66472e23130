// Package syncapi exposes the sync runner over HTTP for serve mode.
package syncapi
